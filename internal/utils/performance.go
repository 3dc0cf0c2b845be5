package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// OperationTimer provides a defer-friendly way to measure operation duration.
// Runs longer than slow are logged at warn level.
//
// Usage:
//
//	func MyFunction() {
//	    defer utils.OperationTimer("my_function", log, time.Second)()
//	}
func OperationTimer(operation string, log zerolog.Logger, slow time.Duration) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if slow > 0 && duration > slow {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Dur("threshold", slow).
				Msg("Slow operation detected")
		}
	}
}
