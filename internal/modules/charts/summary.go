package charts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

type hashPayload struct {
	Labels   []string  `msgpack:"labels"`
	Datasets []Dataset `msgpack:"datasets"`
}

// ContentHash returns a stable digest of a chart's labels and dataset values
func ContentHash(cfg Config) (string, error) {
	encoded, err := msgpack.Marshal(hashPayload{Labels: cfg.Labels, Datasets: cfg.Datasets})
	if err != nil {
		return "", fmt.Errorf("failed to encode chart payload: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// SummaryChart is a reconciled slot that skips work when the payload is unchanged
type SummaryChart struct {
	mu       sync.Mutex
	rec      *Reconciler
	slot     string
	lastHash string
}

// NewSummaryChart binds a summary chart to slot on rec
func NewSummaryChart(rec *Reconciler, slot string) *SummaryChart {
	return &SummaryChart{rec: rec, slot: slot}
}

// Render reconciles cfg unless it is identical to the previous render and the
// chart still exists. It reports whether the surface was touched.
func (s *SummaryChart) Render(cfg Config, force bool) (bool, error) {
	hash, err := ContentHash(cfg)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !force && hash == s.lastHash && s.rec.Chart(s.slot) != nil {
		return false, nil
	}

	s.rec.Reconcile(s.slot, cfg, force)
	s.lastHash = hash
	return true, nil
}

// Reset forgets the last rendered payload so the next Render always draws
func (s *SummaryChart) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHash = ""
}
