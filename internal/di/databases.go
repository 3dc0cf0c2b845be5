// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the cache database, applies its schema and
// creates the client data repository on top of it
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// cache.db - backend responses with per-endpoint TTLs (in memory unless CACHE_DB_PATH is set)
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CachePath,
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}

	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}
	container.CacheDB = cacheDB
	container.ClientDataRepo = clientdata.NewRepository(cacheDB.Conn())

	log.Info().
		Str("path", cacheDB.Path()).
		Str("profile", string(cacheDB.Profile())).
		Msg("Cache database initialized")

	return container, nil
}
