package di

import (
	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/clients/backend"
	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/aristath/minty/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates the backend client, the event bus, the scheduler,
// the valuation engine and the view registry
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Backend = backend.NewClient(backend.Config{
		BaseURL:  cfg.BackendURL,
		Timeout:  cfg.BackendTimeout,
		Location: cfg.Location,
		Cache:    container.ClientDataRepo,
		TTLs:     clientdata.DefaultTTLs(cfg.MarketCacheTTL),
	}, log)

	container.EventBus = events.NewBus(log)
	container.Scheduler = scheduler.New(log)
	container.Engine = valuation.NewEngine(cfg.StartingCash, cfg.Location, log)
	container.Registry = pages.NewRegistry(container.Scheduler, container.EventBus, log)
	container.Registry.SetIdleTimeout(cfg.ViewIdleTimeout)

	log.Info().
		Str("backend", cfg.BackendURL).
		Float64("starting_cash", cfg.StartingCash).
		Msg("Services initialized")

	return nil
}
