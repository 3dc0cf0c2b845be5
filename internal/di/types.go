// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived dependency of the service. It is created
// by Wire and handed to the server, which mounts handlers on top of it.
package di

import (
	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/clients/backend"
	"github.com/aristath/minty/internal/database"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/aristath/minty/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// Architecture:
//   - Databases: one cache database for backend responses
//   - Clients: the trading backend client (shared market client, per-token account clients)
//   - Services: valuation engine, event bus, scheduler
//   - Pages: the registry of mounted views and their timers
type Container struct {
	// Databases
	CacheDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Clients
	Backend *backend.Client

	// Services
	EventBus  *events.Bus
	Scheduler *scheduler.Scheduler
	Engine    *valuation.Engine

	// Pages
	Registry *pages.Registry
}

// JobInstances holds references to the background jobs registered at startup
type JobInstances struct {
	CacheCleanup *clientdata.CleanupJob
	ViewReaper   scheduler.FuncJob
}

// Close unmounts every view and closes the databases
func (c *Container) Close() error {
	if c.Registry != nil {
		c.Registry.CloseAll()
	}
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
