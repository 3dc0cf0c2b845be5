package di

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/modules/market"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:           8080,
		BackendURL:     "http://localhost:5001",
		CachePath:      filepath.Join(t.TempDir(), "cache.db"),
		BackendTimeout: time.Second,
		MarketCacheTTL: time.Second,
		StartingCash:   100000,
		PortfolioEvery: time.Minute,
		PriceEvery:     time.Second,
		StockEvery:     time.Second,
		Location:       time.UTC,
	}
}

func TestWire(t *testing.T) {
	container, jobs, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	require.NotNil(t, jobs)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.CacheDB)
	assert.NotNil(t, container.ClientDataRepo)
	assert.NotNil(t, container.Backend)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.Engine)
	assert.NotNil(t, container.Registry)
	assert.Equal(t, 0, container.Registry.Len())

	// Only the cache sweep and the view reaper are scheduled before any view mounts
	assert.NotNil(t, jobs.CacheCleanup)
	assert.Equal(t, "view_reaper", jobs.ViewReaper.Name())
	assert.Equal(t, 2, container.Scheduler.Len())
}

func TestWire_CacheIsUsable(t *testing.T) {
	container, jobs, err := Wire(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	require.NoError(t, container.ClientDataRepo.Store(clientdata.TableLiveData, "NVDA", map[string]float64{"price": 1}, -time.Second))
	require.NoError(t, container.Scheduler.RunNow(jobs.CacheCleanup))

	raw, err := container.ClientDataRepo.GetIfFresh(clientdata.TableLiveData, "NVDA")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestWire_ViewReaperReclaimsIdleViews(t *testing.T) {
	cfg := testConfig(t)
	cfg.ViewIdleTimeout = time.Minute
	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	container.Registry.SetClock(func() time.Time { return now })
	_, err = container.Registry.Mount(func(id string) (pages.View, error) {
		return market.NewView(id, "NVDA", container.Backend.Market(), container.EventBus, market.Config{RefreshInterval: time.Hour}, zerolog.Nop()), nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, container.Registry.Len())

	now = now.Add(2 * time.Minute)
	require.NoError(t, container.Scheduler.RunNow(jobs.ViewReaper))
	assert.Equal(t, 0, container.Registry.Len())
	assert.Equal(t, 2, container.Scheduler.Len())
}

func TestInitializeDatabases_BadPath(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	cfg.CachePath = filepath.Join(blocker, "cache.db")

	_, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
}
