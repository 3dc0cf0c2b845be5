package pages

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/scheduler"
	"github.com/aristath/minty/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrViewNotFound is returned for an unknown or unmounted view id
var ErrViewNotFound = errors.New("view not found")

const (
	// DefaultRefreshTimeout bounds one timer-driven refresh
	DefaultRefreshTimeout = 30 * time.Second
	// DefaultIdleTimeout is how long a view with no stream client and no
	// request survives before Reap unmounts it
	DefaultIdleTimeout = 10 * time.Minute
)

// Unmount reasons carried by the VIEW_UNMOUNTED event
const (
	ReasonSessionExpired = "session_expired"
	ReasonIdle           = "idle"
)

// LoginPage is where a client whose session expired is sent
const LoginPage = "login.html"

// Factory builds a view for a freshly assigned id
type Factory func(id string) (View, error)

type mounted struct {
	view    View
	entries []scheduler.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	// unix nanos of the last request or stream disconnect
	lastSeen atomic.Int64
}

// Registry owns the mounted views and their refresh timers
type Registry struct {
	mu      sync.RWMutex
	views   map[string]*mounted
	sched   *scheduler.Scheduler
	bus     *events.Bus
	timeout time.Duration
	idle    time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewRegistry creates a registry registering timers on sched
func NewRegistry(sched *scheduler.Scheduler, bus *events.Bus, log zerolog.Logger) *Registry {
	return &Registry{
		views:   make(map[string]*mounted),
		sched:   sched,
		bus:     bus,
		timeout: DefaultRefreshTimeout,
		idle:    DefaultIdleTimeout,
		now:     time.Now,
		log:     log.With().Str("component", "view_registry").Logger(),
	}
}

// SetIdleTimeout sets how long an unwatched view survives; zero or less
// disables reaping
func (r *Registry) SetIdleTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idle = d
}

// SetClock overrides the clock used for idle tracking
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Mount assigns a new view id, builds the view and starts its timers
func (r *Registry) Mount(factory Factory) (View, error) {
	id := uuid.New().String()
	view, err := factory(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &mounted{view: view, ctx: ctx, cancel: cancel}

	for _, t := range view.Timers() {
		t := t
		name := fmt.Sprintf("%s:%s:%s", view.Page(), t.Name, id)
		entry, err := r.sched.AddJob(scheduler.Every(t.Interval), scheduler.FuncJob{
			JobName: name,
			Fn:      func() error { return r.runTimer(id, name, m, t) },
		})
		if err != nil {
			r.stop(m)
			return nil, fmt.Errorf("failed to start %s timer: %w", t.Name, err)
		}
		m.entries = append(m.entries, entry)
	}

	r.mu.Lock()
	r.touch(m)
	r.views[id] = m
	r.mu.Unlock()

	r.bus.Publish(id, events.NewViewLifecycleData(events.ViewMounted, id, view.Page()))
	r.log.Info().Str("view", id).Str("page", view.Page()).Int("timers", len(m.entries)).Msg("View mounted")
	return view, nil
}

// runTimer runs one timer tick. A session that expired mid-poll unmounts the
// view so polling stops and stream clients are sent to the login page.
func (r *Registry) runTimer(id, name string, m *mounted, t Timer) error {
	defer utils.OperationTimer(name, r.log, t.Interval)()
	runCtx, done := context.WithTimeout(m.ctx, r.timeout)
	defer done()

	err := t.Run(runCtx)
	if err == nil || m.ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoSession) {
		r.log.Warn().Err(err).Str("view", id).Str("timer", t.Name).Msg("Session expired during refresh, unmounting view")
		_ = r.UnmountFor(id, ReasonSessionExpired)
		return nil
	}
	return err
}

// Get returns a mounted view and marks it as in use
func (r *Registry) Get(id string) (View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	r.touch(m)
	return m.view, nil
}

// Touch marks a view as in use so Reap leaves it alone for another idle period
func (r *Registry) Touch(id string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.views[id]; ok {
		r.touch(m)
	}
}

// Unmount stops the view's timers, cancels its in-flight refreshes and destroys its charts
func (r *Registry) Unmount(id string) error {
	return r.UnmountFor(id, "")
}

// UnmountFor unmounts a view and records why on the VIEW_UNMOUNTED event.
// ReasonSessionExpired also carries the login redirect.
func (r *Registry) UnmountFor(id, reason string) error {
	r.mu.Lock()
	m, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()

	if !ok {
		return ErrViewNotFound
	}
	r.stop(m)

	data := events.NewViewLifecycleData(events.ViewUnmounted, id, m.view.Page())
	data.Reason = reason
	if reason == ReasonSessionExpired {
		data.Redirect = LoginPage
	}
	r.bus.Publish(id, data)
	r.log.Info().Str("view", id).Str("page", m.view.Page()).Str("reason", reason).Msg("View unmounted")
	return nil
}

// Reap unmounts every view that has no stream subscriber and has not been
// used for the idle timeout. It returns the reclaimed ids.
func (r *Registry) Reap() []string {
	r.mu.RLock()
	idle, now := r.idle, r.now()
	var stale []string
	if idle > 0 {
		for id, m := range r.views {
			if r.bus.SubscriberCount(id) > 0 {
				continue
			}
			if now.Sub(time.Unix(0, m.lastSeen.Load())) >= idle {
				stale = append(stale, id)
			}
		}
	}
	r.mu.RUnlock()

	reaped := make([]string, 0, len(stale))
	for _, id := range stale {
		if err := r.UnmountFor(id, ReasonIdle); err == nil {
			reaped = append(reaped, id)
		}
	}
	if len(reaped) > 0 {
		r.log.Info().Int("views", len(reaped)).Dur("idle", idle).Msg("Reclaimed idle views")
	}
	return reaped
}

// CloseAll unmounts every view
func (r *Registry) CloseAll() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		_ = r.Unmount(id)
	}
}

// Len returns the number of mounted views
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// touch needs r.mu held, read or write
func (r *Registry) touch(m *mounted) {
	m.lastSeen.Store(r.now().UnixNano())
}

func (r *Registry) stop(m *mounted) {
	for _, entry := range m.entries {
		r.sched.Remove(entry)
	}
	m.cancel()
	m.view.Close()
}
