// Package sync holds the offline-first reconciliation core: the connectivity
// monitor, the conflict policy, and the orchestrator that pushes pending
// local mutations to the remote store.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/offnote/notesync/internal/logging"
)

// Pinger answers whether the remote store is reachable right now.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor owns the single `online` boolean and turns the raw reachability
// signal into edge-triggered transition events: registered callbacks fire
// exactly once per transition, never on repeated signals of the same state.
//
// BecameOnline is the sole automatic trigger for a sync pass; BecameOffline
// only updates observable status.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	log      logging.Logger

	mu        sync.Mutex
	online    bool
	onOnline  []func(ctx context.Context)
	onOffline []func(ctx context.Context)
}

// NewMonitor returns a monitor that probes with pinger every interval once
// started. It begins offline; the first successful probe flips it.
func NewMonitor(pinger Pinger, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		log:      log.With("component", "monitor"),
	}
}

// Online reports the current connectivity status.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnBecameOnline registers a callback fired on each offline→online edge.
// Callbacks run on the monitor's goroutine, one at a time.
func (m *Monitor) OnBecameOnline(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnBecameOffline registers a callback fired on each online→offline edge.
func (m *Monitor) OnBecameOffline(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// Set records a connectivity observation. Repeats of the current state are
// dropped; a transition dispatches the matching callbacks.
func (m *Monitor) Set(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	var callbacks []func(ctx context.Context)
	if online {
		callbacks = append(callbacks, m.onOnline...)
	} else {
		callbacks = append(callbacks, m.onOffline...)
	}
	m.mu.Unlock()

	if online {
		m.log.Info(ctx, "connection restored")
	} else {
		m.log.Info(ctx, "connection lost, entering offline mode")
	}
	for _, fn := range callbacks {
		fn(ctx)
	}
}

// Start probes reachability on a ticker until ctx is cancelled. Blocking;
// run it on its own goroutine.
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.pinger.Ping(ctx)
	m.Set(ctx, err == nil)
}
