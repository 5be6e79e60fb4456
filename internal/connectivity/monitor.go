// Package connectivity tracks the online/offline state of the application.
// The state is fed by transition events — reported by the UI process through
// the bridge, or by the optional background reachability probe — never
// sampled ad hoc by business code: services receive an explicit flag.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Monitor holds the current connectivity status and fires the registered
// reconnect callback exactly once per offline→online transition, after a
// settle delay so a still-stabilizing connection is not raced.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	synced      bool // a sync pass ran (or is scheduled past settle) since coming online
	settle      time.Duration
	onReconnect func()
	timer       *time.Timer
}

// NewMonitor starts in the given state. No reconnect fires until the first
// offline→online edge observed through SetOnline.
func NewMonitor(settle time.Duration, startOnline bool) *Monitor {
	return &Monitor{online: startOnline, settle: settle}
}

// OnReconnect registers the callback scheduled on offline→online edges
// (in practice, the sync engine's drain). Must be set before events flow.
func (m *Monitor) OnReconnect(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnect = fn
}

// IsOnline returns the current status snapshot.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline consumes one transition event. Repeated reports of the same
// state are no-ops. Going offline resets the synced-since-online flag and
// cancels a settle timer that has not fired yet, so a flapping connection
// triggers at most one pass per stable reconnection.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if online == m.online {
		return
	}
	m.online = online

	if !online {
		log.Info().Msg("connectivity: offline")
		m.synced = false
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		return
	}

	log.Info().Dur("settle", m.settle).Msg("connectivity: online, scheduling sync pass")
	if m.synced || m.onReconnect == nil {
		return
	}
	m.timer = time.AfterFunc(m.settle, m.fireReconnect)
}

// fireReconnect runs on the settle timer. The connection may have dropped
// again while we waited; in that case the next reconnection reschedules.
func (m *Monitor) fireReconnect() {
	m.mu.Lock()
	if !m.online || m.synced {
		m.mu.Unlock()
		return
	}
	m.synced = true
	fn := m.onReconnect
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// StartProbe polls the given reachability check and feeds the results into
// SetOnline. It complements (does not replace) UI-reported events: both
// funnel through the same edge detection. Blocks until ctx is done.
func (m *Monitor) StartProbe(ctx context.Context, interval time.Duration, check func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("connectivity: probe started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connectivity: probe stopped")
			return ctx.Err()
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			err := check(probeCtx)
			cancel()
			m.SetOnline(err == nil)
		}
	}
}
