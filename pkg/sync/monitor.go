package sync

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultSyncInterval is the periodic retry cadence for the outbox.
const DefaultSyncInterval = 5 * time.Second

// Monitor tracks connectivity and foreground visibility and turns raw
// platform signals into edge-triggered callbacks. It also drives the
// periodic sync tick, which fires only while online. The monitor holds no
// order data and performs no I/O of its own.
type Monitor struct {
	mu       sync.Mutex
	interval time.Duration
	online   bool
	visible  bool

	onOnline  []func()
	onOffline []func()
	onVisible []func()
	onTick    []func()

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMonitor creates a monitor. The initial state is offline and visible;
// platform glue pushes the real state via SetOnline/SetVisible.
func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Monitor{
		interval: interval,
		visible:  true,
	}
}

// Online reports the last known connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline registers a callback for the offline-to-online edge.
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnOffline registers a callback for the online-to-offline edge.
func (m *Monitor) OnOffline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// OnVisible registers a callback for the app regaining foreground
// visibility while online.
func (m *Monitor) OnVisible(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onVisible = append(m.onVisible, fn)
}

// OnTick registers a callback for the periodic sync timer. Ticks are
// suppressed while offline.
func (m *Monitor) OnTick(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTick = append(m.onTick, fn)
}

// SetOnline feeds the platform connectivity signal. Repeating the current
// state fires nothing; only transitions do.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	var fns []func()
	if online {
		log.Printf("[Monitor] network is ONLINE")
		fns = append(fns, m.onOnline...)
	} else {
		log.Printf("[Monitor] network is OFFLINE")
		fns = append(fns, m.onOffline...)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SetVisible feeds the platform visibility signal. Regaining visibility
// while online fires the visible callbacks; anything else is an edge we
// don't act on.
func (m *Monitor) SetVisible(visible bool) {
	m.mu.Lock()
	if m.visible == visible {
		m.mu.Unlock()
		return
	}
	m.visible = visible
	var fns []func()
	if visible && m.online {
		log.Printf("[Monitor] app visible while online")
		fns = append(fns, m.onVisible...)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Start runs the periodic tick loop until ctx is cancelled or Stop is
// called. The loop lives for the process lifetime in normal operation.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	loopCtx := m.ctx
	m.mu.Unlock()

	ticker := time.NewTicker(m.interval)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				log.Printf("[Monitor] tick loop stopped")
				return
			case <-ticker.C:
				m.tick()
			}
		}
	}()

	log.Printf("[Monitor] started: interval=%v", m.interval)
}

func (m *Monitor) tick() {
	m.mu.Lock()
	if !m.online {
		m.mu.Unlock()
		return
	}
	fns := append([]func(){}, m.onTick...)
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Stop halts the tick loop. Registered callbacks stay in place.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}
