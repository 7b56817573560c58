package activity

import (
	"sync"
	"time"

	"github.com/lextoumbourou/idle"
)

// DefaultPollInterval is how often the idle source is sampled
const DefaultPollInterval = 10 * time.Second

// IdleSource reports how long the user has been idle
type IdleSource func() (time.Duration, error)

// Options configures a Monitor
type Options struct {
	Threshold    time.Duration
	PollInterval time.Duration
	Source       IdleSource
}

// Monitor tracks user activity and detects idle periods
type Monitor struct {
	threshold      time.Duration
	pollInterval   time.Duration
	source         IdleSource
	isIdle         bool
	ticker         *time.Ticker
	stopChan       chan struct{}
	onBecameIdle   func()
	onBecameActive func()
	mu             sync.Mutex
	running        bool
}

// NewMonitor creates a new activity monitor. The system idle timer is used
// when no source is given.
func NewMonitor(opts Options) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Source == nil {
		opts.Source = idle.Get
	}
	return &Monitor{
		threshold:    opts.Threshold,
		pollInterval: opts.PollInterval,
		source:       opts.Source,
	}
}

// Start begins monitoring user activity. A zero threshold leaves the monitor off.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running || m.threshold <= 0 {
		return
	}

	m.running = true
	m.stopChan = make(chan struct{})
	m.ticker = time.NewTicker(m.pollInterval)

	go m.monitorLoop(m.ticker, m.stopChan)
}

// Stop stops monitoring user activity
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.running = false
	close(m.stopChan)

	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

// Running reports whether the poll loop is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// IsIdle returns whether the user is currently idle
func (m *Monitor) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isIdle
}

// SetOnBecameIdle sets the callback for when the user becomes idle
func (m *Monitor) SetOnBecameIdle(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBecameIdle = callback
}

// SetOnBecameActive sets the callback for when the user becomes active
func (m *Monitor) SetOnBecameActive(callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBecameActive = callback
}

// SetThreshold changes the idle threshold. It takes effect on the next poll.
func (m *Monitor) SetThreshold(threshold time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

func (m *Monitor) monitorLoop(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			m.checkIdleStatus()
		case <-stop:
			return
		}
	}
}

// checkIdleStatus samples the idle source. A failed sample counts as activity.
func (m *Monitor) checkIdleStatus() {
	idleFor, err := m.source()

	m.mu.Lock()
	nowIdle := err == nil && m.threshold > 0 && idleFor >= m.threshold
	if nowIdle == m.isIdle {
		m.mu.Unlock()
		return
	}
	m.isIdle = nowIdle
	callback := m.onBecameActive
	if nowIdle {
		callback = m.onBecameIdle
	}
	m.mu.Unlock()

	if callback != nil {
		callback()
	}
}
