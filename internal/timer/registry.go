package timer

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/siegfried/focuscharge/internal/config"
	"github.com/siegfried/focuscharge/internal/ledger"
	"github.com/siegfried/focuscharge/internal/preset"
)

// ChargeLedger is the part of the break-charge ledger the engines use
type ChargeLedger interface {
	AddWorkTime(seconds float64)
	ConvertAccumulatedWorkTime(workMinutesPerCharge float64)
	SpendCharge(cooldownBreaksRequired int) bool
	RecordBreakCompleted()
	ReinitializeThreshold(workMinutesPerCharge float64)
	Snapshot() ledger.State
	Flush() error
}

var _ ChargeLedger = (*ledger.Ledger)(nil)

// Registry holds the process-wide settings and active preset, and the live
// engines that share them and the ledger.
//
// Lock order: the registry never calls into an engine while holding its own
// lock. Broadcasts copy the engine list first.
type Registry struct {
	ledger ChargeLedger
	logger hclog.Logger

	settings config.Settings
	preset   preset.Preset
	engines  map[*Engine]struct{}
	mu       sync.Mutex
}

// NewRegistry creates a registry and primes the ledger threshold
func NewRegistry(l ChargeLedger, settings config.Settings, active preset.Preset, logger hclog.Logger) *Registry {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	r := &Registry{
		ledger:   l,
		logger:   logger,
		settings: settings,
		preset:   active,
		engines:  make(map[*Engine]struct{}),
	}
	r.reinitializeThreshold(settings)
	return r
}

// Settings returns the current settings
func (r *Registry) Settings() config.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// ActivePreset returns the preset used for new sessions
func (r *Registry) ActivePreset() preset.Preset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preset
}

// Ledger returns the shared ledger
func (r *Registry) Ledger() ChargeLedger {
	return r.ledger
}

// SetActivePreset switches every live engine to p
func (r *Registry) SetActivePreset(p preset.Preset) {
	r.mu.Lock()
	r.preset = p
	settings := r.settings
	engines := r.listLocked()
	r.mu.Unlock()

	r.logger.Debug("active preset changed", "preset", p.ID, "engines", len(engines))
	for _, e := range engines {
		e.applyConfig(settings, p)
	}
}

// UpdateSettings swaps the settings for every live engine
func (r *Registry) UpdateSettings(s config.Settings) {
	r.mu.Lock()
	r.settings = s
	active := r.preset
	engines := r.listLocked()
	r.mu.Unlock()

	r.logger.Debug("settings changed", "engines", len(engines))
	for _, e := range engines {
		e.applyConfig(s, active)
	}
	r.reinitializeThreshold(s)
}

// Engines returns the live engines
func (r *Registry) Engines() []*Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked()
}

// DisposeAll disposes every live engine
func (r *Registry) DisposeAll() {
	for _, e := range r.Engines() {
		e.Dispose()
	}
}

func (r *Registry) join(e *Engine) (config.Settings, preset.Preset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e] = struct{}{}
	return r.settings, r.preset
}

func (r *Registry) leave(e *Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, e)
}

func (r *Registry) listLocked() []*Engine {
	out := make([]*Engine, 0, len(r.engines))
	for e := range r.engines {
		out = append(out, e)
	}
	return out
}

func (r *Registry) reinitializeThreshold(s config.Settings) {
	if r.ledger == nil || !s.BreakChargingEnabled() {
		return
	}
	r.ledger.ReinitializeThreshold(s.WorkMinutesPerCharge())
	if err := r.ledger.Flush(); err != nil {
		r.logger.Error("failed to save charge data", "error", err)
	}
}
