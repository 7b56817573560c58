package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// DefaultFileName is the blob name the ledger is stored under
	DefaultFileName = "bCharge.enc"
	// DefaultDebounce is the quiet period before a coalesced save
	DefaultDebounce = time.Second

	// accrualEpsilon absorbs float drift from summing many fractional flushes
	accrualEpsilon = 1e-6
)

// Options configures a Ledger
type Options struct {
	FileName string
	Keys     KeyMaterial
	Debounce time.Duration
	Logger   hclog.Logger
	Now      func() time.Time
}

// Ledger owns the break-charge record. It is safe for concurrent use and is
// meant to be shared by every timer engine in the process.
type Ledger struct {
	store    BlobStore
	name     string
	keys     KeyMaterial
	key      []byte
	debounce time.Duration
	logger   hclog.Logger
	now      func() time.Time

	state     State
	dirty     bool
	saveTimer *time.Timer
	mu        sync.Mutex
}

// New derives the ledger key and loads the stored record
func New(store BlobStore, opts Options) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger: nil blob store")
	}
	if opts.FileName == "" {
		opts.FileName = DefaultFileName
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	key, err := opts.Keys.primaryKey()
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		store:    store,
		name:     opts.FileName,
		keys:     opts.Keys,
		key:      key,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	l.Load()
	return l, nil
}

// Load replaces the in-memory state with the stored record. Missing or
// unreadable records yield the default state; Load never fails.
func (l *Ledger) Load() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelSaveLocked()
	l.dirty = false
	l.state = l.readLocked()
	return l.state
}

func (l *Ledger) readLocked() State {
	now := l.now()

	blob, err := l.store.ReadBytes(l.name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// first run: the next flush creates the file
			l.dirty = true
		} else {
			l.logger.Error("failed to read charge data, using defaults", "error", err)
		}
		return DefaultState(now)
	}

	plain, legacy, err := l.decrypt(blob)
	if err != nil {
		l.logger.Error("failed to load charge data, using defaults", "error", err)
		return DefaultState(now)
	}

	state, err := decodeState(plain, now)
	if err != nil {
		l.logger.Error("malformed charge data, using defaults", "error", err)
		return DefaultState(now)
	}

	if legacy {
		l.logger.Info("charge data recovered with legacy key, re-encrypting")
		l.state = state
		_ = l.saveLocked()
	}
	return state
}

// decrypt checks the tag against the primary key, then the legacy key once
func (l *Ledger) decrypt(blob []byte) ([]byte, bool, error) {
	env, err := split(blob)
	if err != nil {
		return nil, false, err
	}

	if env.verifiedBy(l.key) {
		plain, err := env.open(l.key)
		return plain, false, err
	}

	legacyKey, ok, err := l.keys.legacyKey()
	if err != nil {
		l.logger.Debug("legacy key derivation failed", "error", err)
		return nil, false, ErrIntegrity
	}
	if ok && env.verifiedBy(legacyKey) {
		plain, err := env.open(legacyKey)
		return plain, true, err
	}
	return nil, false, ErrIntegrity
}

// AddWorkTime accrues unconverted work seconds
func (l *Ledger) AddWorkTime(seconds float64) {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.TotalWorkTimeAccumulated += seconds
	if l.state.TotalWorkTimeAccumulated < 0 {
		l.state.TotalWorkTimeAccumulated = 0
	}
	l.state.LastWorkTimeTracked = l.now().UnixMilli()
	l.dirty = true
	l.scheduleSaveLocked()
}

// ConvertAccumulatedWorkTime turns every full threshold of accrued work into a charge
func (l *Ledger) ConvertAccumulatedWorkTime(workMinutesPerCharge float64) {
	if workMinutesPerCharge <= 0 || math.IsNaN(workMinutesPerCharge) || math.IsInf(workMinutesPerCharge, 0) {
		return
	}
	threshold := workMinutesPerCharge * 60

	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.state
	if earned := math.Floor((l.state.TotalWorkTimeAccumulated + accrualEpsilon) / threshold); earned >= 1 {
		l.state.TotalWorkTimeAccumulated -= earned * threshold
		if l.state.TotalWorkTimeAccumulated < accrualEpsilon {
			l.state.TotalWorkTimeAccumulated = 0
		}
		l.state.CurrentCharges = clampCounter(float64(l.state.CurrentCharges) + math.Min(earned, maxCounter))
	}
	l.state.TimeLeftTillNextCharge = math.Max(0, threshold-l.state.TotalWorkTimeAccumulated)
	if l.state != before {
		l.dirty = true
		l.scheduleSaveLocked()
	}
}

// SpendCharge consumes one charge when one is available and the cooldown is
// satisfied. Successful spends are written before returning.
func (l *Ledger) SpendCharge(cooldownBreaksRequired int) bool {
	if cooldownBreaksRequired < 0 {
		cooldownBreaksRequired = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.CurrentCharges <= 0 || l.state.BreakSessionsSinceLastUse < cooldownBreaksRequired {
		return false
	}

	l.state.CurrentCharges--
	l.state.BreakSessionsSinceLastUse = 0
	l.cancelSaveLocked()
	_ = l.saveLocked()
	return true
}

// RecordBreakCompleted advances the cooldown counter and writes immediately
func (l *Ledger) RecordBreakCompleted() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.BreakSessionsSinceLastUse = clampCounter(float64(l.state.BreakSessionsSinceLastUse) + 1)
	l.cancelSaveLocked()
	_ = l.saveLocked()
}

// ReinitializeThreshold recomputes the time left till the next charge without converting
func (l *Ledger) ReinitializeThreshold(workMinutesPerCharge float64) {
	if workMinutesPerCharge <= 0 || math.IsNaN(workMinutesPerCharge) || math.IsInf(workMinutesPerCharge, 0) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	left := math.Max(0, workMinutesPerCharge*60-l.state.TotalWorkTimeAccumulated)
	if left == l.state.TimeLeftTillNextCharge {
		return
	}
	l.state.TimeLeftTillNextCharge = left
	l.dirty = true
	l.scheduleSaveLocked()
}

// Snapshot returns a copy of the current state
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Reset discards all progress and writes the default record
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelSaveLocked()
	l.state = DefaultState(l.now())
	return l.saveLocked()
}

// Flush writes pending changes now, bypassing the debounce. An unchanged
// record is not rewritten.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cancelSaveLocked()
	if !l.dirty {
		return nil
	}
	return l.saveLocked()
}

// Close cancels any pending save and writes the final state
func (l *Ledger) Close() error {
	return l.Flush()
}

func (l *Ledger) scheduleSaveLocked() {
	l.cancelSaveLocked()

	var t *time.Timer
	t = time.AfterFunc(l.debounce, func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		// A newer schedule or a flush superseded this one
		if l.saveTimer != t {
			return
		}
		l.saveTimer = nil
		_ = l.saveLocked()
	})
	l.saveTimer = t
}

func (l *Ledger) cancelSaveLocked() {
	if l.saveTimer != nil {
		l.saveTimer.Stop()
		l.saveTimer = nil
	}
}

func (l *Ledger) saveLocked() error {
	plain, err := json.Marshal(l.state)
	if err != nil {
		l.logger.Error("failed to encode charge data", "error", err)
		return fmt.Errorf("encode charge data: %w", err)
	}

	blob, err := seal(l.key, plain)
	if err != nil {
		l.logger.Error("failed to encrypt charge data", "error", err)
		return fmt.Errorf("encrypt charge data: %w", err)
	}

	if err := l.store.WriteBytes(l.name, blob); err != nil {
		l.logger.Error("failed to save charge data", "error", err)
		return fmt.Errorf("save charge data: %w", err)
	}
	l.dirty = false
	return nil
}
