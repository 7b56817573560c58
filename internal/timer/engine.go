package timer

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/siegfried/focuscharge/internal/config"
	"github.com/siegfried/focuscharge/internal/preset"
	"github.com/siegfried/focuscharge/internal/stats"
)

const (
	// DefaultTickInterval is how often a counting engine recomputes its countdown
	DefaultTickInterval = 100 * time.Millisecond
	// workFlushInterval batches work-time writes into the ledger
	workFlushInterval = 5 * time.Second
)

// EngineOptions configures an Engine. Only Sink is expected; the rest default.
type EngineOptions struct {
	Sink         Sink
	Notifier     Notifier
	Recorder     Recorder
	Clock        Clock
	TickInterval time.Duration
	Logger       hclog.Logger
}

// durations holds the length of each session kind in seconds
type durations struct {
	work, rest, transition int
}

func durationsFor(s config.Settings, p preset.Preset) durations {
	return durations{
		work:       p.WorkSeconds(),
		rest:       p.BreakSeconds(),
		transition: s.TransitionSeconds(),
	}
}

func (d durations) of(k Kind) int {
	switch k {
	case KindWork:
		return d.work
	case KindBreak:
		return d.rest
	case KindTransition:
		return d.transition
	default:
		return 0
	}
}

// Engine drives the work, break and transition cycle for one surface.
// Remaining time is always derived from wall-clock anchors, so late or
// missed ticks never skew the countdown.
type Engine struct {
	registry *Registry
	ledger   ChargeLedger
	notifier Notifier
	recorder Recorder
	clock    Clock
	interval time.Duration
	logger   hclog.Logger

	sink      Sink
	settings  config.Settings
	preset    preset.Preset
	durations durations

	kind     Kind
	previous Kind
	status   Status
	timeLeft int

	startedAt     time.Time
	pausedAt      time.Time
	pausedTotal   time.Duration
	addedSeconds  float64
	lastWorkFlush time.Time
	chargeUsed    bool

	ticker   Ticker
	stopTick chan struct{}
	disposed bool

	mu sync.Mutex
}

// NewEngine creates a stopped engine and joins it to the registry
func NewEngine(reg *Registry, opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	e := &Engine{
		registry: reg,
		ledger:   reg.ledger,
		sink:     opts.Sink,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		clock:    opts.Clock,
		interval: opts.TickInterval,
		logger:   opts.Logger,
	}
	e.settings, e.preset = reg.join(e)
	e.durations = durationsFor(e.settings, e.preset)
	return e
}

// Start begins a work session. No-op unless stopped.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.status != StatusStopped {
		return
	}

	now := e.clock.Now()
	e.durations = durationsFor(e.settings, e.preset)
	e.kind = KindWork
	e.previous = KindWork
	e.status = StatusCounting
	e.resetAnchorsLocked(now)
	e.timeLeft = e.durations.work

	e.startTickerLocked()
	e.logger.Debug("session started", "preset", e.preset.ID, "seconds", e.timeLeft)
	e.emitLocked(EventAction)
}

// Pause freezes a counting work session
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.kind != KindWork || e.status != StatusCounting {
		return
	}

	now := e.clock.Now()
	if e.chargingEnabled() {
		e.flushWorkTimeLocked(now)
	}
	e.timeLeft = clampSeconds(e.remainingAt(now))
	e.status = StatusPaused
	e.pausedAt = now
	e.emitLocked(EventAction)
}

// Resume continues a paused work session
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.kind != KindWork || e.status != StatusPaused {
		return
	}

	now := e.clock.Now()
	if gap := now.Sub(e.pausedAt); gap > 0 {
		e.pausedTotal += gap
	}
	e.lastWorkFlush = now
	e.status = StatusCounting
	e.emitLocked(EventAction)
}

// Stop ends the current session without completing it
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.status == StatusStopped {
		return
	}

	e.recordLocked(e.clock.Now(), false)
	e.stopTickerLocked()
	e.resetLocked()
	e.emitLocked(EventAction)
}

// AddTime extends a work session. Values of one second or less add exactly
// one second.
func (e *Engine) AddTime(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.kind != KindWork || e.status == StatusStopped {
		return
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}

	if seconds > 1 {
		e.addedSeconds += seconds
	} else {
		e.addedSeconds++
	}
	e.timeLeft = clampSeconds(e.remainingAt(e.clock.Now()))
	e.emitLocked(EventAction)
}

// UseBreakCharge spends a charge to extend the current break. It reports
// whether the ledger accepted the spend.
func (e *Engine) UseBreakCharge() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.kind != KindBreak || e.status == StatusStopped || e.chargeUsed {
		return false
	}
	if !e.chargingEnabled() {
		return false
	}

	if !e.ledger.SpendCharge(e.settings.CooldownBreaks()) {
		return false
	}
	e.chargeUsed = true
	e.addedSeconds += float64(e.settings.ExtensionSeconds())
	e.timeLeft = clampSeconds(e.remainingAt(e.clock.Now()))
	e.logger.Debug("break charge used", "extension", e.settings.ExtensionSeconds())
	e.emitLocked(EventAction)
	return true
}

// Refresh saves the ledger and re-emits the current state
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	if e.ledger != nil {
		if err := e.ledger.Flush(); err != nil {
			e.logger.Error("failed to save charge data", "error", err)
		}
	}
	e.emitLocked(EventAction)
}

// Snapshot returns the current state with the countdown evaluated now
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clock.Now())
}

// Kind returns the current session kind
func (e *Engine) Kind() Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.kind
}

// Status returns the current session status
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Disposed reports whether the engine has been torn down
func (e *Engine) Disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

// Dispose tears the engine down. Safe to call more than once.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disposeLocked()
}

// tick recomputes the countdown and completes the session once it runs out
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed || e.kind == KindNone || e.status != StatusCounting {
		return
	}

	now := e.clock.Now()
	if e.kind == KindWork && e.chargingEnabled() && now.Sub(e.lastWorkFlush) >= workFlushInterval {
		e.flushWorkTimeLocked(now)
	}

	remaining := e.remainingAt(now)
	if remaining <= 0 {
		e.completeLocked(now)
		return
	}
	e.timeLeft = clampSeconds(remaining)
	e.emitLocked(EventTick)
}

// applyConfig takes new settings and preset from the registry and reconciles
// a running session against them
func (e *Engine) applyConfig(s config.Settings, p preset.Preset) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	e.settings = s
	e.preset = p
	e.durations = durationsFor(s, p)

	if e.status == StatusStopped || e.kind == KindNone {
		return
	}

	now := e.clock.Now()
	remaining := e.remainingAt(now)
	if remaining <= 0 {
		e.completeLocked(now)
		return
	}
	e.timeLeft = clampSeconds(remaining)
	e.emitLocked(EventAction)
}

func (e *Engine) completeLocked(now time.Time) {
	if e.kind == KindWork && e.status == StatusCounting && e.chargingEnabled() {
		e.flushWorkTimeLocked(now)
	}
	e.recordLocked(now, true)

	if e.notifier != nil {
		mode := e.settings.NotifyMode()
		e.notifier.Notify(Notification{
			Ended:                      e.kind,
			Transition:                 e.kind == KindTransition,
			RequestSound:               mode == config.NotifsAll || mode == config.NotifsSound,
			RequestVisibleNotification: mode == config.NotifsAll || mode == config.NotifsNotifier,
		})
	}
	e.nextSessionLocked(now)
}

func (e *Engine) nextSessionLocked(now time.Time) {
	if e.kind == KindNone {
		return
	}

	ended := e.kind
	e.chargeUsed = false
	if ended == KindBreak && e.chargingEnabled() {
		e.ledger.RecordBreakCompleted()
	}
	e.durations = durationsFor(e.settings, e.preset)

	switch ended {
	case KindWork, KindBreak:
		e.previous = ended
		if e.settings.TransitionPeriodsEnabled() {
			e.kind = KindTransition
		} else {
			e.kind = ended.opposite()
		}
	case KindTransition:
		e.kind = e.previous.opposite()
	}

	e.status = StatusCounting
	e.resetAnchorsLocked(now)
	e.timeLeft = e.durations.of(e.kind)
	e.logger.Debug("session changed", "from", ended, "to", e.kind, "seconds", e.timeLeft)
	e.emitLocked(EventSessionChange)
}

// remainingAt is duration - elapsed + added, with elapsed frozen while paused
func (e *Engine) remainingAt(now time.Time) float64 {
	ref := now
	if e.status == StatusPaused {
		ref = e.pausedAt
	}
	elapsed := ref.Sub(e.startedAt) - e.pausedTotal
	elapsedSecs := math.Floor(float64(elapsed) / float64(time.Second))
	return float64(e.durations.of(e.kind)) - elapsedSecs + e.addedSeconds
}

// flushWorkTimeLocked credits work time since the last flush. Time past the
// session's end is not work, so a tick that arrives late credits up to the end only.
func (e *Engine) flushWorkTimeLocked(now time.Time) {
	if end := e.sessionEndLocked(); now.After(end) {
		now = end
	}
	secs := now.Sub(e.lastWorkFlush).Seconds()
	e.lastWorkFlush = now
	if secs <= 0 {
		return
	}
	e.ledger.AddWorkTime(secs)
	e.ledger.ConvertAccumulatedWorkTime(e.settings.WorkMinutesPerCharge())
}

// sessionEndLocked is when a counting session runs out
func (e *Engine) sessionEndLocked() time.Time {
	length := float64(e.durations.of(e.kind)) + e.addedSeconds
	return e.startedAt.Add(e.pausedTotal).Add(time.Duration(length * float64(time.Second)))
}

func (e *Engine) chargingEnabled() bool {
	return e.ledger != nil && e.settings.BreakChargingEnabled()
}

func (e *Engine) resetAnchorsLocked(now time.Time) {
	e.startedAt = now
	e.pausedAt = time.Time{}
	e.pausedTotal = 0
	e.addedSeconds = 0
	e.lastWorkFlush = now
	e.chargeUsed = false
}

func (e *Engine) resetLocked() {
	e.kind = KindNone
	e.previous = KindNone
	e.status = StatusStopped
	e.timeLeft = 0
	e.resetAnchorsLocked(time.Time{})
}

func (e *Engine) recordLocked(now time.Time, completed bool) {
	if e.recorder == nil || e.kind == KindNone {
		return
	}
	paused := e.pausedTotal
	if e.status == StatusPaused {
		paused += now.Sub(e.pausedAt)
	}
	rec := stats.SessionRecord{
		ID:             uuid.NewString(),
		Kind:           e.kind.String(),
		StartedAt:      e.startedAt,
		EndedAt:        now,
		PlannedSeconds: e.durations.of(e.kind),
		AddedSeconds:   e.addedSeconds,
		Completed:      completed,
		ChargeUsed:     e.chargeUsed,
		PausedSeconds:  int(paused.Seconds()),
	}
	if err := e.recorder.RecordSession(rec); err != nil {
		e.logger.Error("failed to record session", "kind", rec.Kind, "error", err)
	}
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	snap := Snapshot{
		Session:               e.kind,
		Status:                e.status,
		TimeLeft:              e.timeLeft,
		ChargeUsedThisSession: e.chargeUsed,
	}
	if e.status == StatusCounting {
		snap.TimeLeft = clampSeconds(e.remainingAt(now))
		snap.ExpectedFinishEpochMs = e.sessionEndLocked().UnixMilli()
	}
	if e.kind != KindNone {
		snap.StartedEpochMs = e.startedAt.Add(e.pausedTotal).UnixMilli()
	}

	if e.ledger != nil {
		st := e.ledger.Snapshot()
		cooldown := e.settings.CooldownBreaks()
		snap.ChargesLeft = st.CurrentCharges
		snap.TimeLeftTillNextCharge = st.TimeLeftTillNextCharge
		snap.IsOnCooldown = st.BreakSessionsSinceLastUse < cooldown
		snap.CooldownBreaksLeft = max(0, cooldown-st.BreakSessionsSinceLastUse)
		if threshold := e.settings.WorkMinutesPerCharge() * 60; threshold > 0 {
			snap.ChargeProgressPercentage = math.Min(100, math.Max(0, 100*st.TotalWorkTimeAccumulated/threshold))
		}
	}
	return snap
}

// emitLocked delivers an event to the sink; a failed delivery disposes the engine
func (e *Engine) emitLocked(t EventType) {
	if e.sink == nil {
		return
	}
	ev := Event{Type: t, Snapshot: e.snapshotLocked(e.clock.Now())}
	if err := e.sink.Deliver(ev); err != nil {
		e.logger.Debug("surface gone, disposing engine", "event", t, "error", err)
		e.disposeLocked()
	}
}

func (e *Engine) disposeLocked() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.stopTickerLocked()
	e.resetLocked()
	e.sink = nil
	if e.ledger != nil {
		if err := e.ledger.Flush(); err != nil {
			e.logger.Error("failed to save charge data", "error", err)
		}
	}
	e.registry.leave(e)
}

func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()
	t := e.clock.NewTicker(e.interval)
	stop := make(chan struct{})
	e.ticker = t
	e.stopTick = stop
	go e.loop(t, stop)
}

func (e *Engine) stopTickerLocked() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.stopTick)
	e.ticker = nil
	e.stopTick = nil
}

func (e *Engine) loop(t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-t.C():
			e.tick()
		case <-stop:
			return
		}
	}
}

func clampSeconds(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(v)
}
