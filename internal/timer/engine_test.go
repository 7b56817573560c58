package timer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/siegfried/focuscharge/internal/config"
	"github.com/siegfried/focuscharge/internal/ledger"
	"github.com/siegfried/focuscharge/internal/preset"
	"github.com/siegfried/focuscharge/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_760_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Tickers never fire; tests drive tick directly
func (c *fakeClock) NewTicker(time.Duration) Ticker {
	return &fakeTicker{ch: make(chan time.Time)}
}

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop() {}

var errSurfaceClosed = errors.New("surface closed")

type recordingSink struct {
	events []Event
	fail   bool
	mu     sync.Mutex
}

func (s *recordingSink) Deliver(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errSurfaceClosed
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) count(t EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *recordingSink) last() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

type recordingNotifier struct {
	notes []Notification
	mu    sync.Mutex
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

type memoryRecorder struct {
	records []stats.SessionRecord
	mu      sync.Mutex
}

func (r *memoryRecorder) RecordSession(rec stats.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func (r *memoryRecorder) all() []stats.SessionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stats.SessionRecord(nil), r.records...)
}

var pomodoro = preset.Preset{ID: "test", Name: "Test", WorkDurationMinutes: 25, BreakDurationMinutes: 5}

type fixture struct {
	clock    *fakeClock
	ledger   *ledger.Ledger
	registry *Registry
	engine   *Engine
	sink     *recordingSink
	notifier *recordingNotifier
	recorder *memoryRecorder
}

func newTestLedger(t *testing.T, clock *fakeClock) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(ledger.NewMemoryStore(), ledger.Options{
		Keys:     ledger.KeyMaterial{Primary: []string{"timer-test"}, PrimarySalt: "timer-salt"},
		Debounce: time.Hour,
		Now:      clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func newFixture(t *testing.T, settings config.Settings, p preset.Preset) *fixture {
	t.Helper()
	clock := newFakeClock()
	f := &fixture{
		clock:    clock,
		ledger:   newTestLedger(t, clock),
		sink:     &recordingSink{},
		notifier: &recordingNotifier{},
		recorder: &memoryRecorder{},
	}
	f.registry = NewRegistry(f.ledger, settings, p, nil)
	t.Cleanup(f.registry.DisposeAll)
	f.engine = f.newEngine(f.sink)
	return f
}

func (f *fixture) newEngine(sink Sink) *Engine {
	return NewEngine(f.registry, EngineOptions{
		Sink:     sink,
		Notifier: f.notifier,
		Recorder: f.recorder,
		Clock:    f.clock,
	})
}

// run advances the clock by d in steps, ticking after each one
func (f *fixture) run(d, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; {
		s := min(step, d-elapsed)
		f.clock.Advance(s)
		f.engine.tick()
		elapsed += s
	}
}

func (f *fixture) jump(d time.Duration) {
	f.clock.Advance(d)
	f.engine.tick()
}

func TestStartCountsDownFromWallClock(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)

	f.engine.Start()
	snap := f.engine.Snapshot()
	assert.Equal(t, KindWork, snap.Session)
	assert.Equal(t, StatusCounting, snap.Status)
	assert.Equal(t, 1500, snap.TimeLeft)
	assert.Equal(t, EventAction, f.sink.last().Type)

	f.jump(61 * time.Second)
	assert.Equal(t, EventTick, f.sink.last().Type)
	assert.Equal(t, 1439, f.sink.last().Snapshot.TimeLeft)
	assert.False(t, f.sink.last().Expensive())

	// sub-second progress does not change the displayed seconds
	f.clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 1439, f.engine.Snapshot().TimeLeft)
}

func TestElapsedTimeIsIndependentOfTickGranularity(t *testing.T) {
	fine := newFixture(t, config.Defaults(), pomodoro)
	coarse := newFixture(t, config.Defaults(), pomodoro)

	fine.engine.Start()
	coarse.engine.Start()

	fine.run(100*time.Second, 100*time.Millisecond)
	coarse.jump(100 * time.Second)

	fine.engine.Pause()
	coarse.engine.Pause()

	fine.run(40*time.Second, time.Second)
	coarse.clock.Advance(40 * time.Second)

	fine.engine.Resume()
	coarse.engine.Resume()

	fine.run(200*time.Second, 100*time.Millisecond)
	coarse.jump(200 * time.Second)

	fine.engine.AddTime(30)
	coarse.engine.AddTime(30)

	// duration - (E - P) + added
	want := 1500 - (340 - 40) + 30
	assert.Equal(t, want, fine.engine.Snapshot().TimeLeft)
	assert.Equal(t, want, coarse.engine.Snapshot().TimeLeft)

	assert.InDelta(t, 300, fine.ledger.Snapshot().TotalWorkTimeAccumulated, 1e-6)
	assert.InDelta(t, 300, coarse.ledger.Snapshot().TotalWorkTimeAccumulated, 1e-6)
}

func TestPauseFreezesCountdown(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.jump(60 * time.Second)

	f.engine.Pause()
	assert.Equal(t, StatusPaused, f.engine.Status())
	assert.Equal(t, 1440, f.engine.Snapshot().TimeLeft)
	assert.Zero(t, f.engine.Snapshot().ExpectedFinishEpochMs)
	assert.InDelta(t, 60, f.ledger.Snapshot().TotalWorkTimeAccumulated, 1e-6)

	f.jump(10 * time.Minute)
	assert.Equal(t, 1440, f.engine.Snapshot().TimeLeft)
	assert.InDelta(t, 60, f.ledger.Snapshot().TotalWorkTimeAccumulated, 1e-6)

	f.engine.Resume()
	f.jump(60 * time.Second)
	assert.Equal(t, 1380, f.engine.Snapshot().TimeLeft)
}

func TestAddTimeFloorsSmallValuesToOneSecond(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	f.engine.AddTime(0.5)
	f.engine.mu.Lock()
	added := f.engine.addedSeconds
	f.engine.mu.Unlock()
	assert.Equal(t, 1.0, added)
	assert.Equal(t, 1501, f.engine.Snapshot().TimeLeft)

	f.engine.AddTime(90)
	assert.Equal(t, 1591, f.engine.Snapshot().TimeLeft)

	f.engine.Pause()
	f.engine.AddTime(30)
	assert.Equal(t, 1621, f.engine.Snapshot().TimeLeft)
	assert.Equal(t, 1621, f.sink.last().Snapshot.TimeLeft)
}

func TestControlsAreGuardedNoOps(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)

	f.engine.Pause()
	f.engine.Resume()
	f.engine.Stop()
	f.engine.AddTime(60)
	assert.False(t, f.engine.UseBreakCharge())
	f.engine.tick()
	assert.Zero(t, f.sink.len())

	f.engine.Start()
	events := f.sink.len()
	f.engine.Start()
	f.engine.Resume()
	assert.False(t, f.engine.UseBreakCharge())
	assert.Equal(t, events, f.sink.len())

	// breaks cannot be paused or extended with AddTime
	f.jump(25 * time.Minute)
	require.Equal(t, KindBreak, f.engine.Kind())
	events = f.sink.len()
	f.engine.Pause()
	f.engine.AddTime(120)
	assert.Equal(t, events, f.sink.len())
	assert.Equal(t, StatusCounting, f.engine.Status())
	assert.Equal(t, 300, f.engine.Snapshot().TimeLeft)
}

func TestCycleWithTransitions(t *testing.T) {
	settings := config.Defaults().
		With(config.KeyTransitionPeriodsEnabled, "true").
		With(config.KeyTransitionPeriodDuration, "1")
	f := newFixture(t, settings, pomodoro)
	f.engine.Start()

	steps := []struct {
		advance  time.Duration
		kind     Kind
		previous Kind
		timeLeft int
	}{
		{25 * time.Minute, KindTransition, KindWork, 60},
		{time.Minute, KindBreak, KindWork, 300},
		{5 * time.Minute, KindTransition, KindBreak, 60},
		{time.Minute, KindWork, KindBreak, 1500},
		{25 * time.Minute, KindTransition, KindWork, 60},
	}
	for i, step := range steps {
		f.jump(step.advance)
		f.engine.mu.Lock()
		previous := f.engine.previous
		f.engine.mu.Unlock()

		assert.Equal(t, step.kind, f.engine.Kind(), "step %d", i)
		assert.Equal(t, step.previous, previous, "step %d", i)
		assert.Equal(t, step.timeLeft, f.engine.Snapshot().TimeLeft, "step %d", i)
		assert.Equal(t, EventSessionChange, f.sink.last().Type, "step %d", i)
	}

	notes := f.notifier.all()
	require.Len(t, notes, len(steps))
	ended := make([]Kind, len(notes))
	for i, n := range notes {
		ended[i] = n.Ended
		assert.Equal(t, n.Ended == KindTransition, n.Transition)
	}
	assert.Equal(t, []Kind{KindWork, KindTransition, KindBreak, KindTransition, KindWork}, ended)
}

func TestCycleWithoutTransitions(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	f.jump(25 * time.Minute)
	assert.Equal(t, KindBreak, f.engine.Kind())
	f.jump(5 * time.Minute)
	assert.Equal(t, KindWork, f.engine.Kind())
	f.jump(25 * time.Minute)
	assert.Equal(t, KindBreak, f.engine.Kind())

	records := f.recorder.all()
	require.Len(t, records, 3)
	for i, kind := range []string{"work", "break", "work"} {
		assert.Equal(t, kind, records[i].Kind)
		assert.True(t, records[i].Completed)
	}
	assert.Equal(t, 1, f.ledger.Snapshot().BreakSessionsSinceLastUse)
}

func TestLateTickCompletesOnlyOneSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	// far past the work and the following break
	f.jump(3 * time.Hour)
	assert.Equal(t, KindBreak, f.engine.Kind())
	assert.Equal(t, 300, f.engine.Snapshot().TimeLeft)
	assert.Len(t, f.notifier.all(), 1)
}

func TestLateTickCreditsOnlyTheWorkSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	// machine asleep through the whole work session
	f.jump(3 * time.Hour)
	assert.Equal(t, KindBreak, f.engine.Kind())

	st := f.ledger.Snapshot()
	assert.Equal(t, 0, st.CurrentCharges)
	assert.InDelta(t, 1500, st.TotalWorkTimeAccumulated, 1e-6)
}

func TestLateTickCreditsAddedTime(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.engine.AddTime(120)

	f.jump(2 * time.Hour)
	assert.Equal(t, KindBreak, f.engine.Kind())
	assert.InDelta(t, 1620, f.ledger.Snapshot().TotalWorkTimeAccumulated, 1e-6)
}

func TestOneWorkSessionAccruesWithoutCharge(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	f.run(25*time.Minute, time.Second)

	assert.Len(t, f.notifier.all(), 1)
	assert.Equal(t, 1, f.sink.count(EventSessionChange))
	st := f.ledger.Snapshot()
	assert.InDelta(t, 1500, st.TotalWorkTimeAccumulated, 1e-6)
	assert.Equal(t, 0, st.CurrentCharges)
	assert.Equal(t, KindBreak, f.engine.Kind())
	assert.Equal(t, 300, f.engine.Snapshot().TimeLeft)
}

func TestThirdWorkSessionEarnsOneCharge(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()

	f.run(25*time.Minute, time.Second)
	f.run(5*time.Minute, time.Second)
	f.run(25*time.Minute, time.Second)

	st := f.ledger.Snapshot()
	assert.Equal(t, 0, st.CurrentCharges)
	assert.InDelta(t, 3000, st.TotalWorkTimeAccumulated, 1e-6)

	f.run(5*time.Minute, time.Second)
	f.run(25*time.Minute, time.Second)

	st = f.ledger.Snapshot()
	assert.Equal(t, 1, st.CurrentCharges)
	assert.InDelta(t, 900, st.TotalWorkTimeAccumulated, 1e-6)
	assert.InDelta(t, 2700, st.TimeLeftTillNextCharge, 1e-6)
	assert.Equal(t, 1, f.engine.Snapshot().ChargesLeft)
}

func seedCharges(t *testing.T, l *ledger.Ledger, n int) {
	t.Helper()
	l.AddWorkTime(float64(n) * 3600)
	l.ConvertAccumulatedWorkTime(60)
	require.Equal(t, n, l.Snapshot().CurrentCharges)
}

func TestBreakChargeUsableOncePerSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	seedCharges(t, f.ledger, 3)

	f.engine.Start()
	f.jump(25 * time.Minute)
	require.Equal(t, KindBreak, f.engine.Kind())

	require.True(t, f.engine.UseBreakCharge())
	assert.Equal(t, 300+600, f.engine.Snapshot().TimeLeft)
	assert.True(t, f.engine.Snapshot().ChargeUsedThisSession)
	assert.False(t, f.engine.UseBreakCharge())
	assert.Equal(t, 2, f.ledger.Snapshot().CurrentCharges)

	f.jump(15 * time.Minute)
	require.Equal(t, KindWork, f.engine.Kind())
	assert.False(t, f.engine.Snapshot().ChargeUsedThisSession)

	f.jump(25 * time.Minute)
	require.Equal(t, KindBreak, f.engine.Kind())
	assert.True(t, f.engine.UseBreakCharge())
	assert.Equal(t, 1, f.ledger.Snapshot().CurrentCharges)
}

func TestBreakChargeRespectsCooldown(t *testing.T) {
	settings := config.Defaults().With(config.KeyBreakChargeCooldown, "1")
	f := newFixture(t, settings, pomodoro)
	seedCharges(t, f.ledger, 2)

	f.engine.Start()
	f.jump(25 * time.Minute)

	snap := f.engine.Snapshot()
	assert.True(t, snap.IsOnCooldown)
	assert.Equal(t, 1, snap.CooldownBreaksLeft)
	assert.False(t, f.engine.UseBreakCharge())

	f.jump(5 * time.Minute)
	f.jump(25 * time.Minute)
	require.Equal(t, KindBreak, f.engine.Kind())
	assert.False(t, f.engine.Snapshot().IsOnCooldown)
	assert.True(t, f.engine.UseBreakCharge())
	assert.Equal(t, 1, f.ledger.Snapshot().CurrentCharges)
}

func TestDisabledChargingLeavesLedgerAlone(t *testing.T) {
	settings := config.Defaults().With(config.KeyBreakChargingEnabled, "false")
	f := newFixture(t, settings, pomodoro)
	seedCharges(t, f.ledger, 1)
	before := f.ledger.Snapshot()

	f.engine.Start()
	f.run(25*time.Minute, 5*time.Second)
	assert.False(t, f.engine.UseBreakCharge())
	f.jump(5 * time.Minute)

	after := f.ledger.Snapshot()
	assert.Equal(t, before.CurrentCharges, after.CurrentCharges)
	assert.Equal(t, before.TotalWorkTimeAccumulated, after.TotalWorkTimeAccumulated)
	assert.Equal(t, before.BreakSessionsSinceLastUse, after.BreakSessionsSinceLastUse)
}

func TestStopResetsAndRecordsIncompleteSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.jump(time.Minute)

	f.engine.Stop()
	snap := f.engine.Snapshot()
	assert.Equal(t, KindNone, snap.Session)
	assert.Equal(t, StatusStopped, snap.Status)
	assert.Zero(t, snap.TimeLeft)
	assert.Zero(t, snap.StartedEpochMs)
	assert.Equal(t, EventAction, f.sink.last().Type)

	records := f.recorder.all()
	require.Len(t, records, 1)
	assert.False(t, records[0].Completed)
	assert.Equal(t, time.Minute, records[0].Duration())

	events := f.sink.len()
	f.engine.Stop()
	assert.Equal(t, events, f.sink.len())

	f.engine.Start()
	assert.Equal(t, 1500, f.engine.Snapshot().TimeLeft)
}

func TestStoppedSessionRecordsPausedTime(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.jump(time.Minute)
	f.engine.Pause()
	f.clock.Advance(2 * time.Minute)

	f.engine.Stop()
	records := f.recorder.all()
	require.Len(t, records, 1)
	assert.Equal(t, 3*time.Minute, records[0].Duration())
	assert.Equal(t, 120, records[0].PausedSeconds)
	assert.Equal(t, time.Minute, records[0].ActiveDuration())
}

func TestDeliveryFailureDisposesEngine(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	require.Len(t, f.registry.Engines(), 1)

	f.sink.fail = true
	require.NotPanics(t, f.engine.Start)

	assert.True(t, f.engine.Disposed())
	assert.Empty(t, f.registry.Engines())
	assert.Equal(t, KindNone, f.engine.Kind())

	f.engine.Start()
	assert.Equal(t, StatusStopped, f.engine.Status())
	assert.NotPanics(t, f.engine.Dispose)
}

func TestDisposeIsIdempotent(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.jump(30 * time.Second)

	f.engine.Dispose()
	f.engine.Dispose()
	assert.True(t, f.engine.Disposed())
	assert.Empty(t, f.registry.Engines())

	events := f.sink.len()
	f.engine.tick()
	f.engine.Refresh()
	assert.Equal(t, events, f.sink.len())
}

func TestPresetChangeReconcilesRunningSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	idle := f.newEngine(&recordingSink{})
	f.engine.Start()
	f.jump(20 * time.Minute)

	longer := preset.Preset{ID: "long", WorkDurationMinutes: 45, BreakDurationMinutes: 10}
	f.registry.SetActivePreset(longer)
	assert.Equal(t, KindWork, f.engine.Kind())
	assert.Equal(t, 45*60-20*60, f.engine.Snapshot().TimeLeft)
	assert.Equal(t, EventAction, f.sink.last().Type)

	shorter := preset.Preset{ID: "short", WorkDurationMinutes: 15, BreakDurationMinutes: 3}
	f.registry.SetActivePreset(shorter)
	assert.Equal(t, KindBreak, f.engine.Kind())
	assert.Equal(t, 180, f.engine.Snapshot().TimeLeft)
	assert.Equal(t, EventSessionChange, f.sink.last().Type)

	assert.Equal(t, StatusStopped, idle.Status())
	idle.Start()
	assert.Equal(t, 900, idle.Snapshot().TimeLeft)
}

func TestPresetChangeWhilePausedCompletesSession(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.engine.Start()
	f.jump(20 * time.Minute)
	f.engine.Pause()

	f.registry.SetActivePreset(preset.Preset{ID: "tiny", WorkDurationMinutes: 10, BreakDurationMinutes: 2})
	assert.Equal(t, KindBreak, f.engine.Kind())
	assert.Equal(t, StatusCounting, f.engine.Status())
	assert.Equal(t, 120, f.engine.Snapshot().TimeLeft)
}

func TestUpdateSettingsReinitializesThreshold(t *testing.T) {
	f := newFixture(t, config.Defaults(), pomodoro)
	f.ledger.AddWorkTime(600)

	f.registry.UpdateSettings(config.Defaults().With(config.KeyWorkTimePerCharge, "30"))
	assert.InDelta(t, 1200, f.ledger.Snapshot().TimeLeftTillNextCharge, 1e-9)
	assert.Equal(t, 0, f.ledger.Snapshot().CurrentCharges)
	assert.Equal(t, "30", f.registry.Settings().Get(config.KeyWorkTimePerCharge))
}

func TestSnapshotReportsChargeProgress(t *testing.T) {
	settings := config.Defaults().With(config.KeyBreakChargeCooldown, "2")
	f := newFixture(t, settings, pomodoro)
	f.ledger.AddWorkTime(1800)
	f.ledger.ConvertAccumulatedWorkTime(60)

	f.engine.Start()
	snap := f.engine.Snapshot()
	assert.InDelta(t, 50, snap.ChargeProgressPercentage, 1e-9)
	assert.InDelta(t, 1800, snap.TimeLeftTillNextCharge, 1e-9)
	assert.True(t, snap.IsOnCooldown)
	assert.Equal(t, 2, snap.CooldownBreaksLeft)
	assert.Equal(t, f.clock.Now().Add(1500*time.Second).UnixMilli(), snap.ExpectedFinishEpochMs)
	assert.Equal(t, f.clock.Now().UnixMilli(), snap.StartedEpochMs)
}

func TestNotificationFollowsNotifyMode(t *testing.T) {
	tests := []struct {
		mode    string
		sound   bool
		visible bool
	}{
		{config.NotifsAll, true, true},
		{config.NotifsSound, true, false},
		{config.NotifsNotifier, false, true},
		{config.NotifsNone, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			f := newFixture(t, config.Defaults().With(config.KeyNotifsFocus, tt.mode), pomodoro)
			f.engine.Start()
			f.jump(25 * time.Minute)

			notes := f.notifier.all()
			require.Len(t, notes, 1)
			assert.Equal(t, KindWork, notes[0].Ended)
			assert.Equal(t, tt.sound, notes[0].RequestSound)
			assert.Equal(t, tt.visible, notes[0].RequestVisibleNotification)
		})
	}
}

func TestKindAndStatusText(t *testing.T) {
	for _, k := range []Kind{KindNone, KindWork, KindBreak, KindTransition} {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	var s Status
	require.NoError(t, s.UnmarshalText([]byte("paused")))
	assert.Equal(t, StatusPaused, s)
	assert.Error(t, s.UnmarshalText([]byte("sleeping")))
}
