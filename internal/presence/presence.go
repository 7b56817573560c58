// Package presence mirrors the running session to an external status
// surface, such as a chat client's rich presence.
package presence

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/siegfried/focuscharge/internal/timer"
)

// Activity is what gets shown for the current session
type Activity struct {
	Period  timer.Kind
	Details string
	Paused  bool
	Start   time.Time
	// End is zero while paused
	End time.Time
}

func (a Activity) same(b Activity) bool {
	return a.Period == b.Period && a.Details == b.Details && a.Paused == b.Paused &&
		a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// Publisher pushes activities to the external surface
type Publisher interface {
	Publish(Activity) error
	Clear() error
}

// Tracker turns engine events into activity updates. It is a timer.Sink that
// never fails delivery, so a broken publisher cannot dispose an engine.
type Tracker struct {
	publisher Publisher
	logger    hclog.Logger

	enabled bool
	last    *Activity
	mu      sync.Mutex
}

var _ timer.Sink = (*Tracker)(nil)

// NewTracker creates a tracker publishing through p
func NewTracker(p Publisher, enabled bool, logger hclog.Logger) *Tracker {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Tracker{publisher: p, logger: logger, enabled: enabled}
}

// SetEnabled turns publishing on or off. Turning it off clears the activity.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enabled == enabled {
		return
	}
	t.enabled = enabled
	if !enabled {
		t.clearLocked()
	}
}

// Deliver implements timer.Sink. Ticks are ignored.
func (t *Tracker) Deliver(ev timer.Event) error {
	if !ev.Expensive() {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return nil
	}

	act, ok := activityFor(ev.Snapshot)
	if !ok {
		t.clearLocked()
		return nil
	}
	if t.last != nil && t.last.same(act) {
		return nil
	}
	if err := t.publisher.Publish(act); err != nil {
		t.logger.Warn("failed to publish presence", "error", err)
		return nil
	}
	t.last = &act
	return nil
}

// Close clears the published activity
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
}

func (t *Tracker) clearLocked() {
	if t.last == nil {
		return
	}
	if err := t.publisher.Clear(); err != nil {
		t.logger.Warn("failed to clear presence", "error", err)
	}
	t.last = nil
}

func activityFor(s timer.Snapshot) (Activity, bool) {
	if s.Session == timer.KindNone || s.Status == timer.StatusStopped {
		return Activity{}, false
	}

	act := Activity{
		Period:  s.Session,
		Details: details(s.Session),
		Paused:  s.Status == timer.StatusPaused,
	}
	if s.StartedEpochMs > 0 {
		act.Start = time.UnixMilli(s.StartedEpochMs)
	}
	if s.Status == timer.StatusCounting && s.ExpectedFinishEpochMs > 0 {
		act.End = time.UnixMilli(s.ExpectedFinishEpochMs)
	}
	if act.Paused {
		act.Details += " (paused)"
	}
	return act, true
}

func details(k timer.Kind) string {
	switch k {
	case timer.KindWork:
		return "Working"
	case timer.KindBreak:
		return "Taking a Break"
	case timer.KindTransition:
		return "Transitioning"
	default:
		return ""
	}
}

// LogPublisher writes activities to a logger
type LogPublisher struct {
	Logger hclog.Logger
}

// Publish logs the activity
func (p LogPublisher) Publish(a Activity) error {
	args := []interface{}{"period", a.Period.String(), "details", a.Details}
	if !a.Start.IsZero() {
		args = append(args, "start", a.Start.Format(time.RFC3339))
	}
	if !a.End.IsZero() {
		args = append(args, "end", a.End.Format(time.RFC3339))
	}
	p.Logger.Info("presence updated", args...)
	return nil
}

// Clear logs that the activity was removed
func (p LogPublisher) Clear() error {
	p.Logger.Info("presence cleared")
	return nil
}
