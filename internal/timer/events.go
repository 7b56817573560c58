package timer

import (
	"github.com/siegfried/focuscharge/internal/stats"
)

// EventType classifies engine events by how much work a surface should do
type EventType string

const (
	// EventTick is the lightweight periodic countdown update
	EventTick EventType = "tick"
	// EventAction follows a control operation or a configuration change
	EventAction EventType = "action"
	// EventSessionChange follows a transition to a new session
	EventSessionChange EventType = "sessionChange"
)

// Snapshot is the view of an engine and the shared ledger at one instant
type Snapshot struct {
	Session                  Kind    `json:"session"`
	Status                   Status  `json:"status"`
	TimeLeft                 int     `json:"timeLeft"`
	ChargesLeft              int     `json:"chargesLeft"`
	TimeLeftTillNextCharge   float64 `json:"timeLeftTillNextCharge"`
	ChargeProgressPercentage float64 `json:"chargeProgressPercentage"`
	IsOnCooldown             bool    `json:"isOnCooldown"`
	CooldownBreaksLeft       int     `json:"cooldownBreaksLeft"`
	ChargeUsedThisSession    bool    `json:"chargeUsedThisSession"`
	// Set only while counting
	ExpectedFinishEpochMs int64 `json:"expectedFinishEpochMs,omitempty"`
	// Effective start of the session, shifted forward by paused time
	StartedEpochMs int64 `json:"startedEpochMs,omitempty"`
}

// Event is one engine update
type Event struct {
	Type     EventType `json:"type"`
	Snapshot Snapshot  `json:"data"`
}

// Expensive reports whether a surface should do a full refresh for this event
func (e Event) Expensive() bool {
	return e.Type != EventTick
}

// Sink receives engine events. A non-nil error means the surface is gone and
// the engine disposes itself.
type Sink interface {
	Deliver(Event) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event) error

// Deliver calls f
func (f SinkFunc) Deliver(ev Event) error { return f(ev) }

// MultiSink delivers to every sink in order and returns the first error
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(ev Event) error {
		var first error
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Deliver(ev); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// Notification asks a notifier to announce the end of a session
type Notification struct {
	Ended                      Kind `json:"sessionKindJustEnded"`
	Transition                 bool `json:"transition"`
	RequestSound               bool `json:"requestSound"`
	RequestVisibleNotification bool `json:"requestVisibleNotification"`
}

// Notifier consumes session-ended notifications
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

// Notify calls f
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder keeps a history of finished sessions
type Recorder interface {
	RecordSession(stats.SessionRecord) error
}
