package timer

import "fmt"

// Kind identifies which period a session is counting down
type Kind int

const (
	// KindNone means no session exists (the engine is stopped)
	KindNone Kind = iota
	// KindWork is a focus period
	KindWork
	// KindBreak is a rest period
	KindBreak
	// KindTransition is the optional buffer between work and break
	KindTransition
)

// String returns the lowercase name used in events and logs
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindWork:
		return "work"
	case KindBreak:
		return "break"
	case KindTransition:
		return "transition"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*k = KindNone
	case "work":
		*k = KindWork
	case "break":
		*k = KindBreak
	case "transition":
		*k = KindTransition
	default:
		return fmt.Errorf("unknown session kind %q", text)
	}
	return nil
}

// opposite flips between work and break
func (k Kind) opposite() Kind {
	if k == KindWork {
		return KindBreak
	}
	return KindWork
}

// Status is whether the current session is counting
type Status int

const (
	// StatusStopped means no session is running
	StatusStopped Status = iota
	// StatusCounting means the countdown is live
	StatusCounting
	// StatusPaused means a work session is frozen
	StatusPaused
)

// String returns the lowercase name used in events and logs
func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCounting:
		return "counting"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stopped":
		*s = StatusStopped
	case "counting":
		*s = StatusCounting
	case "paused":
		*s = StatusPaused
	default:
		return fmt.Errorf("unknown session status %q", text)
	}
	return nil
}
