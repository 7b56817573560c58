package ledger

import (
	"encoding/json"
	"math"
	"time"
)

const (
	maxCounter           = 999
	currentSchemaVersion = 1
	defaultThresholdSecs = 60 * 60
)

// State is the durable reward record. Values returned by the ledger are copies.
type State struct {
	CurrentCharges            int     `json:"currentCharges"`
	TimeLeftTillNextCharge    float64 `json:"timeLeftTillNextCharge"`
	BreakSessionsSinceLastUse int     `json:"breakChargesSinceLastUse"`
	TotalWorkTimeAccumulated  float64 `json:"totalWorkTimeAccumulated"`
	LastWorkTimeTracked       int64   `json:"lastWorkTimeTracked"`
	Version                   int     `json:"version"`
}

// DefaultState is what a fresh or unreadable ledger starts from
func DefaultState(now time.Time) State {
	return State{
		TimeLeftTillNextCharge: defaultThresholdSecs,
		LastWorkTimeTracked:    now.UnixMilli(),
		Version:                currentSchemaVersion,
	}
}

// storedState tolerates missing or fractional fields in older files
type storedState struct {
	CurrentCharges            *float64 `json:"currentCharges"`
	TimeLeftTillNextCharge    *float64 `json:"timeLeftTillNextCharge"`
	BreakSessionsSinceLastUse *float64 `json:"breakChargesSinceLastUse"`
	TotalWorkTimeAccumulated  *float64 `json:"totalWorkTimeAccumulated"`
	LastWorkTimeTracked       *float64 `json:"lastWorkTimeTracked"`
	Version                   *float64 `json:"version"`
}

// decodeState parses a plaintext record, default-filling and clamping fields
func decodeState(data []byte, now time.Time) (State, error) {
	var raw storedState
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, err
	}

	s := DefaultState(now)
	if v, ok := finite(raw.CurrentCharges); ok {
		s.CurrentCharges = clampCounter(v)
	}
	if v, ok := finite(raw.BreakSessionsSinceLastUse); ok {
		s.BreakSessionsSinceLastUse = clampCounter(v)
	}
	if v, ok := finite(raw.TotalWorkTimeAccumulated); ok && v > 0 {
		s.TotalWorkTimeAccumulated = v
	}
	if v, ok := finite(raw.TimeLeftTillNextCharge); ok && v >= 0 {
		s.TimeLeftTillNextCharge = v
	}
	if v, ok := finite(raw.LastWorkTimeTracked); ok && v > 0 {
		s.LastWorkTimeTracked = int64(v)
	}
	if v, ok := finite(raw.Version); ok && v >= 1 {
		s.Version = int(v)
	}
	return migrate(s), nil
}

// migrate upgrades older schema versions in place. Version 1 is current.
func migrate(s State) State {
	if s.Version < currentSchemaVersion {
		s.Version = currentSchemaVersion
	}
	return s
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func clampCounter(v float64) int {
	if v < 0 {
		return 0
	}
	if v > maxCounter {
		return maxCounter
	}
	return int(v)
}
