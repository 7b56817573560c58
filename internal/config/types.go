package config

import (
	"sort"
	"strconv"
	"strings"
)

// Recognized setting keys
const (
	KeyNotifsFocus                = "notifsFocus"
	KeyTransitionPeriodsEnabled   = "transitionPeriodsEnabled"
	KeyTransitionPeriodDuration   = "transitionPeriodDuration"
	KeyBreakChargingEnabled       = "breakChargingEnabled"
	KeyWorkTimePerCharge          = "workTimePerCharge"
	KeyBreakChargeCooldown        = "breakChargeCooldown"
	KeyBreakChargeExtensionAmount = "breakChargeExtensionAmount"
	KeyDiscordRichPresence        = "discordRichPresence"
	KeyIdlePauseMinutes           = "idlePauseMinutes"
)

// Values accepted by notifsFocus
const (
	NotifsNone     = "none"
	NotifsSound    = "soundOnly"
	NotifsNotifier = "notifsOnly"
	NotifsAll      = "all"
)

var defaults = map[string]string{
	KeyNotifsFocus:                NotifsAll,
	KeyTransitionPeriodsEnabled:   "false",
	KeyTransitionPeriodDuration:   "3",
	KeyBreakChargingEnabled:       "true",
	KeyWorkTimePerCharge:          "60",
	KeyBreakChargeCooldown:        "0",
	KeyBreakChargeExtensionAmount: "10",
	KeyDiscordRichPresence:        "true",
	KeyIdlePauseMinutes:           "0",
}

var boolKeys = map[string]bool{
	KeyTransitionPeriodsEnabled: true,
	KeyBreakChargingEnabled:     true,
	KeyDiscordRichPresence:      true,
}

// Settings is the flat string-valued option map the timer core reads from.
// A Settings value is never mutated in place; use With to derive a new one.
type Settings struct {
	values map[string]string
}

// Defaults returns the settings every fresh install starts with
func Defaults() Settings {
	return FromMap(nil)
}

// FromMap builds Settings from raw values, filling gaps with defaults
func FromMap(raw map[string]string) Settings {
	values := make(map[string]string, len(defaults))
	for k, v := range defaults {
		values[k] = v
	}
	for k, v := range raw {
		values[k] = v
	}
	return Settings{values: values}
}

// Keys returns every recognized setting key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsKnown reports whether key is a recognized setting
func IsKnown(key string) bool {
	_, ok := defaults[key]
	return ok
}

// DefaultValue returns the default for key, or "" when unknown
func DefaultValue(key string) string {
	return defaults[key]
}

// Get returns the raw string value for key
func (s Settings) Get(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaults[key]
}

// Bool is true only for the literal "true"
func (s Settings) Bool(key string) bool {
	return strings.TrimSpace(s.Get(key)) == "true"
}

// Float parses key as a number, falling back to the key's default and then to 0
func (s Settings) Float(key string) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(s.Get(key)), 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(defaults[key], 64); err == nil {
		return v
	}
	return 0
}

// Int truncates Float toward zero
func (s Settings) Int(key string) int {
	return int(s.Float(key))
}

// With returns a copy of s with key set to value
func (s Settings) With(key, value string) Settings {
	next := s.Map()
	next[key] = value
	return Settings{values: next}
}

// Clone returns an independent copy of s
func (s Settings) Clone() Settings {
	return Settings{values: s.Map()}
}

// Map returns a copy of the underlying values
func (s Settings) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	if s.values == nil {
		for k, v := range defaults {
			out[k] = v
		}
	}
	return out
}

// BreakChargingEnabled gates all ledger interaction from the timer
func (s Settings) BreakChargingEnabled() bool { return s.Bool(KeyBreakChargingEnabled) }

// TransitionPeriodsEnabled gates Transition sessions
func (s Settings) TransitionPeriodsEnabled() bool { return s.Bool(KeyTransitionPeriodsEnabled) }

// WorkMinutesPerCharge is the charge threshold in minutes
func (s Settings) WorkMinutesPerCharge() float64 { return s.Float(KeyWorkTimePerCharge) }

// CooldownBreaks is the number of completed breaks required between spends
func (s Settings) CooldownBreaks() int {
	if n := s.Int(KeyBreakChargeCooldown); n > 0 {
		return n
	}
	return 0
}

// ExtensionSeconds is the break extension granted per spent charge
func (s Settings) ExtensionSeconds() int {
	return int(s.Float(KeyBreakChargeExtensionAmount) * 60)
}

// TransitionSeconds is the transition length, 0 when transitions are disabled
func (s Settings) TransitionSeconds() int {
	if !s.TransitionPeriodsEnabled() {
		return 0
	}
	return int(s.Float(KeyTransitionPeriodDuration) * 60)
}

// NotifyMode returns the notifsFocus value
func (s Settings) NotifyMode() string {
	return s.Get(KeyNotifsFocus)
}

// Validate checks every recognized value
func (s Settings) Validate() error {
	for _, key := range Keys() {
		if err := ValidateValue(key, s.Get(key)); err != nil {
			return err
		}
	}
	return nil
}
