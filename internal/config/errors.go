package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownSetting is returned when a key is not a recognized setting
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidBool is returned when a boolean setting is not "true" or "false"
	ErrInvalidBool = errors.New("value must be \"true\" or \"false\"")

	// ErrInvalidNumber is returned when a numeric setting does not parse or is negative
	ErrInvalidNumber = errors.New("value must be a non-negative number")

	// ErrInvalidNotifyMode is returned when notifsFocus is not one of the known modes
	ErrInvalidNotifyMode = errors.New("notifsFocus must be one of none, soundOnly, notifsOnly, all")

	// ErrConfigDirCreation is returned when the data directory cannot be created
	ErrConfigDirCreation = errors.New("failed to create config directory")
)

// ValidateValue checks a single key/value pair
func ValidateValue(key, value string) error {
	if !IsKnown(key) {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	value = strings.TrimSpace(value)

	switch {
	case key == KeyNotifsFocus:
		switch value {
		case NotifsNone, NotifsSound, NotifsNotifier, NotifsAll:
			return nil
		}
		return fmt.Errorf("%s: %w", key, ErrInvalidNotifyMode)
	case boolKeys[key]:
		if value != "true" && value != "false" {
			return fmt.Errorf("%s: %w", key, ErrInvalidBool)
		}
		return nil
	default:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%s: %w", key, ErrInvalidNumber)
		}
		return nil
	}
}
