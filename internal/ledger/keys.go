package ledger

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	keySize    = 32
	stableTag  = "focuscharge-stable-v1"
	stableSalt = "focuscharge-stable-salt"
	legacySalt = "focuscharge-v2-salt"

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// KeyMaterial lists the identifiers the ledger key is derived from.
// Legacy may be empty, in which case no fallback is attempted.
type KeyMaterial struct {
	Primary     []string
	PrimarySalt string
	Legacy      []string
	LegacySalt  string
}

// MachineKeyMaterial builds key material from identifiers that are stable for
// one install. The legacy entry reproduces the older derivation that mixed in
// the executable path and version, which change across updates, so recovery
// through it is best effort.
func MachineKeyMaterial(dataDir, exePath, version string) KeyMaterial {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-host"
	}
	return KeyMaterial{
		Primary:     []string{dataDir, host, runtime.GOOS, runtime.GOARCH, stableTag},
		PrimarySalt: stableSalt,
		Legacy:      []string{exePath, version, host, runtime.GOOS, runtime.GOARCH},
		LegacySalt:  legacySalt,
	}
}

// DeriveKey stretches the joined identifiers into a 256-bit key with scrypt
func DeriveKey(parts []string, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(strings.Join(parts, "|")), []byte(salt), scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive ledger key: %w", err)
	}
	return key, nil
}

func (k KeyMaterial) primaryKey() ([]byte, error) {
	return DeriveKey(k.Primary, k.PrimarySalt)
}

func (k KeyMaterial) legacyKey() ([]byte, bool, error) {
	if len(k.Legacy) == 0 {
		return nil, false, nil
	}
	key, err := DeriveKey(k.Legacy, k.LegacySalt)
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}
