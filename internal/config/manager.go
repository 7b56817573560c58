package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

const (
	appName          = "focuscharge"
	settingsFileName = "settings.toml"
	envPrefix        = "FOCUSCHARGE"
	homeEnv          = "FOCUSCHARGE_HOME"
)

// Manager handles loading and saving settings.
// Values from FOCUSCHARGE_* variables override the file but are never written to it.
type Manager struct {
	path   string
	file   *viper.Viper
	env    *viper.Viper
	logger hclog.Logger

	stored    Settings // what settings.toml holds
	settings  Settings // stored plus env overrides
	listeners []func(Settings)
	mu        sync.RWMutex
}

// NewManager creates a settings manager rooted at dir, writing defaults on first run
func NewManager(dir string, logger hclog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigDirCreation, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	path := filepath.Join(dir, settingsFileName)
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")

	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.AutomaticEnv()

	m := &Manager{path: path, file: file, env: env, logger: logger}

	if err := m.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		m.setLocked(Defaults())
		if err := m.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return m, nil
}

// Load reads the settings file from disk. Invalid values fall back to their
// defaults with a warning.
func (m *Manager) Load() error {
	if err := m.file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return fs.ErrNotExist
		}
		return err
	}

	raw := make(map[string]string, len(defaults))
	for _, key := range Keys() {
		if !m.file.IsSet(key) {
			continue
		}
		value := m.file.GetString(key)
		if err := ValidateValue(key, value); err != nil {
			m.logger.Warn("invalid setting in file, using default", "key", key, "value", value, "error", err)
			continue
		}
		raw[key] = value
	}

	m.mu.Lock()
	m.setLocked(FromMap(raw))
	m.mu.Unlock()
	return nil
}

// Save writes the stored settings to disk. Env overrides are left out.
func (m *Manager) Save() error {
	m.mu.RLock()
	stored := m.stored
	m.mu.RUnlock()

	if err := stored.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	for key, value := range stored.Map() {
		if IsKnown(key) {
			m.file.Set(key, value)
		}
	}

	if err := m.file.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Get returns the effective settings
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings.values == nil {
		return Defaults()
	}
	return m.settings
}

// Set validates and stores a single value, then notifies listeners
func (m *Manager) Set(key, value string) error {
	if err := ValidateValue(key, value); err != nil {
		return err
	}
	m.mu.RLock()
	next := m.stored.With(key, value)
	m.mu.RUnlock()
	return m.Update(next)
}

// Update replaces the stored settings, saves them and notifies listeners
func (m *Manager) Update(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.setLocked(settings)
	effective := m.settings
	listeners := append([]func(Settings){}, m.listeners...)
	m.mu.Unlock()

	if err := m.Save(); err != nil {
		return err
	}

	for _, fn := range listeners {
		fn(effective)
	}
	return nil
}

// OnChange registers a callback fired after every successful Update
func (m *Manager) OnChange(fn func(Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Path returns the settings file location
func (m *Manager) Path() string {
	return m.path
}

// setLocked stores s and recomputes the effective settings
func (m *Manager) setLocked(stored Settings) {
	m.stored = stored
	effective := stored
	for _, key := range Keys() {
		value := m.env.GetString(key)
		if value == "" {
			continue
		}
		if err := ValidateValue(key, value); err != nil {
			m.logger.Warn("ignoring invalid setting override", "key", key, "value", value, "error", err)
			continue
		}
		effective = effective.With(key, value)
	}
	m.settings = effective
}

// DataDir returns the application's data directory.
// FOCUSCHARGE_HOME wins; otherwise the OS user config dir is used.
func DataDir() (string, error) {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}
