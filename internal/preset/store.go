package preset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	presetsFileName = "presets.toml"
	presetsFileMode = 0o600
	presetsDirMode  = 0o700
	tempFilePattern = ".presets-*.toml.tmp"
	customIDPrefix  = "custom-"
)

var (
	// ErrPresetNotFound is returned when no custom preset has the given id
	ErrPresetNotFound = errors.New("preset not found")

	// ErrBuiltInPreset is returned when trying to modify a built-in preset
	ErrBuiltInPreset = errors.New("built-in presets cannot be modified")
)

// Input carries user-editable preset fields
type Input struct {
	Name                 string
	WorkDurationMinutes  float64
	BreakDurationMinutes float64
	Description          string
}

type fileSchema struct {
	SelectedPresetID string   `toml:"selected_preset_id"`
	CustomPresets    []Preset `toml:"custom_presets"`
}

// Store keeps custom presets and the current selection in a TOML file
type Store struct {
	path     string
	logger   hclog.Logger
	custom   []Preset
	selected string
	mu       sync.RWMutex
}

// NewStore loads presets from dir, resetting to defaults when the file is unreadable
func NewStore(dir string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(dir, presetsDirMode); err != nil {
		return nil, fmt.Errorf("create presets directory: %w", err)
	}

	s := &Store{
		path:     filepath.Join(dir, presetsFileName),
		logger:   logger,
		selected: DefaultID,
	}
	s.load()
	return s, nil
}

// List returns built-in presets followed by custom ones
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := BuiltIns()
	for _, p := range s.custom {
		p.BuiltIn = false
		out = append(out, p)
	}
	return out
}

// SelectedID returns the id of the active preset
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns the active preset, falling back to the default one
func (s *Store) Selected() Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.find(s.selected); ok {
		return p
	}
	return Default()
}

// Select makes id the active preset. Unknown ids select the default preset.
func (s *Store) Select(id string) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved, ok := s.find(id)
	if !ok {
		resolved = Default()
	}
	s.selected = resolved.ID
	return resolved, s.save()
}

// Create adds a custom preset
func (s *Store) Create(in Input) (Preset, error) {
	p := Preset{
		ID:                   customIDPrefix + uuid.NewString(),
		Name:                 sanitizeName(in.Name),
		WorkDurationMinutes:  clampMinutes(in.WorkDurationMinutes, minWorkMinutes, maxWorkMinutes),
		BreakDurationMinutes: clampMinutes(in.BreakDurationMinutes, minBreakMinutes, maxBreakMinutes),
		Description:          strings.TrimSpace(in.Description),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.custom = append(s.custom, p)
	s.sortCustom()
	return p, s.save()
}

// Update edits a custom preset in place
func (s *Store) Update(id string, in Input) (Preset, error) {
	if _, ok := BuiltIn(id); ok {
		return Preset{}, ErrBuiltInPreset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.custom {
		if s.custom[i].ID != id {
			continue
		}
		s.custom[i].Name = sanitizeName(in.Name)
		s.custom[i].WorkDurationMinutes = clampMinutes(in.WorkDurationMinutes, minWorkMinutes, maxWorkMinutes)
		s.custom[i].BreakDurationMinutes = clampMinutes(in.BreakDurationMinutes, minBreakMinutes, maxBreakMinutes)
		s.custom[i].Description = strings.TrimSpace(in.Description)
		updated := s.custom[i]
		s.sortCustom()
		return updated, s.save()
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
}

// Delete removes a custom preset. Deleting the selected preset selects the default.
func (s *Store) Delete(id string) error {
	if _, ok := BuiltIn(id); ok {
		return ErrBuiltInPreset
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.custom {
		if s.custom[i].ID != id {
			continue
		}
		s.custom = append(s.custom[:i], s.custom[i+1:]...)
		if s.selected == id {
			s.selected = DefaultID
		}
		return s.save()
	}
	return fmt.Errorf("%w: %s", ErrPresetNotFound, id)
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("failed to read presets", "path", s.path, "error", err)
		}
		s.reset()
		return
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		s.logger.Error("failed to decode presets, resetting", "path", s.path, "error", err)
		s.reset()
		return
	}

	s.custom = s.custom[:0]
	for _, p := range file.CustomPresets {
		if p.ID == "" {
			continue
		}
		if _, clash := BuiltIn(p.ID); clash {
			continue
		}
		p.Name = sanitizeName(p.Name)
		p.WorkDurationMinutes = clampMinutes(float64(p.WorkDurationMinutes), minWorkMinutes, maxWorkMinutes)
		p.BreakDurationMinutes = clampMinutes(float64(p.BreakDurationMinutes), minBreakMinutes, maxBreakMinutes)
		p.Description = strings.TrimSpace(p.Description)
		s.custom = append(s.custom, p)
	}
	s.sortCustom()

	s.selected = DefaultID
	if _, ok := s.find(file.SelectedPresetID); ok {
		s.selected = file.SelectedPresetID
	}
	if err := s.save(); err != nil {
		s.logger.Warn("failed to rewrite presets", "error", err)
	}
}

func (s *Store) reset() {
	s.custom = nil
	s.selected = DefaultID
	if err := s.save(); err != nil {
		s.logger.Warn("failed to write default presets", "error", err)
	}
}

func (s *Store) save() error {
	data, err := toml.Marshal(fileSchema{SelectedPresetID: s.selected, CustomPresets: s.custom})
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp presets file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp presets file: %w", err)
	}
	if err := tmp.Chmod(presetsFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp presets file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp presets file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace presets file: %w", err)
	}
	return nil
}

func (s *Store) find(id string) (Preset, bool) {
	for _, p := range s.custom {
		if p.ID == id {
			return p, true
		}
	}
	return BuiltIn(id)
}

func (s *Store) sortCustom() {
	sort.SliceStable(s.custom, func(i, j int) bool {
		return strings.ToLower(s.custom[i].Name) < strings.ToLower(s.custom[j].Name)
	})
}

func sanitizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return defaultName
	}
	if r := []rune(trimmed); len(r) > maxNameLength {
		return string(r[:maxNameLength])
	}
	return trimmed
}

func clampMinutes(v float64, lo, hi int) int {
	if math.IsNaN(v) || v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(math.Trunc(v))
}
