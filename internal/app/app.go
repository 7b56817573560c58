package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/siegfried/focuscharge/internal/activity"
	"github.com/siegfried/focuscharge/internal/config"
	"github.com/siegfried/focuscharge/internal/ledger"
	"github.com/siegfried/focuscharge/internal/presence"
	"github.com/siegfried/focuscharge/internal/preset"
	"github.com/siegfried/focuscharge/internal/stats"
	"github.com/siegfried/focuscharge/internal/timer"
	"github.com/siegfried/focuscharge/internal/ui"
)

// DefaultLogLevel keeps the terminal surface readable
const DefaultLogLevel = "warn"

// Options configures an App. Zero values pick the production defaults.
type Options struct {
	DataDir    string
	LogLevel   string
	LogOutput  io.Writer
	Version    string
	Publisher  presence.Publisher
	IdleSource activity.IdleSource
	Clock      timer.Clock
	// Keys overrides the machine-derived ledger key material
	Keys *ledger.KeyMaterial
}

// Surface is what an engine renders to
type Surface interface {
	timer.Sink
	timer.Notifier
}

// App is the main application coordinator
type App struct {
	dataDir string
	logger  hclog.Logger
	clock   timer.Clock

	configManager   *config.Manager
	presetStore     *preset.Store
	ledger          *ledger.Ledger
	statsStore      *stats.Store
	registry        *timer.Registry
	presence        *presence.Tracker
	activityMonitor *activity.Monitor

	idlePaused map[*timer.Engine]struct{}
	watching   bool
	closed     bool
	mu         sync.Mutex
}

// New creates a new application instance
func New(opts Options) (*App, error) {
	dataDir := opts.DataDir
	if dataDir == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = dir
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.LogLevel == "" {
		opts.LogLevel = DefaultLogLevel
	}
	if opts.Clock == nil {
		opts.Clock = timer.SystemClock{}
	}

	level := hclog.LevelFromString(opts.LogLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", opts.LogLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "focuscharge",
		Level:  level,
		Output: opts.LogOutput,
	})

	app := &App{
		dataDir:    dataDir,
		logger:     logger,
		clock:      opts.Clock,
		idlePaused: make(map[*timer.Engine]struct{}),
	}

	configManager, err := config.NewManager(dataDir, logger.Named("settings"))
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	app.configManager = configManager
	settings := configManager.Get()

	presetStore, err := preset.NewStore(dataDir, logger.Named("presets"))
	if err != nil {
		return nil, fmt.Errorf("failed to create preset store: %w", err)
	}
	app.presetStore = presetStore

	keys := ledger.MachineKeyMaterial(dataDir, executablePath(), opts.Version)
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	chargeLedger, err := ledger.New(ledger.NewFileStore(dataDir), ledger.Options{
		Keys:   keys,
		Logger: logger.Named("ledger"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open charge ledger: %w", err)
	}
	app.ledger = chargeLedger

	statsStore, err := stats.NewStore(dataDir)
	if err != nil {
		chargeLedger.Close()
		return nil, fmt.Errorf("failed to create stats store: %w", err)
	}
	app.statsStore = statsStore

	app.registry = timer.NewRegistry(chargeLedger, settings, presetStore.Selected(), logger.Named("timer"))

	publisher := opts.Publisher
	if publisher == nil {
		publisher = presence.LogPublisher{Logger: logger.Named("presence")}
	}
	app.presence = presence.NewTracker(publisher, settings.Bool(config.KeyDiscordRichPresence), logger.Named("presence"))

	app.activityMonitor = activity.NewMonitor(activity.Options{
		Threshold: idleThreshold(settings),
		Source:    opts.IdleSource,
	})

	app.setupCallbacks()
	return app, nil
}

// DataDir returns the directory holding every persisted file
func (a *App) DataDir() string { return a.dataDir }

// Logger returns the root logger
func (a *App) Logger() hclog.Logger { return a.logger }

// Settings returns the settings manager
func (a *App) Settings() *config.Manager { return a.configManager }

// Presets returns the preset store
func (a *App) Presets() *preset.Store { return a.presetStore }

// Ledger returns the shared charge ledger
func (a *App) Ledger() *ledger.Ledger { return a.ledger }

// Stats returns the session history store
func (a *App) Stats() *stats.Store { return a.statsStore }

// Registry returns the engine registry
func (a *App) Registry() *timer.Registry { return a.registry }

// NewEngine attaches a new engine to surface. Presence updates ride along
// with every delivery.
func (a *App) NewEngine(surface Surface) *timer.Engine {
	return timer.NewEngine(a.registry, timer.EngineOptions{
		Sink:     timer.MultiSink(surface, a.presence),
		Notifier: surface,
		Recorder: a.statsStore,
		Clock:    a.clock,
		Logger:   a.logger.Named("timer"),
	})
}

// Status reports what a freshly attached engine would show: stopped, with the
// shared ledger's charge fields
func (a *App) Status() timer.Snapshot {
	e := timer.NewEngine(a.registry, timer.EngineOptions{
		Clock:  a.clock,
		Logger: a.logger.Named("timer"),
	})
	defer e.Dispose()
	return e.Snapshot()
}

// SelectPreset makes id the active preset for every engine
func (a *App) SelectPreset(id string) (preset.Preset, error) {
	p, err := a.presetStore.Select(id)
	if err != nil {
		return preset.Preset{}, err
	}
	a.registry.SetActivePreset(p)
	return p, nil
}

// UpdatePreset edits a custom preset and re-applies it when it is active
func (a *App) UpdatePreset(id string, in preset.Input) (preset.Preset, error) {
	p, err := a.presetStore.Update(id, in)
	if err != nil {
		return preset.Preset{}, err
	}
	if a.presetStore.SelectedID() == p.ID {
		a.registry.SetActivePreset(p)
	}
	return p, nil
}

// DeletePreset removes a custom preset. Engines fall back to the new selection.
func (a *App) DeletePreset(id string) error {
	if err := a.presetStore.Delete(id); err != nil {
		return err
	}
	if active := a.presetStore.Selected(); active.ID != a.registry.ActivePreset().ID {
		a.registry.SetActivePreset(active)
	}
	return nil
}

// Run drives one engine from a terminal until the user quits or ctx ends
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer, autoStart bool) error {
	console := ui.NewConsole(out)
	engine := a.NewEngine(console)
	defer func() {
		console.Close()
		engine.Dispose()
		a.forgetEngine(engine)
	}()

	a.watchIdle(true)
	defer a.watchIdle(false)

	active := a.registry.ActivePreset()
	console.Println(fmt.Sprintf("%s: %dm work / %dm break", active.Name, active.WorkDurationMinutes, active.BreakDurationMinutes))
	console.Println(ui.HelpText)
	if autoStart {
		engine.Start()
	}

	a.logger.Info("application started", "data_dir", a.dataDir, "preset", active.ID)
	session := &ui.Session{
		Console:    console,
		Controller: engine,
		Summarizer: a.statsStore,
	}
	return session.Run(ctx, in)
}

// Shutdown performs cleanup before exit. The ledger gets a final flush.
func (a *App) Shutdown() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.logger.Debug("shutting down")
	a.activityMonitor.Stop()
	a.registry.DisposeAll()
	a.presence.Close()

	var firstErr error
	if err := a.ledger.Close(); err != nil {
		a.logger.Error("failed to save charge data", "error", err)
		firstErr = err
	}
	if err := a.statsStore.Close(); err != nil {
		a.logger.Warn("failed to close stats store", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// setupCallbacks configures all component callbacks
func (a *App) setupCallbacks() {
	a.configManager.OnChange(func(s config.Settings) {
		a.registry.UpdateSettings(s)
		a.presence.SetEnabled(s.Bool(config.KeyDiscordRichPresence))
		a.activityMonitor.SetThreshold(idleThreshold(s))
		a.mu.Lock()
		watching := a.watching
		a.mu.Unlock()
		a.watchIdle(watching)
	})

	a.activityMonitor.SetOnBecameIdle(a.pauseForIdle)
	a.activityMonitor.SetOnBecameActive(a.resumeFromIdle)
}

// pauseForIdle pauses every counting work session and remembers which ones
func (a *App) pauseForIdle() {
	for _, e := range a.registry.Engines() {
		if e.Kind() != timer.KindWork || e.Status() != timer.StatusCounting {
			continue
		}
		e.Pause()
		a.mu.Lock()
		a.idlePaused[e] = struct{}{}
		a.mu.Unlock()
	}
	a.logger.Debug("user idle, work paused")
}

// resumeFromIdle resumes only the sessions pauseForIdle paused
func (a *App) resumeFromIdle() {
	a.mu.Lock()
	paused := a.idlePaused
	a.idlePaused = make(map[*timer.Engine]struct{})
	a.mu.Unlock()

	for e := range paused {
		if e.Kind() == timer.KindWork && e.Status() == timer.StatusPaused {
			e.Resume()
		}
	}
	a.logger.Debug("user active, work resumed", "engines", len(paused))
}

// watchIdle runs the idle monitor while a terminal session is open and the
// threshold is set
func (a *App) watchIdle(on bool) {
	a.mu.Lock()
	a.watching = on
	a.mu.Unlock()

	a.activityMonitor.Stop()
	if on {
		a.activityMonitor.Start()
	}
}

func (a *App) forgetEngine(e *timer.Engine) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.idlePaused, e)
}

func idleThreshold(s config.Settings) time.Duration {
	minutes := s.Float(config.KeyIdlePauseMinutes)
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes * float64(time.Minute))
}

func executablePath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}
