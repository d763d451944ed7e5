// Package app wires the editor together: documents, the event bus, the
// extension features, configuration and the terminal UI, plus the main
// input loop.
package app

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/snipline/snipline/internal/config"
	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/event/events"
	"github.com/snipline/snipline/internal/expand"
	"github.com/snipline/snipline/internal/extension"
	"github.com/snipline/snipline/internal/linecount"
	"github.com/snipline/snipline/internal/log"
	"github.com/snipline/snipline/internal/script"
	"github.com/snipline/snipline/internal/ui"
)

// Application is the central coordinator for all editor components.
type Application struct {
	mu sync.RWMutex

	opts Options
	cfg  config.Config

	logger  *log.Logger
	logFile *os.File

	// Core infrastructure
	bus       *event.Bus
	documents *DocumentManager
	features  *extension.Manager
	runtime   *script.Runtime
	watcher   *config.Watcher

	// UI
	screen    *ui.Screen
	view      *ui.View
	statusBar *ui.StatusBar

	// Loop state, touched only on the event loop goroutine once Run
	// has started.
	notice    string
	quitArmed bool
	pageRows  int

	running   atomic.Bool
	quitReq   atomic.Bool
	closeOnce sync.Once
}

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty runs on defaults
	// without a watcher.
	ConfigPath string

	// Files are opened at startup. A scratch document is created when
	// none are given.
	Files []string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Catalog overrides the configured rule catalog when non-empty. The
	// override also pins the catalog across config reloads.
	Catalog string

	// RulesDir overrides the configured rule pack directory when non-empty.
	RulesDir string

	// Script overrides the configured rule script when non-empty.
	Script string

	// LogFile overrides the configured log file when non-empty.
	LogFile string

	// ReadOnly blocks all edits.
	ReadOnly bool
}

// New creates an application and initializes every component. The
// returned application is ready to Run.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:      opts,
		documents: NewDocumentManager(),
		statusBar: ui.NewStatusBar(),
	}

	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration
	var cfgWarn error
	if app.opts.ConfigPath != "" {
		app.cfg, cfgWarn = config.Load(app.opts.ConfigPath)
	} else {
		app.cfg = config.Default()
	}

	// 2. Logger
	level := app.cfg.Log.Level
	if app.opts.LogLevel != "" {
		level = app.opts.LogLevel
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(level)

	logPath := app.cfg.Log.File
	if app.opts.LogFile != "" {
		logPath = app.opts.LogFile
	}
	var logFileWarn error
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logFileWarn = err
		} else {
			app.logFile = f
			logCfg.Output = f
		}
	}
	app.logger = log.New(logCfg)

	if cfgWarn != nil {
		app.logger.Warn("config: %v, using defaults", cfgWarn)
	}
	if logFileWarn != nil {
		app.logger.Warn("log file: %v, logging to stderr", logFileWarn)
	}

	// 3. Event bus
	app.bus = event.NewBus()

	// 4. View
	app.view = ui.NewView(app.cfg.Editor.TabWidth)

	// 5. Documents
	for _, file := range app.opts.Files {
		doc, err := app.documents.Open(file)
		if err != nil {
			app.logger.Warn("skipping %s: %v", file, err)
			continue
		}
		doc.ReadOnly = app.opts.ReadOnly
	}
	if app.documents.Count() == 0 {
		doc := app.documents.CreateScratch()
		doc.ReadOnly = app.opts.ReadOnly
	}

	// 6. Expansion rules
	catalogName := app.cfg.Expansion.Catalog
	if app.opts.Catalog != "" {
		catalogName = app.opts.Catalog
	}
	base, err := expand.Catalog(catalogName)
	if err != nil {
		return &InitError{Component: "rules", Err: err}
	}
	extra := app.loadExtraRules()

	policy, err := expand.ParsePolicy(app.cfg.Expansion.Policy)
	if err != nil {
		app.logger.Warn("expansion policy: %v, applying all matches", err)
		policy = expand.PolicyAll
	}
	engine := expand.NewEngine(append(base, extra...), policy)

	// 7. Extension features
	formatter, err := linecount.NewFormatter(app.cfg.Status.Format)
	if err != nil {
		app.logger.Warn("status format: %v, using default", err)
		formatter = linecount.DefaultFormatter()
	}

	app.features = extension.NewManager(app, app.bus, app.logger)
	app.features.Register(extension.NewLineCounter(
		extension.WithFormatter(formatter),
		extension.WithCounterEnabled(app.cfg.Status.Enabled),
	))
	app.features.Register(extension.NewExpander(engine,
		extension.WithExtraRules(extra),
		extension.WithCatalogName(catalogName),
		extension.WithExpanderEnabled(app.cfg.Expansion.Enabled),
	))
	if err := app.features.ActivateAll(); err != nil {
		return &InitError{Component: "features", Err: err}
	}

	// 8. Config watcher
	if app.opts.ConfigPath != "" {
		w, err := config.Watch(app.opts.ConfigPath, app.onConfigReload,
			config.WithWatchLogger(app.logger.WithComponent("config")))
		if err != nil {
			app.logger.Warn("config watcher unavailable: %v", err)
		} else {
			app.watcher = w
		}
	}

	return nil
}

// loadExtraRules loads user rules from the pack directory and the rule
// script. Failures are logged and skipped so a broken rule file never
// keeps the editor from starting.
func (app *Application) loadExtraRules() []*expand.Rule {
	var extra []*expand.Rule

	dir := app.cfg.Expansion.RulesDir
	if app.opts.RulesDir != "" {
		dir = app.opts.RulesDir
	}
	if dir != "" {
		packs, err := expand.LoadDir(dir)
		if err != nil {
			app.logger.Warn("rule packs: %v", err)
		}
		for _, p := range packs {
			app.logger.Debug("loaded rule pack %s (%d rules)", p.Name, len(p.Rules))
			extra = append(extra, p.Rules...)
		}
	}

	path := app.cfg.Expansion.Script
	if app.opts.Script != "" {
		path = app.opts.Script
	}
	if path != "" {
		app.runtime = script.NewRuntime(script.WithLogger(app.logger.WithComponent("script")))
		rules, err := app.runtime.LoadFile(path)
		if err != nil {
			app.logger.Warn("rule script: %v", err)
		} else {
			app.logger.Debug("loaded rule script %s (%d rules)", path, len(rules))
			extra = append(extra, rules...)
		}
	}

	return extra
}

// SetScreen injects the screen to render on. Must be called before Run;
// Run creates a terminal screen when none was set.
func (app *Application) SetScreen(s *ui.Screen) error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.screen = s
	return nil
}

// Run enters the main input loop and blocks until the user quits.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)
	defer app.Shutdown()

	if app.screen == nil {
		s, err := ui.NewScreen()
		if err != nil {
			return &InitError{Component: "screen", Err: err}
		}
		app.screen = s
	}
	if err := app.screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer app.screen.Fini()

	app.logger.Info("started with %d documents", app.documents.Count())
	app.render()
	app.eventLoop()
	app.logger.Info("shutting down")
	return nil
}

// RequestQuit asks the event loop to exit after the current event. It is
// safe to call from other goroutines, including signal handlers.
func (app *Application) RequestQuit() {
	app.quitReq.Store(true)
	if app.running.Load() && app.screen != nil {
		// Wake the loop if it is blocked polling for input.
		app.screen.Post(func() {})
	}
}

// eventLoop dispatches input events until quit is requested.
func (app *Application) eventLoop() {
	for !app.quitReq.Load() {
		ev := app.screen.PollEvent()
		switch ev.Type {
		case ui.EventKey:
			if quit := app.handleKey(ev); quit {
				return
			}
		case ui.EventFunc:
			if ev.Fn != nil {
				ev.Fn()
			}
		case ui.EventResize:
			// render below picks up the new size
		}
		app.render()
	}
}

// render draws the full frame: document text, cursor and status bar.
func (app *Application) render() {
	if app.screen == nil {
		return
	}
	width, height := app.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}
	app.screen.Clear()

	statusRow := height - 1
	app.mu.Lock()
	app.pageRows = statusRow
	notice := app.notice
	app.mu.Unlock()

	doc := app.documents.Active()
	if doc != nil && statusRow > 0 {
		cx, cy := app.view.Render(app.screen, doc.Buffer, doc.Cursor(), width, statusRow)
		app.screen.ShowCursor(cx, cy)
	} else {
		app.screen.HideCursor()
	}

	app.statusBar.SetLeft(app.statusLeft(doc, notice))
	app.statusBar.Render(app.screen, statusRow, width)
	app.screen.Show()
}

// statusLeft builds the left side of the status bar.
func (app *Application) statusLeft(doc *Document, notice string) string {
	if notice != "" {
		return notice
	}
	if doc == nil {
		return "no document"
	}
	name := doc.Name
	if doc.IsModified() {
		name += " [+]"
	}
	cur := doc.Cursor()
	return fmt.Sprintf("%s  %d:%d", name, cur.Line+1, cur.Col+1)
}

func (app *Application) setNotice(msg string) {
	app.mu.Lock()
	app.notice = msg
	app.mu.Unlock()
}

// onConfigReload is called by the watcher goroutine. While the loop is
// running the new config is handed to it, keeping all state changes on
// one goroutine.
func (app *Application) onConfigReload(cfg config.Config) {
	if app.running.Load() && app.screen != nil {
		app.screen.Post(func() { app.applyConfig(cfg) })
		return
	}
	app.applyConfig(cfg)
}

// applyConfig installs a reloaded configuration and notifies features.
func (app *Application) applyConfig(cfg config.Config) {
	app.mu.Lock()
	app.cfg = cfg
	app.mu.Unlock()

	if app.opts.LogLevel == "" {
		app.logger.SetLevel(log.ParseLevel(cfg.Log.Level))
	}
	app.view.SetTabWidth(cfg.Editor.TabWidth)

	catalog := cfg.Expansion.Catalog
	if app.opts.Catalog != "" {
		catalog = app.opts.Catalog
	}

	app.publish(event.New(events.TopicConfigChanged, events.ConfigChanged{
		Path:             app.opts.ConfigPath,
		StatusFormat:     cfg.Status.Format,
		StatusEnabled:    cfg.Status.Enabled,
		Catalog:          catalog,
		Policy:           cfg.Expansion.Policy,
		ExpansionEnabled: cfg.Expansion.Enabled,
	}, "config"))
}

// Shutdown releases everything the application holds, in reverse
// initialization order. Run calls it on exit; call it directly only
// when Run was never started.
func (app *Application) Shutdown() {
	app.closeOnce.Do(app.shutdown)
}

func (app *Application) shutdown() {
	var errs ErrorList

	if app.watcher != nil {
		errs.Add(app.watcher.Close())
	}
	if app.features != nil {
		errs.Add(app.features.DeactivateAll())
	}
	if app.runtime != nil {
		app.runtime.Close()
	}
	if app.bus != nil {
		app.bus.Close()
	}

	if err := errs.AsError(); err != nil && app.logger != nil {
		app.logger.Warn("shutdown finished with problems: %v", err)
	}

	// Last so the warning above still reaches the log file.
	if app.logFile != nil {
		app.logFile.Close()
	}
}

// IsRunning reports whether the input loop is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// EventBus returns the event bus.
func (app *Application) EventBus() *event.Bus {
	return app.bus
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// Config returns the current configuration.
func (app *Application) Config() config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// publish sends an event, logging delivery failures.
func (app *Application) publish(v any) {
	if err := app.bus.Publish(v); err != nil {
		app.logger.Warn("publish: %v", err)
	}
}
