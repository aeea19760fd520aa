// Package daemon provides the main orchestration for toastd.
// It owns the lifecycle manager and coordinates the D-Bus server, HTTP API,
// metrics, audio, theme loader and configuration hot reload around it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastd/internal/api"
	"github.com/jmylchreest/toastd/internal/audio"
	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/metrics"
	"github.com/jmylchreest/toastd/internal/schedule"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/toast"
)

// Options configures a Daemon.
type Options struct {
	Config     *config.Config // nil means config.Default()
	ConfigPath string         // watched for hot reload when non-empty
	Version    string

	DisableDBus bool
	Listen      string // overrides Config.HTTP.Listen when non-empty

	Scheduler schedule.Scheduler // nil means the wall clock
	AudioSink audio.Sink         // nil means the speaker
	ThemesDir string             // empty means theme.ThemesDir()
	Logger    *slog.Logger
}

// Daemon wires the toastd components together.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *config.Config

	manager  *toast.Manager
	metrics  *metrics.Metrics
	audio    *audio.Manager
	themes   *theme.Loader
	notifier *InternalNotifier

	dbusServer   *dbus.NotificationServer
	apiServer    *api.Server
	cfgWatcher   *config.Watcher
	themeWatcher *theme.Watcher

	listenersMu     sync.Mutex
	configListeners []func(*config.Config)
	themeListeners  []func(*theme.Theme)
}

// New builds the daemon. Nothing is started until Start.
func New(opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Listen != "" {
		cfg.HTTP.Listen = opts.Listen
	}

	d := &Daemon{
		opts:   opts,
		logger: logger,
		cfg:    cfg,
	}

	d.manager = toast.New(opts.Scheduler, timingsFrom(cfg), logger.With("component", "toast"))
	d.notifier = NewInternalNotifier(d.manager, opts.Scheduler, logger)
	d.manager.AddListener(d.logEvent)

	if cfg.HTTP.Enabled && cfg.HTTP.Metrics {
		d.metrics = metrics.New()
		d.manager.AddListener(d.metrics.Observe)
	}

	d.audio = audio.NewManager(cfg, opts.AudioSink, logger.With("component", "audio"))
	d.manager.AddListener(d.audio.HandleEvent)

	d.themes = theme.NewLoader(opts.ThemesDir, logger.With("component", "theme"))
	if _, err := d.themes.Load(cfg.Theme.Name); err != nil {
		d.notifier.NotifyThemeError(err)
	}

	return d
}

func timingsFrom(cfg *config.Config) toast.Timings {
	return toast.Timings{
		Dwell: cfg.Timings.Dwell.Duration(),
		Fade:  cfg.Timings.Fade.Duration(),
	}
}

// Manager returns the lifecycle manager.
func (d *Daemon) Manager() *toast.Manager { return d.manager }

// Metrics returns the metrics collectors, or nil when metrics are disabled.
func (d *Daemon) Metrics() *metrics.Metrics { return d.metrics }

// Notifier returns the internal notifier.
func (d *Daemon) Notifier() *InternalNotifier { return d.notifier }

// Theme returns the current theme.
func (d *Daemon) Theme() *theme.Theme { return d.themes.Current() }

// Config returns the current configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// OnConfigChange registers fn to run after a configuration reload is applied.
func (d *Daemon) OnConfigChange(fn func(*config.Config)) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.configListeners = append(d.configListeners, fn)
}

// OnThemeChange registers fn to run when the current theme changes.
func (d *Daemon) OnThemeChange(fn func(*theme.Theme)) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.themeListeners = append(d.themeListeners, fn)
}

// Start starts the D-Bus server, HTTP API, watchers and audio.
func (d *Daemon) Start() error {
	cfg := d.Config()

	if cfg.DBus.Enabled && !d.opts.DisableDBus {
		d.dbusServer = dbus.NewNotificationServer(d.manager, d.logger.With("component", "dbus"))
		if d.opts.Version != "" {
			info := dbus.DefaultServerInfo()
			info.Version = d.opts.Version
			d.dbusServer.SetServerInfo(info)
		}
		d.manager.AddListener(d.dbusServer.HandleEvent)
		if err := d.dbusServer.Start(); err != nil {
			return fmt.Errorf("failed to start D-Bus server: %w", err)
		}
	}

	if cfg.HTTP.Enabled {
		d.apiServer = api.NewServer(d.manager, d.metrics, d.logger.With("component", "api"))
		if err := d.apiServer.Start(cfg.HTTP.Listen); err != nil {
			return fmt.Errorf("failed to start http api: %w", err)
		}
	}

	if d.opts.ConfigPath != "" {
		w, err := config.NewWatcher(d.opts.ConfigPath, d.ApplyConfig, d.handleConfigError, d.logger)
		if err != nil {
			return fmt.Errorf("failed to create config watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			d.logger.Warn("config hot reload disabled", "path", d.opts.ConfigPath, "error", err)
		} else {
			d.cfgWatcher = w
		}
	}

	d.themeWatcher = theme.NewWatcher(d.themes, d.handleThemeReload, d.handleThemeError, d.logger)
	if err := d.themeWatcher.Start(); err != nil {
		d.logger.Warn("theme hot reload disabled", "error", err)
	}

	if err := d.audio.Start(); err != nil {
		d.notifier.NotifyAudioError(err)
	}

	d.logger.Info("toastd started",
		"dwell", cfg.Timings.Dwell.Duration(),
		"fade", cfg.Timings.Fade.Duration(),
		"dbus", d.dbusServer != nil,
		"http", d.apiServer != nil,
	)
	d.notifier.NotifyStartup(d.version())
	return nil
}

// Stop shuts everything down in reverse start order. The manager is closed
// last, which cancels every pending timer.
func (d *Daemon) Stop(ctx context.Context) error {
	var errs []error

	d.audio.Stop()
	if d.themeWatcher != nil {
		errs = append(errs, d.themeWatcher.Stop())
	}
	if d.cfgWatcher != nil {
		errs = append(errs, d.cfgWatcher.Stop())
	}
	if d.apiServer != nil {
		errs = append(errs, d.apiServer.Shutdown(ctx))
	}
	if d.dbusServer != nil {
		errs = append(errs, d.dbusServer.Stop())
	}
	errs = append(errs, d.manager.Close())

	d.logger.Info("toastd stopped")
	return errors.Join(errs...)
}

// ApplyConfig applies a reloaded configuration. Timings affect toasts shown
// afterwards. Listener and D-Bus changes need a restart.
func (d *Daemon) ApplyConfig(cfg *config.Config) {
	d.mu.Lock()
	prev := d.cfg
	if d.opts.Listen != "" {
		cfg.HTTP.Listen = d.opts.Listen
	}
	d.cfg = cfg
	d.mu.Unlock()

	d.manager.SetTimings(timingsFrom(cfg))
	d.audio.UpdateConfig(cfg)

	if cfg.HTTP != prev.HTTP || cfg.DBus != prev.DBus {
		d.logger.Warn("http and dbus settings take effect after a restart")
	}

	if cfg.Theme.Name != prev.Theme.Name {
		t, err := d.themes.Load(cfg.Theme.Name)
		if err != nil {
			d.notifier.NotifyThemeError(err)
		}
		d.emitTheme(t)
	}

	d.listenersMu.Lock()
	listeners := append([]func(*config.Config){}, d.configListeners...)
	d.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}

	d.notifier.NotifyConfigReloaded()
}

func (d *Daemon) handleConfigError(err error) {
	d.notifier.NotifyConfigError(err)
}

func (d *Daemon) handleThemeReload(t *theme.Theme) {
	d.emitTheme(t)
	d.notifier.NotifyThemeReloaded(t.Name)
}

func (d *Daemon) handleThemeError(err error) {
	d.notifier.NotifyThemeError(err)
}

func (d *Daemon) emitTheme(t *theme.Theme) {
	d.listenersMu.Lock()
	listeners := append([]func(*theme.Theme){}, d.themeListeners...)
	d.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(t)
	}
}

// logEvent is the log renderer: every lifecycle transition is logged.
func (d *Daemon) logEvent(ev toast.Event) {
	attrs := []any{
		"id", ev.Notification.ID,
		"title", ev.Notification.Title,
	}
	switch ev.Type {
	case toast.EventShown:
		d.logger.Info("toast shown", append(attrs, "color", ev.Notification.Color)...)
	case toast.EventLeaving:
		d.logger.Debug("toast leaving", attrs...)
	case toast.EventRemoved:
		d.logger.Info("toast removed", append(attrs, "reason", ev.Reason)...)
	}
}

func (d *Daemon) version() string {
	if d.opts.Version == "" {
		return "dev"
	}
	return d.opts.Version
}
