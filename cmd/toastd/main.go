// Package main is the entry point for the toastd notification daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/daemon"
	"github.com/jmylchreest/toastd/internal/theme"
	"github.com/jmylchreest/toastd/internal/tui"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

const shutdownTimeout = 5 * time.Second

var opts struct {
	configPath string
	verbose    bool
	tui        bool
	noDBus     bool
	listen     string
}

var rootCmd = &cobra.Command{
	Use:   "toastd",
	Short: "Transient toast notification daemon",
	Long: `toastd shows short-lived toast notifications.

Each toast stays active for the configured dwell time, fades out and is then
removed. Toasts arrive over D-Bus (org.freedesktop.Notifications) or the local
HTTP API used by toastctl.

With --tui the toast stack is drawn in the terminal; otherwise toastd runs
headless and logs every lifecycle transition.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&opts.configPath, "config", "",
		"Path to config file (default: ~/.config/toastd/toastd.toml)")
	rootCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.Flags().BoolVar(&opts.tui, "tui", false,
		"Draw toasts in the terminal")
	rootCmd.Flags().BoolVar(&opts.noDBus, "no-dbus", false,
		"Do not claim org.freedesktop.Notifications")
	rootCmd.Flags().StringVar(&opts.listen, "listen", "",
		"HTTP API listen address (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "toastd:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, closeLog, err := setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	path := opts.configPath
	if path == "" {
		if path, err = config.Path(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Info("starting toastd", "version", version, "config", path)

	d := daemon.New(daemon.Options{
		Config:      cfg,
		ConfigPath:  path,
		Version:     version,
		DisableDBus: opts.noDBus,
		Listen:      opts.listen,
		Logger:      logger,
	})
	if err := d.Start(); err != nil {
		_ = d.Stop(context.Background())
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.tui {
		err = runTUI(ctx, d)
	} else {
		<-ctx.Done()
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(err, d.Stop(shutdownCtx))
}

func runTUI(ctx context.Context, d *daemon.Daemon) error {
	p := tui.NewProgram(ctx, tui.New(tui.Options{
		Source:   d.Manager(),
		Notifier: d.Manager(),
		Config:   d.Config(),
		Theme:    d.Theme(),
	}))
	d.OnConfigChange(func(cfg *config.Config) { p.Send(tui.ConfigChanged(cfg)) })
	d.OnThemeChange(func(t *theme.Theme) { p.Send(tui.ThemeChanged(t)) })

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal renderer failed: %w", err)
	}
	return nil
}

// setupLogger configures the global slog logger. The terminal renderer owns
// the screen, so with --tui logs go to a file in the user cache directory.
func setupLogger() (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if opts.tui {
		f, err := openLogFile()
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func openLogFile() (*os.File, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get cache directory: %w", err)
	}
	dir = filepath.Join(dir, "toastd")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "toastd.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
