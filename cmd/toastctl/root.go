// Package main provides toastctl, the command-line client for toastd.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastd/internal/api"
	"github.com/jmylchreest/toastd/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	globalOpts struct {
		addr       string
		configPath string
		verbose    bool
	}
	logger *slog.Logger
	client *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "toastctl",
	Short: "Control a running toastd",
	Long: `toastctl shows, lists and clears toasts on a running toastd through its
local HTTP API.

The daemon address defaults to http.listen from the toastd config file.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		addr := globalOpts.addr
		if addr == "" {
			cfg, err := config.Load(globalOpts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			addr = cfg.HTTP.Listen
		}
		logger.Debug("using toastd", "addr", addr)

		client = api.NewClient(addr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.addr, "addr", "",
		"toastd HTTP address (default: http.listen from the config)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/toastd/toastd.toml)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
