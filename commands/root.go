package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/presencewatch/presencewatch/internal/app/watch"
	"github.com/presencewatch/presencewatch/internal/config"
	"github.com/presencewatch/presencewatch/internal/hub"
	"github.com/presencewatch/presencewatch/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Settings file path
	configPath string

	rootCmd = &cobra.Command{
		Use:   "presencewatch [flags]",
		Short: "Mirror Teams presence from log files into a home-automation hub",
		Long: `presencewatch tails the Teams client's rotating log files, infers the
user's availability, unread notification count, and call status, and mirrors
every change into home-automation hub entities over its REST API.

Examples:
  presencewatch                                # Watch with ./presencewatch.yaml
  presencewatch --config /etc/presencewatch.yaml
  presencewatch status                         # One-shot: print current status
  presencewatch status --json                  # Same, machine readable`,
		RunE:          runWatch,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

const defaultConfigPath = "presencewatch.yaml"

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath,
		"Path to the settings file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging to the console")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	initLogging(cfg)
	defer util.CloseLogger()

	client := hub.NewClient(cfg.Hub.URL, cfg.Hub.Token, cfg.HubTimeout())
	notifier := hub.NewNotifier(client, cfg)
	watcher := watch.New(watch.Config{
		LogDir:       cfg.Source.LogDir,
		FilePrefix:   cfg.Source.FilePrefix,
		PollInterval: cfg.PollInterval(),
	}, notifier)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	util.LogInfof("Watching %s for %s_*.log", cfg.Source.LogDir, cfg.Source.FilePrefix)
	return watcher.Run(ctx)
}

// initLogging installs the global logger: console always, plus the rotating
// debug file when enabled in the settings.
func initLogging(cfg *config.Config) {
	level := "info"
	if debug {
		level = "debug"
	}
	logger := util.NewLogger(level, util.NewConsoleOutput(os.Stderr, util.FormatText))

	if cfg.Debug.Enabled {
		fileOutput, err := util.NewRotatingFileOutput(
			cfg.Debug.LogFile,
			util.FormatText,
			cfg.Debug.MaxBytes(),
			cfg.Debug.BackupCount,
			cfg.Debug.RotateInterval(),
		)
		if err != nil {
			logger.Errorf("Cannot open debug log %s: %v", cfg.Debug.LogFile, err)
		} else {
			logger.AddOutput(fileOutput)
			logger.SetLevel(util.LevelDebug)
		}
	}

	util.SetLogger(logger)
}

func Execute() error {
	return rootCmd.Execute()
}
