package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/commands"
	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/internal/oracle/gemini"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tallyApp  = &tally.App{}
		database  *db.DB
		busCancel context.CancelFunc
		registry  = prometheus.NewRegistry()
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tally",
		Usage:     "Manage lists and todos by voice",
		UsageText: "tally [global options] command [command options]",
		Description: `Tally turns short voice recordings into list and todo operations.

A recording is sent to Gemini together with a snapshot of your lists. The
resolved command is checked against that snapshot before anything runs, and
creating todos always asks for confirmation.

Run 'tally voice --file note.webm' to run a voice command from a recording.
Run 'tally serve' to accept recordings over HTTP.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TALLY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tally.log, '-' for stderr)",
				Sources:     cli.EnvVars("TALLY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "log-pretty",
				Usage:       "human readable logs when logging to stderr",
				Sources:     cli.EnvVars("TALLY_LOG_PRETTY"),
				Destination: &flags.LogPretty,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TALLY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TALLY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-key",
				Usage:       "Gemini API key (overrides oracle.api_key)",
				Sources:     cli.EnvVars("TALLY_GEMINI_API_KEY", "GEMINI_API_KEY"),
				Destination: &flags.APIKey,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			switch logFile {
			case "":
				logFile = filepath.Join(flags.DataDir, "tally.log")
			case "-":
				logFile = ""
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, flags.LogPretty)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.APIKey != "" {
				cfg.Oracle.APIKey = flags.APIKey
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DatabaseDir(), dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			metrics := tally.NewMetrics(registry)

			// Commands that never reach the oracle still work without a key.
			var client *gemini.Client
			if cfg.Oracle.APIKey != "" {
				client, err = gemini.New(ctx, cfg, gemini.WithObserver(metrics.ObserveOracle))
				if err != nil {
					return ctx, fmt.Errorf("create gemini client: %w", err)
				}
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*tallyApp = *tally.NewApp(cfg, database, client, bus, metrics)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if tallyApp.Voice != nil {
				tallyApp.Voice.Shutdown()
			}

			if busCancel != nil {
				busCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewVoiceCmd(flags, tallyApp).Register(app)
	app = commands.NewListCmd(flags, tallyApp).Register(app)
	app = commands.NewTodoCmd(flags, tallyApp).Register(app)
	app = commands.NewSnapshotCmd(flags, tallyApp).Register(app)
	app = commands.NewHistoryCmd(flags, tallyApp).Register(app)
	app = commands.NewServeCmd(flags, tallyApp, registry).Register(app)
	app = commands.NewDoctorCmd(flags, tallyApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
