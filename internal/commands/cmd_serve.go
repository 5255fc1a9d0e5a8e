package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/server"
	"github.com/colonyops/tally/internal/tally"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	flags    *Flags
	app      *tally.App
	gatherer prometheus.Gatherer

	addr  string
	pprof bool
}

// NewServeCmd creates a new serve command. gatherer backs /metrics.
func NewServeCmd(flags *Flags, app *tally.App, gatherer prometheus.Gatherer) *ServeCmd {
	return &ServeCmd{flags: flags, app: app, gatherer: gatherer}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve voice sessions over HTTP",
		UsageText: "tally serve [--addr host:port] [--pprof]",
		Description: `Starts the HTTP server. Clients open a session, upload the recording and
confirm or reject pending creates. Prometheus metrics are served on /metrics.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("TALLY_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.BoolFlag{
				Name:        "pprof",
				Usage:       "mount net/http/pprof under /debug/pprof",
				Destination: &cmd.pprof,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	addr := cmd.addr
	if addr == "" {
		addr = cmd.app.Config.Server.Addr
	}

	srv := server.New(cmd.app.Voice, cmd.app.Lists, server.Options{
		Addr:          addr,
		Gatherer:      cmd.gatherer,
		Health:        cmd.app.DB,
		Pprof:         cmd.pprof,
		MaxAudioBytes: cmd.app.Config.Capture.MaxBytes,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "listening on http://%s\n", srv.Addr())

	go cmd.app.Voice.RunSweeper(ctx, time.Minute)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
		return err
	}
	return nil
}
