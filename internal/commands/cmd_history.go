package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/iojson"
)

// HistoryCmd lists finished voice sessions.
type HistoryCmd struct {
	flags *Flags
	app   *tally.App

	limit      int
	jsonOutput bool
}

// NewHistoryCmd creates a new history command.
func NewHistoryCmd(flags *Flags, app *tally.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application.
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show recent voice sessions",
		UsageText: "tally history [--limit n] [--json]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "number of sessions to show",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, e := range entries {
			if err := iojson.WriteLine(out, e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "No voice sessions recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FINISHED\tOUTCOME\tACTION\tCOUNT\tTRANSCRIPTION")
	for _, e := range entries {
		outcome := styles.StateStyle(e.Outcome).Render(string(e.Outcome))
		if e.ErrorKind != "" {
			outcome += styles.TextMutedStyle.Render(" (" + string(e.ErrorKind) + ")")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			e.FinishedAt.Local().Format("2006-01-02 15:04"), outcome, e.Action, e.Count, e.Transcription)
	}
	return w.Flush()
}
