package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/tally"
)

// SnapshotCmd prints the grounding document the oracle receives.
type SnapshotCmd struct {
	flags *Flags
	app   *tally.App
}

// NewSnapshotCmd creates a new snapshot command.
func NewSnapshotCmd(flags *Flags, app *tally.App) *SnapshotCmd {
	return &SnapshotCmd{flags: flags, app: app}
}

// Register adds the snapshot command to the application.
func (cmd *SnapshotCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "snapshot",
		Usage:       "Print the list snapshot sent with voice commands",
		UsageText:   "tally snapshot",
		Description: "Loads every list and todo and prints the document the intent oracle is grounded on.",
		Action:      cmd.run,
	})
	return app
}

func (cmd *SnapshotCmd) run(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.app.Snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	_, err = fmt.Fprintln(c.Root().Writer, snap.Serialize())
	return err
}
