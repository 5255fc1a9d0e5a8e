package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/tally"
)

// ListIDCompleter returns a ShellCompleteFunc that suggests list IDs as
// positional completions, each followed by the list name as its description.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func ListIDCompleter(app *tally.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		lists, err := app.Lists.Lists(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, l := range lists {
			_, _ = fmt.Fprintf(w, "%s:%s\n", l.ID, l.Name)
		}
	}
}
