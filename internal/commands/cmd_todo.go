package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/iojson"
)

// TodoCmd implements the tally todo command group.
type TodoCmd struct {
	flags *Flags
	app   *tally.App

	listID     string
	jsonOutput bool

	// add flags
	input iojson.FileReader[[]list.Todo]

	// ls flags
	status string
	limit  int

	// done flags
	undo bool
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags, app *tally.App) *TodoCmd {
	return &TodoCmd{flags: flags, app: app}
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage todos",
		Description: `Todo commands add, list and complete items without going through voice.

Examples:
  tally todo add --list lst_ab12cd34 Bread Milk
  tally todo add --list lst_ab12cd34 --file todos.json
  tally todo ls --list lst_ab12cd34 --status open
  tally todo done tdo_ef56gh78`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.doneCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add todos to a list",
		UsageText: "tally todo add --list <id> [text...] [--file <path>]",
		Description: `Adds one todo per argument. With no arguments a JSON array of todos is
read from --file or stdin; every todo in the array is written in one batch.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "list ID", Required: true, Destination: &cmd.listID},
			cmd.input.Flag(),
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TodoCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List todos",
		UsageText: "tally todo ls [--list <id>] [--status open|done] [--limit n]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Usage: "only todos in this list", Destination: &cmd.listID},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "filter by status (open, done)", Destination: &cmd.status},
			&cli.IntFlag{Name: "limit", Usage: "maximum number of todos", Destination: &cmd.limit},
			&cli.BoolFlag{Name: "json", Usage: "output as JSON lines", Destination: &cmd.jsonOutput},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TodoCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Mark a todo done",
		UsageText: "tally todo done <id> [--undo]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "undo", Usage: "mark the todo open again", Destination: &cmd.undo},
		},
		Action: cmd.runDone,
	}
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	var todos []list.Todo
	if c.Args().Len() > 0 {
		for _, text := range c.Args().Slice() {
			todos = append(todos, list.Todo{Text: text})
		}
	} else {
		batch, err := cmd.input.Read()
		if err != nil {
			return fmt.Errorf("read todos: %w", err)
		}
		todos = batch
	}

	created, err := cmd.app.Lists.AddTodos(ctx, cmd.listID, todos)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range created {
			if err := iojson.WriteLine(out, t); err != nil {
				return err
			}
		}
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s added %d todo(s)\n", styles.TextSuccessStyle.Render("✔"), len(created))
	return nil
}

func (cmd *TodoCmd) runLs(ctx context.Context, c *cli.Command) error {
	filter := list.TodoFilter{ListID: cmd.listID, Limit: cmd.limit}
	switch cmd.status {
	case "":
	case "open":
		filter.Done = new(bool)
	case "done":
		done := true
		filter.Done = &done
	default:
		return fmt.Errorf("invalid status %q: must be one of open, done", cmd.status)
	}

	todos, err := cmd.app.Lists.Todos(ctx, filter)
	if err != nil {
		return fmt.Errorf("list todos: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range todos {
			if err := iojson.WriteLine(out, t); err != nil {
				return err
			}
		}
		return nil
	}

	if len(todos) == 0 {
		fmt.Fprintf(os.Stderr, "No todos found\n")
		return nil
	}
	printTodos(out, todos)
	return nil
}

func (cmd *TodoCmd) runDone(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: tally todo done <id>")
	}

	id := c.Args().First()
	if err := cmd.app.Lists.SetDone(ctx, id, !cmd.undo); err != nil {
		return err
	}

	state := "done"
	if cmd.undo {
		state = "open"
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s marked %s\n", styles.TextSuccessStyle.Render("✔"), id, state)
	return nil
}

func printTodos(out io.Writer, todos []list.Todo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range todos {
		mark := "○"
		if t.Done {
			mark = styles.TextSuccessStyle.Render("●")
		}
		extra := t.Category
		if t.Date != "" {
			extra = t.Date + " " + t.Time
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, t.Text, styles.TextMutedStyle.Render(extra), styles.TextMutedStyle.Render(t.ID))
	}
	_ = w.Flush()
}
