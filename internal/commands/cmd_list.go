package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/iojson"
)

// ListCmd implements the tally list command group.
type ListCmd struct {
	flags *Flags
	app   *tally.App

	jsonOutput bool

	// create flags
	name        string
	purpose     string
	kind        string
	colour      string
	icon        string
	template    string
	description string

	// suggest flags
	photo string
	yes   bool
}

// NewListCmd creates a new list command.
func NewListCmd(flags *Flags, app *tally.App) *ListCmd {
	return &ListCmd{flags: flags, app: app}
}

// Register adds the list command to the application.
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "list",
		Usage: "Manage lists",
		Description: `List commands create and inspect the lists voice commands act on.

Examples:
  tally list create --name Groceries --purpose "weekly shop"
  tally list ls
  tally list show lst_ab12cd34
  tally list suggest --photo fridge.jpg`,
		Commands: []*cli.Command{
			cmd.createCmd(),
			cmd.lsCmd(),
			cmd.showCmd(),
			cmd.suggestCmd(),
		},
	})

	return app
}

func (cmd *ListCmd) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}
}

func (cmd *ListCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a list",
		UsageText: "tally list create --name <name> [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "list name", Required: true, Destination: &cmd.name},
			&cli.StringFlag{Name: "purpose", Usage: "what the list is for", Destination: &cmd.purpose},
			&cli.StringFlag{Name: "type", Usage: "free-form list type (e.g. shopping)", Destination: &cmd.kind},
			&cli.StringFlag{Name: "colour", Usage: "background colour as #rgb or #rrggbb", Destination: &cmd.colour},
			&cli.StringFlag{Name: "icon", Usage: "icon name", Destination: &cmd.icon},
			&cli.StringFlag{Name: "template", Usage: "template catalog entry", Destination: &cmd.template},
			&cli.StringFlag{Name: "description", Usage: "longer markdown notes (never sent to the oracle)", Destination: &cmd.description},
			cmd.jsonFlag(),
		},
		Action: cmd.runCreate,
	}
}

func (cmd *ListCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List all lists",
		UsageText: "tally list ls [--json]",
		Flags:     []cli.Flag{cmd.jsonFlag()},
		Action:    cmd.runLs,
	}
}

func (cmd *ListCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:          "show",
		Usage:         "Show a list and its todos",
		UsageText:     "tally list show <id> [--json]",
		Flags:         []cli.Flag{cmd.jsonFlag()},
		ShellComplete: ListIDCompleter(cmd.app),
		Action:        cmd.runShow,
	}
}

func (cmd *ListCmd) suggestCmd() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Propose a list from a photo",
		UsageText: "tally list suggest --photo <path> [--yes]",
		Description: `Sends the photo to the oracle and prints the proposed list.

In a terminal you are asked before the list is created. Use --yes to create
it without asking, or pipe the command to only print the proposal.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "photo", Aliases: []string{"p"}, Usage: "path to a JPEG, PNG or WebP image", Required: true, Destination: &cmd.photo},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "create the suggested list without asking", Destination: &cmd.yes},
			cmd.jsonFlag(),
		},
		Action: cmd.runSuggest,
	}
}

func (cmd *ListCmd) runCreate(ctx context.Context, c *cli.Command) error {
	l := list.List{
		Name:             cmd.name,
		Purpose:          cmd.purpose,
		Type:             cmd.kind,
		BackgroundColour: cmd.colour,
		Icon:             cmd.icon,
		Template:         cmd.template,
		Description:      cmd.description,
	}
	if err := cmd.app.Lists.Create(ctx, &l); err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, l)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s created list %s (%s)\n", styles.TextSuccessStyle.Render("✔"), l.Name, l.ID)
	return nil
}

func (cmd *ListCmd) runLs(ctx context.Context, c *cli.Command) error {
	lists, err := cmd.app.Lists.Lists(ctx)
	if err != nil {
		return fmt.Errorf("list lists: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, l := range lists {
			if err := iojson.WriteLine(out, l); err != nil {
				return fmt.Errorf("encode list: %w", err)
			}
		}
		return nil
	}

	if len(lists) == 0 {
		fmt.Fprintf(os.Stderr, "No lists found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOLOUR\tPURPOSE")
	for _, l := range lists {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Type, styles.Swatch(l.BackgroundColour), l.Purpose)
	}
	return w.Flush()
}

func (cmd *ListCmd) runShow(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("usage: tally list show <id>")
	}

	l, todos, err := cmd.app.Lists.Show(ctx, c.Args().First())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, struct {
			list.List
			Todos []list.Todo `json:"todos"`
		}{List: l, Todos: todos})
	}

	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render(l.Name))
	if l.Purpose != "" {
		_, _ = fmt.Fprintln(out, styles.TextMutedStyle.Render(l.Purpose))
	}
	if l.Description != "" {
		_, _ = fmt.Fprintln(out, renderMarkdown(l.Description))
	}
	printTodos(out, todos)
	return nil
}

func (cmd *ListCmd) runSuggest(ctx context.Context, c *cli.Command) error {
	image, err := os.ReadFile(cmd.photo)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	sg, err := cmd.app.Lists.Suggest(ctx, image, imageMIMEType(cmd.photo))
	if err != nil {
		return fmt.Errorf("suggest list: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput && !cmd.yes {
		return iojson.WriteLine(out, sg)
	}

	if !cmd.jsonOutput {
		_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render(sg.Name))
		if sg.Purpose != "" {
			_, _ = fmt.Fprintln(out, styles.TextMutedStyle.Render(sg.Purpose))
		}
		for _, item := range sg.Items {
			_, _ = fmt.Fprintf(out, "  ○ %s\n", item)
		}
	}

	create := cmd.yes
	if !create && interactive() {
		create, err = confirm("Create this list?", sg.Name)
		if err != nil {
			return err
		}
	}
	if !create {
		return nil
	}

	l, todos, err := cmd.app.Lists.CreateFromSuggestion(ctx, sg)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(out, struct {
			list.List
			Todos []list.Todo `json:"todos"`
		}{List: l, Todos: todos})
	}
	_, _ = fmt.Fprintf(out, "%s created list %s with %d item(s)\n", styles.TextSuccessStyle.Render("✔"), l.ID, len(todos))
	return nil
}

func imageMIMEType(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".heic"):
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
