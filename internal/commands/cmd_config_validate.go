package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tally config validate [options]",
				Description: "Validates the configuration file, checking prompt template syntax, routes, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cfg.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Error    string                     `json:"error,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    err == nil,
			Warnings: warnings,
		}
		if err != nil {
			out.Error = err.Error()
		}
		if werr := iojson.WriteWith(c.Root().Writer, os.Stderr, out); werr != nil {
			return werr
		}
		if err != nil {
			return cli.Exit("", 1)
		}
		return nil
	}

	w := c.Root().Writer
	for _, warn := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.TextWarningStyle.Render("●"), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	if err != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextErrorStyle.Render("✘"), err)
		return cli.Exit("", 1)
	}

	_, _ = fmt.Fprintf(w, "%s Configuration is valid\n", styles.TextSuccessStyle.Render("✔"))
	return nil
}
