// Package initcmd implements the interactive `tally init` wizard.
package initcmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/doctor"
	"github.com/colonyops/tally/internal/core/styles"
)

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	DataDir    string
	Yes        bool // skip prompts, use defaults
	Force      bool // overwrite existing config
	Out        io.Writer
}

// Wizard orchestrates the init process.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	out := w.opts.Out

	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Config file already exists").
				Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
				Value(&overwrite),
		)).WithTheme(styles.FormTheme()).Run()
		if err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(out, styles.TextMutedStyle.Render("Init cancelled"))
			return nil
		}
	}

	defaults := config.DefaultConfig()
	opts := ConfigOptions{
		Model: defaults.Oracle.Model,
		Theme: defaults.Theme,
		Addr:  defaults.Server.Addr,
	}

	if !w.opts.Yes {
		if err := w.promptUser(&opts); err != nil {
			return err
		}
	}

	if ConfigExists(w.opts.ConfigPath) {
		backupPath, err := BackupConfig(w.opts.ConfigPath)
		if err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		if backupPath != "" {
			w.success("Backed up config to: %s", backupPath)
		}
	}

	data, err := GenerateConfig(opts)
	if err != nil {
		return err
	}
	if err := WriteConfig(data, w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	w.success("Created config: %s", w.opts.ConfigPath)

	_, _ = fmt.Fprintln(out)
	result := NewInitCheck(w.opts.ConfigPath, w.opts.DataDir).Run(ctx)
	_, _ = fmt.Fprintln(out, styles.TextForegroundBoldStyle.Render(result.Name))
	for _, item := range result.Items {
		_, _ = fmt.Fprintf(out, "  %s %s %s\n", icon(item.Status), item.Label, styles.TextMutedStyle.Render(item.Detail))
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, styles.TextForegroundBoldStyle.Render("Next Steps"))
	_, _ = fmt.Fprintln(out, "  1. export GEMINI_API_KEY=<your key>")
	_, _ = fmt.Fprintln(out, "  2. Run 'tally list create --name Groceries'")
	_, _ = fmt.Fprintln(out, "  3. Run 'tally voice --file note.webm'")

	return nil
}

func (w *Wizard) promptUser(opts *ConfigOptions) error {
	themeOptions := make([]huh.Option[string], 0, len(styles.ThemeNames()))
	for _, name := range styles.ThemeNames() {
		themeOptions = append(themeOptions, huh.NewOption(name, name))
	}

	var routes string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Gemini model").
			Description("Used for intent, synthesis and list suggestions").
			Value(&opts.Model),
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOptions...).
			Value(&opts.Theme),
		huh.NewInput().
			Title("Server address").
			Description("Listen address for 'tally serve'").
			Value(&opts.Addr),
		huh.NewInput().
			Title("Extra routes").
			Description("Comma-separated app routes voice navigation may open").
			Value(&routes),
	)).WithTheme(styles.FormTheme())

	if err := form.Run(); err != nil {
		return err
	}

	opts.Routes = splitList(routes)
	return nil
}

func (w *Wizard) success(format string, args ...any) {
	_, _ = fmt.Fprintf(w.opts.Out, "%s %s\n", styles.TextSuccessStyle.Render("✔"), fmt.Sprintf(format, args...))
}

func icon(s doctor.Status) string {
	switch s {
	case doctor.StatusPass:
		return styles.TextSuccessStyle.Render("✔")
	case doctor.StatusWarn:
		return styles.TextWarningStyle.Render("●")
	default:
		return styles.TextErrorStyle.Render("✘")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
