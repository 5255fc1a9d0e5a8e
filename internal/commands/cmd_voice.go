package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tally/internal/core/styles"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/iojson"
)

// VoiceCmd runs one voice session against a recorded audio file.
type VoiceCmd struct {
	flags *Flags
	app   *tally.App

	file       string
	duration   time.Duration
	primary    string
	secondary  string
	user       string
	yes        bool
	jsonOutput bool
}

// NewVoiceCmd creates a new voice command.
func NewVoiceCmd(flags *Flags, app *tally.App) *VoiceCmd {
	return &VoiceCmd{flags: flags, app: app}
}

// Register adds the voice command to the application.
func (cmd *VoiceCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "voice",
		Usage:     "Run a voice command from an audio file",
		UsageText: "tally voice --file <audio> [--list <id>] [--yes]",
		Description: `Sends the recording to the oracle together with a snapshot of your lists
and carries out the command it resolves to.

Creating todos asks for confirmation first. In a terminal you are prompted;
otherwise pass --yes to confirm, or nothing is written. Ctrl-C cancels the
session at any point.

Examples:
  tally voice --file note.webm
  tally voice --file note.m4a --list lst_ab12cd34 --yes`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "recorded audio; a glob such as 'notes/**/*.webm' runs one session per file",
				Required:    true,
				Destination: &cmd.file,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Usage:       "recording length to report (the file is not decoded)",
				Value:       time.Second,
				Destination: &cmd.duration,
			},
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "list you are looking at",
				Destination: &cmd.primary,
			},
			&cli.StringFlag{
				Name:        "linked",
				Usage:       "list linked beside the primary one",
				Destination: &cmd.secondary,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "user the session belongs to",
				Value:       tally.DefaultUserID,
				Destination: &cmd.user,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "confirm todo creation without asking",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the final session view as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *VoiceCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	files, err := doublestar.FilepathGlob(cmd.file)
	if err != nil {
		return fmt.Errorf("bad --file pattern: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no audio files match %q", cmd.file)
	}

	failed := 0
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		if len(files) > 1 && !cmd.jsonOutput {
			_, _ = fmt.Fprintln(c.Root().Writer, styles.CommandHeaderStyle.Render(file))
		}

		view, err := cmd.runSession(ctx, c.Root().Writer, file)
		if err != nil {
			return err
		}

		if cmd.jsonOutput {
			if err := iojson.WriteLine(c.Root().Writer, view); err != nil {
				return err
			}
		} else {
			printView(c.Root().Writer, view)
		}

		if view.Failure != nil {
			failed++
		}
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// runSession carries one recording through the pipeline and returns the
// final view.
func (cmd *VoiceCmd) runSession(ctx context.Context, w io.Writer, file string) (voice.SessionView, error) {
	rec := &tally.FileRecorder{
		Path:     file,
		MIMEType: tally.AudioMIMEType(file),
		Duration: cmd.duration,
	}
	desk := voice.Desk{PrimaryListID: cmd.primary, SecondaryListID: cmd.secondary}

	sess, err := cmd.app.Voice.StartSession(ctx, cmd.user, desk, rec)
	if err != nil {
		return voice.SessionView{}, fmt.Errorf("start session: %w", err)
	}
	defer func() { _ = sess.Cancel() }()

	if sess.State() == voice.StateRecording {
		if err := sess.Stop(ctx); err != nil {
			return voice.SessionView{}, err
		}
	}

	for sess.State() == voice.StateConfirmingCreate {
		ok, err := cmd.confirmCreate(w, sess.View())
		if err != nil {
			return voice.SessionView{}, err
		}
		if !ok {
			_ = sess.Reject()
			if !cmd.jsonOutput {
				_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("Nothing was written."))
			}
			break
		}
		if err := sess.Confirm(ctx); err != nil {
			return voice.SessionView{}, err
		}
		if cmd.yes && sess.State() == voice.StateConfirmingCreate {
			// Retries are a user decision; --yes confirms once.
			break
		}
	}

	return sess.View(), nil
}

func (cmd *VoiceCmd) confirmCreate(w io.Writer, view voice.SessionView) (bool, error) {
	p := view.Pending
	if p == nil {
		return false, nil
	}

	if !cmd.jsonOutput {
		if view.Transcription != "" {
			_, _ = fmt.Fprintln(w, styles.TranscriptStyle.Render("“"+view.Transcription+"”"))
		}
		if view.Failure != nil {
			_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextErrorStyle.Render("✘"), view.Failure.Message)
		}
	}

	if cmd.yes {
		return view.Failure == nil, nil
	}
	if !interactive() {
		return false, nil
	}

	title := fmt.Sprintf("Add %d item(s) to %s?", len(p.Phrases), p.ListName)
	if view.Failure != nil {
		title = "Try again?"
	}
	return confirm(title, "  • "+strings.Join(p.Phrases, "\n  • "))
}

func printView(w io.Writer, view voice.SessionView) {
	if view.Transcription != "" {
		_, _ = fmt.Fprintln(w, styles.TranscriptStyle.Render("“"+view.Transcription+"”"))
	}
	if view.Message != "" {
		_, _ = fmt.Fprintln(w, view.Message)
	}

	if r := view.Result; r != nil {
		for _, t := range r.Created {
			_, _ = fmt.Fprintf(w, "  %s %s\n", styles.TextSuccessStyle.Render("+"), t.Text)
		}
		if d := r.Destination; d != nil {
			target := d.Route
			if d.ListID != "" {
				target += " " + d.ListID
			}
			if d.TodoID != "" {
				target += " " + d.TodoID
			}
			_, _ = fmt.Fprintf(w, "  → %s\n", target)
		}
	}

	if f := view.Failure; f != nil && view.State != voice.StateConfirmingCreate {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.TextErrorStyle.Render("✘"), f.Message)
	}

	_, _ = fmt.Fprintln(w, styles.StateStyle(view.State).Render(string(view.State)))
}
