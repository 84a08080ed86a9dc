package cli

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/goliatone/go-streamfield/pkg/renderers/tui"
)

// EditCommand contains flags for the `edit` command line command.
type EditCommand struct {
	Schema string `short:"s" long:"schema" description:"definition document (JSON or YAML), or an OpenAPI document as api.yaml#Component" value-name:"<file>"`
	State  string `long:"state" description:"JSON file holding the initial state" value-name:"<file>"`
	Errors string `long:"errors" description:"JSON file holding a recursive error payload" value-name:"<file>"`
	Format string `long:"format" description:"result format (defaults to the configured output)" choice:"json" choice:"form" choice:"pretty"`
	Output string `short:"o" long:"output" description:"result file (stdout if empty)" value-name:"<file>"`

	driver tui.PromptDriver
	stdout io.Writer
}

// Execute runs an interactive session and writes the edited tree when the
// user is done.
func (command *EditCommand) Execute(args []string) error {
	cfg, log, err := Opts.settings()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ed, err := loadEditor(ctx, cfg, log, documentInputs{
		schema: firstNonEmpty(command.Schema, cfg.Schema),
		state:  command.State,
		errors: command.Errors,
	})
	if err != nil {
		return err
	}

	driver := command.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(os.Stderr)
	}
	session, err := tui.NewSession(ed.Block(),
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(tui.OutputFormat(firstNonEmpty(command.Format, cfg.Output))),
		tui.WithName(ed.Prefix()),
		tui.WithLogger(log),
	)
	if err != nil {
		return err
	}
	out, err := session.Run(ctx)
	if err != nil {
		return err
	}
	return writeOutput(stdoutOr(command.stdout), command.Output, out)
}
