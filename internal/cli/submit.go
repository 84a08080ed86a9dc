package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/editor"
)

// SubmitCommand contains flags for the `submit` command line command.
type SubmitCommand struct {
	Schema string `short:"s" long:"schema" description:"definition document (JSON or YAML), or an OpenAPI document as api.yaml#Component" value-name:"<file>"`
	Body   string `short:"b" long:"body" description:"url-encoded submission body (stdin if empty)" value-name:"<file>"`
	Errors string `long:"errors" description:"JSON object mapping field paths to messages" value-name:"<file>"`
	Output string `short:"o" long:"output" description:"output file (stdout if empty)" value-name:"<file>"`

	stdin  io.Reader
	stdout io.Writer
}

// submitResult is what the submit command prints.
type submitResult struct {
	State  any              `json:"state"`
	Errors blocks.ErrorList `json:"errors,omitempty"`
}

// Execute decodes the submission into state, remounts the tree with it and,
// when --errors is given, projects the flat error payload onto it.
func (command *SubmitCommand) Execute(args []string) error {
	cfg, log, err := Opts.settings()
	if err != nil {
		return err
	}
	ctx := context.Background()

	in := documentInputs{schema: firstNonEmpty(command.Schema, cfg.Schema)}
	blank, err := loadEditor(ctx, cfg, log, in)
	if err != nil {
		return err
	}
	body, err := command.readBody()
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return fmt.Errorf("cli: parse submission: %w", err)
	}
	state, err := blank.DecodeSubmission(values)
	if err != nil {
		return err
	}

	result := submitResult{State: state}
	if command.Errors != "" {
		raw, err := os.ReadFile(command.Errors)
		if err != nil {
			return fmt.Errorf("cli: read errors: %w", err)
		}
		var payload map[string][]string
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("cli: decode errors: %w", err)
		}
		ed, err := editor.New(blank.Definition(),
			editor.WithState(state),
			editor.WithPrefix(blank.Prefix()),
			editor.WithLogger(log),
		)
		if err != nil {
			return err
		}
		result.Errors = ed.ApplyErrorPayload(payload)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encode result: %w", err)
	}
	return writeOutput(stdoutOr(command.stdout), command.Output, out)
}

func (command *SubmitCommand) readBody() ([]byte, error) {
	if command.Body != "" {
		data, err := os.ReadFile(command.Body)
		if err != nil {
			return nil, fmt.Errorf("cli: read body: %w", err)
		}
		return data, nil
	}
	stdin := command.stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("cli: read body: %w", err)
	}
	return data, nil
}
