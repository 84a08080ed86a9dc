// Package cli provides the command-line interface for blockedit.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/internal/config"
	"github.com/goliatone/go-streamfield/pkg/editor"
	"github.com/goliatone/go-streamfield/pkg/render"
	"github.com/goliatone/go-streamfield/pkg/renderers/html"
	"github.com/goliatone/go-streamfield/pkg/schema"
)

// CommandLineOpts holds the global flags and the commands, for go-flags to
// parse command line args into.
type CommandLineOpts struct {
	Config   string `short:"c" long:"config" description:"YAML config file" value-name:"<file>"`
	LogLevel string `short:"l" long:"log-level" description:"override the configured log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	Prefix   string `short:"p" long:"prefix" description:"submission prefix of the root block (defaults to its name)"`

	RenderCommand RenderCommand `command:"render" description:"render a definition to HTML"`
	EditCommand   EditCommand   `command:"edit" description:"edit a definition interactively in the terminal"`
	SubmitCommand SubmitCommand `command:"submit" description:"decode a form submission into state and project flat errors"`
	SchemaCommand SchemaCommand `command:"schema" description:"print the JSON Schema of definition documents"`
}

// Opts receives the parsed command line.
var Opts CommandLineOpts

// settings loads the config file and environment, then applies global flags.
func (o *CommandLineOpts) settings() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Prefix != "" {
		cfg.Prefix = o.Prefix
	}
	level, err := cfg.Level()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return cfg, logger, nil
}

// documentInputs names the files an editor is assembled from.
type documentInputs struct {
	schema string
	state  string
	errors string
}

// definition splits "api.yaml#Article" into the OpenAPI document path and
// the component schema to derive the definition from. A plain path has no
// component.
func (in documentInputs) definition() (path, component string) {
	path, component, _ = strings.Cut(in.schema, "#")
	return path, component
}

func (in documentInputs) files() []string {
	var out []string
	schemaPath, _ := in.definition()
	for _, path := range []string{schemaPath, in.state, in.errors} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// loadEditor builds the definition at in.schema and mounts it with the
// optional state and recursive error payload files.
func loadEditor(ctx context.Context, cfg config.Config, log zerolog.Logger, in documentInputs) (*editor.Editor, error) {
	if in.schema == "" {
		return nil, fmt.Errorf("cli: no definition file (use --schema or the schema setting)")
	}
	registry, err := rendererRegistry(cfg)
	if err != nil {
		return nil, err
	}
	options := []editor.Option{
		editor.WithLogger(log),
		editor.WithRenderers(registry),
		editor.WithPrefix(cfg.Prefix),
		editor.WithDefaultRenderer(cfg.Renderer),
	}
	if in.state != "" {
		state, err := readJSON(in.state)
		if err != nil {
			return nil, err
		}
		options = append(options, editor.WithState(state))
	}

	builder := schema.NewBuilder(nil, schema.WithLogger(log))
	path, component := in.definition()
	fsys, name := os.DirFS(filepath.Dir(path)), filepath.Base(path)
	var ed *editor.Editor
	if component != "" {
		ed, err = editor.LoadOpenAPI(ctx, fsys, name, component, builder, options...)
	} else {
		ed, err = editor.Load(ctx, fsys, name, builder, options...)
	}
	if err != nil {
		return nil, err
	}

	if in.errors != "" {
		raw, err := os.ReadFile(in.errors)
		if err != nil {
			return nil, fmt.Errorf("cli: read errors: %w", err)
		}
		if _, err := ed.ApplyErrorJSON(raw); err != nil {
			return nil, err
		}
	}
	return ed, nil
}

func rendererRegistry(cfg config.Config) (*render.Registry, error) {
	var options []html.Option
	if cfg.Templates != "" {
		options = append(options, html.WithTemplatesDir(cfg.Templates))
	}
	renderer, err := html.New(options...)
	if err != nil {
		return nil, fmt.Errorf("cli: html renderer: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(renderer); err != nil {
		return nil, err
	}
	return registry, nil
}

func readJSON(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read %s: %w", path, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cli: decode %s: %w", path, err)
	}
	return out, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := io.WriteString(stdout, "\n")
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cli: write %s: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
