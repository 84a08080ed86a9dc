package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/internal/config"
	"github.com/goliatone/go-streamfield/pkg/form"
	"github.com/goliatone/go-streamfield/pkg/render"
)

// RenderCommand contains flags for the `render` command line command.
type RenderCommand struct {
	Schema    string `short:"s" long:"schema" description:"definition document (JSON or YAML), or an OpenAPI document as api.yaml#Component" value-name:"<file>"`
	State     string `long:"state" description:"JSON file holding the initial state" value-name:"<file>"`
	Errors    string `long:"errors" description:"JSON file holding a recursive error payload" value-name:"<file>"`
	Renderer  string `short:"r" long:"renderer" description:"renderer name (defaults to the configured renderer)"`
	Form      bool   `short:"f" long:"form" description:"wrap the output in a <form> with hidden fields"`
	Action    string `long:"action" description:"form action URL"`
	Method    string `long:"method" description:"form method; PUT, PATCH and DELETE add a _method field" default:"POST"`
	CSRF      string `long:"csrf" description:"CSRF token to embed as a hidden field"`
	CSRFField string `long:"csrf-field" description:"name of the CSRF hidden field" default:"_csrf"`
	Title     string `short:"t" long:"title" description:"page heading"`
	Output    string `short:"o" long:"output" description:"output file (stdout if empty)" value-name:"<file>"`
	Watch     bool   `short:"w" long:"watch" description:"re-render whenever an input file changes"`

	stdout io.Writer
}

// Execute renders once and, with --watch, again on every input change until
// interrupted.
func (command *RenderCommand) Execute(args []string) error {
	cfg, log, err := Opts.settings()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := documentInputs{
		schema: firstNonEmpty(command.Schema, cfg.Schema),
		state:  command.State,
		errors: command.Errors,
	}
	if err := command.run(ctx, cfg, log, in); err != nil {
		return err
	}
	if !command.Watch {
		return nil
	}
	return watchFiles(ctx, log, in.files(), func() error {
		return command.run(ctx, cfg, log, in)
	})
}

func (command *RenderCommand) run(ctx context.Context, cfg config.Config, log zerolog.Logger, in documentInputs) error {
	ed, err := loadEditor(ctx, cfg, log, in)
	if err != nil {
		return err
	}
	options := render.RenderOptions{
		Form:   command.Form,
		Action: command.Action,
		Method: command.Method,
		Title:  command.Title,
	}
	if command.CSRF != "" {
		options.Hidden = append(options.Hidden, form.CSRFToken(command.CSRFField, command.CSRF))
	}
	out, err := ed.Render(ctx, command.Renderer, options)
	if err != nil {
		return err
	}
	if err := writeOutput(stdoutOr(command.stdout), command.Output, out); err != nil {
		return err
	}
	log.Debug().Str("schema", in.schema).Int("bytes", len(out)).Msg("rendered")
	return nil
}

// watchFiles calls fn after writes, creates or renames of any of paths. The
// parent directories are watched so editors that replace files on save are
// still seen.
func watchFiles(ctx context.Context, log zerolog.Logger, paths []string, fn func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cli: watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	targets := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("cli: watch %s: %w", path, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("cli: watch %s: %w", dir, err)
		}
	}
	log.Info().Strs("files", paths).Msg("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := targets[name]; !ok {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("change detected")
			if err := fn(); err != nil {
				log.Error().Err(err).Msg("re-render failed")
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func stdoutOr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
