package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/form"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

// Session edits a mounted block tree from the terminal. Each round prints the
// outline, asks for an action and a dotted path, and applies the action
// through the same operations the rendered controls use, so limits and
// capabilities hold exactly as they do in the browser.
type Session struct {
	root   blocks.Block
	driver PromptDriver
	format OutputFormat
	theme  Theme
	name   string
	log    zerolog.Logger
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

// NewSession constructs a session over root with defaults (survey driver,
// JSON output).
func NewSession(root blocks.Block, options ...Option) (*Session, error) {
	if root == nil {
		return nil, errors.New("tui: root block is required")
	}
	s := &Session{
		root:   root,
		format: OutputFormatJSON,
		theme:  DefaultTheme,
		name:   root.Definition().Name(),
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s, nil
}

// ContentType reports the serialization format used by Run and Serialize.
func (s *Session) ContentType() string {
	switch s.format {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

func (s *Session) actions() []action {
	return []action{
		{label: "Edit a field", run: s.editField},
		{label: "Add an item to a list", run: s.appendItem},
		{label: "Add a block to a stream", run: s.addBlock},
		{label: "Move a block", run: s.moveBlock},
		{label: "Duplicate a block", run: s.duplicateBlock},
		{label: "Delete a block", run: s.deleteBlock},
		{label: "Split a paragraph", run: s.splitBlock},
		{label: "Show submission", run: s.showSubmission},
		{label: "Done"},
	}
}

// Run loops until the user picks Done and returns the serialized tree.
// Rejected actions (limits, bad paths) are reported and the loop continues;
// driver failures and aborts end the session.
func (s *Session) Run(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	actions := s.actions()
	labels := make([]string, len(actions))
	for i, act := range actions {
		labels[i] = act.label
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.driver.Info(ctx, Outline(s.root, s.name)); err != nil {
			return nil, err
		}
		choice, err := s.driver.Select(ctx, SelectConfig{Message: "Action", Options: labels, PageSize: len(labels)})
		if err != nil {
			return nil, err
		}
		if choice < 0 || choice >= len(actions) {
			return nil, fmt.Errorf("tui: unknown action %d", choice)
		}
		act := actions[choice]
		if act.run == nil {
			return s.Serialize()
		}
		if err := act.run(ctx); err != nil {
			var pe *promptError
			if errors.As(err, &pe) {
				return nil, pe.err
			}
			s.log.Debug().Err(err).Str("action", act.label).Msg("action rejected")
			if err := s.driver.Info(ctx, s.theme.ErrorPrefix+err.Error()); err != nil {
				return nil, err
			}
		}
	}
}

// Serialize encodes the current tree in the session's output format.
func (s *Session) Serialize() ([]byte, error) {
	switch s.format {
	case OutputFormatFormURLEncoded:
		return []byte(form.Collect(s.root.Element()).Encode()), nil
	case OutputFormatPrettyText:
		return []byte(Outline(s.root, s.name)), nil
	default:
		data, err := json.MarshalIndent(s.root.Value(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode value: %w", err)
		}
		return data, nil
	}
}

func (s *Session) editField(ctx context.Context) error {
	path, field, err := s.askField(ctx, "Field path")
	if err != nil {
		return err
	}
	enterer, ok := field.Widget().(widgets.Enterer)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotEditable, path)
	}

	meta := field.Definition().Meta()
	message := meta.Label
	if message == "" {
		message = blocks.DefaultLabeler(field.Definition().Name())
	}

	var value any
	switch widget := field.Widget().(type) {
	case *widgets.CheckboxWidget:
		value, err = s.confirm(ctx, ConfirmConfig{Message: message, Default: widget.Checked(), Help: meta.HelpText})
	case *widgets.SelectWidget:
		choices := widget.Choices()
		options := make([]string, len(choices))
		current := 0
		for i, choice := range choices {
			options[i] = choice.Label
			if options[i] == "" {
				options[i] = choice.Value
			}
			if choice.Value == widget.Value() {
				current = i
			}
		}
		var idx int
		idx, err = s.choose(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: current, Help: meta.HelpText})
		if err == nil {
			if idx < 0 || idx >= len(choices) {
				return fmt.Errorf("tui: choice %d outside %d options", idx, len(choices))
			}
			value = choices[idx].Value
		}
	case *widgets.TextAreaWidget, *widgets.ParagraphWidget:
		value, err = s.textArea(ctx, TextAreaConfig{Message: message, Default: fmt.Sprint(field.Value()), Help: meta.HelpText})
	default:
		value, err = s.input(ctx, InputConfig{Message: message, Default: fmt.Sprint(field.Value()), Help: meta.HelpText})
	}
	if err != nil {
		return err
	}
	enterer.Enter(value)
	return nil
}

func (s *Session) appendItem(ctx context.Context) error {
	path, block, err := s.askBlock(ctx, "List path")
	if err != nil {
		return err
	}
	list, ok := block.(*blocks.ListBlock)
	if !ok {
		return fmt.Errorf("%w: %q is a %s, not a list", ErrWrongKind, path, block.Definition().Kind())
	}
	def, ok := list.Definition().(*blocks.ListDefinition)
	if !ok {
		return fmt.Errorf("%w: %q has no list definition", ErrWrongKind, path)
	}
	index, err := s.askIndex(ctx, "Position", list.Count(), list.Count())
	if err != nil {
		return err
	}
	child, err := list.Insert(def.Child().DefaultState(), index, blocks.WithFocus())
	if err != nil {
		return err
	}
	return s.info(ctx, "added "+joinPath(path, strconv.Itoa(child.Index())))
}

func (s *Session) addBlock(ctx context.Context) error {
	path, block, err := s.askBlock(ctx, "Stream path")
	if err != nil {
		return err
	}
	stream, ok := block.(*blocks.StreamBlock)
	if !ok {
		return fmt.Errorf("%w: %q is a %s, not a stream", ErrWrongKind, path, block.Definition().Kind())
	}
	def, ok := stream.Definition().(*blocks.StreamDefinition)
	if !ok {
		return fmt.Errorf("%w: %q has no stream definition", ErrWrongKind, path)
	}
	children := def.ChildDefinitions()
	options := make([]string, len(children))
	for i, child := range children {
		options[i] = child.Meta().Label
		if options[i] == "" {
			options[i] = blocks.DefaultLabeler(child.Name())
		}
	}
	choice, err := s.choose(ctx, SelectConfig{Message: "Block type", Options: options})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(children) {
		return fmt.Errorf("tui: block type %d outside %d options", choice, len(children))
	}
	index, err := s.askIndex(ctx, "Position", stream.Count(), stream.Count())
	if err != nil {
		return err
	}
	child, err := stream.AddBlock(children[choice].Name(), index)
	if err != nil {
		return err
	}
	return s.info(ctx, "added "+joinPath(path, strconv.Itoa(child.Index())))
}

func (s *Session) moveBlock(ctx context.Context) error {
	path, seq, index, err := s.askChild(ctx)
	if err != nil {
		return err
	}
	to, err := s.askIndex(ctx, "Move to", index, seq.Count()-1)
	if err != nil {
		return err
	}
	if err := seq.MoveBlock(index, to); err != nil {
		return err
	}
	return s.info(ctx, fmt.Sprintf("moved %s to %d", path, to))
}

func (s *Session) duplicateBlock(ctx context.Context) error {
	path, seq, index, err := s.askChild(ctx)
	if err != nil {
		return err
	}
	child, err := seq.DuplicateBlock(index)
	if err != nil {
		return err
	}
	return s.info(ctx, fmt.Sprintf("duplicated %s at %d", path, child.Index()))
}

func (s *Session) deleteBlock(ctx context.Context) error {
	path, seq, index, err := s.askChild(ctx)
	if err != nil {
		return err
	}
	ok, err := s.confirm(ctx, ConfirmConfig{Message: "Delete " + path + "?"})
	if err != nil || !ok {
		return err
	}
	if err := seq.DeleteBlock(index); err != nil {
		return err
	}
	return s.info(ctx, "deleted "+path)
}

func (s *Session) splitBlock(ctx context.Context) error {
	path, field, err := s.askField(ctx, "Paragraph path")
	if err != nil {
		return err
	}
	splitter, ok := field.Widget().(widgets.Splitter)
	if !ok {
		return fmt.Errorf("%w: %q cannot be split", ErrWrongKind, path)
	}
	if !splitter.CanSplit() {
		return fmt.Errorf("%w: split %q", blocks.ErrCapabilityDisabled, path)
	}
	length := utf8.RuneCountInString(fmt.Sprint(field.Value()))
	cursor, err := s.askIndex(ctx, "Split at character", length, length)
	if err != nil {
		return err
	}
	return splitter.SplitAt(cursor)
}

func (s *Session) showSubmission(ctx context.Context) error {
	out, err := s.Serialize()
	if err != nil {
		return err
	}
	return s.info(ctx, string(out))
}

func (s *Session) askBlock(ctx context.Context, message string) (string, blocks.Block, error) {
	path, err := s.input(ctx, InputConfig{Message: message, Validator: func(v string) error {
		_, err := blocks.Resolve(s.root, v)
		return err
	}})
	if err != nil {
		return "", nil, err
	}
	path = strings.TrimSpace(path)
	block, err := blocks.Resolve(s.root, path)
	if err != nil {
		return "", nil, err
	}
	return path, block, nil
}

func (s *Session) askField(ctx context.Context, message string) (string, *blocks.FieldBlock, error) {
	path, block, err := s.askBlock(ctx, message)
	if err != nil {
		return "", nil, err
	}
	field, ok := block.(*blocks.FieldBlock)
	if !ok || field.Failed() {
		return "", nil, fmt.Errorf("%w: %q", ErrNotEditable, path)
	}
	return path, field, nil
}

func (s *Session) askChild(ctx context.Context) (string, blocks.Sequence, int, error) {
	path, err := s.input(ctx, InputConfig{Message: "Block path", Validator: func(v string) error {
		_, err := blocks.ResolveChild(s.root, v)
		return err
	}})
	if err != nil {
		return "", nil, 0, err
	}
	path = strings.TrimSpace(path)
	if _, err := blocks.ResolveChild(s.root, path); err != nil {
		return "", nil, 0, err
	}
	seq, index, err := blocks.ResolveIndex(s.root, path)
	if err != nil {
		return "", nil, 0, err
	}
	return path, seq, index, nil
}

func (s *Session) askIndex(ctx context.Context, message string, def, upper int) (int, error) {
	parse := func(v string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("tui: %q is not a number", v)
		}
		if n < 0 || n > upper {
			return 0, fmt.Errorf("%w: %d outside 0..%d", blocks.ErrIndexOutOfRange, n, upper)
		}
		return n, nil
	}
	raw, err := s.input(ctx, InputConfig{
		Message:   fmt.Sprintf("%s (0-%d)", message, upper),
		Default:   strconv.Itoa(def),
		Validator: func(v string) error { _, err := parse(v); return err },
	})
	if err != nil {
		return 0, err
	}
	return parse(raw)
}

func (s *Session) input(ctx context.Context, cfg InputConfig) (string, error) {
	out, err := s.driver.Input(ctx, cfg)
	if err != nil {
		return "", &promptError{err: err}
	}
	return out, nil
}

func (s *Session) textArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	out, err := s.driver.TextArea(ctx, cfg)
	if err != nil {
		return "", &promptError{err: err}
	}
	return out, nil
}

func (s *Session) confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	out, err := s.driver.Confirm(ctx, cfg)
	if err != nil {
		return false, &promptError{err: err}
	}
	return out, nil
}

func (s *Session) choose(ctx context.Context, cfg SelectConfig) (int, error) {
	out, err := s.driver.Select(ctx, cfg)
	if err != nil {
		return 0, &promptError{err: err}
	}
	return out, nil
}

func (s *Session) info(ctx context.Context, msg string) error {
	if err := s.driver.Info(ctx, s.theme.InfoPrefix+msg); err != nil {
		return &promptError{err: err}
	}
	return nil
}
