package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-streamfield/pkg/renderers/tui"
)

func quietOpts(t *testing.T) {
	t.Helper()
	previous := Opts
	Opts = CommandLineOpts{LogLevel: "error"}
	t.Cleanup(func() { Opts = previous })
}

type scriptedDriver struct {
	selects []int
	inputs  []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *scriptedDriver) TextArea(context.Context, tui.TextAreaConfig) (string, error) {
	return "", errors.New("no textarea scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestRenderCommand_WritesForm(t *testing.T) {
	quietOpts(t)
	var out bytes.Buffer
	command := &RenderCommand{
		Schema: "testdata/page.yaml",
		State:  "testdata/state.json",
		Form:   true,
		Action: "/save",
		stdout: &out,
	}

	require.NoError(t, command.Execute(nil))
	markup := out.String()
	assert.True(t, strings.HasPrefix(markup, `<form method="post" action="/save" data-streamfield>`), markup)
	assert.Contains(t, markup, `name="page-body-count"`)
	assert.Contains(t, markup, "Welcome")
}

func TestRenderCommand_OpenAPIComponent(t *testing.T) {
	quietOpts(t)
	var out bytes.Buffer
	command := &RenderCommand{
		Schema: "testdata/api.yaml#Article",
		stdout: &out,
	}

	require.NoError(t, command.Execute(nil))
	markup := out.String()
	assert.Contains(t, markup, `name="article-title"`)
	assert.Contains(t, markup, `name="article-body-count"`)
	assert.Contains(t, markup, `name="article-tags-count"`)

	assert.Equal(t, []string{"testdata/api.yaml"}, documentInputs{schema: command.Schema}.files())
}

func TestRenderCommand_OutputFileAndErrors(t *testing.T) {
	quietOpts(t)
	dir := t.TempDir()
	errorsPath := filepath.Join(dir, "errors.json")
	require.NoError(t, os.WriteFile(errorsPath, []byte(`{"block_errors": {"title": ["Too short."]}}`), 0o644))
	target := filepath.Join(dir, "page.html")

	command := &RenderCommand{
		Schema: "testdata/page.yaml",
		Errors: errorsPath,
		Output: target,
	}
	require.NoError(t, command.Execute(nil))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Too short.")
}

func TestRenderCommand_MissingSchema(t *testing.T) {
	quietOpts(t)
	err := (&RenderCommand{stdout: &bytes.Buffer{}}).Execute(nil)
	assert.EqualError(t, err, "cli: no definition file (use --schema or the schema setting)")
}

func TestEditCommand_ScriptedSession(t *testing.T) {
	quietOpts(t)
	var out bytes.Buffer
	command := &EditCommand{
		Schema: "testdata/page.yaml",
		State:  "testdata/state.json",
		Format: "json",
		driver: &scriptedDriver{
			selects: []int{0, 8},
			inputs:  []string{"title", "Changed"},
		},
		stdout: &out,
	}

	require.NoError(t, command.Execute(nil))
	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	want := map[string]any{
		"title": "Changed",
		"body": []any{
			map[string]any{"type": "paragraph", "value": "Hello", "id": "p1"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edited value mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitCommand_DecodesAndProjectsErrors(t *testing.T) {
	quietOpts(t)
	dir := t.TempDir()
	errorsPath := filepath.Join(dir, "errors.json")
	require.NoError(t, os.WriteFile(errorsPath, []byte(`{"page.title": ["Too short."]}`), 0o644))

	body := strings.Join([]string{
		"page-title=Hi",
		"page-body-count=2",
		"page-body-0-type=paragraph",
		"page-body-0-id=p1",
		"page-body-0-order=1",
		"page-body-0-deleted=",
		"page-body-0-value=Second",
		"page-body-1-type=paragraph",
		"page-body-1-id=p2",
		"page-body-1-order=0",
		"page-body-1-deleted=",
		"page-body-1-value=First",
	}, "&")

	var out bytes.Buffer
	command := &SubmitCommand{
		Schema: "testdata/page.yaml",
		Errors: errorsPath,
		stdin:  strings.NewReader(body),
		stdout: &out,
	}
	require.NoError(t, command.Execute(nil))

	var got struct {
		State  map[string]any   `json:"state"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	wantState := map[string]any{
		"title": "Hi",
		"body": []any{
			map[string]any{"type": "paragraph", "value": "First", "id": "p2"},
			map[string]any{"type": "paragraph", "value": "Second", "id": "p1"},
		},
	}
	if diff := cmp.Diff(wantState, got.State); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, got.Errors, 1)
	title := got.Errors[0]["block_errors"].(map[string]any)["title"].(map[string]any)
	assert.Equal(t, []any{"Too short."}, title["messages"])
}

func TestSubmitCommand_RejectsBrokenSubmission(t *testing.T) {
	quietOpts(t)
	command := &SubmitCommand{
		Schema: "testdata/page.yaml",
		stdin:  strings.NewReader("page-title=Hi"),
		stdout: &bytes.Buffer{},
	}
	err := command.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page-body-count")
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&SchemaCommand{stdout: &out}).Execute(nil))
	assert.True(t, json.Valid(out.Bytes()))
}

func TestWatchFiles_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, zerolog.Nop(), []string{target}, func() error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// An unrelated file in the same directory is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(5 * time.Second)
	for waiting := true; waiting; {
		select {
		case <-changed:
			waiting = false
		case <-ticker.C:
			require.NoError(t, os.WriteFile(target, []byte(`{"title": "x"}`), 0o644))
		case <-deadline:
			t.Fatalf("no change observed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}
