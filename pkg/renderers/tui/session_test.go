package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/testsupport"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) errorsReported() []string {
	var out []string
	for _, msg := range s.infoMessages {
		if strings.HasPrefix(msg, DefaultTheme.ErrorPrefix) {
			out = append(out, msg)
		}
	}
	return out
}

// Action indexes in menu order.
const (
	pickEdit = iota
	pickAppend
	pickAdd
	pickMove
	pickDuplicate
	pickDelete
	pickSplit
	pickShow
	pickDone
)

func articleDefinition() *blocks.StructDefinition {
	paragraph := blocks.NewField("paragraph", blocks.Meta{}, widgets.Paragraph(""))
	links := blocks.NewList("links", blocks.Meta{MaxNum: 2}, blocks.NewField("url", blocks.Meta{}, widgets.TextInput("url", "")))
	body := blocks.MustStream("body", blocks.Meta{}, paragraph, links)
	return blocks.MustStruct("article", blocks.Meta{}, []blocks.Definition{
		blocks.NewField("title", blocks.Meta{Label: "Title"}, widgets.TextInput("text", "")),
		blocks.NewField("published", blocks.Meta{}, widgets.Checkbox()),
		blocks.NewField("status", blocks.Meta{}, widgets.Select([]widgets.Choice{{Value: "draft"}, {Value: "live", Label: "Live"}})),
		body,
	})
}

func TestSession_EditAddAndSplit(t *testing.T) {
	_, root := testsupport.Mount(t, articleDefinition(), "article", nil)
	driver := &stubDriver{
		selectIdx: []int{pickEdit, pickEdit, pickEdit, 1, pickAdd, 0, pickEdit, pickSplit, pickDone},
		inputs:    []string{"title", "Hello", "published", "status", "body", "0", "body.0", "body.0", "3"},
		confirm:   []bool{true},
		textAreas: []string{"one two"},
	}
	session, err := NewSession(root, WithPromptDriver(driver))
	require.NoError(t, err)

	out, err := session.Run(context.Background())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	want := map[string]any{
		"title":     "Hello",
		"published": true,
		"status":    "live",
		"body": []any{
			map[string]any{"type": "paragraph", "value": "one", "id": "id-1"},
			map[string]any{"type": "paragraph", "value": "two", "id": "id-2"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, driver.infoMessages, "added body.0")
	assert.Empty(t, driver.errorsReported())
	assert.Equal(t, len(driver.inputs), driver.inputPos)
}

func TestSession_RejectedActionsAreReported(t *testing.T) {
	state := map[string]any{
		"body": []blocks.StreamItem{
			{Type: "links", Value: []any{"https://a.example", "https://b.example"}},
		},
	}
	_, root := testsupport.Mount(t, articleDefinition(), "article", state)
	driver := &stubDriver{
		selectIdx: []int{pickAppend, pickDuplicate, pickEdit, pickSplit, pickDelete, pickDone},
		inputs:    []string{"body.0", "2", "body.0.1", "body", "title", "body.0.0"},
		confirm:   []bool{true},
	}
	session, err := NewSession(root, WithPromptDriver(driver))
	require.NoError(t, err)

	out, err := session.Run(context.Background())
	require.NoError(t, err)

	reported := driver.errorsReported()
	require.Len(t, reported, 4)
	assert.True(t, strings.HasPrefix(reported[0], "error: blocks: block count limit reached"), reported[0])
	assert.True(t, strings.HasPrefix(reported[1], "error: blocks: block count limit reached"), reported[1])
	assert.True(t, strings.HasPrefix(reported[2], "error: "+ErrNotEditable.Error()), reported[2])
	assert.True(t, strings.HasPrefix(reported[3], "error: "+ErrWrongKind.Error()), reported[3])
	assert.Contains(t, driver.infoMessages, "deleted body.0.0")

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	body := got["body"].([]any)
	require.Len(t, body, 1)
	assert.Equal(t, []any{"https://b.example"}, body[0].(map[string]any)["value"])
}

func TestSession_MoveAndDuplicate(t *testing.T) {
	state := map[string]any{
		"body": []blocks.StreamItem{
			{Type: "paragraph", Value: "a", ID: "p1"},
			{Type: "paragraph", Value: "b", ID: "p2"},
		},
	}
	_, root := testsupport.Mount(t, articleDefinition(), "article", state)
	driver := &stubDriver{
		selectIdx: []int{pickMove, pickDuplicate, pickDone},
		inputs:    []string{"body.0", "1", "body.1"},
	}
	session, err := NewSession(root, WithPromptDriver(driver))
	require.NoError(t, err)

	_, err = session.Run(context.Background())
	require.NoError(t, err)

	stream, err := blocks.Resolve(root, "body")
	require.NoError(t, err)
	var got []string
	for _, item := range stream.Value().([]blocks.StreamItem) {
		got = append(got, item.ID+"="+item.Value.(string))
	}
	if diff := cmp.Diff([]string{"p2=b", "p1=a", "id-1=a"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_DriverFailureEndsSession(t *testing.T) {
	_, root := testsupport.Mount(t, articleDefinition(), "article", nil)
	driver := &stubDriver{selectIdx: []int{pickEdit}}
	session, err := NewSession(root, WithPromptDriver(driver))
	require.NoError(t, err)

	_, err = session.Run(context.Background())
	assert.EqualError(t, err, "no input scripted")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = session.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_FormOutput(t *testing.T) {
	state := map[string]any{
		"title": "Hi",
		"body":  []blocks.StreamItem{{Type: "paragraph", Value: "Hello", ID: "p1"}},
	}
	_, root := testsupport.Mount(t, articleDefinition(), "article", state)
	session, err := NewSession(root, WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatFormURLEncoded))
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", session.ContentType())

	out, err := session.Serialize()
	require.NoError(t, err)
	values, err := url.ParseQuery(string(out))
	require.NoError(t, err)

	assert.Equal(t, "Hi", values.Get("article-title"))
	assert.Equal(t, "1", values.Get("article-body-count"))
	assert.Equal(t, "p1", values.Get("article-body-0-id"))
	assert.Equal(t, "paragraph", values.Get("article-body-0-type"))
	assert.Equal(t, "Hello", values.Get("article-body-0-value"))
	assert.False(t, values.Has("article-published"))
}

func TestOutline(t *testing.T) {
	state := map[string]any{
		"title":  "Hi",
		"status": "draft",
		"body": []blocks.StreamItem{
			{Type: "paragraph", Value: "Hello"},
			{Type: "links", Value: []any{"https://a.example"}},
		},
	}
	_, root := testsupport.Mount(t, articleDefinition(), "article", state)
	root.SetError(blocks.Single(blocks.StructError{BlockErrors: map[string]blocks.ValidationError{
		"title": blocks.FieldError{Messages: []string{"Required"}},
	}}))

	want := strings.Join([]string{
		"article {struct}",
		`  title = "Hi"`,
		"    ! Required",
		"  published = false",
		`  status = "draft"`,
		"  body [stream, 2]",
		`    body.0 <paragraph> = "Hello"`,
		"    body.1 <links> [list, 1]",
		`      body.1.0 = "https://a.example"`,
	}, "\n")
	if diff := cmp.Diff(want, Outline(root, "")); diff != "" {
		t.Fatalf("outline mismatch (-want +got):\n%s", diff)
	}
}
