package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clout/internal/core"
)

// scriptedStream replays a fixed token sequence, optionally ending in an
// error, standing in for the backend SSE stream.
type scriptedStream struct {
	tokens []string
	err    error
	pos    int
	closed bool
}

func (s *scriptedStream) Next() bool {
	if s.pos >= len(s.tokens) {
		return false
	}
	s.pos++
	return true
}

func (s *scriptedStream) Text() string { return s.tokens[s.pos-1] }
func (s *scriptedStream) Err() error   { return s.err }
func (s *scriptedStream) Close() error { s.closed = true; return nil }

func scriptedClient(stream *scriptedStream) *Client {
	c := &Client{modelName: "test-model"}
	c.newStream = func(ctx context.Context, prompt string) tokenStream { return stream }
	return c
}

func TestParsePost_WithMarker(t *testing.T) {
	raw := "###\nHEADLINE:\nWhy Tone Matters\n\nPOST:\nBody text here.\n###"

	got := ParsePost(raw)

	if got.Headline != "Why Tone Matters" {
		t.Errorf("Expected headline 'Why Tone Matters', got %q", got.Headline)
	}
	if got.Body != "Body text here.\n###" {
		t.Errorf("Expected body to keep trailing marker, got %q", got.Body)
	}
}

func TestParsePost_SplitsAtFirstMarker(t *testing.T) {
	raw := "HEADLINE: First POST: body mentions POST: again"

	got := ParsePost(raw)

	if got.Headline != "First" {
		t.Errorf("Expected headline 'First', got %q", got.Headline)
	}
	if got.Body != "body mentions POST: again" {
		t.Errorf("Expected body to keep later markers, got %q", got.Body)
	}
}

func TestParsePost_NoMarker(t *testing.T) {
	got := ParsePost("  just some freeform text  ")

	if got.Headline != FallbackHeadline {
		t.Errorf("Expected fallback headline %q, got %q", FallbackHeadline, got.Headline)
	}
	if got.Body != "just some freeform text" {
		t.Errorf("Expected whole trimmed output as body, got %q", got.Body)
	}
}

func TestParsePost_Empty(t *testing.T) {
	got := ParsePost("")

	if got.Headline != FallbackHeadline || got.Body != "" {
		t.Errorf("Expected fallback headline with empty body, got %+v", got)
	}
}

func TestGenerate_FoldsAndForwardsTokens(t *testing.T) {
	stream := &scriptedStream{tokens: []string{"HEADLINE: Hi", "\n\nPOST:", "\nHello ", "world"}}
	c := scriptedClient(stream)

	var sink strings.Builder
	got := c.Generate(context.Background(), "prompt", &sink)

	want := core.GeneratedPost{Headline: "Hi", Body: "Hello world"}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if sink.String() != "HEADLINE: Hi\n\nPOST:\nHello world" {
		t.Errorf("Expected every increment forwarded to the sink, got %q", sink.String())
	}
	if !stream.closed {
		t.Error("Expected the stream to be closed")
	}
}

func TestGenerate_StreamErrorReturnsSentinel(t *testing.T) {
	stream := &scriptedStream{
		tokens: []string{"partial "},
		err:    errors.New("context window exceeded"),
	}
	c := scriptedClient(stream)

	var sink strings.Builder
	got := c.Generate(context.Background(), "prompt", &sink)

	want := core.GeneratedPost{Headline: ErrorHeadline, Body: ""}
	if got != want {
		t.Errorf("Expected sentinel %+v, got %+v", want, got)
	}
	if !strings.Contains(sink.String(), "[LLM ERROR]") {
		t.Errorf("Expected the error reported on the sink, got %q", sink.String())
	}
}

func TestGenerate_EmptyStream(t *testing.T) {
	c := scriptedClient(&scriptedStream{})

	var sink strings.Builder
	got := c.Generate(context.Background(), "prompt", &sink)

	if got.Headline != FallbackHeadline || got.Body != "" {
		t.Errorf("Expected fallback parse of empty output, got %+v", got)
	}
}
