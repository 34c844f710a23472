// Package llm drives post generation against a local OpenAI-compatible
// server (llama-server, llamafile, Ollama). Generation streams token
// increments so the operator sees progress on long outputs; a per-variant
// failure yields a sentinel post instead of an error so one bad generation
// never stops the run.
package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clout/internal/config"
	"clout/internal/core"
	"clout/internal/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
)

const (
	// DefaultMaxTokens bounds generation length; sized for a small local
	// model with a 2048-token context.
	DefaultMaxTokens = 700
	// DefaultTemperature keeps output focused rather than creative.
	DefaultTemperature = 0.35

	// headingMarker and headlineLabel open the mandated output envelope;
	// bodyMarker separates headline from body.
	headingMarker = "###"
	headlineLabel = "HEADLINE:"
	bodyMarker    = "POST:"

	// FallbackHeadline is used when the model ignores the envelope.
	FallbackHeadline = "LinkedIn Post"
	// ErrorHeadline marks a variant whose generation failed.
	ErrorHeadline = "ERROR"
)

// tokenStream is the minimal surface the driver consumes; tests substitute
// a scripted implementation.
type tokenStream interface {
	Next() bool
	Text() string
	Err() error
	Close() error
}

// chatStream adapts the openai-go SSE stream to tokenStream.
type chatStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
}

func (s *chatStream) Next() bool { return s.stream.Next() }

func (s *chatStream) Text() string {
	chunk := s.stream.Current()
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func (s *chatStream) Err() error   { return s.stream.Err() }
func (s *chatStream) Close() error { return s.stream.Close() }

// Client generates posts through a local OpenAI-compatible endpoint.
type Client struct {
	modelName string
	oClient   openai.Client
	newStream func(ctx context.Context, prompt string) tokenStream
}

// NewClient creates a generation client and probes the backend's model list
// so a down server or a model name the server does not expose fails here,
// before any source item is processed.
func NewClient(ctx context.Context, cfg config.LLM) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("generation model name is required")
	}

	opts := []option.RequestOption{option.WithBaseURL(cfg.BaseURL)}
	// llama-server ignores the key but the client requires one to be set.
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "none"
	}
	opts = append(opts, option.WithAPIKey(apiKey))

	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: d}))
		}
	}

	oClient := openai.NewClient(opts...)

	page, err := oClient.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation backend unreachable at %s: %w", cfg.BaseURL, err)
	}

	served := false
	for _, m := range page.Data {
		if m.ID == cfg.Model {
			served = true
			break
		}
	}
	if !served {
		return nil, fmt.Errorf("model %q is not served by %s", cfg.Model, cfg.BaseURL)
	}

	c := &Client{modelName: cfg.Model, oClient: oClient}
	c.newStream = c.openStream
	logger.Info("Generation backend ready", "base_url", cfg.BaseURL, "model", cfg.Model)
	return c, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string {
	return c.modelName
}

func (c *Client) openStream(ctx context.Context, prompt string) tokenStream {
	stream := c.oClient.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(DefaultMaxTokens),
		Temperature: openai.Float(DefaultTemperature),
	})
	return &chatStream{stream: stream}
}

// Generate runs one generation call, folding streamed increments into the
// full output while forwarding each to sink for live progress. A stream
// error (context overflow, backend failure) is reported on sink and in the
// log and yields the sentinel post; it is never returned as an error.
func (c *Client) Generate(ctx context.Context, prompt string, sink io.Writer) core.GeneratedPost {
	stream := c.newStream(ctx, prompt)
	defer func() { _ = stream.Close() }()

	var full strings.Builder
	for stream.Next() {
		token := stream.Text()
		full.WriteString(token)
		fmt.Fprint(sink, token)
	}

	if err := stream.Err(); err != nil {
		logger.Error("Generation failed", err, "model", c.modelName)
		fmt.Fprintf(sink, "\n\n[LLM ERROR] %v\n", err)
		return core.GeneratedPost{Headline: ErrorHeadline, Body: ""}
	}

	return ParsePost(full.String())
}

// ParsePost splits raw model output into headline and body at the first
// body marker. The headline side has the heading marker and headline label
// removed, then is trimmed; the body side is trimmed only. Output without
// a body marker falls back to a fixed headline with the whole trimmed text
// as body, because models do deviate from the requested envelope.
func ParsePost(raw string) core.GeneratedPost {
	idx := strings.Index(raw, bodyMarker)
	if idx < 0 {
		return core.GeneratedPost{Headline: FallbackHeadline, Body: strings.TrimSpace(raw)}
	}

	head := raw[:idx]
	head = strings.ReplaceAll(head, headingMarker, "")
	head = strings.ReplaceAll(head, headlineLabel, "")

	return core.GeneratedPost{
		Headline: strings.TrimSpace(head),
		Body:     strings.TrimSpace(raw[idx+len(bodyMarker):]),
	}
}
