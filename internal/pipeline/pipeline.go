// Package pipeline orchestrates the end-to-end run: for each configured
// source URL it fetches the blog text, gathers search-derived enrichment,
// extracts entities, persists a debug row, and generates and persists one
// post per variant. Processing is strictly sequential; one item finishes
// before the next begins.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"clout/internal/config"
	"clout/internal/core"
	"clout/internal/extract"
	"clout/internal/logger"
	"clout/internal/prompt"

	"github.com/google/uuid"
)

// Generator produces one post from a composed prompt, forwarding streamed
// increments to sink. Implementations never return an error; a failed
// generation is the sentinel post.
type Generator interface {
	Generate(ctx context.Context, prompt string, sink io.Writer) core.GeneratedPost
}

// Enricher gathers supplementary context for one source item.
type Enricher interface {
	Enrich(ctx context.Context, seedText string) core.Enrichment
}

// Recorder persists pipeline output. Failures here are fatal to the run;
// store integrity is a prerequisite, not a degradable concern.
type Recorder interface {
	AppendPost(rec core.PostRecord) error
	AppendDebug(rec core.DebugRecord) error
}

// Deps carries the pipeline's collaborators so tests can substitute
// fixtures for every I/O boundary.
type Deps struct {
	Fetch     func(url string) (string, error)
	Enricher  Enricher
	Generator Generator
	Store     Recorder

	// Console receives the human-readable progress lines; Progress receives
	// the live token stream during generation. Both default to io.Discard
	// when nil so tests stay quiet.
	Console  io.Writer
	Progress io.Writer
}

// Run processes every configured source URL in order. Fetch and enrichment
// failures degrade per item; generation failures degrade per variant; only
// store errors (or a cancelled context) abort the run.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Console == nil {
		deps.Console = io.Discard
	}
	if deps.Progress == nil {
		deps.Progress = io.Discard
	}

	runID := uuid.NewString()
	variants := prompt.Variants()
	logger.Info("Pipeline run starting", "run_id", runID, "sources", len(cfg.Sources), "variants", len(variants))

	for _, sourceURL := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted: %w", err)
		}

		fmt.Fprintf(deps.Console, "\n📝 Scraping blog: %s\n", sourceURL)
		blogText, err := deps.Fetch(sourceURL)
		if err != nil {
			logger.Warn("Blog fetch failed", "run_id", runID, "url", sourceURL, "error", err.Error())
		}
		if blogText == "" {
			fmt.Fprintln(deps.Console, "No blog text found — skipping.")
			continue
		}

		fmt.Fprintln(deps.Console, "🔍 Running SERP search...")
		fmt.Fprintln(deps.Console, "🌐 Scraping SERP pages...")
		enrichment := deps.Enricher.Enrich(ctx, blogText)

		fmt.Fprintln(deps.Console, "📊 Extracting entities from SERP text...")
		entities := extract.Entities(enrichment.Text)

		// One debug row per source item, before any generation, regardless
		// of how the variants fare.
		debug := core.DebugRecord{
			SourceURL: sourceURL,
			Links:     enrichment.Links,
			Text:      enrichment.Text,
		}
		if err := deps.Store.AppendDebug(debug); err != nil {
			return fmt.Errorf("failed to persist debug record for %s: %w", sourceURL, err)
		}

		for _, variant := range variants {
			fmt.Fprintf(deps.Console, "\n--- Generating variant: %s ---\n\n", variant.Label)
			composed := prompt.Compose(blogText, enrichment.Text, variant)
			post := deps.Generator.Generate(ctx, composed, deps.Progress)
			fmt.Fprint(deps.Console, "\n\n--- generation complete ---\n")

			rec := core.PostRecord{
				SourceURL:   sourceURL,
				Variant:     variant.Label,
				Headline:    post.Headline,
				Body:        post.Body,
				Emails:      entities.Emails,
				ProperNouns: entities.ProperNouns,
				Links:       enrichment.Links,
			}
			if err := deps.Store.AppendPost(rec); err != nil {
				return fmt.Errorf("failed to persist post record for %s: %w", sourceURL, err)
			}

			fmt.Fprintf(deps.Console, "✅ Saved variant '%s' for %s to Excel.\n", variant.Label, sourceURL)
			logger.Info("Variant saved", "run_id", runID, "url", sourceURL, "variant", variant.Label, "headline", post.Headline)
		}
	}

	fmt.Fprintf(deps.Console, "\n🎉 All done. Excel saved to: %s\n", cfg.Output.File)
	logger.Info("Pipeline run complete", "run_id", runID)
	return nil
}
