// Package enrich gathers supplementary context for a source item: it
// derives a search query from the blog text, fetches the top result pages,
// and concatenates their text. Every failure on this path is soft — the
// pipeline runs with whatever context could be gathered, down to none.
package enrich

import (
	"context"
	"net/url"
	"strings"

	"clout/internal/core"
	"clout/internal/logger"
	"clout/internal/prompt"
	"clout/internal/search"

	"golang.org/x/time/rate"
)

const (
	// QueryLength is the number of leading characters of the blog text used
	// as the search query.
	QueryLength = 80

	// DefaultMaxResults caps how many result pages are fetched.
	DefaultMaxResults = 5
)

// FetchFunc retrieves the paragraph text of one page.
type FetchFunc func(url string) (string, error)

// Enricher turns seed text into an Enrichment bundle. A nil provider
// disables search entirely; Enrich then returns the empty bundle.
type Enricher struct {
	provider   search.Provider
	fetch      FetchFunc
	limiter    *rate.Limiter
	maxResults int
}

// New creates an Enricher. provider may be nil when no search credential is
// configured. The limiter spaces successive page fetches one second apart
// so result hosts are not hammered.
func New(provider search.Provider, fetch FetchFunc, maxResults int) *Enricher {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Enricher{
		provider:   provider,
		fetch:      fetch,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		maxResults: maxResults,
	}
}

// Enrich searches for pages related to seedText and scrapes them. The
// returned bundle always has non-nil Links; on any search failure or a nil
// provider both fields are empty and the degradation is logged, never
// returned as an error.
func (e *Enricher) Enrich(ctx context.Context, seedText string) core.Enrichment {
	empty := core.Enrichment{Links: []string{}}

	if e.provider == nil {
		logger.Info("Search disabled, skipping enrichment")
		return empty
	}

	query := prompt.Truncate(seedText, QueryLength)
	results, err := e.provider.Search(ctx, query, search.Config{MaxResults: e.maxResults})
	if err != nil {
		logger.Warn("Search failed, continuing without enrichment", "provider", e.provider.GetName(), "error", err.Error())
		return empty
	}

	links := []string{}
	for _, r := range results {
		if len(links) >= e.maxResults {
			break
		}
		if validURL(r.URL) {
			links = append(links, r.URL)
		}
	}

	var text strings.Builder
	for _, link := range links {
		if err := e.limiter.Wait(ctx); err != nil {
			break
		}
		pageText, err := e.fetch(link)
		if err != nil {
			logger.Warn("Failed to scrape result page", "url", link, "error", err.Error())
		}
		text.WriteString(pageText)
		text.WriteString("\n\n")
	}

	return core.Enrichment{Links: links, Text: text.String()}
}

// validURL reports whether s parses as an absolute http(s) URL with a host.
func validURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
