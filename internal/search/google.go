package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"clout/internal/logger"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider using the Google Custom Search API
// through the official client.
type GoogleProvider struct {
	apiKey    string
	searchID  string
	rateLimit time.Duration
	lastCall  time.Time
}

// NewGoogleProvider creates a new Google Custom Search provider
func NewGoogleProvider(apiKey, searchID string) *GoogleProvider {
	return &GoogleProvider{
		apiKey:    apiKey,
		searchID:  searchID,
		rateLimit: 100 * time.Millisecond, // Google CSE has generous rate limits
	}
}

// GetName returns the name of this provider
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// Search performs a search using the Google Custom Search API
func (g *GoogleProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	// Respect rate limiting
	if elapsed := time.Since(g.lastCall); elapsed < g.rateLimit {
		time.Sleep(g.rateLimit - elapsed)
	}
	g.lastCall = time.Now()

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google CSE service: %w", err)
	}

	call := svc.Cse.List().
		Q(query).
		Cx(g.searchID).
		Num(int64(min(config.MaxResults, 10))). // Google CSE allows max 10 results per request
		Context(ctx)

	// Add time filter if specified
	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours() / 24)
		switch {
		case days <= 1:
			call = call.Sort("date:r:" + formatDateFilter(time.Now().AddDate(0, 0, -1)))
		case days <= 7:
			call = call.Sort("date:r:" + formatDateFilter(time.Now().AddDate(0, 0, -7)))
		case days <= 30:
			call = call.Sort("date:r:" + formatDateFilter(time.Now().AddDate(0, 0, -30)))
		case days <= 365:
			call = call.Sort("date:r:" + formatDateFilter(time.Now().AddDate(0, 0, -365)))
		}
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to execute Google CSE request: %w", err)
	}

	// Convert to Result format
	var results []Result
	for i, item := range resp.Items {
		result := Result{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Domain:  g.extractDomain(item.Link),
			Source:  "Google",
			Rank:    i + 1,
		}
		results = append(results, result)
	}

	logger.Info("Google Custom Search completed", "query", query, "results_found", len(results))

	return results, nil
}

// extractDomain extracts the domain name from a URL
func (g *GoogleProvider) extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	domain := parsed.Hostname()
	// Remove www. prefix
	domain = strings.TrimPrefix(domain, "www.")

	return domain
}

// formatDateFilter formats a time for Google CSE date filtering
func formatDateFilter(t time.Time) string {
	return t.Format("20060102")
}

// min returns the minimum of two integers
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
