package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"clout/internal/search"
)

type failingProvider struct{}

func (f *failingProvider) Search(ctx context.Context, query string, config search.Config) ([]search.Result, error) {
	return nil, errors.New("quota exceeded")
}

func (f *failingProvider) GetName() string { return "Failing" }

func TestEnrich_NilProvider(t *testing.T) {
	e := New(nil, func(string) (string, error) { t.Fatal("fetch should not be called"); return "", nil }, 5)

	got := e.Enrich(context.Background(), "seed text")

	if got.Links == nil {
		t.Error("Links must be an empty slice, not nil")
	}
	if len(got.Links) != 0 || got.Text != "" {
		t.Errorf("Expected empty enrichment, got %+v", got)
	}
}

func TestEnrich_SearchFailure(t *testing.T) {
	e := New(&failingProvider{}, func(string) (string, error) { return "text", nil }, 5)

	got := e.Enrich(context.Background(), "seed text")

	if len(got.Links) != 0 || got.Text != "" {
		t.Errorf("Expected empty enrichment on search failure, got %+v", got)
	}
}

func TestEnrich_QueryIsSeedPrefix(t *testing.T) {
	seed := strings.Repeat("x", 200)
	provider := search.NewMockProvider()
	provider.SetResults(nil)

	var gotQuery string
	capture := &queryCapturingProvider{inner: provider, query: &gotQuery}
	e := New(capture, func(string) (string, error) { return "", nil }, 5)

	e.Enrich(context.Background(), seed)

	if len(gotQuery) != QueryLength {
		t.Errorf("Expected query of %d characters, got %d", QueryLength, len(gotQuery))
	}
	if !strings.HasPrefix(seed, gotQuery) {
		t.Error("Query must be a prefix of the seed text")
	}
}

type queryCapturingProvider struct {
	inner search.Provider
	query *string
}

func (q *queryCapturingProvider) Search(ctx context.Context, query string, config search.Config) ([]search.Result, error) {
	*q.query = query
	return q.inner.Search(ctx, query, config)
}

func (q *queryCapturingProvider) GetName() string { return q.inner.GetName() }

func TestEnrich_FiltersInvalidURLs(t *testing.T) {
	provider := search.NewMockProvider()
	provider.SetResults([]search.Result{
		{URL: "https://example.com/a", Rank: 1},
		{URL: "not-a-url", Rank: 2},
		{URL: "ftp://example.com/file", Rank: 3},
		{URL: "http://example.com/b", Rank: 4},
	})

	fetched := []string{}
	e := New(provider, func(u string) (string, error) {
		fetched = append(fetched, u)
		return fmt.Sprintf("content of %s", u), nil
	}, 5)

	got := e.Enrich(context.Background(), "seed")

	wantLinks := []string{"https://example.com/a", "http://example.com/b"}
	if len(got.Links) != len(wantLinks) {
		t.Fatalf("Expected links %v, got %v", wantLinks, got.Links)
	}
	for i, want := range wantLinks {
		if got.Links[i] != want {
			t.Errorf("Expected link %d to be %s, got %s", i, want, got.Links[i])
		}
	}
	if len(fetched) != 2 {
		t.Errorf("Expected 2 pages fetched, got %d", len(fetched))
	}
	if !strings.Contains(got.Text, "content of https://example.com/a\n\n") {
		t.Errorf("Expected page text followed by a blank line, got %q", got.Text)
	}
}

func TestEnrich_FetchFailureContributesBlank(t *testing.T) {
	provider := search.NewMockProvider()
	provider.SetResults([]search.Result{
		{URL: "https://down.example.com", Rank: 1},
		{URL: "https://up.example.com", Rank: 2},
	})

	e := New(provider, func(u string) (string, error) {
		if strings.Contains(u, "down") {
			return "", errors.New("connection refused")
		}
		return "good text", nil
	}, 5)

	got := e.Enrich(context.Background(), "seed")

	if len(got.Links) != 2 {
		t.Fatalf("Failed fetches must not drop links, got %v", got.Links)
	}
	if got.Text != "\n\ngood text\n\n" {
		t.Errorf("Expected failed fetch to contribute only its separator, got %q", got.Text)
	}
}

func TestEnrich_CapsResultCount(t *testing.T) {
	var results []search.Result
	for i := 0; i < 10; i++ {
		results = append(results, search.Result{URL: fmt.Sprintf("https://example.com/%d", i), Rank: i + 1})
	}
	provider := search.NewMockProvider()
	provider.SetResults(results)

	e := New(provider, func(string) (string, error) { return "", nil }, 3)

	got := e.Enrich(context.Background(), "seed")

	if len(got.Links) != 3 {
		t.Errorf("Expected 3 links, got %d", len(got.Links))
	}
}

func TestValidURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://example.com/path", true},
		{"http://example.com", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"", false},
		{"/relative/path", false},
	}
	for _, tc := range cases {
		if got := validURL(tc.in); got != tc.want {
			t.Errorf("validURL(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
