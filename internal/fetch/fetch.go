package fetch

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// fetchTimeout bounds every page fetch; there are no retries.
	fetchTimeout = 20 * time.Second

	// userAgent mirrors what the blog platforms expect from a browser-ish
	// client. Some WordPress hosts return empty pages to unknown agents.
	userAgent = "Mozilla/5.0"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var client = &http.Client{Timeout: fetchTimeout}

// PageText fetches a URL and returns the text of its paragraph nodes, each
// collapsed to single-spaced form and trimmed, joined by blank lines. Any
// transport error, non-2xx status, or parse failure returns ("", err);
// callers treat empty text as the signal to skip the page.
func PageText(pageURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	var paras []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRegex.ReplaceAllString(s.Text(), " "))
		if text != "" {
			paras = append(paras, text)
		}
	})

	return strings.Join(paras, "\n\n"), nil
}
