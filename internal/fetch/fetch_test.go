package fetch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPageText_Success(t *testing.T) {
	testHTML := `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
    <nav><p>Skip me? No - paragraphs inside nav still count.</p></nav>
    <p>  First   paragraph
with   odd spacing.  </p>
    <p>Second paragraph.</p>
    <p>   </p>
    <div>Not a paragraph.</div>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "Mozilla/5.0" {
			t.Errorf("Expected User-Agent Mozilla/5.0, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testHTML))
	}))
	defer server.Close()

	text, err := PageText(server.URL)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}

	if !strings.Contains(text, "First paragraph with odd spacing.") {
		t.Errorf("Expected whitespace-normalized paragraph, got: %q", text)
	}
	if !strings.Contains(text, "\n\n") {
		t.Error("Expected paragraphs joined by a blank line")
	}
	if strings.Contains(text, "Not a paragraph.") {
		t.Error("Non-paragraph text should not be extracted")
	}
	if strings.Contains(text, "\n\n\n") {
		t.Error("Empty paragraphs should not produce extra blank lines")
	}
}

func TestPageText_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	text, err := PageText(server.URL)
	if err == nil {
		t.Error("Expected error for HTTP 404")
	}
	if text != "" {
		t.Errorf("Expected empty text on failure, got %q", text)
	}
	if !strings.Contains(err.Error(), "status code 404") {
		t.Errorf("Expected error to mention status code 404, got: %v", err)
	}
}

func TestPageText_TransportError(t *testing.T) {
	// A closed server produces a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	text, err := PageText(server.URL)
	if err == nil {
		t.Error("Expected error for unreachable server")
	}
	if text != "" {
		t.Errorf("Expected empty text on failure, got %q", text)
	}
}

func TestPageText_NoParagraphs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>Only divs here.</div></body></html>`))
	}))
	defer server.Close()

	text, err := PageText(server.URL)
	if err != nil {
		t.Fatalf("PageText failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty text for a page without paragraphs, got %q", text)
	}
}
