package store

import (
	"path/filepath"
	"strings"
	"testing"

	"clout/internal/core"

	"github.com/xuri/excelize/v2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "posts.xlsx"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func sheetRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("Failed to read sheet %s: %v", sheet, err)
	}
	return rows
}

func TestNewStore_CreatesBothSheetsWithHeaders(t *testing.T) {
	s := newTestStore(t)

	postRows := sheetRows(t, s.Path(), PostSheet)
	if len(postRows) != 1 {
		t.Fatalf("Expected only the header row, got %d rows", len(postRows))
	}
	wantPost := []string{"source_url", "variant", "headline", "body", "serp_emails", "serp_proper_nouns", "serp_links"}
	for i, want := range wantPost {
		if postRows[0][i] != want {
			t.Errorf("Expected post header column %d to be %q, got %q", i, want, postRows[0][i])
		}
	}

	debugRows := sheetRows(t, s.Path(), DebugSheet)
	if len(debugRows) != 1 {
		t.Fatalf("Expected only the debug header row, got %d rows", len(debugRows))
	}
	wantDebug := []string{"source_url", "serp_links", "serp_text"}
	for i, want := range wantDebug {
		if debugRows[0][i] != want {
			t.Errorf("Expected debug header column %d to be %q, got %q", i, want, debugRows[0][i])
		}
	}
}

func TestNewStore_ReInitIsNoOp(t *testing.T) {
	s := newTestStore(t)

	rec := core.PostRecord{SourceURL: "https://blog.example.com", Variant: "Story Narrative"}
	if err := s.AppendPost(rec); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	// Re-opening the same path must not recreate headers or drop rows.
	again, err := NewStore(s.Path())
	if err != nil {
		t.Fatalf("Re-init failed: %v", err)
	}

	rows := sheetRows(t, again.Path(), PostSheet)
	if len(rows) != 2 {
		t.Errorf("Expected header plus one data row after re-init, got %d rows", len(rows))
	}
}

func TestAppendPost_ColumnLayout(t *testing.T) {
	s := newTestStore(t)

	rec := core.PostRecord{
		SourceURL:   "https://blog.example.com/article",
		Variant:     "Thought Leadership",
		Headline:    "A Headline",
		Body:        "Post body.",
		Emails:      []string{"a@x.io", "b@y.co"},
		ProperNouns: []string{"Jane Doe"},
		Links:       []string{"https://one.example.com", "https://two.example.com"},
	}
	if err := s.AppendPost(rec); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	rows := sheetRows(t, s.Path(), PostSheet)
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one row, got %d", len(rows))
	}

	want := []string{
		"https://blog.example.com/article",
		"Thought Leadership",
		"A Headline",
		"Post body.",
		"a@x.io, b@y.co",
		"Jane Doe",
		"https://one.example.com, https://two.example.com",
	}
	for i, w := range want {
		if rows[1][i] != w {
			t.Errorf("Expected column %d to be %q, got %q", i, w, rows[1][i])
		}
	}
}

func TestAppendPost_EmptyListsRenderEmpty(t *testing.T) {
	s := newTestStore(t)

	rec := core.PostRecord{
		SourceURL: "https://blog.example.com",
		Variant:   "Story Narrative",
		Headline:  "H",
		Body:      "B",
	}
	if err := s.AppendPost(rec); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	rows := sheetRows(t, s.Path(), PostSheet)
	for _, col := range []int{4, 5, 6} {
		if got := cellAt(rows[1], col); got != "" {
			t.Errorf("Expected empty string in column %d, got %q", col, got)
		}
	}
}

func TestAppendDebug_JSONLinksAndTextCap(t *testing.T) {
	s := newTestStore(t)

	longText := strings.Repeat("x", debugTextCap+500)
	rec := core.DebugRecord{
		SourceURL: "https://blog.example.com",
		Links:     []string{"https://one.example.com", "https://two.example.com"},
		Text:      longText,
	}
	if err := s.AppendDebug(rec); err != nil {
		t.Fatalf("AppendDebug failed: %v", err)
	}

	rows := sheetRows(t, s.Path(), DebugSheet)
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one debug row, got %d", len(rows))
	}
	if rows[1][1] != `["https://one.example.com","https://two.example.com"]` {
		t.Errorf("Expected JSON-encoded links, got %q", rows[1][1])
	}
	if len(rows[1][2]) != debugTextCap {
		t.Errorf("Expected debug text capped at %d characters, got %d", debugTextCap, len(rows[1][2]))
	}
}

func TestAppendDebug_NilLinksEncodeAsEmptyArray(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendDebug(core.DebugRecord{SourceURL: "https://blog.example.com"}); err != nil {
		t.Fatalf("AppendDebug failed: %v", err)
	}

	rows := sheetRows(t, s.Path(), DebugSheet)
	if rows[1][1] != "[]" {
		t.Errorf(`Expected "[]" for empty links, got %q`, rows[1][1])
	}
}

func TestAppends_GrowMonotonically(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		rec := core.PostRecord{SourceURL: "https://blog.example.com", Variant: "V", Headline: "H", Body: "B"}
		if err := s.AppendPost(rec); err != nil {
			t.Fatalf("AppendPost %d failed: %v", i, err)
		}
	}

	rows := sheetRows(t, s.Path(), PostSheet)
	if len(rows) != 4 {
		t.Errorf("Expected header plus three rows, got %d", len(rows))
	}
}

func TestListPosts_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	rec := core.PostRecord{
		SourceURL:   "https://blog.example.com",
		Variant:     "Actionable / Framework",
		Headline:    "Steps That Work",
		Body:        "One. Two. Three.",
		Emails:      []string{"a@x.io"},
		ProperNouns: []string{"Alice Jones", "Bob Smith"},
		Links:       []string{"https://one.example.com"},
	}
	if err := s.AppendPost(rec); err != nil {
		t.Fatalf("AppendPost failed: %v", err)
	}

	posts, err := s.ListPosts()
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("Expected 1 post, got %d", len(posts))
	}
	got := posts[0]
	if got.Headline != rec.Headline || got.Variant != rec.Variant || got.Body != rec.Body {
		t.Errorf("Round-trip mismatch: %+v", got)
	}
	if len(got.ProperNouns) != 2 || got.ProperNouns[1] != "Bob Smith" {
		t.Errorf("Expected proper nouns round-tripped, got %v", got.ProperNouns)
	}
}
