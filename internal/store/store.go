// Package store persists pipeline output to an xlsx workbook with two
// sheets: "linkedin" holds one row per generated variant for human review,
// "serp_debug" holds one row per source item with the raw enrichment that
// fed generation. Rows are append-only; the workbook grows monotonically
// within a run and across runs.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"clout/internal/core"
	"clout/internal/prompt"

	"github.com/xuri/excelize/v2"
)

const (
	// PostSheet holds one row per generated variant.
	PostSheet = "linkedin"
	// DebugSheet holds one row per source item.
	DebugSheet = "serp_debug"

	// debugTextCap bounds the enrichment text stored per debug row.
	debugTextCap = 5000
)

var postHeader = []interface{}{
	"source_url", "variant", "headline", "body",
	"serp_emails", "serp_proper_nouns", "serp_links",
}

var debugHeader = []interface{}{"source_url", "serp_links", "serp_text"}

// Store appends records to an xlsx workbook. Every append opens, mutates,
// and saves the whole file synchronously; a crash mid-append loses only the
// in-flight row.
type Store struct {
	path string
}

// NewStore creates a store backed by the workbook at path, creating the
// workbook with both sheets and headers if it does not exist. An existing
// workbook is never touched by initialization.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize workbook: %w", err)
	}
	return s, nil
}

// Path returns the workbook location.
func (s *Store) Path() string {
	return s.path
}

// initialize creates the workbook with headers, only when absent.
func (s *Store) initialize() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat workbook %s: %w", s.path, err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), PostSheet); err != nil {
		return fmt.Errorf("failed to name post sheet: %w", err)
	}
	if err := f.SetSheetRow(PostSheet, "A1", &postHeader); err != nil {
		return fmt.Errorf("failed to write post header: %w", err)
	}

	if _, err := f.NewSheet(DebugSheet); err != nil {
		return fmt.Errorf("failed to create debug sheet: %w", err)
	}
	if err := f.SetSheetRow(DebugSheet, "A1", &debugHeader); err != nil {
		return fmt.Errorf("failed to write debug header: %w", err)
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

// AppendPost appends one generated-variant row to the post sheet.
// List-valued fields are rendered as comma-and-space-joined strings.
func (s *Store) AppendPost(rec core.PostRecord) error {
	row := []interface{}{
		rec.SourceURL,
		rec.Variant,
		rec.Headline,
		rec.Body,
		strings.Join(rec.Emails, ", "),
		strings.Join(rec.ProperNouns, ", "),
		strings.Join(rec.Links, ", "),
	}
	return s.appendRow(PostSheet, row)
}

// AppendDebug appends one source-item row to the debug sheet. Links are
// stored as a JSON array string ("[]" when empty, never null) and the
// enrichment text is capped to bound row size.
func (s *Store) AppendDebug(rec core.DebugRecord) error {
	links := rec.Links
	if links == nil {
		links = []string{}
	}
	encoded, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("failed to encode debug links: %w", err)
	}

	row := []interface{}{
		rec.SourceURL,
		string(encoded),
		prompt.Truncate(rec.Text, debugTextCap),
	}
	return s.appendRow(DebugSheet, row)
}

// appendRow writes row after the last occupied row of sheet and saves.
func (s *Store) appendRow(sheet string, row []interface{}) error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute append position: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row to sheet %s: %w", sheet, err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

// ListPosts reads all post rows back, most useful for the review TUI.
func (s *Store) ListPosts() ([]core.PostRecord, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(PostSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", PostSheet, err)
	}

	var posts []core.PostRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec := core.PostRecord{
			SourceURL:   cellAt(row, 0),
			Variant:     cellAt(row, 1),
			Headline:    cellAt(row, 2),
			Body:        cellAt(row, 3),
			Emails:      splitList(cellAt(row, 4)),
			ProperNouns: splitList(cellAt(row, 5)),
			Links:       splitList(cellAt(row, 6)),
		}
		posts = append(posts, rec)
	}
	return posts, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ", ")
}
