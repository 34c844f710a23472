package core

// Variant is one of the fixed stylistic directives applied to every source item.
type Variant struct {
	Label       string `json:"label"`       // Short name recorded in the output sheet (e.g., "Thought Leadership")
	Instruction string `json:"instruction"` // Style fragment embedded verbatim in the generation prompt
}

// Enrichment holds the search-derived context gathered for one source item.
// Both fields are empty when no search credential is configured or the
// search request failed; that degradation is non-fatal.
type Enrichment struct {
	Links []string `json:"links"` // Result URLs that passed validation, in rank order
	Text  string   `json:"text"`  // Concatenated text scraped from those pages
}

// EntitySet contains entities spotted in enrichment text. Both slices are
// deduplicated and sorted so repeated extraction over the same input is
// byte-identical.
type EntitySet struct {
	Emails      []string `json:"emails"`       // Addresses matching a local-part@domain.tld shape
	ProperNouns []string `json:"proper_nouns"` // Runs of capitalized words
}

// GeneratedPost is the parsed result of one generation call. A failed
// generation yields Headline "ERROR" with an empty Body.
type GeneratedPost struct {
	Headline string `json:"headline"` // Text before the body marker, markers stripped
	Body     string `json:"body"`     // Text after the body marker, trimmed
}

// PostRecord is one row of the "linkedin" sheet: a single generated variant
// for a single source URL together with the enrichment entities.
type PostRecord struct {
	SourceURL   string   `json:"source_url"`        // Blog URL the post was generated from
	Variant     string   `json:"variant"`           // Variant label
	Headline    string   `json:"headline"`          // Generated headline
	Body        string   `json:"body"`              // Generated post body
	Emails      []string `json:"serp_emails"`       // Emails extracted from enrichment text
	ProperNouns []string `json:"serp_proper_nouns"` // Proper nouns extracted from enrichment text
	Links       []string `json:"serp_links"`        // Enrichment URLs
}

// DebugRecord is one row of the "serp_debug" sheet, appended once per source
// item regardless of how its variants fared.
type DebugRecord struct {
	SourceURL string   `json:"source_url"` // Blog URL
	Links     []string `json:"serp_links"` // Enrichment URLs, stored JSON-encoded
	Text      string   `json:"serp_text"`  // Enrichment text, capped before storage
}
