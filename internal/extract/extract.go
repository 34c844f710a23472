// Package extract spots email addresses and capitalized-phrase "proper
// nouns" in free text. Both patterns are deliberately approximate: the
// proper-noun heuristic over-matches sentence-initial words and that is
// accepted — the output feeds a review spreadsheet, not an NER system.
package extract

import (
	"regexp"
	"sort"

	"clout/internal/core"
)

var (
	emailRegex      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	properNounRegex = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)
)

// Entities extracts emails and proper nouns from text. Both result slices
// are deduplicated and sorted so repeated runs over the same input are
// byte-identical. Entities never fails; empty input yields empty sets.
func Entities(text string) core.EntitySet {
	return core.EntitySet{
		Emails:      dedupeSorted(emailRegex.FindAllString(text, -1)),
		ProperNouns: dedupeSorted(properNounRegex.FindAllString(text, -1)),
	}
}

func dedupeSorted(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	unique := []string{}
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		unique = append(unique, m)
	}
	sort.Strings(unique)
	return unique
}
