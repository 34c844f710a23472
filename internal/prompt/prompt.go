// Package prompt builds the generation instruction for each post variant.
// Budgets are hard character cuts: the target backend is a small local
// model with a 2048-token context, so the composed prompt is kept under a
// fixed size even at the cost of cutting mid-sentence.
package prompt

import (
	"fmt"

	"clout/internal/core"
)

const (
	// BlogBudget caps the blog text fed into the prompt (~1700 tokens).
	BlogBudget = 5000
	// EnrichmentBudget caps the search-derived context fed into the prompt.
	EnrichmentBudget = 7000
	// PromptBudget caps the entire composed prompt. Truncation may cut the
	// instruction template itself; that is an accepted lossy safeguard.
	PromptBudget = 7000
)

const template = `
You are a senior editorial content strategist who writes high-impact, human, long-form LinkedIn posts.

Variant: %s
Style Instruction: %s

Write a polished, original, human-sounding LinkedIn post of **700–1000 words** (aim for ~800 words).
This must NOT summarize the blog. Instead, it must:
- Expand on the ideas, frameworks, insights, and themes found in the blog content.
- Integrate and synthesize insights from BOTH the blog and the SERP-scraped external pages.
- Show intellectual depth, critical thinking, and editorial expertise.
- Use **long, flowing, high-quality paragraphs** (5–7 sentences each), not bullet points.
- Use a **LinkedIn-appropriate tone**: engaging, reflective, and expert — not academic or robotic.
- Use narrative openings, transitions, and emotional or strategic framing.
- Offer a clear perspective, interpretation, or actionable direction.
- Avoid lists unless absolutely necessary; rely on narrative explanation and analysis.
- DO NOT repeat the same sentence structures or rephrase the blog.
- DO NOT mention that you're combining sources.

Use this combined text ONLY as background knowledge to enrich arguments, examples, frameworks, and narrative:
========
%s
========

Follow this EXACT output structure — this is mandatory:

###
HEADLINE:
<one compelling headline, 5–12 words>

POST:
<full LinkedIn post, 700–1000 words, long paragraphs, deeply synthesizing blog + SERP insights>
###

Do NOT place anything before HEADLINE:
Do NOT place anything after the final ###.
`

// Variants returns the fixed set of stylistic directives applied to every
// source item, in generation order.
func Variants() []core.Variant {
	return []core.Variant{
		{Label: "Thought Leadership", Instruction: "Write a senior thought-leadership piece: big-picture insights, implications, frameworks."},
		{Label: "Story Narrative", Instruction: "Write a story-driven narrative: open with a concise anecdote or scene, then connect to insights."},
		{Label: "Actionable / Framework", Instruction: "Write an actionable post with a clear framework or 3–5 tactical steps the reader can apply."},
	}
}

// Compose builds the full instruction prompt for one variant. Blog and
// enrichment text are truncated to their budgets, joined by a blank line,
// embedded into the template, and the whole prompt is capped at
// PromptBudget characters keeping the prefix.
func Compose(blogText, enrichmentText string, v core.Variant) string {
	combined := Truncate(blogText, BlogBudget) + "\n\n" + Truncate(enrichmentText, EnrichmentBudget)
	return Truncate(fmt.Sprintf(template, v.Label, v.Instruction, combined), PromptBudget)
}

// Truncate returns the first max characters of s. The cut is rune-aware so
// a multi-byte character is never split.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
