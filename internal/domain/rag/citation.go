package rag

import (
	"strings"
	"unicode"
)

// summaryMaxRunes caps citation summaries so they stay scannable.
const summaryMaxRunes = 160

// AssembleCitations maps accepted evidence to user-facing citations, one per
// item, preserving rank order. Summaries come straight from the corpus text
// so every citation stays traceable independent of the generation step.
func AssembleCitations(evidence []RetrievedEvidence) []Citation {
	if len(evidence) == 0 {
		return nil
	}
	citations := make([]Citation, 0, len(evidence))
	for _, ev := range evidence {
		citations = append(citations, Citation{
			Category:  ev.Record.Category,
			Summary:   summarize(ev.Record.AnswerText),
			SourceURL: ev.Record.SourceURL,
		})
	}
	return citations
}

// summarize returns the first sentence of the answer, truncated on a rune
// boundary when it runs long.
func summarize(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		candidate := strings.TrimSpace(text[:idx+1])
		if candidate != "" {
			text = candidate
		}
	}
	runes := []rune(text)
	if len(runes) <= summaryMaxRunes {
		return text
	}
	cut := summaryMaxRunes
	for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = summaryMaxRunes
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
