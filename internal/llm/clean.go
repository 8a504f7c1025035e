package llm

import "strings"

// summaryMarker is the heading the model opens its structured summary with.
// Reasoning models sometimes emit thinking text before it; everything up to
// the marker is discarded.
const summaryMarker = "### Structured Summary of Public Discussions"

// CleanNarrative strips any preamble before the structured-summary marker
// and trims surrounding whitespace. Text without the marker is returned
// trimmed but otherwise unchanged.
func CleanNarrative(raw string) string {
	if idx := strings.Index(raw, summaryMarker); idx >= 0 {
		return strings.TrimSpace(raw[idx:])
	}
	return strings.TrimSpace(raw)
}
