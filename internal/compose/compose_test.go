package compose

import (
	"strings"
	"testing"

	"github.com/brandbrief/brandbrief/internal/aggregate"
	"github.com/brandbrief/brandbrief/internal/store"
)

func intPtr(v int) *int { return &v }

func sampleSignals(sources ...string) aggregate.Signals {
	var engaged []store.Document
	for i, src := range sources {
		engaged = append(engaged, store.Document{
			Title:    "Post " + src,
			Source:   src,
			Upvotes:  intPtr(100 - i),
			Comments: intPtr(10),
		})
	}
	return aggregate.Signals{
		SentimentCounts: map[string]int{"negative": 5, "neutral": 2},
		TopKeywords: []aggregate.KeywordCount{
			{Tag: "fees", Count: 7},
			{Tag: "board", Count: 3},
		},
		TopEngaged:    engaged,
		ContentSample: "First snippet\n\n---\n\nSecond snippet",
	}
}

func TestRenderFixedSections(t *testing.T) {
	prompt := Render("Acme Housing Authority", "reddit", sampleSignals("news"))

	for _, want := range []string{
		"Acme Housing Authority",
		"**Sentiment Trends**",
		"**Common Issues**",
		"**Top Keywords & Topics**",
		"**Engagement Highlights**",
		"**Discussion Peaks**",
		"**Other Insights**",
		"**Summary Insights**",
		"**Sentiment Breakdown**",
		"negative: 5",
		"neutral: 2",
		"1. fees (7)",
		"2. board (3)",
		"**Top Posts by Engagement**",
		"**Content Sample (truncated)**",
		"First snippet",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	sig := sampleSignals("reddit", "reddit")
	a := Render("Acme", "reddit", sig)
	b := Render("Acme", "reddit", sig)
	if a != b {
		t.Error("rendering is not deterministic")
	}
}

func TestPlatformSectionConditional(t *testing.T) {
	// Two reddit entries in the ranking: section included.
	with := Render("Acme", "reddit", sampleSignals("reddit", "reddit", "news"))
	if !strings.Contains(with, "**Top Reddit Posts**") {
		t.Error("expected platform section with 2 reddit entries in ranking")
	}

	// One reddit entry: left out.
	without := Render("Acme", "reddit", sampleSignals("reddit", "news", "forum"))
	if strings.Contains(without, "**Top Reddit Posts**") {
		t.Error("platform section should be excluded below threshold")
	}
}

func TestRenderEngagementTable(t *testing.T) {
	prompt := Render("Acme", "reddit", sampleSignals("news", "forum"))
	if !strings.Contains(prompt, "title") || !strings.Contains(prompt, "upvotes") || !strings.Contains(prompt, "comments") {
		t.Error("expected engagement table header")
	}
	if !strings.Contains(prompt, "Post news") {
		t.Error("expected engagement row for 'Post news'")
	}
}

func TestRenderEmptySignals(t *testing.T) {
	prompt := Render("Acme", "reddit", aggregate.Signals{SentimentCounts: map[string]int{}})
	if !strings.Contains(prompt, "(no sentiment annotations)") {
		t.Error("expected sentiment placeholder")
	}
	if !strings.Contains(prompt, "(no tags)") {
		t.Error("expected keyword placeholder")
	}
	if !strings.Contains(prompt, "(no documents with engagement data)") {
		t.Error("expected engagement placeholder")
	}
}
