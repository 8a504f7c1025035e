// Package compose renders aggregated signals into a single narrative
// generation request. Rendering is deterministic: the same signals always
// produce the same request text.
package compose

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/brandbrief/brandbrief/internal/aggregate"
)

const promptHeader = `You are an analytics and communications expert reviewing online conversations and articles related to %s.

Based on the following scraped content from various sources (news, forums, %s, etc.), provide a structured, insightful summary about how %s is being discussed in the public sphere.

Be concise, but thorough. Avoid speculation, relying on what's present in the content. Use a consistent tone suitable for a communications briefing or stakeholder update.

Summarize the following dimensions:

1. **Sentiment Trends**: General tone toward %s. Are users supportive, critical, or neutral? Any noticeable shifts?
2. **Common Issues**: What recurring complaints or issues are associated with %s? Legal disputes? Governance concerns?
3. **Top Keywords & Topics**: Which terms or subjects are most frequently mentioned in connection with %s?
4. **Engagement Highlights**: Which posts have the highest numbers of comments and upvotes?
5. **Discussion Peaks**: Any timeframe where discussion volume surged? Why?
6. **Other Insights**: Subtle tone patterns, changing sentiment across platforms, or surprising mentions related to %s.
7. **Summary Insights**: In 3-5 sentences, synthesize the main message of the posts and articles, list some key concerns, and the perceived sentiment towards %s. Highlight any reputational risks or public perception challenges.`

const platformDimension = `
8. **Top %s Posts**: List the top 3 %s posts with the most upvotes and comments.`

// platformThreshold is the minimum number of engagement-ranking entries from
// the configured platform before it earns its own ranked section.
const platformThreshold = 2

// Render builds the generation request from the aggregated signals. entity
// names what is being monitored; platform names the source that may get a
// dedicated top-posts section.
func Render(entity, platform string, sig aggregate.Signals) string {
	var b strings.Builder

	fmt.Fprintf(&b, promptHeader,
		entity, platform, entity, entity, entity, entity, entity, entity)

	if platformCount(sig, platform) >= platformThreshold {
		title := titleCase(platform)
		fmt.Fprintf(&b, platformDimension, title, title)
	}

	b.WriteString("\n\n---\n\n")

	fmt.Fprintf(&b, "**Sentiment Breakdown**:\n%s\n\n", renderSentiment(sig.SentimentCounts))
	fmt.Fprintf(&b, "**Top Keywords**:\n%s\n\n", renderKeywords(sig.TopKeywords))
	fmt.Fprintf(&b, "**Top Posts by Engagement**:\n%s\n", renderEngagement(sig))

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "**Content Sample (truncated)**:\n%s\n", sig.ContentSample)

	return b.String()
}

// platformCount counts engagement-ranking entries from the given platform.
func platformCount(sig aggregate.Signals, platform string) int {
	n := 0
	for _, d := range sig.TopEngaged {
		if strings.EqualFold(d.Source, platform) {
			n++
		}
	}
	return n
}

// renderSentiment renders label counts sorted by count descending, labels
// alphabetical within equal counts so output is stable.
func renderSentiment(counts map[string]int) string {
	if len(counts) == 0 {
		return "(no sentiment annotations)"
	}

	type entry struct {
		label string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, entry{label, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].label < entries[j].label
	})

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("%s: %d", e.label, e.count)
	}
	return strings.Join(parts, "\n")
}

func renderKeywords(keywords []aggregate.KeywordCount) string {
	if len(keywords) == 0 {
		return "(no tags)"
	}
	parts := make([]string, len(keywords))
	for i, kw := range keywords {
		parts[i] = fmt.Sprintf("%d. %s (%d)", i+1, kw.Tag, kw.Count)
	}
	return strings.Join(parts, "\n")
}

func renderEngagement(sig aggregate.Signals) string {
	if len(sig.TopEngaged) == 0 {
		return "(no documents with engagement data)"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "title\tupvotes\tcomments")
	for _, d := range sig.TopEngaged {
		fmt.Fprintf(w, "%s\t%d\t%d\n", d.Title, *d.Upvotes, *d.Comments)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
