// Package report turns a generated narrative into the durable report record
// and the notification texts around it.
package report

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/brandbrief/brandbrief/internal/store"
)

// maxBodySummary caps how much of the summary is inlined into the
// notification body.
const maxBodySummary = 3000

// Finalize appends the metadata footer to a cleaned narrative, producing the
// final stored summary text.
func Finalize(narrative string, generatedAt time.Time, articleCount int) string {
	return fmt.Sprintf(
		"%s\n\n---\n\n#### Metadata\n- **Generated at**: %s\n- **Total Articles Analyzed**: %d",
		narrative, generatedAt.UTC().Format(time.RFC3339), articleCount,
	)
}

// Upserter is the write side of the report collection.
type Upserter interface {
	UpsertReport(ctx context.Context, r store.Report) error
}

// Reconciler persists finished reports keyed by run date.
type Reconciler struct {
	store Upserter
}

// NewReconciler creates a reconciler writing to the given store.
func NewReconciler(s Upserter) *Reconciler {
	return &Reconciler{store: s}
}

// Save upserts the report for the run's logical date. Rerunning for the same
// date overwrites in place.
func (r *Reconciler) Save(ctx context.Context, date time.Time, summary string, articleCount int) error {
	rep := store.Report{
		Date:        store.MidnightUTC(date),
		Summary:     summary,
		Articles:    articleCount,
		GeneratedAt: time.Now().UTC(),
	}
	if err := r.store.UpsertReport(ctx, rep); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// Subject formats the notification subject line for a run.
func Subject(entity string, date time.Time, articleCount int) string {
	return fmt.Sprintf("%s Summary - %s (%d articles)", entity, date.UTC().Format("2006-01-02"), articleCount)
}

// SuccessBody formats the notification body for a completed run. Long
// summaries are truncated on a rune boundary.
func SuccessBody(date time.Time, articleCount int, summary string) string {
	if utf8.RuneCountInString(summary) > maxBodySummary {
		summary = truncateRunes(summary, maxBodySummary) + "..."
	}
	return fmt.Sprintf(
		"Summary for %s\n\nArticles processed: %d\n\nSummary:\n%s",
		date.UTC().Format("2006-01-02"), articleCount, summary,
	)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// EmptyBody is the notification body when no documents were in scope.
func EmptyBody() string {
	return "No articles found today."
}

// FailureBody formats the notification body for a failed run, carrying the
// underlying cause.
func FailureBody(err error) string {
	return fmt.Sprintf("Summary failed: %v", err)
}
