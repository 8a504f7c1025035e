// Package window decides which documents are in scope for a run.
package window

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brandbrief/brandbrief/internal/store"
)

// Policy names a windowing rule. The policy is a deployment choice; the
// pipeline never branches on what a policy does internally.
type Policy string

const (
	// PolicyThirtyDayFallback selects the past 30 days and widens to the
	// entire collection when that window is empty. An empty report is only
	// produced when no historical data exists at all.
	PolicyThirtyDayFallback Policy = "30d-fallback"

	// PolicyDaily selects today only, with no widening.
	PolicyDaily Policy = "daily"
)

// ParsePolicy validates a policy name from config.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case PolicyThirtyDayFallback, PolicyDaily:
		return Policy(name), nil
	case "":
		return PolicyThirtyDayFallback, nil
	default:
		return "", fmt.Errorf("unknown window policy %q", name)
	}
}

// Querier is the read side of the document store.
type Querier interface {
	QueryWindow(ctx context.Context, from, to time.Time) ([]store.Document, error)
	QueryAll(ctx context.Context) ([]store.Document, error)
}

// Selector picks the documents in scope for a run.
type Selector struct {
	querier Querier
	policy  Policy
}

// NewSelector creates a selector with the given policy.
func NewSelector(querier Querier, policy Policy) *Selector {
	return &Selector{querier: querier, policy: policy}
}

// Select returns the documents in scope for a run at the given time, after
// dropping documents whose scraped_date cannot be parsed. An empty result is
// a valid terminal state, not an error.
func (s *Selector) Select(ctx context.Context, now time.Time) ([]store.Document, error) {
	today := store.MidnightUTC(now)
	tomorrow := today.AddDate(0, 0, 1)

	var from time.Time
	switch s.policy {
	case PolicyDaily:
		from = today
	default:
		from = today.AddDate(0, 0, -30)
	}

	docs, err := s.querier.QueryWindow(ctx, from, tomorrow)
	if err != nil {
		return nil, fmt.Errorf("querying window: %w", err)
	}

	if len(docs) == 0 && s.policy == PolicyThirtyDayFallback {
		log.Println("No documents in past 30 days, loading entire collection...")
		docs, err = s.querier.QueryAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying full collection: %w", err)
		}
	}

	return dropInvalid(docs), nil
}

// dropInvalid filters out documents without a parseable scraped_date.
func dropInvalid(docs []store.Document) []store.Document {
	valid := docs[:0]
	for _, d := range docs {
		if _, ok := d.ScrapedTime(); !ok {
			log.Printf("dropping document %q: unparseable scraped_date %q", d.Title, d.ScrapedDate)
			continue
		}
		valid = append(valid, d)
	}
	return valid
}
