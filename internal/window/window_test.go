package window

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brandbrief/brandbrief/internal/store"
)

type fakeQuerier struct {
	windowDocs []store.Document
	allDocs    []store.Document
	windowErr  error

	windowCalls int
	allCalls    int
	lastFrom    time.Time
	lastTo      time.Time
}

func (f *fakeQuerier) QueryWindow(_ context.Context, from, to time.Time) ([]store.Document, error) {
	f.windowCalls++
	f.lastFrom, f.lastTo = from, to
	return f.windowDocs, f.windowErr
}

func (f *fakeQuerier) QueryAll(context.Context) ([]store.Document, error) {
	f.allCalls++
	return f.allDocs, nil
}

var now = time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)

func TestSelectPrimaryWindow(t *testing.T) {
	q := &fakeQuerier{windowDocs: []store.Document{
		{Title: "a", ScrapedDate: "2025-06-10T08:00:00"},
	}}
	sel := NewSelector(q, PolicyThirtyDayFallback)

	docs, err := sel.Select(context.Background(), now)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}
	if q.allCalls != 0 {
		t.Error("fallback should not run when primary window has documents")
	}

	wantFrom := time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if !q.lastFrom.Equal(wantFrom) || !q.lastTo.Equal(wantTo) {
		t.Errorf("window [%v, %v), want [%v, %v)", q.lastFrom, q.lastTo, wantFrom, wantTo)
	}
}

func TestSelectFallsBackToAll(t *testing.T) {
	q := &fakeQuerier{allDocs: []store.Document{
		{Title: "old", ScrapedDate: "2024-01-01T00:00:00"},
	}}
	sel := NewSelector(q, PolicyThirtyDayFallback)

	docs, err := sel.Select(context.Background(), now)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "old" {
		t.Errorf("expected fallback doc, got %v", docs)
	}
	if q.allCalls != 1 {
		t.Errorf("expected exactly one fallback query, got %d", q.allCalls)
	}
}

func TestSelectEmptyIsNotError(t *testing.T) {
	q := &fakeQuerier{}
	sel := NewSelector(q, PolicyThirtyDayFallback)

	docs, err := sel.Select(context.Background(), now)
	if err != nil {
		t.Fatalf("empty corpus should not error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
}

func TestSelectDailyPolicyNoFallback(t *testing.T) {
	q := &fakeQuerier{allDocs: []store.Document{{Title: "old", ScrapedDate: "2024-01-01T00:00:00"}}}
	sel := NewSelector(q, PolicyDaily)

	docs, err := sel.Select(context.Background(), now)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(docs) != 0 {
		t.Error("daily policy must not widen to the full collection")
	}
	if q.allCalls != 0 {
		t.Error("daily policy queried the full collection")
	}

	wantFrom := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !q.lastFrom.Equal(wantFrom) {
		t.Errorf("daily window starts at %v, want %v", q.lastFrom, wantFrom)
	}
}

func TestSelectDropsUnparseableDates(t *testing.T) {
	q := &fakeQuerier{windowDocs: []store.Document{
		{Title: "good", ScrapedDate: "2025-06-10T08:00:00"},
		{Title: "bad", ScrapedDate: "not-a-date"},
		{Title: "blank", ScrapedDate: ""},
	}}
	sel := NewSelector(q, PolicyThirtyDayFallback)

	docs, err := sel.Select(context.Background(), now)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "good" {
		t.Errorf("expected only the valid doc, got %v", docs)
	}
}

func TestSelectStoreError(t *testing.T) {
	q := &fakeQuerier{windowErr: errors.New("connection reset")}
	sel := NewSelector(q, PolicyThirtyDayFallback)

	if _, err := sel.Select(context.Background(), now); err == nil {
		t.Error("expected store error to surface")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyThirtyDayFallback {
		t.Errorf("empty policy should default to 30d-fallback, got %q (%v)", p, err)
	}
	if p, err := ParsePolicy("daily"); err != nil || p != PolicyDaily {
		t.Errorf("ParsePolicy(daily) = %q, %v", p, err)
	}
	if _, err := ParsePolicy("hourly"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
