package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brandbrief/brandbrief/internal/config"
)

// Store is read access to the annotated document corpus and write access to
// the report collection. The corpus itself is owned by the upstream
// ingestion system.
type Store interface {
	// QueryWindow returns documents with scraped_date in [from, to).
	QueryWindow(ctx context.Context, from, to time.Time) ([]Document, error)
	// QueryAll returns the entire document collection.
	QueryAll(ctx context.Context) ([]Document, error)
	// UpsertReport inserts or overwrites the report for its date.
	UpsertReport(ctx context.Context, r Report) error
	// GetReport returns the report for a date, or nil if none exists.
	GetReport(ctx context.Context, date time.Time) (*Report, error)
	// ListReports returns all reports, newest first.
	ListReports(ctx context.Context) ([]Report, error)
	// Stats returns corpus and report counts.
	Stats(ctx context.Context) (*Stats, error)
	Close(ctx context.Context) error
}

// Open opens the store backend selected by config.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "mongo", "":
		uri := os.Getenv(cfg.Store.URIEnv)
		if uri == "" {
			return nil, fmt.Errorf("store URI not set (expected in $%s)", cfg.Store.URIEnv)
		}
		return OpenMongo(ctx, uri, cfg.Store.Database, cfg.Store.DocumentsCollection, cfg.Store.ReportsCollection)
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// isoFormat renders a timestamp the way the scraper writes scraped_date, so
// range queries compare lexicographically in both backends.
func isoFormat(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}
