package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded sqlite backend, for local corpora and tests.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// OpenSQLite creates or opens a sqlite store at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

const documentColumns = "id, title, source, content, scraped_date, upvotes, comments, tags, sentiment_analysis"

// QueryWindow returns documents with scraped_date in [from, to).
func (s *SQLiteStore) QueryWindow(ctx context.Context, from, to time.Time) ([]Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE scraped_date >= ? AND scraped_date < ? ORDER BY id",
		isoFormat(from), isoFormat(to),
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return scanDocuments(rows)
}

// QueryAll returns the entire document collection.
func (s *SQLiteStore) QueryAll(ctx context.Context) ([]Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id                  int64
			title, source       sql.NullString
			content, scraped    sql.NullString
			upvotes, comments   sql.NullInt64
			tagsJSON, sentJSON  sql.NullString
		)
		if err := rows.Scan(&id, &title, &source, &content, &scraped, &upvotes, &comments, &tagsJSON, &sentJSON); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		d := Document{
			ID:          strconv.FormatInt(id, 10),
			Title:       title.String,
			Source:      source.String,
			Content:     content.String,
			ScrapedDate: scraped.String,
		}
		if upvotes.Valid {
			v := int(upvotes.Int64)
			d.Upvotes = &v
		}
		if comments.Valid {
			v := int(comments.Int64)
			d.Comments = &v
		}
		if tagsJSON.Valid && tagsJSON.String != "" {
			// Bad tag JSON means the document contributes no keywords.
			_ = json.Unmarshal([]byte(tagsJSON.String), &d.Tags)
		}
		if sentJSON.Valid && sentJSON.String != "" {
			_ = json.Unmarshal([]byte(sentJSON.String), &d.Sentiment)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// InsertDocument adds a document to the corpus. Used when loading a local
// corpus; the live deployment reads documents written by the scraper.
func (s *SQLiteStore) InsertDocument(ctx context.Context, d Document) error {
	var tagsJSON, sentJSON any
	if d.Tags != nil {
		data, err := json.Marshal(d.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags: %w", err)
		}
		tagsJSON = string(data)
	}
	if len(d.Sentiment.Labels) > 0 {
		data, err := json.Marshal(d.Sentiment.Labels)
		if err != nil {
			return fmt.Errorf("encoding sentiment: %w", err)
		}
		sentJSON = string(data)
	} else if d.Sentiment.Aggregate != nil {
		data, err := json.Marshal(legacySentiment{Aggregate: d.Sentiment.Aggregate})
		if err != nil {
			return fmt.Errorf("encoding sentiment: %w", err)
		}
		sentJSON = string(data)
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO documents (title, source, content, scraped_date, upvotes, comments, tags, sentiment_analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Title, d.Source, d.Content, d.ScrapedDate, nullableInt(d.Upvotes), nullableInt(d.Comments), tagsJSON, sentJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// UpsertReport inserts or overwrites the report keyed by its date.
func (s *SQLiteStore) UpsertReport(ctx context.Context, r Report) error {
	date := MidnightUTC(r.Date)
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO reports (date, summary, articles, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			summary = excluded.summary,
			articles = excluded.articles,
			generated_at = excluded.generated_at`,
		date.Format("2006-01-02"), r.Summary, r.Articles, r.GeneratedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting report: %w", err)
	}
	return nil
}

// GetReport returns the report for a date, or nil if none exists.
func (s *SQLiteStore) GetReport(ctx context.Context, date time.Time) (*Report, error) {
	row := s.conn.QueryRowContext(ctx,
		"SELECT date, summary, articles, generated_at FROM reports WHERE date = ?",
		MidnightUTC(date).Format("2006-01-02"),
	)
	r, err := scanReport(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return r, nil
}

// ListReports returns all reports, newest first.
func (s *SQLiteStore) ListReports(ctx context.Context) ([]Report, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT date, summary, articles, generated_at FROM reports ORDER BY date DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func scanReport(scan func(...any) error) (*Report, error) {
	var (
		dateStr     string
		summary     string
		articles    int
		generatedAt sql.NullString
	)
	if err := scan(&dateStr, &summary, &articles, &generatedAt); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parsing report date %q: %w", dateStr, err)
	}

	r := &Report{Date: date, Summary: summary, Articles: articles}
	if generatedAt.Valid {
		if t, err := time.Parse(time.RFC3339, generatedAt.String); err == nil {
			r.GeneratedAt = t
		}
	}
	return r, nil
}

// Stats returns corpus and report counts plus the scraped_date range.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	err := s.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(MIN(scraped_date), ''), COALESCE(MAX(scraped_date), '') FROM documents",
	).Scan(&st.Documents, &st.EarliestScraped, &st.LatestScraped)
	if err != nil {
		return nil, err
	}
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports").Scan(&st.Reports); err != nil {
		return nil, err
	}
	return st, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.conn.Close()
}
