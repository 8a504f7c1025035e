package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brandbrief/brandbrief/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newTestServer(t *testing.T, s store.Store) *Server {
	t.Helper()
	srv, err := New(s, "Acme Corp")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRouteEmpty(t *testing.T) {
	srv := newTestServer(t, openTestStore(t))

	rec := doGet(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No reports yet") {
		t.Error("expected empty-state hint in response body")
	}
	if !strings.Contains(rec.Body.String(), "Acme Corp") {
		t.Error("expected entity name in response body")
	}
}

func TestIndexRouteListsReports(t *testing.T) {
	s := openTestStore(t)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	err := s.UpsertReport(context.Background(), store.Report{
		Date:        date,
		Summary:     "A fine day.",
		Articles:    7,
		GeneratedAt: date,
	})
	if err != nil {
		t.Fatalf("failed to insert report: %v", err)
	}
	srv := newTestServer(t, s)

	rec := doGet(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/report/2025-06-15") {
		t.Error("expected report link in response body")
	}
	if !strings.Contains(rec.Body.String(), "7 articles") {
		t.Error("expected article count in response body")
	}
}

func TestReportRoute(t *testing.T) {
	s := openTestStore(t)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	err := s.UpsertReport(context.Background(), store.Report{
		Date:        date,
		Summary:     "## Sentiment\n\nMostly **positive**.",
		Articles:    3,
		GeneratedAt: date,
	})
	if err != nil {
		t.Fatalf("failed to insert report: %v", err)
	}
	srv := newTestServer(t, s)

	rec := doGet(t, srv, "/report/2025-06-15")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h2") {
		t.Error("expected rendered markdown heading in response body")
	}
	if !strings.Contains(rec.Body.String(), "<strong>positive</strong>") {
		t.Error("expected rendered markdown bold in response body")
	}
}

func TestReportRouteMissing(t *testing.T) {
	srv := newTestServer(t, openTestStore(t))

	rec := doGet(t, srv, "/report/2025-01-01")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No report for 2025-01-01") {
		t.Error("expected missing-report fallback in response body")
	}
}

func TestReportRouteBadDate(t *testing.T) {
	srv := newTestServer(t, openTestStore(t))

	rec := doGet(t, srv, "/report/not-a-date")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestStaticRoute(t *testing.T) {
	srv := newTestServer(t, openTestStore(t))

	rec := doGet(t, srv, "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-sans") {
		t.Error("expected stylesheet content in response body")
	}
}
