package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDaySelection(t *testing.T) {
	t.Run("explicit date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/day?owner=alice&date=2025-03-01", nil)
		owner, date, err := parseDaySelection(req)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if owner != "alice" || date.String() != "2025-03-01" {
			t.Fatalf("got owner=%q date=%q", owner, date.String())
		}
	})

	t.Run("missing owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/day?date=2025-03-01", nil)
		if _, _, err := parseDaySelection(req); err == nil {
			t.Fatalf("expected error for missing owner")
		}
	})

	t.Run("bad date format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/day?owner=alice&date=03/01/2025", nil)
		if _, _, err := parseDaySelection(req); err == nil {
			t.Fatalf("expected error for bad date")
		}
	})

	t.Run("omitted date defaults to the UTC day", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/day?owner=alice", nil)
		before := time.Now().UTC().Format("2006-01-02")
		_, date, err := parseDaySelection(req)
		after := time.Now().UTC().Format("2006-01-02")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got := date.String(); got != before && got != after {
			t.Fatalf("default date %q, want UTC today (%q)", got, after)
		}
	})
}
