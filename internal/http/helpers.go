package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tempo/internal/core"
)

// parseDaySelection extracts the owner and date query parameters that
// identify one day's ledger. The date defaults to today when omitted.
func parseDaySelection(r *http.Request) (string, core.Date, error) {
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		return "", core.Date{}, fmt.Errorf("missing owner parameter")
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		// Stored timestamps are UTC; "today" follows the same clock.
		now := time.Now().UTC()
		return owner, core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return "", core.Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
	}
	return owner, date, nil
}

// clientIP extracts the client address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
