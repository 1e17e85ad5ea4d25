package http

import (
	"encoding/json"
	"net/http"
	"time"

	"tempo/internal/analytics"
	"tempo/internal/catalog"
	"tempo/internal/core"
	"tempo/internal/ledger"
	"tempo/internal/log"
)

type activityResponse struct {
	ID              string    `json:"id"`
	Owner           string    `json:"owner"`
	Date            string    `json:"date"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type dayResponse struct {
	Owner            string                  `json:"owner"`
	Date             string                  `json:"date"`
	Activities       []activityResponse      `json:"activities"`
	TotalMinutes     int                     `json:"total_minutes"`
	RemainingMinutes int                     `json:"remaining_minutes"`
	IsComplete       bool                    `json:"is_complete"`
	ByCategory       []categorySliceResponse `json:"by_category"`
}

type categorySliceResponse struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Color    string `json:"color"`
	Minutes  int    `json:"minutes"`
}

type topActivityResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
	Color   string `json:"color"`
}

type daySummaryResponse struct {
	Owner         string                  `json:"owner"`
	Date          string                  `json:"date"`
	TotalMinutes  int                     `json:"total_minutes"`
	IsComplete    bool                    `json:"is_complete"`
	ByCategory    []categorySliceResponse `json:"by_category"`
	TopActivities []topActivityResponse   `json:"top_activities"`
	ComputedAt    time.Time               `json:"computed_at"`
}

type createActivityRequest struct {
	Owner           string `json:"owner"`
	Date            string `json:"date"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
}

type updateActivityRequest struct {
	Title           *string `json:"title"`
	Category        *string `json:"category"`
	DurationMinutes *int    `json:"duration_minutes"`
}

func toActivityResponse(a core.Activity) activityResponse {
	return activityResponse{
		ID:              a.ID,
		Owner:           a.Owner,
		Date:            a.Date.String(),
		Title:           a.Title,
		Category:        a.Category,
		DurationMinutes: a.DurationMinutes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toCategorySlices(slices []analytics.CategorySlice) []categorySliceResponse {
	out := make([]categorySliceResponse, len(slices))
	for i, cs := range slices {
		out[i] = categorySliceResponse(cs)
	}
	return out
}

// statusForError maps ledger failures to HTTP status codes. Validation
// failures are the client's fault, missing rows are 404, and store or
// fetch failures surface as bad gateway since the backing store is a
// separate dependency.
func statusForError(err error) int {
	switch ledger.KindOf(err) {
	case ledger.FailureValidation:
		return http.StatusUnprocessableEntity
	case ledger.FailureNotFound:
		return http.StatusNotFound
	case ledger.FailureFetch, ledger.FailureStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) summaryKey(owner string, date core.Date) string {
	return owner + "|" + date.String()
}

// handleGetDay returns one day's activities with derived totals.
func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	owner, date, err := parseDaySelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	led, err := s.ledgers.Get(r.Context(), owner, date)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Day load failed",
			log.FieldError, err, log.FieldOwner, owner, log.FieldDate, date.String())
		writeError(w, statusForError(err), "failed to load day")
		return
	}

	snap := led.Snapshot()
	resp := dayResponse{
		Owner:            snap.Owner,
		Date:             snap.Date.String(),
		Activities:       make([]activityResponse, len(snap.Activities)),
		TotalMinutes:     snap.TotalMinutes,
		RemainingMinutes: snap.RemainingMinutes,
		IsComplete:       snap.IsComplete,
		ByCategory:       toCategorySlices(analytics.CategoryBreakdown(snap.Activities)),
	}
	for i, a := range snap.Activities {
		resp.Activities[i] = toActivityResponse(a)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCreateActivity adds one activity to a day's ledger.
func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Owner == "" {
		writeError(w, http.StatusBadRequest, "missing owner")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return
	}

	led, err := s.ledgers.Get(r.Context(), req.Owner, date)
	if err != nil {
		writeError(w, statusForError(err), "failed to load day")
		return
	}

	created, err := led.Add(r.Context(), sanitizeInput(req.Title), sanitizeInput(req.Category), req.DurationMinutes)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Activity create rejected",
			log.FieldError, err, log.FieldOwner, req.Owner, log.FieldDate, date.String())
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(s.summaryKey(req.Owner, date))
	s.logger.InfoContext(r.Context(), "Activity created",
		log.FieldActivityID, created.ID,
		log.FieldOwner, created.Owner,
		log.FieldDate, created.Date.String(),
		log.FieldDurationMinutes, created.DurationMinutes,
		log.FieldOperation, log.OpCreate)

	writeJSON(w, http.StatusCreated, toActivityResponse(created))
}

// handleUpdateActivity patches the supplied fields of one activity.
func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	owner, date, err := parseDaySelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch := core.Patch{
		Title:           req.Title,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
	}
	if patch.Title != nil {
		clean := sanitizeInput(*patch.Title)
		patch.Title = &clean
	}

	led, err := s.ledgers.Get(r.Context(), owner, date)
	if err != nil {
		writeError(w, statusForError(err), "failed to load day")
		return
	}

	if _, err := led.Update(r.Context(), id, patch); err != nil {
		s.logger.WarnContext(r.Context(), "Activity update rejected",
			log.FieldError, err, log.FieldActivityID, id)
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(s.summaryKey(owner, date))
	s.logger.InfoContext(r.Context(), "Activity updated",
		log.FieldActivityID, id,
		log.FieldOwner, owner,
		log.FieldDate, date.String(),
		log.FieldOperation, log.OpUpdate)

	for _, a := range led.Activities() {
		if a.ID == id {
			writeJSON(w, http.StatusOK, toActivityResponse(a))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteActivity removes one activity from a day's ledger.
func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	owner, date, err := parseDaySelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	led, err := s.ledgers.Get(r.Context(), owner, date)
	if err != nil {
		writeError(w, statusForError(err), "failed to load day")
		return
	}

	if err := led.Remove(r.Context(), id); err != nil {
		s.logger.WarnContext(r.Context(), "Activity delete rejected",
			log.FieldError, err, log.FieldActivityID, id)
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(s.summaryKey(owner, date))
	s.logger.InfoContext(r.Context(), "Activity deleted",
		log.FieldActivityID, id,
		log.FieldOwner, owner,
		log.FieldDate, date.String(),
		log.FieldOperation, log.OpDelete)

	w.WriteHeader(http.StatusNoContent)
}

// handleAnalytics serves the day's summary. Analytics are gated on the
// day being fully accounted for; until then the endpoint answers 409
// with the remaining minutes so the client can show progress.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	owner, date, err := parseDaySelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.summaryKey(owner, date)
	if summary, found := s.summaryCache.Get(key); found {
		s.logger.DebugContext(r.Context(), "Summary cache hit",
			log.FieldOwner, owner, log.FieldDate, date.String())
		writeJSON(w, http.StatusOK, toDaySummaryResponse(summary))
		return
	}

	led, err := s.ledgers.Get(r.Context(), owner, date)
	if err != nil {
		writeError(w, statusForError(err), "failed to load day")
		return
	}

	snap := led.Snapshot()
	if !snap.IsComplete {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":             "day is not complete",
			"total_minutes":     snap.TotalMinutes,
			"remaining_minutes": snap.RemainingMinutes,
		})
		return
	}

	summary := analytics.BuildDaySummary(owner, date, snap.Activities, time.Now().UTC())
	s.summaryCache.Set(key, summary)

	writeJSON(w, http.StatusOK, toDaySummaryResponse(summary))
}

func toDaySummaryResponse(summary analytics.DaySummary) daySummaryResponse {
	resp := daySummaryResponse{
		Owner:         summary.Owner,
		Date:          summary.Date.String(),
		TotalMinutes:  summary.TotalMinutes,
		IsComplete:    summary.IsComplete,
		ByCategory:    toCategorySlices(summary.ByCategory),
		TopActivities: make([]topActivityResponse, len(summary.TopActivities)),
		ComputedAt:    summary.ComputedAt,
	}
	for i, ta := range summary.TopActivities {
		resp.TopActivities[i] = topActivityResponse(ta)
	}
	return resp
}

// handleCategories lists the category catalog.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type categoryResponse struct {
		Value string `json:"value"`
		Label string `json:"label"`
		Color string `json:"color"`
	}

	out := make([]categoryResponse, len(catalog.Categories))
	for i, c := range catalog.Categories {
		out[i] = categoryResponse{Value: c.Value, Label: c.Label, Color: c.Color}
	}

	writeJSON(w, http.StatusOK, out)
}

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady reports readiness along with cache and limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks": map[string]any{
			"ledgers": map[string]any{"loaded": s.ledgers.Size(), "status": "ok"},
			"cache":   map[string]any{"summary_entries": s.summaryCache.Size(), "status": "ok"},
			"rate_limiter": map[string]any{
				"active_clients": s.rateLimiter.ActiveClients(),
				"status":         "ok",
			},
		},
	})
}
