package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/triageworks/bounty-admin-api/internal/reports"
	"github.com/triageworks/bounty-admin-api/pkg/auth"
	"github.com/triageworks/bounty-admin-api/pkg/cache"
	"github.com/triageworks/bounty-admin-api/pkg/health"
	"github.com/triageworks/bounty-admin-api/pkg/logging"
)

// Handler bundles the request handlers with their collaborators.
type Handler struct {
	reports *reports.Store
	cache   *cache.Store
	logger  zerolog.Logger
}

// NewHandler creates the handler set.
func NewHandler(reportStore *reports.Store, cacheStore *cache.Store) *Handler {
	return &Handler{
		reports: reportStore,
		cache:   cacheStore,
		logger:  logging.NewLogger("api"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// CreateReport handles POST /api/reports.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var in reports.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.ReportedBy == "" {
		in.ReportedBy = auth.CallerID(r)
	}

	report, err := h.reports.Create(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info().
		Str("report_id", report.ID).
		Str("severity", string(report.Severity)).
		Msg("report created")
	writeJSON(w, http.StatusCreated, report)
}

// ListReports handles GET /api/reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := intQuery(query.Get("page"), 1)
	limit := intQuery(query.Get("limit"), 20)

	list, total := h.reports.List(page, limit,
		reports.Severity(query.Get("severity")),
		reports.Status(query.Get("status")))

	writeJSON(w, http.StatusOK, map[string]any{
		"reports": list,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetReport handles GET /api/reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ReportStats handles GET /api/reports/stats.
func (h *Handler) ReportStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Stats())
}

// AssignReport handles PUT /api/reports/{id}/assign.
func (h *Handler) AssignReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Assignee string `json:"assignee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Assignee == "" {
		writeError(w, http.StatusBadRequest, "assignee is required")
		return
	}

	report, err := h.reports.Assign(mux.Vars(r)["id"], body.Assignee)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateReportStatus handles PUT /api/reports/{id}/status.
func (h *Handler) UpdateReportStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status reports.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	report, err := h.reports.UpdateStatus(mux.Vars(r)["id"], body.Status)
	if err != nil {
		switch {
		case errors.Is(err, reports.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusNotFound, "report not found")
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// CacheStats handles GET /api/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"stats":     h.cache.Stats(),
		"connected": h.cache.Connected(),
	})
}

// ResetCacheStats handles POST /api/cache/stats/reset.
func (h *Handler) ResetCacheStats(w http.ResponseWriter, r *http.Request) {
	h.cache.ResetStats()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// FlushCache handles POST /api/cache/flush. An optional pattern restricts
// the flush to matching keys.
func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pattern string `json:"pattern"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	flushed := h.cache.Flush(r.Context(), body.Pattern)
	h.logger.Info().Str("pattern", body.Pattern).Bool("flushed", flushed).Msg("cache flush requested")
	writeJSON(w, http.StatusOK, map[string]any{"flushed": flushed})
}

// CacheHealth handles GET /api/health/cache.
func (h *Handler) CacheHealth(w http.ResponseWriter, r *http.Request) {
	result := health.Check(r.Context(), h.cache.Ping)

	status := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
