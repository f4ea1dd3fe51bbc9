package http

import (
	"encoding/json"
	"net/http"
	"time"

	"ledgerdash/internal/core"
	"ledgerdash/internal/ledger"
)

type summaryResponse struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Summary core.TypeTotals `json:"summary"`
}

type categoriesResponse struct {
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	Categories []core.CategoryTotal `json:"categories"`
}

type dailyResponse struct {
	Month int                `json:"month"`
	Year  int                `json:"year"`
	Daily []core.DailyBucket `json:"daily"`
}

type topCategoriesResponse struct {
	Month int                `json:"month"`
	Year  int                `json:"year"`
	Top   []core.RankedEntry `json:"top"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}

	report, err := s.dashboard.Report(r.Context(), bearerToken(r), params.Month, params.Year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summaryResponse{
		Month:   params.Month,
		Year:    params.Year,
		Summary: report.Summary,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}

	report, err := s.dashboard.Report(r.Context(), bearerToken(r), params.Month, params.Year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	categories := report.Categories
	if categories == nil {
		categories = []core.CategoryTotal{}
	}
	s.writeJSON(w, http.StatusOK, categoriesResponse{
		Month:      params.Month,
		Year:       params.Year,
		Categories: categories,
	})
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}

	report, err := s.dashboard.Report(r.Context(), bearerToken(r), params.Month, params.Year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	daily := report.Days
	if daily == nil {
		daily = []core.DailyBucket{}
	}
	s.writeJSON(w, http.StatusOK, dailyResponse{
		Month: params.Month,
		Year:  params.Year,
		Daily: daily,
	})
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}
	n, err := parseTopN(r.URL.Query(), s.topN)
	if err != nil {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", err.Error(), false)
		return
	}

	top, err := s.dashboard.TopCategories(r.Context(), bearerToken(r), params.Month, params.Year, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if top == nil {
		top = []core.RankedEntry{}
	}

	s.writeJSON(w, http.StatusOK, topCategoriesResponse{
		Month: params.Month,
		Year:  params.Year,
		Top:   top,
	})
}

// handleChart renders the period's expense breakdown as a pie chart.
// Periods with no expenses produce 204.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}
	n, err := parseTopN(r.URL.Query(), s.topN)
	if err != nil {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", err.Error(), false)
		return
	}

	slices, err := s.dashboard.ExpenseSlices(r.Context(), bearerToken(r), params.Month, params.Year, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	img, err := s.charts.ExpensePie(slices)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", "transaction id is required", false)
		return
	}

	if err := s.dashboard.DeleteTransaction(r.Context(), bearerToken(r), id, params.Month, params.Year); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction deleted", "transaction_id", id)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	params, ok := s.periodOf(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == "" {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", "transaction id is required", false)
		return
	}

	var update ledger.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON", false)
		return
	}
	if len(update.Items) == 0 {
		s.writeAPIError(w, http.StatusUnprocessableEntity, "invalid_request", "update needs at least one item", false)
		return
	}

	if err := s.dashboard.UpdateTransaction(r.Context(), bearerToken(r), id, update, params.Month, params.Year); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction updated", "transaction_id", id, "items", len(update.Items))
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "updated", "id": id})
}

// periodOf parses the period from the query string, writing the error
// response itself on bad input.
func (s *Server) periodOf(w http.ResponseWriter, r *http.Request) (monthParams, bool) {
	params, err := parseMonthParams(r.URL.Query(), time.Now())
	if err != nil {
		s.writeAPIError(w, http.StatusBadRequest, "invalid_request", err.Error(), false)
		return monthParams{}, false
	}
	return params, true
}
