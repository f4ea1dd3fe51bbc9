package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/charts"
	"ledgerdash/internal/core"
	"ledgerdash/internal/ledger"
	"ledgerdash/internal/log"
	"ledgerdash/internal/service"
)

type stubDashboard struct {
	report  service.PeriodReport
	top     []core.RankedEntry
	slices  []core.RankedEntry
	err     error
	deleted []string
	updated []ledger.UpdateRequest
}

func (s *stubDashboard) Report(ctx context.Context, token string, month, year int) (service.PeriodReport, error) {
	return s.report, s.err
}

func (s *stubDashboard) TopCategories(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error) {
	return s.top, s.err
}

func (s *stubDashboard) ExpenseSlices(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error) {
	return s.slices, s.err
}

func (s *stubDashboard) DeleteTransaction(ctx context.Context, token, id string, month, year int) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func (s *stubDashboard) UpdateTransaction(ctx context.Context, token, id string, update ledger.UpdateRequest, month, year int) error {
	s.updated = append(s.updated, update)
	return s.err
}

func newTestServer(dash DashboardService) *Server {
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	return NewServer(":0", dash, charts.NewGenerator(), logger, Options{})
}

func doRequest(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSummary(t *testing.T) {
	dash := &stubDashboard{report: service.PeriodReport{
		Month:   1,
		Year:    2024,
		Summary: core.TypeTotals{TotalExpenses: 50, TotalIncome: 200},
	}}
	s := newTestServer(dash)

	rec := doRequest(s, http.MethodGet, "/api/dashboard/summary?month=1&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp summaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Month != 1 || resp.Year != 2024 {
		t.Errorf("period = %d/%d", resp.Month, resp.Year)
	}
	if resp.Summary.TotalExpenses != 50 || resp.Summary.TotalIncome != 200 {
		t.Errorf("summary = %+v", resp.Summary)
	}
}

func TestHandleSummaryInvalidPeriod(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	for _, target := range []string{
		"/api/dashboard/summary?month=13",
		"/api/dashboard/summary?month=0",
		"/api/dashboard/summary?month=abc",
		"/api/dashboard/summary?year=12",
	} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleSummaryAuthErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"expired", auth.ErrTokenExpired, "token_expired"},
		{"invalid", auth.ErrInvalidToken, "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&stubDashboard{err: tt.err})
			rec := doRequest(s, http.MethodGet, "/api/dashboard/summary", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var env errorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if env.Error.Retryable {
				t.Error("auth failures must not be retryable")
			}
		})
	}
}

func TestHandleSummaryUpstreamError(t *testing.T) {
	s := newTestServer(&stubDashboard{err: &ledger.FetchError{Status: 500, Op: "fetch period"}})

	rec := doRequest(s, http.MethodGet, "/api/dashboard/summary", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "upstream_error" || !env.Error.Retryable {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestHandleCategoriesEmpty(t *testing.T) {
	s := newTestServer(&stubDashboard{report: service.PeriodReport{Month: 2, Year: 2024}})

	rec := doRequest(s, http.MethodGet, "/api/dashboard/categories?month=2&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"categories":[]`) {
		t.Errorf("empty period should serialize as [], got %s", rec.Body)
	}
}

func TestHandleDaily(t *testing.T) {
	dash := &stubDashboard{report: service.PeriodReport{
		Days: []core.DailyBucket{{Date: "2024-01-05", Total: 30, TransactionCount: 1}},
	}}
	s := newTestServer(dash)

	rec := doRequest(s, http.MethodGet, "/api/dashboard/daily?month=1&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp dailyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Daily) != 1 || resp.Daily[0].Date != "2024-01-05" {
		t.Errorf("daily = %+v", resp.Daily)
	}
}

func TestHandleTopCategories(t *testing.T) {
	dash := &stubDashboard{top: []core.RankedEntry{
		{Label: "Rent", Amount: 900},
		{Label: core.OthersLabel, Amount: 120},
	}}
	s := newTestServer(dash)

	rec := doRequest(s, http.MethodGet, "/api/dashboard/top-categories?month=1&year=2024&n=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp topCategoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Top) != 2 || resp.Top[0].Label != "Rent" {
		t.Errorf("top = %+v", resp.Top)
	}
}

func TestHandleTopCategoriesBadN(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	for _, target := range []string{
		"/api/dashboard/top-categories?n=0",
		"/api/dashboard/top-categories?n=-3",
		"/api/dashboard/top-categories?n=five",
	} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleChart(t *testing.T) {
	dash := &stubDashboard{slices: []core.RankedEntry{
		{Label: "Food", Amount: 100},
		{Label: "Transport", Amount: 60},
	}}
	s := newTestServer(dash)

	rec := doRequest(s, http.MethodGet, "/api/dashboard/chart.png?month=1&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("body is not a PNG")
	}
}

func TestHandleChartNoExpenses(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	rec := doRequest(s, http.MethodGet, "/api/dashboard/chart.png?month=1&year=2024", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestHandleDeleteTransaction(t *testing.T) {
	dash := &stubDashboard{}
	s := newTestServer(dash)

	rec := doRequest(s, http.MethodDelete, "/api/transactions/tx-9?month=1&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(dash.deleted) != 1 || dash.deleted[0] != "tx-9" {
		t.Errorf("deleted = %v", dash.deleted)
	}
}

func TestHandleUpdateTransaction(t *testing.T) {
	dash := &stubDashboard{}
	s := newTestServer(dash)

	body := strings.NewReader(`{"items":[{"name":"coffee","price":3.5,"quantity":2,"type":"expense"}]}`)
	rec := doRequest(s, http.MethodPatch, "/api/transactions/tx-9?month=1&year=2024", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(dash.updated) != 1 || dash.updated[0].Items[0].Name != "coffee" {
		t.Errorf("updated = %+v", dash.updated)
	}
}

func TestHandleUpdateTransactionBadBody(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not JSON", `not json`, http.StatusBadRequest},
		{"no items", `{"items":[]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPatch, "/api/transactions/tx-9", strings.NewReader(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	for _, target := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, target, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(&stubDashboard{})

	rec := doRequest(s, http.MethodGet, "/healthz", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
