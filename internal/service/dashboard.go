// Package service assembles period reports for the dashboard. It sits
// between the HTTP layer and the ledger client: it gates every read on
// credential expiry, caches assembled reports per period, guards
// against superseded in-flight fetches and forces a full re-fetch after
// any mutation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/cache"
	"ledgerdash/internal/core"
	"ledgerdash/internal/ledger"
)

// PeriodFetcher reads a normalized period from the remote ledger.
type PeriodFetcher interface {
	FetchPeriod(ctx context.Context, token string, month, year int) ([]core.DailyBucket, error)
}

// TransactionMutator forwards transaction mutations to the remote
// ledger. The ledger stays the single source of truth; nothing here
// edits local state.
type TransactionMutator interface {
	DeleteTransaction(ctx context.Context, token, id string) error
	UpdateTransaction(ctx context.Context, token, id string, update ledger.UpdateRequest) error
}

// PeriodReport is everything the dashboard needs for one period,
// recomputed from scratch on every fetch.
type PeriodReport struct {
	Month      int                  `json:"month"`
	Year       int                  `json:"year"`
	Summary    core.TypeTotals      `json:"summary"`
	Categories []core.CategoryTotal `json:"categories"`
	Days       []core.DailyBucket   `json:"days"`
}

// Dashboard orchestrates fetching and aggregation.
type Dashboard struct {
	fetcher PeriodFetcher
	mutator TransactionMutator
	reports *cache.LRUCache[PeriodReport]
	now     func() time.Time

	// latest tracks, per period key, the generation of the newest
	// fetch issued. A fetch whose generation has been passed by the
	// time it resolves must not overwrite the cache with older data.
	mu     sync.Mutex
	latest map[string]uint64
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithReportCache replaces the default report cache.
func WithReportCache(c *cache.LRUCache[PeriodReport]) Option {
	return func(d *Dashboard) { d.reports = c }
}

// WithClock replaces the expiry-gate clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

// NewDashboard creates the dashboard service.
func NewDashboard(fetcher PeriodFetcher, mutator TransactionMutator, opts ...Option) *Dashboard {
	d := &Dashboard{
		fetcher: fetcher,
		mutator: mutator,
		reports: cache.NewLRUCache[PeriodReport](100, 5*time.Minute),
		now:     time.Now,
		latest:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReportCache exposes the underlying cache so the caller can register
// it for periodic cleanup.
func (d *Dashboard) ReportCache() *cache.LRUCache[PeriodReport] { return d.reports }

// Report returns the aggregated report for one period, from cache when
// fresh. The credential is re-checked on every call; an expired or
// malformed token never reaches the cache, let alone the network.
func (d *Dashboard) Report(ctx context.Context, token string, month, year int) (PeriodReport, error) {
	subject, err := d.gate(token)
	if err != nil {
		return PeriodReport{}, err
	}

	key := periodKey(subject, year, month)
	if report, found := d.reports.Get(key); found {
		slog.DebugContext(ctx, "Report cache hit", "period", key)
		return report, nil
	}

	return d.refetch(ctx, token, key, month, year)
}

// refetch always goes to the ledger, applying the result only if no
// newer fetch for the same period was issued meanwhile.
func (d *Dashboard) refetch(ctx context.Context, token, key string, month, year int) (PeriodReport, error) {
	d.mu.Lock()
	d.latest[key]++
	generation := d.latest[key]
	d.mu.Unlock()

	days, err := d.fetcher.FetchPeriod(ctx, token, month, year)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("fetch period %s: %w", key, err)
	}

	if skipped := core.CountUnrecognized(days); skipped > 0 {
		slog.WarnContext(ctx, "Transactions with unrecognized type excluded from totals",
			"period", key, "skipped", skipped)
	}

	report := PeriodReport{
		Month:      month,
		Year:       year,
		Summary:    core.Summarize(days),
		Categories: core.Categorize(days),
		Days:       days,
	}

	d.mu.Lock()
	superseded := d.latest[key] != generation
	d.mu.Unlock()
	if superseded {
		slog.InfoContext(ctx, "Discarding superseded fetch result", "period", key, "generation", generation)
		return report, nil
	}

	d.reports.Set(key, report)
	return report, nil
}

// TopCategories returns the bounded top-n view of the category roll-up,
// with the tail folded into an Others entry.
func (d *Dashboard) TopCategories(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error) {
	report, err := d.Report(ctx, token, month, year)
	if err != nil {
		return nil, err
	}

	entries := make([]core.RankedEntry, 0, len(report.Categories))
	for _, ct := range report.Categories {
		entries = append(entries, core.RankedEntry{Label: ct.Category, Amount: ct.Total})
	}
	return core.RankTopN(entries, n), nil
}

// ExpenseSlices returns the ranked expense-by-category slices the chart
// view renders, same fold as TopCategories with its own cutoff.
func (d *Dashboard) ExpenseSlices(ctx context.Context, token string, month, year, n int) ([]core.RankedEntry, error) {
	report, err := d.Report(ctx, token, month, year)
	if err != nil {
		return nil, err
	}
	return core.RankTopN(core.ExpenseSlices(report.Days), n), nil
}

// DeleteTransaction forwards a delete to the ledger and re-fetches the
// affected period. Aggregates are never patched locally.
func (d *Dashboard) DeleteTransaction(ctx context.Context, token, id string, month, year int) error {
	if err := d.mutator.DeleteTransaction(ctx, token, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return d.refresh(ctx, token, month, year)
}

// UpdateTransaction forwards a patch to the ledger and re-fetches the
// affected period.
func (d *Dashboard) UpdateTransaction(ctx context.Context, token, id string, update ledger.UpdateRequest, month, year int) error {
	if err := d.mutator.UpdateTransaction(ctx, token, id, update); err != nil {
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return d.refresh(ctx, token, month, year)
}

// Invalidate drops the cached report for one period. The capture
// pipeline calls this through the event consumer when new transactions
// land for a subject.
func (d *Dashboard) Invalidate(subject string, month, year int) {
	d.reports.Delete(periodKey(subject, year, month))
}

func (d *Dashboard) refresh(ctx context.Context, token string, month, year int) error {
	subject, err := d.gate(token)
	if err != nil {
		return err
	}
	key := periodKey(subject, year, month)
	d.reports.Delete(key)
	if _, err := d.refetch(ctx, token, key, month, year); err != nil {
		return err
	}
	return nil
}

// gate re-derives subject and expiry from the credential. The token is
// never stored on the service; each call proves it again.
func (d *Dashboard) gate(token string) (string, error) {
	expired, err := auth.IsExpired(token, d.now())
	if err != nil {
		return "", err
	}
	if expired {
		return "", auth.ErrTokenExpired
	}
	return auth.DecodeSubject(token)
}

func periodKey(subject string, year, month int) string {
	return subject + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}
