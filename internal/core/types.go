package core

import "strings"

// Transaction types recognized by the aggregators. Anything else that
// arrives from the ledger is ignored when summarizing.
const (
	TypeExpense  = "expense"
	TypeIncome   = "income"
	TypeTransfer = "transfer"
)

// UncategorizedLabel is the sentinel category assigned to transactions
// the capture pipeline could not classify.
const UncategorizedLabel = "Uncategorized"

// OthersLabel names the synthetic remainder bucket produced by RankTopN.
const OthersLabel = "Others"

type (
	// Transaction is a single normalized ledger record. Amounts are
	// whatever the ledger reported, coerced to a finite number; the
	// type is lowercased at ingestion.
	Transaction struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Type        string  `json:"type"`
		Category    string  `json:"category"`
		Time        string  `json:"time"`
		Description string  `json:"description,omitempty"`
		ImageURL    string  `json:"image_url,omitempty"`
	}

	// DailyBucket groups the transactions of one calendar day. The date
	// string is opaque, supplied by the ledger API and used only as a
	// grouping key and display label. Buckets are built fresh on every
	// fetch and never mutated; edits and deletes invalidate the whole
	// period.
	DailyBucket struct {
		Date             string        `json:"date"`
		Total            float64       `json:"total"`
		TransactionCount int           `json:"transaction_count"`
		Transactions     []Transaction `json:"transactions"`
	}

	// TypeTotals holds the per-type totals of a period, recomputed from
	// scratch on every aggregation.
	TypeTotals struct {
		TotalExpenses float64 `json:"total_expenses"`
		TotalIncome   float64 `json:"total_income"`
		TotalTransfer float64 `json:"total_transfer"`
	}

	// CategoryTotal is the running total of one (category, type) pair
	// over a whole period. A category seen under two types yields two
	// entries.
	CategoryTotal struct {
		Category string  `json:"category"`
		Type     string  `json:"type"`
		Total    float64 `json:"total"`
	}

	// RankedEntry is a labeled amount used by RankTopN for both the
	// top-categories list and the chart slices.
	RankedEntry struct {
		Label  string  `json:"label"`
		Amount float64 `json:"amount"`
	}
)

// normalizeCategory maps an absent category to the sentinel label.
func normalizeCategory(category string) string {
	if strings.TrimSpace(category) == "" {
		return UncategorizedLabel
	}
	return category
}
