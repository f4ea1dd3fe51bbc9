package ledger

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"ledgerdash/internal/core"
)

// periodResponse mirrors the loose shape the ledger API returns. The
// daily_stats field is kept raw so a missing or mistyped value can
// degrade to an empty period instead of failing the whole fetch.
type periodResponse struct {
	DailyStats json.RawMessage `json:"daily_stats"`
}

func (p periodResponse) days() ([]rawDay, bool) {
	if len(p.DailyStats) == 0 {
		return nil, false
	}
	var days []rawDay
	if err := json.Unmarshal(p.DailyStats, &days); err != nil {
		return nil, false
	}
	return days, true
}

// rawDay and rawTransaction are the unnormalized wire records. All
// defaulting and coercion happens in their normalize methods and
// nowhere else; the aggregators only ever see core types.
type rawDay struct {
	Date             string           `json:"date"`
	Total            any              `json:"total"`
	TransactionCount int              `json:"transaction_count"`
	Transactions     []rawTransaction `json:"transactions"`
}

type rawTransaction struct {
	ID          string  `json:"_id"`
	Amount      any     `json:"amount"`
	Type        string  `json:"type"`
	Category    *string `json:"category"`
	Time        string  `json:"time"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
}

func (d rawDay) normalize() core.DailyBucket {
	bucket := core.DailyBucket{
		Date:             d.Date,
		Total:            coerceAmount(d.Total),
		TransactionCount: d.TransactionCount,
		Transactions:     make([]core.Transaction, 0, len(d.Transactions)),
	}
	for _, tx := range d.Transactions {
		bucket.Transactions = append(bucket.Transactions, tx.normalize())
	}
	return bucket
}

func (t rawTransaction) normalize() core.Transaction {
	category := core.UncategorizedLabel
	if t.Category != nil && *t.Category != "" {
		category = *t.Category
	}
	return core.Transaction{
		ID:          t.ID,
		Amount:      coerceAmount(t.Amount),
		Type:        strings.ToLower(t.Type),
		Category:    category,
		Time:        t.Time,
		Description: t.Description,
		ImageURL:    strings.TrimSpace(t.ImageURL),
	}
}

// coerceAmount turns a number-or-string amount into a finite float64.
// Anything unparseable, including NaN and infinities, normalizes to 0.
func coerceAmount(v any) float64 {
	var f float64
	switch amount := v.(type) {
	case float64:
		f = amount
	case json.Number:
		f, _ = amount.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
