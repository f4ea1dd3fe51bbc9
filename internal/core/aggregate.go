// Package core holds the period aggregation engine: the data model for
// normalized ledger records plus the pure folds that turn a month of
// daily buckets into type totals, category roll-ups and bounded top-N
// rankings. Nothing in here performs I/O or keeps state between calls.
package core

import "strings"

// Summarize folds every transaction of every day into per-type totals.
// Classification is case-insensitive; a transaction whose type is not
// expense, income or transfer is silently skipped rather than counted
// in a fourth bucket. The result does not depend on the order of days
// or of transactions within a day.
func Summarize(days []DailyBucket) TypeTotals {
	var totals TypeTotals
	for _, day := range days {
		for _, tx := range day.Transactions {
			switch strings.ToLower(tx.Type) {
			case TypeExpense:
				totals.TotalExpenses += tx.Amount
			case TypeIncome:
				totals.TotalIncome += tx.Amount
			case TypeTransfer:
				totals.TotalTransfer += tx.Amount
			}
		}
	}
	return totals
}

// CountUnrecognized reports how many transactions Summarize would skip
// for carrying a type outside the three recognized ones. Callers use it
// to log when upstream starts emitting a type the totals would silently
// under-report.
func CountUnrecognized(days []DailyBucket) int {
	skipped := 0
	for _, day := range days {
		for _, tx := range day.Transactions {
			switch strings.ToLower(tx.Type) {
			case TypeExpense, TypeIncome, TypeTransfer:
			default:
				skipped++
			}
		}
	}
	return skipped
}

// Categorize folds the whole period into one total per distinct
// (category, type) pair. A missing category counts under the
// Uncategorized sentinel and the type is lowercased, so two spellings
// of the same type merge while the same category under two types stays
// split. The returned slice is unordered; callers sort as needed.
func Categorize(days []DailyBucket) []CategoryTotal {
	type key struct {
		category string
		typ      string
	}
	totals := make(map[key]float64)
	order := make([]key, 0)

	for _, day := range days {
		for _, tx := range day.Transactions {
			k := key{
				category: normalizeCategory(tx.Category),
				typ:      strings.ToLower(tx.Type),
			}
			if _, seen := totals[k]; !seen {
				order = append(order, k)
			}
			totals[k] += tx.Amount
		}
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, k := range order {
		out = append(out, CategoryTotal{
			Category: k.category,
			Type:     k.typ,
			Total:    totals[k],
		})
	}
	return out
}
