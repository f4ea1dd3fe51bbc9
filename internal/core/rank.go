package core

import (
	"math"
	"sort"
	"strings"
)

// RankTopN orders entries by amount descending and folds everything
// beyond the first n into a single trailing Others entry carrying the
// remainder sum. Ties keep their input order. The Others entry is only
// appended when the remainder is strictly positive, so the result never
// holds more than n+1 entries and an all-zero tail disappears. With n
// at or above the input length the sorted input comes back unchanged.
//
// Both the top-categories list and the chart slices go through this
// same fold, just with different cutoffs.
func RankTopN(entries []RankedEntry, n int) []RankedEntry {
	if n < 0 {
		n = 0
	}

	ranked := make([]RankedEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount > ranked[j].Amount
	})

	if len(ranked) <= n {
		return ranked
	}

	var remainder float64
	for _, e := range ranked[n:] {
		remainder += e.Amount
	}

	top := ranked[:n:n]
	if remainder > 0 {
		top = append(top, RankedEntry{Label: OthersLabel, Amount: remainder})
	}
	return top
}

// ExpenseSlices folds the expense transactions of a period into one
// absolute amount per category, the shape both the chart and the
// top-categories list feed to RankTopN.
func ExpenseSlices(days []DailyBucket) []RankedEntry {
	totals := make(map[string]float64)
	order := make([]string, 0)

	for _, day := range days {
		for _, tx := range day.Transactions {
			if strings.ToLower(tx.Type) != TypeExpense {
				continue
			}
			category := normalizeCategory(tx.Category)
			if _, seen := totals[category]; !seen {
				order = append(order, category)
			}
			totals[category] += math.Abs(tx.Amount)
		}
	}

	slices := make([]RankedEntry, 0, len(order))
	for _, category := range order {
		slices = append(slices, RankedEntry{Label: category, Amount: totals[category]})
	}
	return slices
}
