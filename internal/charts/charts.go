// Package charts renders dashboard imagery as PNG bytes.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"ledgerdash/internal/core"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// ExpensePie renders ranked expense slices as a pie chart. Returns
// nil bytes when there is nothing to draw.
func (g *Generator) ExpensePie(slices []core.RankedEntry) ([]byte, error) {
	total := 0.0
	for _, s := range slices {
		total += s.Amount
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Amount <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.0f (%.1f%%)", s.Label, s.Amount, s.Amount/total*100),
			Value: s.Amount,
		})
	}

	pie := chart.PieChart{
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render expense pie: %w", err)
	}
	return buf.Bytes(), nil
}

// DailyTotals renders one bar per day of the period.
func (g *Generator) DailyTotals(days []core.DailyBucket) ([]byte, error) {
	if len(days) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(days))
	for _, day := range days {
		bars = append(bars, chart.Value{
			Label: day.Date,
			Value: day.Total,
		})
	}

	graph := chart.BarChart{
		Width:    1200,
		Height:   600,
		BarWidth: 30,
		Background: chart.Style{
			Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render daily totals: %w", err)
	}
	return buf.Bytes(), nil
}
