package charts

import (
	"bytes"
	"testing"

	"ledgerdash/internal/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestExpensePie(t *testing.T) {
	g := NewGenerator()

	img, err := g.ExpensePie([]core.RankedEntry{
		{Label: "Food", Amount: 120},
		{Label: "Transport", Amount: 45},
		{Label: core.OthersLabel, Amount: 30},
	})
	if err != nil {
		t.Fatalf("ExpensePie: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestExpensePieEmpty(t *testing.T) {
	g := NewGenerator()

	for _, slices := range [][]core.RankedEntry{
		nil,
		{},
		{{Label: "Food", Amount: 0}},
	} {
		img, err := g.ExpensePie(slices)
		if err != nil {
			t.Fatalf("ExpensePie(%v): %v", slices, err)
		}
		if img != nil {
			t.Fatalf("ExpensePie(%v) = %d bytes, want nil", slices, len(img))
		}
	}
}

func TestDailyTotals(t *testing.T) {
	g := NewGenerator()

	img, err := g.DailyTotals([]core.DailyBucket{
		{Date: "2024-01-01", Total: 150},
		{Date: "2024-01-02", Total: 80},
	})
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestDailyTotalsEmpty(t *testing.T) {
	g := NewGenerator()

	img, err := g.DailyTotals(nil)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if img != nil {
		t.Fatal("expected nil for empty period")
	}
}
