package ledger

import (
	"encoding/json"
	"testing"

	"ledgerdash/internal/core"
)

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"number", float64(1250.5), 1250.5},
		{"numeric string", "50000", 50000},
		{"padded string", " 42 ", 42},
		{"negative string", "-10", -10},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"json number", json.Number("7.5"), 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceAmount(tt.in); got != tt.want {
				t.Fatalf("coerceAmount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRawTransactionNormalize(t *testing.T) {
	empty := ""
	category := "Food"

	tests := []struct {
		name string
		in   rawTransaction
		want core.Transaction
	}{
		{
			name: "nil category defaults",
			in:   rawTransaction{ID: "a", Amount: "10", Type: "EXPENSE"},
			want: core.Transaction{ID: "a", Amount: 10, Type: "expense", Category: core.UncategorizedLabel},
		},
		{
			name: "empty category defaults",
			in:   rawTransaction{ID: "b", Amount: float64(5), Type: "income", Category: &empty},
			want: core.Transaction{ID: "b", Amount: 5, Type: "income", Category: core.UncategorizedLabel},
		},
		{
			name: "category kept",
			in:   rawTransaction{ID: "c", Amount: float64(1), Type: "Transfer", Category: &category, Time: "12:00"},
			want: core.Transaction{ID: "c", Amount: 1, Type: "transfer", Category: "Food", Time: "12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalize(); got != tt.want {
				t.Fatalf("normalize = %+v, want %+v", got, tt.want)
			}
		})
	}
}
