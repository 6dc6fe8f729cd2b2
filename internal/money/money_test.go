package money

import "testing"

func TestDivideEvenly(t *testing.T) {
	tests := []struct {
		name          string
		totalCents    int64
		count         int64
		wantBase      int64
		wantRemainder int64
	}{
		{name: "1000 across 3", totalCents: 1000, count: 3, wantBase: 333, wantRemainder: 1},
		{name: "999 across 2", totalCents: 999, count: 2, wantBase: 499, wantRemainder: 1},
		{name: "1 across 5", totalCents: 1, count: 5, wantBase: 0, wantRemainder: 1},
		{name: "even division", totalCents: 1000, count: 4, wantBase: 250, wantRemainder: 0},
		{name: "single payer", totalCents: 987, count: 1, wantBase: 987, wantRemainder: 0},
		{name: "zero total", totalCents: 0, count: 3, wantBase: 0, wantRemainder: 0},
		{name: "zero count", totalCents: 1000, count: 0, wantBase: 0, wantRemainder: 0},
		{name: "negative count", totalCents: 1000, count: -2, wantBase: 0, wantRemainder: 0},
		{name: "large total", totalCents: 9007199254740991, count: 7, wantBase: 1286742750677284, wantRemainder: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DivideEvenly(tt.totalCents, tt.count)
			if got.BaseAmountCents != tt.wantBase {
				t.Errorf("BaseAmountCents = %d, want %d", got.BaseAmountCents, tt.wantBase)
			}
			if got.RemainderCents != tt.wantRemainder {
				t.Errorf("RemainderCents = %d, want %d", got.RemainderCents, tt.wantRemainder)
			}
		})
	}
}

// TestDivideEvenly_Invariant sweeps totals and counts to pin the core law:
// base*count + remainder == total, with the remainder strictly bounded.
func TestDivideEvenly_Invariant(t *testing.T) {
	for total := int64(0); total <= 500; total++ {
		for count := int64(0); count <= 12; count++ {
			got := DivideEvenly(total, count)
			if count <= 0 {
				if got.BaseAmountCents != 0 || got.RemainderCents != 0 {
					t.Fatalf("DivideEvenly(%d, %d) = %+v, want zero result", total, count, got)
				}
				continue
			}
			if got.BaseAmountCents*count+got.RemainderCents != total {
				t.Fatalf("DivideEvenly(%d, %d): %d*%d+%d != %d",
					total, count, got.BaseAmountCents, count, got.RemainderCents, total)
			}
			if got.RemainderCents < 0 || got.RemainderCents >= count {
				t.Fatalf("DivideEvenly(%d, %d): remainder %d out of [0, %d)",
					total, count, got.RemainderCents, count)
			}
		}
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name      string
		baseCents int64
		percent   float64
		want      int64
	}{
		{name: "18% tip on 25.00", baseCents: 2500, percent: 18, want: 450},
		{name: "half-cent rounds away from zero", baseCents: 50, percent: 15, want: 8}, // 7.5 -> 8
		{name: "exact", baseCents: 1000, percent: 20, want: 200},
		{name: "zero percent", baseCents: 1234, percent: 0, want: 0},
		{name: "zero base", baseCents: 0, percent: 25, want: 0},
		{name: "rounds down below half", baseCents: 33, percent: 10, want: 3}, // 3.3 -> 3
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyPercentage(tt.baseCents, tt.percent); got != tt.want {
				t.Errorf("ApplyPercentage(%d, %v) = %d, want %d", tt.baseCents, tt.percent, got, tt.want)
			}
		})
	}
}

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		cents  int64
		symbol string
		want   string
	}{
		{name: "euros", cents: 334, symbol: "€", want: "€3.34"},
		{name: "zero", cents: 0, symbol: "$", want: "$0.00"},
		{name: "single cent", cents: 1, symbol: "$", want: "$0.01"},
		{name: "whole amount", cents: 10000, symbol: "$", want: "$100.00"},
		{name: "negative", cents: -250, symbol: "$", want: "-$2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMinorUnits(tt.cents, tt.symbol); got != tt.want {
				t.Errorf("FormatMinorUnits(%d, %q) = %q, want %q", tt.cents, tt.symbol, got, tt.want)
			}
		})
	}
}
