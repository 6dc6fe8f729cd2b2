// Package money provides exact integer-cents arithmetic for bill splitting.
//
// Every function here is pure. Amounts are int64 minor currency units and no
// computation ever passes through floating point, so results are exact for
// the full range a bill can realistically reach.
package money

import (
	"fmt"
	"math"
)

// SplitResult is the outcome of dividing a total evenly.
//
// The invariant the rest of the system leans on:
//
//	BaseAmountCents*count + RemainderCents == totalCents
//
// for every non-negative input, including zero participants and zero total.
type SplitResult struct {
	// BaseAmountCents is the floor-divided share every non-remainder-payer pays.
	BaseAmountCents int64

	// RemainderCents is the leftover not evenly divisible,
	// 0 <= RemainderCents < count whenever count >= 1.
	RemainderCents int64
}

// DivideEvenly splits totalCents across count payers using floor division.
//
// count <= 0 returns {0, 0}: dividing among nobody means nobody owes
// anything. That is policy, not an error path.
func DivideEvenly(totalCents, count int64) SplitResult {
	if count <= 0 {
		return SplitResult{}
	}
	base := totalCents / count
	return SplitResult{
		BaseAmountCents: base,
		RemainderCents:  totalCents - base*count,
	}
}

// ApplyPercentage computes percent% of baseCents, rounding half away from
// zero. Used for tip amounts: ApplyPercentage(2500, 18) == 450.
func ApplyPercentage(baseCents int64, percent float64) int64 {
	return int64(math.Round(float64(baseCents) * percent / 100))
}

// FormatMinorUnits renders cents as a two-decimal currency string, e.g.
// FormatMinorUnits(334, "€") == "€3.34". It formats only; it never rounds or
// recomputes, so it cannot introduce drift.
func FormatMinorUnits(cents int64, currencySymbol string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, currencySymbol, cents/100, cents%100)
}
