// Package split computes each participant's share of a bill under the four
// split strategies, and carries the auto-switch policy between EQUAL and
// DYNAMIC_EQUAL as group size crosses the 1/N boundary.
//
// All functions are pure: rosters go in, shares come out, nothing is mutated.
// Per-participant computations only ever see the roster through
// presence.Active, which is what keeps disconnected diners out of the math.
package split

import (
	"errors"

	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/money"
	"github.com/tably/tably/internal/presence"
)

// ErrAmountExceedsUnclaimed flags a BY_AMOUNT entry larger than what is left
// of the bill. The engine flags, it never clamps: silently shrinking an
// amount the diner typed would charge something they did not confirm.
var ErrAmountExceedsUnclaimed = errors.New("fixed amount exceeds unclaimed bill total")

// CalculateDynamicSplit divides the bill total across the active participant
// count. Safe for any non-negative inputs; zero count yields a zero result.
func CalculateDynamicSplit(totalCents int64, activeCount int) money.SplitResult {
	return money.DivideEvenly(totalCents, int64(activeCount))
}

// RemainderPayer picks the single active participant who absorbs the leftover
// cents: the active host if one exists, otherwise the earliest joiner, ties
// broken by ID ascending. The ordering is total, so the choice is never
// ambiguous. Returns false only when nobody is active.
func RemainderPayer(active []models.Participant) (models.Participant, bool) {
	var payer models.Participant
	found := false
	for _, p := range active {
		if !found {
			payer = p
			found = true
			continue
		}
		if better(p, payer) {
			payer = p
		}
	}
	return payer, found
}

// better reports whether a should be preferred over b as remainder payer.
func better(a, b models.Participant) bool {
	if a.IsHost != b.IsHost {
		return a.IsHost
	}
	if a.JoinedAt != b.JoinedAt {
		return a.JoinedAt < b.JoinedAt
	}
	return a.ID < b.ID
}

// GetMyShare returns participantID's share of totalCents under DYNAMIC_EQUAL.
//
// An inactive or unknown participant owes 0: whoever is not active is
// excluded from the split by definition. The remainder payer owes
// base+remainder, everyone else active owes base, so active shares always sum
// to exactly totalCents.
func GetMyShare(totalCents int64, participants []models.Participant, participantID string) int64 {
	active := presence.Active(participants)

	var me *models.Participant
	for i := range active {
		if active[i].ID == participantID {
			me = &active[i]
			break
		}
	}
	if me == nil {
		return 0
	}

	result := CalculateDynamicSplit(totalCents, len(active))
	if payer, ok := RemainderPayer(active); ok && payer.ID == me.ID {
		return result.BaseAmountCents + result.RemainderCents
	}
	return result.BaseAmountCents
}

// ItemsShare sums the claimed line items for a BY_ITEMS participant. Items
// are claimed whole: a claim covers the full line quantity. There is no
// cross-participant coupling and no liveness filtering here.
func ItemsShare(items []models.Item, selectedItemIDs []string) int64 {
	selected := make(map[string]bool, len(selectedItemIDs))
	for _, id := range selectedItemIDs {
		selected[id] = true
	}

	var share int64
	for _, item := range items {
		if selected[item.ID] {
			share += item.LineTotalCents()
		}
	}
	return share
}

// CheckFixedAmount validates a BY_AMOUNT entry against what remains unclaimed
// of the bill. claimedCents is the sum of everyone else's committed amounts.
func CheckFixedAmount(amountCents, totalCents, claimedCents int64) error {
	if amountCents > totalCents-claimedCents {
		return ErrAmountExceedsUnclaimed
	}
	return nil
}

// ValidateSplitSum reports whether shares cover totalCents exactly. Both
// underpayment and overpayment fail; "close enough" is not a thing in money.
func ValidateSplitSum(totalCents int64, shares []int64) bool {
	var sum int64
	for _, s := range shares {
		sum += s
	}
	return sum == totalCents
}
