package split

import "github.com/tably/tably/internal/models"

// NextMethod applies the auto-switch policy for a participant-count change
// during a session's pre-payment phase:
//
//   - DYNAMIC_EQUAL with exactly one active participant becomes EQUAL
//     (there is nothing meaningful to split between one person).
//   - EQUAL with more than one active participant becomes DYNAMIC_EQUAL.
//   - BY_ITEMS and BY_AMOUNT are explicit user choices and are never
//     overridden by a count change.
//
// Only the method label changes. Selected items, fixed amounts and tips are
// untouched, so returning to a manual method later preserves prior choices.
// Re-evaluating at an unchanged count is a no-op.
func NextMethod(current models.SplitMethod, activeCount int) models.SplitMethod {
	switch current {
	case models.SplitDynamicEqual:
		if activeCount == 1 {
			return models.SplitEqual
		}
	case models.SplitEqual:
		if activeCount > 1 {
			return models.SplitDynamicEqual
		}
	}
	return current
}
