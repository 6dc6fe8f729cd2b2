// Package reconcile validates a client's payment snapshot against the
// server's authoritative session state.
//
// The one rule that matters: never trust a client-submitted derived value.
// The amount the client shows its user is recomputed here, from live state,
// before any charge is authorized. Drift (someone joined, left, or went
// zombie between bill-view and payment-submit) produces a structured
// rejection, never a silent correction — the server must not charge a
// different amount than the one the diner confirmed on screen.
package reconcile

import (
	"fmt"

	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/presence"
	"github.com/tably/tably/internal/split"
)

// Reason is a stable, machine-checkable rejection code.
type Reason string

const (
	// ReasonParticipantInactive: the payer is unknown or no longer active.
	ReasonParticipantInactive Reason = "PARTICIPANT_INACTIVE"

	// ReasonInvalidParticipantCount: nobody in the session is active.
	ReasonInvalidParticipantCount Reason = "INVALID_PARTICIPANT_COUNT"

	// ReasonParticipantCountMismatch: the client built its snapshot against
	// a different active count than the server sees now.
	ReasonParticipantCountMismatch Reason = "PARTICIPANT_COUNT_MISMATCH"

	// ReasonInvalidAmount: the submitted amount does not match the share
	// recomputed from live state.
	ReasonInvalidAmount Reason = "INVALID_AMOUNT"
)

// Snapshot is what a client captured at the moment it asked the diner to pay.
// ExpectedParticipantCount and BillTotalCents are meaningful only for
// DYNAMIC_EQUAL.
type Snapshot struct {
	SessionID                string
	ParticipantID            string
	AmountCents              int64
	SplitMethod              models.SplitMethod
	ExpectedParticipantCount int
	BillTotalCents           int64
}

// Verdict is the guard's decision. A rejected verdict carries the structured
// detail the client needs to re-sync and retry with confidence instead of
// guessing.
type Verdict struct {
	Accepted bool
	Reason   Reason
	Message  string

	// Populated for PARTICIPANT_COUNT_MISMATCH.
	ExpectedCount int
	ActualCount   int

	// Populated for INVALID_AMOUNT. Both candidate correct values are
	// surfaced because a client is allowed to be wrong specifically by a
	// remainder miscalculation.
	ProvidedAmount        int64
	ExpectedBaseAmount    int64
	ExpectedWithRemainder int64
}

func accepted() Verdict {
	return Verdict{Accepted: true}
}

// Verify re-derives ground truth from the given roster and bill and checks
// the snapshot against it. The roster must already be liveness-marked (the
// caller reads it through presence.MarkLiveness at validation time, never
// from a cache).
//
// Rejection conditions are checked in priority order; the first match wins.
func Verify(snap Snapshot, participants []models.Participant, bill *models.Bill) Verdict {
	var me *models.Participant
	for i := range participants {
		if participants[i].ID == snap.ParticipantID {
			me = &participants[i]
			break
		}
	}
	if me == nil || !me.IsActive {
		return Verdict{
			Accepted: false,
			Reason:   ReasonParticipantInactive,
			Message:  "participant is not currently active in this session",
		}
	}

	active := presence.Active(participants)
	if len(active) == 0 {
		return Verdict{
			Accepted: false,
			Reason:   ReasonInvalidParticipantCount,
			Message:  "no eligible participants in this session",
		}
	}

	if snap.SplitMethod == models.SplitDynamicEqual && snap.ExpectedParticipantCount != len(active) {
		return Verdict{
			Accepted:      false,
			Reason:        ReasonParticipantCountMismatch,
			Message:       fmt.Sprintf("expected %d active participants, found %d", snap.ExpectedParticipantCount, len(active)),
			ExpectedCount: snap.ExpectedParticipantCount,
			ActualCount:   len(active),
		}
	}

	if exact := exactShare(snap.SplitMethod, *me, participants, active, bill); snap.AmountCents != exact {
		// Both candidate correct values go into the payload: a client that
		// miscalculated only the remainder can see which one it should be.
		base, withRemainder := expectedShare(snap.SplitMethod, *me, active, bill)
		return Verdict{
			Accepted:              false,
			Reason:                ReasonInvalidAmount,
			Message:               "submitted amount does not match this participant's share",
			ProvidedAmount:        snap.AmountCents,
			ExpectedBaseAmount:    base,
			ExpectedWithRemainder: withRemainder,
		}
	}

	return accepted()
}

// expectedShare returns the two candidate correct amounts for the method:
// the base share and the base-plus-remainder share. For methods without a
// remainder concept the two coincide.
func expectedShare(method models.SplitMethod, me models.Participant, active []models.Participant, bill *models.Bill) (base, withRemainder int64) {
	switch method {
	case models.SplitDynamicEqual:
		result := split.CalculateDynamicSplit(bill.TotalCents, len(active))
		return result.BaseAmountCents, result.BaseAmountCents + result.RemainderCents
	case models.SplitEqual:
		return bill.TotalCents, bill.TotalCents
	case models.SplitByItems:
		share := split.ItemsShare(bill.Items, me.SelectedItemIDs)
		return share, share
	case models.SplitByAmount:
		return me.FixedAmountCents, me.FixedAmountCents
	}
	return 0, 0
}

// exactShare returns the single correct amount for this specific participant.
func exactShare(method models.SplitMethod, me models.Participant, all, active []models.Participant, bill *models.Bill) int64 {
	if method == models.SplitDynamicEqual {
		return split.GetMyShare(bill.TotalCents, all, me.ID)
	}
	exact, _ := expectedShare(method, me, active, bill)
	return exact
}
