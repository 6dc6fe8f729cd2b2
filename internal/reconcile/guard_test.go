package reconcile

import (
	"testing"

	"github.com/tably/tably/internal/models"
)

func dinner(totalCents int64) *models.Bill {
	return &models.Bill{
		ID:         "bill-1",
		SessionID:  "session-1",
		TotalCents: totalCents,
		Items: []models.Item{
			{ID: "pizza", UnitPriceCents: 1200, Quantity: 2},
			{ID: "wine", UnitPriceCents: 800, Quantity: 1},
		},
	}
}

func roster(active ...bool) []models.Participant {
	names := []string{"host", "second", "third", "fourth"}
	ps := make([]models.Participant, len(active))
	for i, a := range active {
		ps[i] = models.Participant{
			ID:       names[i],
			JoinedAt: int64(100 * (i + 1)),
			IsHost:   i == 0,
			IsActive: a,
		}
	}
	return ps
}

func TestVerify_DynamicEqual(t *testing.T) {
	t.Run("remainder payer accepted", func(t *testing.T) {
		v := Verify(Snapshot{
			SessionID:                "session-1",
			ParticipantID:            "host",
			AmountCents:              334,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
			BillTotalCents:           1000,
		}, roster(true, true, true), dinner(1000))
		if !v.Accepted {
			t.Fatalf("expected acceptance, got %+v", v)
		}
	})

	t.Run("base payer accepted", func(t *testing.T) {
		v := Verify(Snapshot{
			ParticipantID:            "second",
			AmountCents:              333,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
		}, roster(true, true, true), dinner(1000))
		if !v.Accepted {
			t.Fatalf("expected acceptance, got %+v", v)
		}
	})

	t.Run("count drift after a participant goes inactive", func(t *testing.T) {
		// Snapshot built against three actives, submitted after one flipped.
		v := Verify(Snapshot{
			ParticipantID:            "host",
			AmountCents:              334,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
		}, roster(true, true, false), dinner(1000))
		if v.Accepted || v.Reason != ReasonParticipantCountMismatch {
			t.Fatalf("expected PARTICIPANT_COUNT_MISMATCH, got %+v", v)
		}
		if v.ExpectedCount != 3 || v.ActualCount != 2 {
			t.Errorf("counts = %d/%d, want 3/2", v.ExpectedCount, v.ActualCount)
		}
	})

	t.Run("wrong amount carries both candidates", func(t *testing.T) {
		v := Verify(Snapshot{
			ParticipantID:            "host",
			AmountCents:              340,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
		}, roster(true, true, true), dinner(1000))
		if v.Accepted || v.Reason != ReasonInvalidAmount {
			t.Fatalf("expected INVALID_AMOUNT, got %+v", v)
		}
		if v.ProvidedAmount != 340 || v.ExpectedBaseAmount != 333 || v.ExpectedWithRemainder != 334 {
			t.Errorf("detail = provided %d, base %d, withRemainder %d; want 340/333/334",
				v.ProvidedAmount, v.ExpectedBaseAmount, v.ExpectedWithRemainder)
		}
	})

	t.Run("non-payer submitting the remainder amount is drift", func(t *testing.T) {
		v := Verify(Snapshot{
			ParticipantID:            "second",
			AmountCents:              334,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
		}, roster(true, true, true), dinner(1000))
		if v.Accepted || v.Reason != ReasonInvalidAmount {
			t.Fatalf("expected INVALID_AMOUNT, got %+v", v)
		}
	})
}

func TestVerify_RejectionPriority(t *testing.T) {
	t.Run("inactive participant wins over wrong amount", func(t *testing.T) {
		// Participant inactive AND amount wrong: highest-priority code reports.
		v := Verify(Snapshot{
			ParticipantID:            "third",
			AmountCents:              1,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 3,
		}, roster(true, true, false), dinner(1000))
		if v.Reason != ReasonParticipantInactive {
			t.Fatalf("expected PARTICIPANT_INACTIVE, got %+v", v)
		}
	})

	t.Run("unknown participant is inactive", func(t *testing.T) {
		v := Verify(Snapshot{
			ParticipantID: "stranger",
			AmountCents:   333,
			SplitMethod:   models.SplitDynamicEqual,
		}, roster(true, true, true), dinner(1000))
		if v.Reason != ReasonParticipantInactive {
			t.Fatalf("expected PARTICIPANT_INACTIVE, got %+v", v)
		}
	})

	t.Run("count mismatch wins over wrong amount", func(t *testing.T) {
		v := Verify(Snapshot{
			ParticipantID:            "host",
			AmountCents:              9999,
			SplitMethod:              models.SplitDynamicEqual,
			ExpectedParticipantCount: 4,
		}, roster(true, true, true), dinner(1000))
		if v.Reason != ReasonParticipantCountMismatch {
			t.Fatalf("expected PARTICIPANT_COUNT_MISMATCH, got %+v", v)
		}
	})
}

func TestVerify_OtherMethods(t *testing.T) {
	t.Run("equal method pays the full total", func(t *testing.T) {
		solo := roster(true)
		v := Verify(Snapshot{
			ParticipantID: "host",
			AmountCents:   3200,
			SplitMethod:   models.SplitEqual,
		}, solo, dinner(3200))
		if !v.Accepted {
			t.Fatalf("expected acceptance, got %+v", v)
		}
	})

	t.Run("by items recomputes from claimed items", func(t *testing.T) {
		ps := roster(true, true)
		ps[0].SplitMethod = models.SplitByItems
		ps[0].SelectedItemIDs = []string{"pizza"}

		v := Verify(Snapshot{
			ParticipantID: "host",
			AmountCents:   2400,
			SplitMethod:   models.SplitByItems,
		}, ps, dinner(3200))
		if !v.Accepted {
			t.Fatalf("expected acceptance, got %+v", v)
		}

		v = Verify(Snapshot{
			ParticipantID: "host",
			AmountCents:   2399,
			SplitMethod:   models.SplitByItems,
		}, ps, dinner(3200))
		if v.Accepted || v.Reason != ReasonInvalidAmount {
			t.Fatalf("expected INVALID_AMOUNT, got %+v", v)
		}
		if v.ExpectedBaseAmount != 2400 || v.ExpectedWithRemainder != 2400 {
			t.Errorf("candidates = %d/%d, want 2400/2400", v.ExpectedBaseAmount, v.ExpectedWithRemainder)
		}
	})

	t.Run("by amount validates the committed fixed amount", func(t *testing.T) {
		ps := roster(true, true)
		ps[1].SplitMethod = models.SplitByAmount
		ps[1].FixedAmountCents = 1500

		v := Verify(Snapshot{
			ParticipantID: "second",
			AmountCents:   1500,
			SplitMethod:   models.SplitByAmount,
		}, ps, dinner(3200))
		if !v.Accepted {
			t.Fatalf("expected acceptance, got %+v", v)
		}

		v = Verify(Snapshot{
			ParticipantID: "second",
			AmountCents:   1400,
			SplitMethod:   models.SplitByAmount,
		}, ps, dinner(3200))
		if v.Accepted || v.Reason != ReasonInvalidAmount {
			t.Fatalf("expected INVALID_AMOUNT, got %+v", v)
		}
	})
}
