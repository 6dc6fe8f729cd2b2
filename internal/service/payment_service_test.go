package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/reconcile"
)

// threeAtTheTable opens a 10.00 session with Alice hosting and Bob and Carol
// joined, everyone on DYNAMIC_EQUAL.
func threeAtTheTable(t *testing.T, sessions *SessionService) (sessionID string, ids map[string]string) {
	t.Helper()
	ctx := context.Background()

	created := createDinner(t, sessions, 1000)
	ids = map[string]string{"Alice": created.Host.ID}
	for _, name := range []string{"Bob", "Carol"} {
		joined, err := sessions.Join(ctx, created.Session.ID, created.JoinCode, name)
		require.NoError(t, err)
		ids[name] = joined.Participant.ID
	}
	return created.Session.ID, ids
}

func TestValidate_AcceptsCorrectSnapshot(t *testing.T) {
	sessions, payments, _ := newTestServices(t)
	ctx := context.Background()
	sessionID, ids := threeAtTheTable(t, sessions)

	// Alice hosts, so she owes base plus the leftover cent.
	acceptance, verdict, err := payments.Validate(ctx, reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Alice"],
		AmountCents:              334,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 3,
		BillTotalCents:           1000,
	})
	require.NoError(t, err)
	require.Nil(t, verdict)
	require.NotNil(t, acceptance)
	assert.Equal(t, int64(334), acceptance.AmountCents)
	assert.NotZero(t, acceptance.ValidatedAt)

	// Acceptance flips the participant to authorized.
	view, err := sessions.View(ctx, sessionID)
	require.NoError(t, err)
	for _, pv := range view.Participants {
		if pv.Participant.ID == ids["Alice"] {
			assert.Equal(t, models.PaymentStatusAuthorized, pv.Participant.PaymentStatus)
		}
	}
}

func TestValidate_StaleSnapshotAfterLeave(t *testing.T) {
	sessions, payments, _ := newTestServices(t)
	ctx := context.Background()
	sessionID, ids := threeAtTheTable(t, sessions)

	// Bob builds his snapshot against three actives, then Carol leaves.
	require.NoError(t, sessions.Leave(ctx, sessionID, ids["Carol"]))

	acceptance, verdict, err := payments.Validate(ctx, reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Bob"],
		AmountCents:              334,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 3,
		BillTotalCents:           1000,
	})
	require.NoError(t, err)
	require.Nil(t, acceptance)
	require.NotNil(t, verdict)
	assert.Equal(t, reconcile.ReasonParticipantCountMismatch, verdict.Reason)
	assert.Equal(t, 3, verdict.ExpectedCount)
	assert.Equal(t, 2, verdict.ActualCount)

	// After re-syncing, the fresh snapshot passes.
	acceptance, verdict, err = payments.Validate(ctx, reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Bob"],
		AmountCents:              500,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 2,
		BillTotalCents:           1000,
	})
	require.NoError(t, err)
	require.Nil(t, verdict)
	require.NotNil(t, acceptance)
}

func TestValidate_WrongAmountDetail(t *testing.T) {
	sessions, payments, _ := newTestServices(t)
	ctx := context.Background()
	sessionID, ids := threeAtTheTable(t, sessions)

	_, verdict, err := payments.Validate(ctx, reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Alice"],
		AmountCents:              340,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 3,
		BillTotalCents:           1000,
	})
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, reconcile.ReasonInvalidAmount, verdict.Reason)
	assert.Equal(t, int64(340), verdict.ProvidedAmount)
	assert.Equal(t, int64(333), verdict.ExpectedBaseAmount)
	assert.Equal(t, int64(334), verdict.ExpectedWithRemainder)
}

func TestValidate_ZombieCannotPay(t *testing.T) {
	sessions, payments, clock := newTestServices(t)
	ctx := context.Background()
	sessionID, ids := threeAtTheTable(t, sessions)

	// Carol's heartbeats stop while the others keep beating.
	clock.Advance(45 * time.Second) // past the liveness threshold
	require.NoError(t, sessions.Heartbeat(ctx, sessionID, ids["Alice"]))
	require.NoError(t, sessions.Heartbeat(ctx, sessionID, ids["Bob"]))

	// Inactive wins over the also-wrong amount: highest-priority code.
	_, verdict, err := payments.Validate(ctx, reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Carol"],
		AmountCents:              1,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 3,
		BillTotalCents:           1000,
	})
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, reconcile.ReasonParticipantInactive, verdict.Reason)
}

func TestValidate_ReplayReturnsRecordedAcceptance(t *testing.T) {
	sessions, payments, _ := newTestServices(t)
	ctx := context.Background()
	sessionID, ids := threeAtTheTable(t, sessions)

	snap := reconcile.Snapshot{
		SessionID:                sessionID,
		ParticipantID:            ids["Alice"],
		AmountCents:              334,
		SplitMethod:              models.SplitDynamicEqual,
		ExpectedParticipantCount: 3,
		BillTotalCents:           1000,
	}

	first, verdict, err := payments.Validate(ctx, snap)
	require.NoError(t, err)
	require.Nil(t, verdict)
	require.NotNil(t, first)

	// Same snapshot again: the recorded acceptance comes back, no second
	// authorization is created — even after the roster drifts.
	require.NoError(t, sessions.Leave(ctx, sessionID, ids["Carol"]))

	second, verdict, err := payments.Validate(ctx, snap)
	require.NoError(t, err)
	require.Nil(t, verdict)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ValidatedAt, second.ValidatedAt)
}
