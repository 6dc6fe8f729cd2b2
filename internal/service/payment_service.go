package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tably/tably/internal/metrics"
	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/presence"
	"github.com/tably/tably/internal/reconcile"
	"github.com/tably/tably/internal/storage"
)

// PaymentService is the payment validation gate. It never charges anything:
// an acceptance authorizes the (external) charge step, nothing more.
type PaymentService struct {
	store     storage.Store
	metrics   *metrics.Metrics
	threshold time.Duration
	now       func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(store storage.Store, m *metrics.Metrics, threshold time.Duration) *PaymentService {
	return &PaymentService{
		store:     store,
		metrics:   m,
		threshold: threshold,
		now:       time.Now,
	}
}

// Validate runs the reconciliation guard over a submitted snapshot.
//
// Exactly one of the two results is non-nil on success: an Acceptance when
// the snapshot matches ground truth, a rejected Verdict when it drifted. The
// guard only reads session state; the sole writes are the acceptance record
// and the participant's status flip, and those happen only on acceptance.
//
// Re-submitting an already-accepted snapshot returns the recorded acceptance
// instead of authorizing a second charge.
func (s *PaymentService) Validate(ctx context.Context, snap reconcile.Snapshot) (*models.Acceptance, *reconcile.Verdict, error) {
	existing, err := s.store.GetAcceptance(ctx, snap.SessionID, snap.ParticipantID)
	if err == nil {
		slog.Info("Validation replay returned recorded acceptance",
			"session_id", snap.SessionID, "participant_id", snap.ParticipantID)
		return existing, nil, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}

	// Ground truth is read fresh, in one consistent snapshot, at validation
	// time. Never from a cache: the guard's view must not be staler than
	// anything a client already rendered.
	bill, participants, err := s.store.SessionState(ctx, snap.SessionID)
	if err != nil {
		return nil, nil, err
	}
	marked := presence.MarkLiveness(participants, s.now(), s.threshold)

	verdict := reconcile.Verify(snap, marked, bill)
	if !verdict.Accepted {
		s.metrics.ValidationsTotal.WithLabelValues(string(verdict.Reason)).Inc()
		slog.Info("Payment validation rejected",
			"session_id", snap.SessionID,
			"participant_id", snap.ParticipantID,
			"reason", verdict.Reason,
		)
		return nil, &verdict, nil
	}

	acceptance := &models.Acceptance{
		SessionID:     snap.SessionID,
		ParticipantID: snap.ParticipantID,
		AmountCents:   snap.AmountCents,
		SplitMethod:   snap.SplitMethod,
		ValidatedAt:   s.now().UnixMilli(),
	}
	if err := s.store.RecordAcceptance(ctx, acceptance); err != nil {
		return nil, nil, err
	}
	if err := s.store.SetPaymentStatus(ctx, snap.SessionID, snap.ParticipantID, models.PaymentStatusAuthorized); err != nil {
		return nil, nil, err
	}

	s.metrics.ValidationsTotal.WithLabelValues("accepted").Inc()
	slog.Info("Payment validation accepted",
		"session_id", snap.SessionID,
		"participant_id", snap.ParticipantID,
		"amount_cents", snap.AmountCents,
		"method", snap.SplitMethod,
	)
	return acceptance, nil, nil
}
