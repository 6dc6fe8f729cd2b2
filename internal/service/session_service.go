// Package service orchestrates session lifecycle and payment validation on
// top of the storage layer. Handlers call in here; the pure split math lives
// in money, presence, split and reconcile.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tably/tably/internal/auth"
	"github.com/tably/tably/internal/metrics"
	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/money"
	"github.com/tably/tably/internal/presence"
	"github.com/tably/tably/internal/split"
	"github.com/tably/tably/internal/storage"
)

// SessionService implements the session lifecycle: create, join, heartbeat,
// leave, selection updates and the session view.
type SessionService struct {
	store     storage.Store
	jwt       *auth.JWTManager
	metrics   *metrics.Metrics
	threshold time.Duration
	now       func() time.Time
}

// NewSessionService creates a SessionService with the given collaborators.
func NewSessionService(store storage.Store, jwt *auth.JWTManager, m *metrics.Metrics, threshold time.Duration) *SessionService {
	return &SessionService{
		store:     store,
		jwt:       jwt,
		metrics:   m,
		threshold: threshold,
		now:       time.Now,
	}
}

// ItemInput describes one line item when opening a session.
type ItemInput struct {
	Name           string
	UnitPriceCents int64
	Quantity       int64
}

// CreatedSession is returned once at session creation. JoinCode is plaintext
// here and nowhere else.
type CreatedSession struct {
	Session  *models.Session
	Bill     *models.Bill
	Host     *models.Participant
	JoinCode string
	Token    string
}

// Create opens a session for a table with its bill and the host participant.
// The bill total comes from the order subsystem and is stored read-only.
func (s *SessionService) Create(ctx context.Context, tableName, currency string, totalCents int64, items []ItemInput, hostName string) (*CreatedSession, error) {
	code, hash, err := auth.NewJoinCode()
	if err != nil {
		return nil, err
	}

	session := &models.Session{TableName: tableName, JoinCodeHash: hash}
	bill := &models.Bill{TotalCents: totalCents, Currency: currency}
	for _, in := range items {
		bill.Items = append(bill.Items, models.Item{
			Name:           in.Name,
			UnitPriceCents: in.UnitPriceCents,
			Quantity:       in.Quantity,
		})
	}
	// A host alone at the table starts on EQUAL; the auto-switch policy
	// promotes everyone to DYNAMIC_EQUAL once a second diner joins.
	host := &models.Participant{
		DisplayName: hostName,
		IsHost:      true,
		SplitMethod: models.SplitEqual,
	}

	if err := s.store.CreateSession(ctx, session, bill, host); err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(session.ID, host.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsCreatedTotal.Inc()
	slog.Info("Session created", "session_id", session.ID, "table", tableName, "total_cents", totalCents)

	return &CreatedSession{Session: session, Bill: bill, Host: host, JoinCode: code, Token: token}, nil
}

// JoinedSession is returned when a diner joins.
type JoinedSession struct {
	Participant *models.Participant
	Token       string
}

// Join verifies the join code and adds a participant to the session.
func (s *SessionService) Join(ctx context.Context, sessionID, code, displayName string) (*JoinedSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := auth.VerifyJoinCode(session.JoinCodeHash, code); err != nil {
		return nil, err
	}

	p := &models.Participant{
		SessionID:   session.ID,
		DisplayName: displayName,
		SplitMethod: models.SplitDynamicEqual,
	}
	if err := s.store.AddParticipant(ctx, p); err != nil {
		return nil, err
	}

	token, err := s.jwt.Generate(session.ID, p.ID)
	if err != nil {
		return nil, err
	}

	// The active count just changed; re-evaluate everyone's method.
	s.applyAutoSwitch(ctx, session.ID)

	slog.Info("Participant joined", "session_id", session.ID, "participant_id", p.ID)
	return &JoinedSession{Participant: p, Token: token}, nil
}

// Heartbeat records a liveness ping. A ping can resurrect a lapsed
// participant, which changes the active count, so the auto-switch policy
// runs afterwards.
func (s *SessionService) Heartbeat(ctx context.Context, sessionID, participantID string) error {
	if err := s.store.Heartbeat(ctx, sessionID, participantID, s.now().UnixMilli()); err != nil {
		return err
	}
	s.metrics.HeartbeatsTotal.Inc()
	s.applyAutoSwitch(ctx, sessionID)
	return nil
}

// Leave records an explicit leave signal. The record is retained; only
// liveness changes.
func (s *SessionService) Leave(ctx context.Context, sessionID, participantID string) error {
	if err := s.store.MarkLeft(ctx, sessionID, participantID, s.now().UnixMilli()); err != nil {
		return err
	}
	s.applyAutoSwitch(ctx, sessionID)
	slog.Info("Participant left", "session_id", sessionID, "participant_id", participantID)
	return nil
}

// applyAutoSwitch re-evaluates the EQUAL/DYNAMIC_EQUAL method label for every
// active participant still in the pre-payment phase. Failures here are logged
// and swallowed: a missed switch is corrected on the next count change, and
// the validation gate recomputes from ground truth regardless.
func (s *SessionService) applyAutoSwitch(ctx context.Context, sessionID string) {
	_, participants, err := s.store.SessionState(ctx, sessionID)
	if err != nil {
		slog.Warn("applyAutoSwitch: failed to load session state", "session_id", sessionID, "error", err)
		return
	}

	marked := presence.MarkLiveness(participants, s.now(), s.threshold)
	activeCount := len(presence.Active(marked))

	for i := range marked {
		p := marked[i]
		if !p.IsActive || p.PaymentStatus != models.PaymentStatusPending {
			continue
		}
		next := split.NextMethod(p.SplitMethod, activeCount)
		if next == p.SplitMethod {
			continue
		}
		p.SplitMethod = next
		if err := s.store.UpdateSelection(ctx, &p); err != nil {
			slog.Warn("applyAutoSwitch: failed to persist method switch",
				"session_id", sessionID, "participant_id", p.ID, "error", err)
			continue
		}
		slog.Debug("Auto-switched split method",
			"session_id", sessionID, "participant_id", p.ID, "method", next, "active_count", activeCount)
	}
}

// ErrUnknownSplitMethod flags a selection update naming a method the engine
// does not implement.
var ErrUnknownSplitMethod = errors.New("unknown split method")

// SelectionInput carries a participant's own split selection update.
type SelectionInput struct {
	SplitMethod      models.SplitMethod
	FixedAmountCents int64
	SelectedItemIDs  []string
	TipPercentage    float64
}

// UpdateSelection persists a participant's split choice. For BY_AMOUNT the
// amount is checked against the unclaimed remainder of the bill and flagged,
// never clamped.
func (s *SessionService) UpdateSelection(ctx context.Context, sessionID, participantID string, in SelectionInput) error {
	if !in.SplitMethod.Valid() {
		return fmt.Errorf("split method %q: %w", in.SplitMethod, ErrUnknownSplitMethod)
	}

	bill, participants, err := s.store.SessionState(ctx, sessionID)
	if err != nil {
		return err
	}

	if in.SplitMethod == models.SplitByAmount {
		var claimed int64
		for _, p := range participants {
			if p.ID != participantID && p.SplitMethod == models.SplitByAmount {
				claimed += p.FixedAmountCents
			}
		}
		if err := split.CheckFixedAmount(in.FixedAmountCents, bill.TotalCents, claimed); err != nil {
			return err
		}
	}

	p, err := s.store.GetParticipant(ctx, sessionID, participantID)
	if err != nil {
		return err
	}
	p.SplitMethod = in.SplitMethod
	p.FixedAmountCents = in.FixedAmountCents
	p.SelectedItemIDs = in.SelectedItemIDs
	p.TipPercentage = in.TipPercentage

	return s.store.UpdateSelection(ctx, p)
}

// ParticipantView is one roster entry of the session view, with the share
// this participant currently owes.
type ParticipantView struct {
	Participant models.Participant
	ShareCents  int64
	TipCents    int64
	TotalCents  int64
	Formatted   string
}

// SessionView is the full state a client renders: the bill, the
// liveness-marked roster and per-participant shares over the active set.
type SessionView struct {
	Session      *models.Session
	Bill         *models.Bill
	Participants []ParticipantView
	ActiveCount  int
	SplitResult  money.SplitResult
}

// View assembles the session view from a consistent storage snapshot.
func (s *SessionService) View(ctx context.Context, sessionID string) (*SessionView, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bill, participants, err := s.store.SessionState(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	marked := presence.MarkLiveness(participants, s.now(), s.threshold)
	active := presence.Active(marked)

	view := &SessionView{
		Session:     session,
		Bill:        bill,
		ActiveCount: len(active),
		SplitResult: split.CalculateDynamicSplit(bill.TotalCents, len(active)),
	}
	symbol := currencySymbol(bill.Currency)
	for _, p := range marked {
		share := shareFor(p, marked, bill)
		tip := money.ApplyPercentage(share, p.TipPercentage)
		view.Participants = append(view.Participants, ParticipantView{
			Participant: p,
			ShareCents:  share,
			TipCents:    tip,
			TotalCents:  share + tip,
			Formatted:   money.FormatMinorUnits(share+tip, symbol),
		})
	}
	return view, nil
}

// shareFor computes one participant's current share under their own method.
func shareFor(p models.Participant, roster []models.Participant, bill *models.Bill) int64 {
	switch p.SplitMethod {
	case models.SplitDynamicEqual:
		return split.GetMyShare(bill.TotalCents, roster, p.ID)
	case models.SplitEqual:
		if p.IsActive {
			return bill.TotalCents
		}
		return 0
	case models.SplitByItems:
		return split.ItemsShare(bill.Items, p.SelectedItemIDs)
	case models.SplitByAmount:
		return p.FixedAmountCents
	}
	return 0
}

func currencySymbol(code string) string {
	switch code {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}
