package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/storage"
)

// AddParticipant persists a new participant joining a session.
func (s *SQLiteStore) AddParticipant(ctx context.Context, p *models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertParticipant(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertParticipant(ctx context.Context, q querier, p *models.Participant) error {
	now := time.Now().UnixMilli()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt == 0 {
		p.JoinedAt = now
	}
	if p.LastSeenAt == 0 {
		p.LastSeenAt = now
	}
	if p.SplitMethod == "" {
		p.SplitMethod = models.SplitDynamicEqual
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentStatusPending
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO participants
		 (id, session_id, display_name, joined_at, is_host, split_method, fixed_amount_cents, tip_percentage, payment_status, last_seen_at, left_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SessionID, p.DisplayName, p.JoinedAt, p.IsHost, p.SplitMethod,
		p.FixedAmountCents, p.TipPercentage, p.PaymentStatus, p.LastSeenAt, p.LeftAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	for _, itemID := range p.SelectedItemIDs {
		_, err = q.ExecContext(ctx,
			"INSERT INTO item_claims (participant_id, item_id) VALUES (?, ?)",
			p.ID, itemID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item claim: %w", err)
		}
	}
	return nil
}

// GetParticipant retrieves one participant of a session.
func (s *SQLiteStore) GetParticipant(ctx context.Context, sessionID, participantID string) (*models.Participant, error) {
	p, err := scanParticipant(s.db.QueryRowContext(ctx,
		participantColumns+" WHERE session_id = ? AND id = ?",
		sessionID, participantID,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if err := loadClaims(ctx, s.db, []*models.Participant{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListParticipants retrieves every participant of a session, join order first.
func (s *SQLiteStore) ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	return listParticipants(ctx, s.db, sessionID)
}

const participantColumns = `SELECT id, session_id, display_name, joined_at, is_host, split_method,
	fixed_amount_cents, tip_percentage, payment_status, last_seen_at, left_at FROM participants`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(&p.ID, &p.SessionID, &p.DisplayName, &p.JoinedAt, &p.IsHost, &p.SplitMethod,
		&p.FixedAmountCents, &p.TipPercentage, &p.PaymentStatus, &p.LastSeenAt, &p.LeftAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func listParticipants(ctx context.Context, q querier, sessionID string) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx,
		participantColumns+" WHERE session_id = ? ORDER BY joined_at, id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	// Pointers are taken only after the slice stops growing; append above may
	// reallocate the backing array.
	refs := make([]*models.Participant, len(participants))
	for i := range participants {
		refs[i] = &participants[i]
	}
	if err := loadClaims(ctx, q, refs); err != nil {
		return nil, err
	}
	return participants, nil
}

// loadClaims fills SelectedItemIDs for each participant.
func loadClaims(ctx context.Context, q querier, participants []*models.Participant) error {
	for _, p := range participants {
		rows, err := q.QueryContext(ctx,
			"SELECT item_id FROM item_claims WHERE participant_id = ? ORDER BY item_id",
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get item claims: %w", err)
		}
		for rows.Next() {
			var itemID string
			if err := rows.Scan(&itemID); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan item claim: %w", err)
			}
			p.SelectedItemIDs = append(p.SelectedItemIDs, itemID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate item claims: %w", err)
		}
	}
	return nil
}

// UpdateSelection persists a participant's split selection state.
func (s *SQLiteStore) UpdateSelection(ctx context.Context, p *models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE participants SET split_method = ?, fixed_amount_cents = ?, tip_percentage = ?
		 WHERE session_id = ? AND id = ?`,
		p.SplitMethod, p.FixedAmountCents, p.TipPercentage, p.SessionID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("participant %s: %w", p.ID, storage.ErrNotFound)
	}

	// Item claims are replaced wholesale; the set is small.
	if _, err := tx.ExecContext(ctx, "DELETE FROM item_claims WHERE participant_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear item claims: %w", err)
	}
	for _, itemID := range p.SelectedItemIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_claims (participant_id, item_id) VALUES (?, ?)",
			p.ID, itemID,
		); err != nil {
			return fmt.Errorf("failed to insert item claim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Heartbeat records a liveness ping.
func (s *SQLiteStore) Heartbeat(ctx context.Context, sessionID, participantID string, seenAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET last_seen_at = ? WHERE session_id = ? AND id = ?",
		seenAt, sessionID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	return nil
}

// MarkLeft records an explicit leave signal.
func (s *SQLiteStore) MarkLeft(ctx context.Context, sessionID, participantID string, leftAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET left_at = ? WHERE session_id = ? AND id = ?",
		leftAt, sessionID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark participant left: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	return nil
}

// SetPaymentStatus updates a participant's payment progress.
func (s *SQLiteStore) SetPaymentStatus(ctx context.Context, sessionID, participantID string, status models.PaymentStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET payment_status = ? WHERE session_id = ? AND id = ?",
		status, sessionID, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("participant %s: %w", participantID, storage.ErrNotFound)
	}
	return nil
}

// RecordAcceptance persists a validated payment authorization.
func (s *SQLiteStore) RecordAcceptance(ctx context.Context, a *models.Acceptance) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ValidatedAt == 0 {
		a.ValidatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO acceptances (id, session_id, participant_id, amount_cents, split_method, validated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.ParticipantID, a.AmountCents, a.SplitMethod, a.ValidatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record acceptance: %w", err)
	}
	return nil
}

// GetAcceptance retrieves the recorded acceptance for a participant.
func (s *SQLiteStore) GetAcceptance(ctx context.Context, sessionID, participantID string) (*models.Acceptance, error) {
	a := &models.Acceptance{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, participant_id, amount_cents, split_method, validated_at
		 FROM acceptances WHERE session_id = ? AND participant_id = ?`,
		sessionID, participantID,
	).Scan(&a.ID, &a.SessionID, &a.ParticipantID, &a.AmountCents, &a.SplitMethod, &a.ValidatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("acceptance for participant %s: %w", participantID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get acceptance: %w", err)
	}
	return a, nil
}
