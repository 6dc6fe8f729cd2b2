// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tably/tably/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// The validation gate depends on one guarantee beyond plain CRUD:
// SessionState reads the bill and the roster inside a single transaction, so
// the guard never validates against a bill and a roster from two different
// moments.
type Store interface {
	// CreateSession persists a new session together with its bill, the
	// bill's items, and the host participant, atomically. IDs are
	// populated by the store if unset.
	CreateSession(ctx context.Context, session *models.Session, bill *models.Bill, host *models.Participant) error

	// GetSession retrieves a session by its ID.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// AddParticipant persists a new participant joining a session.
	AddParticipant(ctx context.Context, p *models.Participant) error

	// GetParticipant retrieves one participant of a session.
	GetParticipant(ctx context.Context, sessionID, participantID string) (*models.Participant, error)

	// ListParticipants retrieves every participant of a session, including
	// ones that have gone inactive (records are kept for audit).
	ListParticipants(ctx context.Context, sessionID string) ([]models.Participant, error)

	// UpdateSelection persists a participant's own split selection state:
	// method, fixed amount, item claims and tip.
	UpdateSelection(ctx context.Context, p *models.Participant) error

	// Heartbeat records a liveness ping.
	Heartbeat(ctx context.Context, sessionID, participantID string, seenAt int64) error

	// MarkLeft records an explicit leave signal. The participant record is
	// retained, never deleted.
	MarkLeft(ctx context.Context, sessionID, participantID string, leftAt int64) error

	// SetPaymentStatus updates a participant's payment progress.
	SetPaymentStatus(ctx context.Context, sessionID, participantID string, status models.PaymentStatus) error

	// SessionState returns the bill and the full roster of a session as one
	// consistent point-in-time snapshot.
	SessionState(ctx context.Context, sessionID string) (*models.Bill, []models.Participant, error)

	// RecordAcceptance persists a validated payment authorization. At most
	// one acceptance exists per (session, participant).
	RecordAcceptance(ctx context.Context, a *models.Acceptance) error

	// GetAcceptance retrieves the recorded acceptance for a participant,
	// or ErrNotFound if none exists.
	GetAcceptance(ctx context.Context, sessionID, participantID string) (*models.Acceptance, error)

	// Close releases any resources held by the store.
	Close() error
}
