// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tably/tably/internal/models"
	"github.com/tably/tably/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a session, its bill with items, and the host
// participant in one transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session, bill *models.Bill, host *models.Participant) error {
	now := time.Now().UnixMilli()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	bill.SessionID = session.ID
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	if bill.Currency == "" {
		bill.Currency = "USD"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, table_name, join_code_hash, created_at) VALUES (?, ?, ?, ?)",
		session.ID, session.TableName, session.JoinCodeHash, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills (id, session_id, total_cents, currency, created_at) VALUES (?, ?, ?, ?, ?)",
		bill.ID, bill.SessionID, bill.TotalCents, bill.Currency, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.BillID = bill.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, name, unit_price_cents, quantity) VALUES (?, ?, ?, ?, ?)",
			item.ID, item.BillID, item.Name, item.UnitPriceCents, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if host != nil {
		host.SessionID = session.ID
		if err := insertParticipant(ctx, tx, host); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, table_name, join_code_hash, created_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.TableName, &session.JoinCodeHash, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// SessionState returns the bill and full roster as one consistent snapshot.
// Both reads happen inside a single read transaction, so the validation gate
// never sees a bill and a roster from two different moments.
func (s *SQLiteStore) SessionState(ctx context.Context, sessionID string) (*models.Bill, []models.Participant, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bill, err := getBill(ctx, tx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	participants, err := listParticipants(ctx, tx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bill, participants, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getBill(ctx context.Context, q querier, sessionID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := q.QueryRowContext(ctx,
		"SELECT id, session_id, total_cents, currency, created_at FROM bills WHERE session_id = ?",
		sessionID,
	).Scan(&bill.ID, &bill.SessionID, &bill.TotalCents, &bill.Currency, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill for session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, bill_id, name, unit_price_cents, quantity FROM items WHERE bill_id = ? ORDER BY rowid",
		bill.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.BillID, &item.Name, &item.UnitPriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return bill, nil
}
