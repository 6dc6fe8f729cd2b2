package models

// Bill represents the authoritative total for a table's order.
//
// TotalCents is owned by the order subsystem: the split engine treats it as
// read-only input and never recomputes it from line items on the client's
// behalf.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// SessionID is the session this bill belongs to.
	SessionID string

	// TotalCents is the full bill amount in minor currency units.
	TotalCents int64

	// Currency is the ISO 4217 code for display formatting (e.g., "USD").
	Currency string

	// Items are the ordered line items on the bill.
	Items []Item

	// CreatedAt is the Unix millisecond timestamp when the bill was recorded.
	CreatedAt int64
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	// Name is the menu description (e.g., "Margherita", "House Red").
	Name string

	// UnitPriceCents is the per-unit price in minor currency units.
	UnitPriceCents int64

	// Quantity is how many units were ordered.
	Quantity int64
}

// LineTotalCents returns the item's contribution to the bill total.
func (i Item) LineTotalCents() int64 {
	return i.UnitPriceCents * i.Quantity
}

// Acceptance is the durable record of a validated payment authorization.
//
// It exists to make the validation gate idempotent-safe: re-submitting a
// snapshot that was already accepted returns the recorded acceptance instead
// of authorizing a second charge.
type Acceptance struct {
	// ID is the unique identifier for the acceptance (UUID format).
	ID string

	// SessionID and ParticipantID identify whose payment was validated.
	SessionID     string
	ParticipantID string

	// AmountCents is the validated amount.
	AmountCents int64

	// SplitMethod is the method the amount was validated under.
	SplitMethod SplitMethod

	// ValidatedAt is the Unix millisecond server timestamp of acceptance.
	ValidatedAt int64
}
