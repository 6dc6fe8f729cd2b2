package models

// PaymentStatus tracks how far a participant has progressed toward paying.
type PaymentStatus string

const (
	// PaymentStatusPending: no validated payment attempt yet.
	PaymentStatusPending PaymentStatus = "pending"

	// PaymentStatusAuthorized: the validation gate accepted a snapshot;
	// the (external) charge step may proceed.
	PaymentStatusAuthorized PaymentStatus = "authorized"

	// PaymentStatusPaid: the external charge completed.
	PaymentStatusPaid PaymentStatus = "paid"
)

// Participant represents one diner's membership in a session.
//
// A participant record is created when a diner joins (scan + accept) and is
// retained forever, even after the diner disconnects. Liveness is carried by
// IsActive, which is derived fresh on every read from LastSeenAt and LeftAt;
// it is never trusted from a cache. An inactive participant must never
// contribute to, or receive a share from, a dynamic-equal split.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// SessionID is the session this participant belongs to.
	SessionID string

	// DisplayName is what the other diners at the table see.
	DisplayName string

	// JoinedAt is the Unix millisecond timestamp when the diner joined.
	// Used as the deterministic tie-break for remainder assignment when no
	// active host exists.
	JoinedAt int64

	// IsActive is true while heartbeats are recent and no leave signal has
	// arrived. Derived at read time, never stored authoritatively.
	IsActive bool

	// IsHost marks the session creator, the default remainder payer.
	IsHost bool

	// SplitMethod is this participant's current strategy.
	SplitMethod SplitMethod

	// FixedAmountCents is the manually entered share, used by BY_AMOUNT only.
	FixedAmountCents int64

	// SelectedItemIDs are the line items claimed, used by BY_ITEMS only.
	SelectedItemIDs []string

	// TipPercentage is applied on top of the computed share for display.
	// It never participates in split validation.
	TipPercentage float64

	// PaymentStatus is pending until a validated charge completes.
	PaymentStatus PaymentStatus

	// LastSeenAt is the Unix millisecond timestamp of the latest heartbeat.
	LastSeenAt int64

	// LeftAt is the Unix millisecond timestamp of an explicit leave signal,
	// or 0 if the participant never left.
	LeftAt int64
}
