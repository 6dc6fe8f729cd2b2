package models

// SplitMethod identifies how a participant's share of the bill is computed.
// The set is closed: both the client and the validation gate enumerate the
// same four values, so neither side can invent a strategy the other does not
// know how to recompute.
type SplitMethod string

const (
	// SplitByItems sums the line items the participant claimed.
	SplitByItems SplitMethod = "BY_ITEMS"

	// SplitByAmount is a manually entered fixed amount.
	SplitByAmount SplitMethod = "BY_AMOUNT"

	// SplitEqual means a sole payer covers the full bill total.
	SplitEqual SplitMethod = "EQUAL"

	// SplitDynamicEqual divides the total evenly across the currently
	// active participants, remainder cents going to a single payer.
	SplitDynamicEqual SplitMethod = "DYNAMIC_EQUAL"
)

// Valid reports whether m is one of the four known split methods.
func (m SplitMethod) Valid() bool {
	switch m {
	case SplitByItems, SplitByAmount, SplitEqual, SplitDynamicEqual:
		return true
	}
	return false
}

// Session represents one table's bill-splitting session.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// TableName is the human-readable label for the table (e.g., "Table 12").
	TableName string

	// JoinCodeHash is the bcrypt hash of the short code diners enter after
	// scanning the table QR. The plaintext code is returned once at creation
	// and never stored.
	JoinCodeHash string

	// CreatedAt is the Unix millisecond timestamp when the session was opened.
	CreatedAt int64
}
