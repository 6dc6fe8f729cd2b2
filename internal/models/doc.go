// Package models defines the core domain models for Tably.
//
// # Models
//
//   - Session: One table's bill-splitting session
//   - Participant: One diner's membership in a session
//   - Bill: The authoritative total and line items for a session
//   - Item: A single line item on a bill
//   - Acceptance: A recorded, validated payment authorization
//
// # Design Principles
//
//  1. **Integer money**: every monetary value is an integer count of minor
//     currency units (cents). No float ever touches a money computation.
//  2. **Records outlive liveness**: a participant who disconnects becomes
//     inactive but is never deleted, so bill history stays auditable.
//  3. **Avoid circular references**: relationships use ID strings, not pointers.
//  4. **Server is the source of truth**: clients submit what they displayed;
//     the server independently recomputes before any money moves.
package models
