package auth

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidJoinCode = errors.New("invalid join code")

// joinCodeAlphabet deliberately omits lookalike characters (0/O, 1/I/L) so a
// code read off a phone screen across the table survives retyping.
const (
	joinCodeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	joinCodeLength   = 6
)

// NewJoinCode generates a short human-readable code and its bcrypt hash.
// The plaintext is shown to the host exactly once; only the hash is stored.
func NewJoinCode() (code, hash string, err error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	code = string(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash join code: %w", err)
	}
	return code, string(hashed), nil
}

// VerifyJoinCode checks a submitted code against the stored hash.
func VerifyJoinCode(hash, code string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrInvalidJoinCode
	}
	return nil
}
