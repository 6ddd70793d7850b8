package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// VerificationCodeBytes is the entropy of a verification code; its hex form is twice as long.
const VerificationCodeBytes = 32

// NewVerificationCode returns 32 random bytes hex-encoded (64 characters).
//
// Codes are not checked against existing rows. With 256 bits of entropy a collision is
// not a practical concern, and the primary key on verification_codes.code would reject
// one anyway.
func NewVerificationCode() (string, error) {
	buf := make([]byte, VerificationCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
