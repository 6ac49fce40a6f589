package utils

import (
	"crypto/rand"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// confirmationCodeBytes yields a 32 character hex code, well under
// bcrypt's 72 byte input limit.
const confirmationCodeBytes = 16

// NewConfirmationCode returns a fresh random code to mail to the user.
func NewConfirmationCode() (string, error) {
	return randomHex(confirmationCodeBytes)
}

// HashCode returns the bcrypt hash of a confirmation code using the
// given cost.  Only the hash is stored on the user.
func HashCode(code string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyCode safely compares a stored hash and a submitted code.  An
// empty hash never matches, so a cleared code cannot be redeemed.
func VerifyCode(hash, code string) bool {
	if hash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
