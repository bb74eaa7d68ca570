package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// normalizeSecret folds arbitrary-length input into a fixed 64-byte hex
// string before bcrypt, which hard-fails above 72 bytes.
func normalizeSecret(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return []byte(hex.EncodeToString(sum[:]))
}

func HashPassword(raw string) (string, error) {
	out, err := bcrypt.GenerateFromPassword(normalizeSecret(raw), 12)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func VerifyPassword(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), normalizeSecret(raw)) == nil
}

func HashInviteToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
