package accounts

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// tokenDigest shortens a token below bcrypt's 72-byte input limit.
func tokenDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))

	return sum[:]
}

func hashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(tokenDigest(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
