package util

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
)

const UpdateKeyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateKey returns a random string of length n drawn from UpdateKeyChars.
func GenerateKey(n int) (string, error) {
	max := big.NewInt(int64(len(UpdateKeyChars)))
	key := make([]byte, n)
	for i := range key {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		key[i] = UpdateKeyChars[idx.Int64()]
	}
	return string(key), nil
}

func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
