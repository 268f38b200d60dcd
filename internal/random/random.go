// Package random generates fixed-length strings over a chosen alphabet using
// the platform CSPRNG. Credential and placeholder-name generation share it.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	Digits        = "0123456789"
	LowerAlphanum = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// String returns a string of the given length drawn uniformly from alphabet.
func String(alphabet string, length int) (string, error) {
	if alphabet == "" {
		return "", fmt.Errorf("random: alphabet must not be empty")
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for index := range out {
		position, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("random: generation failed: %w", err)
		}
		out[index] = alphabet[position.Int64()]
	}
	return string(out), nil
}
