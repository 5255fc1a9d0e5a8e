// Package randid generates short random identifiers for stored records.
package randid

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random lowercase alphanumeric string of the given length.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is unavailable.
			panic("randid: " + err.Error())
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}

// WithPrefix returns prefix + "_" + Generate(length), e.g. "lst_k3v9q2ab".
func WithPrefix(prefix string, length int) string {
	if prefix == "" {
		return Generate(length)
	}
	return prefix + "_" + Generate(length)
}
