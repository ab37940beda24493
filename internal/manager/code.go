package manager

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"strings"
)

const (
	codeLength = 4
	codeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// generateCode creates a random game code like "AB7F".
func generateCode() string {
	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(codeChars))))
		if err != nil {
			code[i] = codeChars[rand.Intn(len(codeChars))]
			continue
		}
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}

// normalizeCode makes lookups case-insensitive.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
