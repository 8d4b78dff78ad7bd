package coupon

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Alphabet used for code suffixes. 0/O and 1/I are left out so codes can be
// read back over the phone or typed from a screenshot.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Generator mints candidate coupon codes. Uniqueness is enforced by the store,
// not here.
type Generator interface {
	Generate() (string, error)
}

// RandomGenerator builds PREFIX-SUFFIX codes with a crypto/rand suffix
type RandomGenerator struct {
	prefix string
	length int
}

// NewRandomGenerator creates a generator for the given prefix and suffix length
func NewRandomGenerator(prefix string, length int) *RandomGenerator {
	return &RandomGenerator{
		prefix: strings.ToUpper(strings.TrimSpace(prefix)),
		length: length,
	}
}

// Generate returns a new candidate code
func (g *RandomGenerator) Generate() (string, error) {
	base := big.NewInt(int64(len(Alphabet)))

	var sb strings.Builder
	sb.Grow(len(g.prefix) + 1 + g.length)
	if g.prefix != "" {
		sb.WriteString(g.prefix)
		sb.WriteByte('-')
	}
	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("failed to read random suffix: %w", err)
		}
		sb.WriteByte(Alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// Normalize canonicalizes a user-typed code before lookup
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
