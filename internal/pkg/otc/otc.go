package otc

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultDigits is the width of codes sent for signup and password reset.
const DefaultDigits = 4

// Generator produces fixed-width numeric one-time codes.
type Generator struct {
	digits int
	floor  *big.Int
	span   *big.Int
}

// NewGenerator returns a Generator for codes of the given width. Codes never
// start with a zero, so a 4-digit generator yields values in 1000..9999.
func NewGenerator(digits int) *Generator {
	if digits < 1 || digits > 18 {
		digits = DefaultDigits
	}
	floor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	if digits == 1 {
		floor = big.NewInt(0)
	}
	ceil := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	return &Generator{
		digits: digits,
		floor:  floor,
		span:   new(big.Int).Sub(ceil, floor),
	}
}

// Generate returns a uniformly distributed code read from crypto/rand.
// A failing system random source is unrecoverable and panics.
func (g *Generator) Generate() string {
	n, err := rand.Int(rand.Reader, g.span)
	if err != nil {
		panic(fmt.Sprintf("otc: read random source: %v", err))
	}
	return n.Add(n, g.floor).String()
}

// Digits reports the code width.
func (g *Generator) Digits() int { return g.digits }
