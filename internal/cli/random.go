package cli

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/aretw0/stoptime/pkg/domain"
)

// RandomDigits returns a uniformly random integer with exactly d decimal digits.
func RandomDigits(d uint64) (*big.Int, error) {
	if d == 0 {
		return nil, fmt.Errorf("%w: digit count must be positive", domain.ErrInvalidInput)
	}
	ten := big.NewInt(10)
	low := new(big.Int).Exp(ten, new(big.Int).SetUint64(d-1), nil)
	span := new(big.Int).Mul(low, big.NewInt(9)) // 10^d - 10^(d-1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random value: %w", err)
	}
	return n.Add(n, low), nil
}

// ParseNumber parses a starting value in decimal or 0x-prefixed hexadecimal.
func ParseNumber(s string) (*big.Int, error) {
	n, err := domain.DecodeInt(s)
	if err != nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q is not a positive integer", domain.ErrInvalidInput, s)
	}
	return n, nil
}
