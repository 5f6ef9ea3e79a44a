package domain

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ProblemKey addresses a checkpoint. It is the decimal digit count of the starting value,
// so distinct starting values may share a key.
type ProblemKey uint64

// Name returns the deterministic storage name for the key,
// e.g. "checkpoint_random_40digits_latest".
func (k ProblemKey) Name() string {
	return CheckpointPrefix + strconv.FormatUint(uint64(k), 10) + CheckpointSuffix
}

func (k ProblemKey) String() string {
	return strconv.FormatUint(uint64(k), 10)
}

// ParseKeyName is the inverse of ProblemKey.Name.
func ParseKeyName(name string) (ProblemKey, error) {
	if !strings.HasPrefix(name, CheckpointPrefix) || !strings.HasSuffix(name, CheckpointSuffix) {
		return 0, fmt.Errorf("not a checkpoint name: %q", name)
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, CheckpointPrefix), CheckpointSuffix)
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a checkpoint name: %q: %w", name, err)
	}
	return ProblemKey(n), nil
}

// ParseKey parses a plain digit count as typed on the command line.
func ParseKey(s string) (ProblemKey, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid digit count %q", s)
	}
	return ProblemKey(n), nil
}

// KeyOf returns the problem key of a starting value.
func KeyOf(n *big.Int) ProblemKey {
	return ProblemKey(DigitLen(n))
}

// DigitLen returns the number of decimal digits of |n|. Zero has one digit.
func DigitLen(n *big.Int) uint64 {
	if n.Sign() == 0 {
		return 1
	}
	s := n.Text(10)
	if s[0] == '-' {
		return uint64(len(s) - 1)
	}
	return uint64(len(s))
}
