package domain

import (
	"fmt"
	"math/big"
)

// State is the snapshot of a trajectory. The engine mutates it in place; stores persist
// and return copies.
type State struct {
	// Current is the current point of the trajectory. Always >= 1.
	Current *big.Int

	// Original is the starting value of the run. It identifies the problem instance
	// behind a checkpoint, since Key alone is shared by every value of the same length.
	Original *big.Int

	// Steps counts elementary steps taken so far.
	Steps uint64

	// Key addresses the checkpoint in a store.
	Key ProblemKey

	// MaxDigits is the largest decimal digit count observed, starting value included.
	MaxDigits uint64
}

// NewState creates a fresh state for the starting value n.
// It returns ErrInvalidInput if n is nil or not positive.
func NewState(n *big.Int) (*State, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	digits := DigitLen(n)
	return &State{
		Current:   new(big.Int).Set(n),
		Original:  new(big.Int).Set(n),
		Key:       ProblemKey(digits),
		MaxDigits: digits,
	}, nil
}

// Done reports whether the trajectory reached 1.
func (s *State) Done() bool {
	return s.Current.IsInt64() && s.Current.Int64() == 1
}

// Matches reports whether the state belongs to the problem instance starting at n.
func (s *State) Matches(n *big.Int) bool {
	return s.Original != nil && n != nil && s.Original.Cmp(n) == 0
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	c := *s
	if s.Current != nil {
		c.Current = new(big.Int).Set(s.Current)
	}
	if s.Original != nil {
		c.Original = new(big.Int).Set(s.Original)
	}
	return &c
}

// Validate checks the structural invariants of a state reconstructed from storage.
func (s *State) Validate() error {
	if s.Current == nil || s.Current.Sign() <= 0 {
		return fmt.Errorf("%w: current value must be positive", ErrCorruptCheckpoint)
	}
	if s.Original == nil || s.Original.Sign() <= 0 {
		return fmt.Errorf("%w: original value must be positive", ErrCorruptCheckpoint)
	}
	if s.Key == 0 {
		return fmt.Errorf("%w: digit count must be positive", ErrCorruptCheckpoint)
	}
	if s.MaxDigits < uint64(s.Key) {
		return fmt.Errorf("%w: max digits %d below digit count %d", ErrCorruptCheckpoint, s.MaxDigits, s.Key)
	}
	k := uint64(s.Key)
	if !withinDigits(s.Original, k) || withinDigits(s.Original, k-1) {
		return fmt.Errorf("%w: digit count %d does not match the original value", ErrCorruptCheckpoint, s.Key)
	}
	if !withinDigits(s.Current, s.MaxDigits) {
		return fmt.Errorf("%w: current value exceeds max digits %d", ErrCorruptCheckpoint, s.MaxDigits)
	}
	return nil
}

// withinDigits reports whether the positive n has at most d decimal digits.
// The bit length settles most cases; only the boundary band compares against 10^d.
func withinDigits(n *big.Int, d uint64) bool {
	bits := n.BitLen()
	// n lies in [2^(bits-1), 2^bits); the constants bracket log10(2) from below and above.
	lo := uint64(float64(bits-1)*0.30102999) + 1
	hi := uint64(float64(bits)*0.30103) + 1
	switch {
	case d >= hi:
		return true
	case d < lo:
		return false
	}
	limit := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(d), nil)
	return n.Cmp(limit) < 0
}
