package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Checkpoint is the persisted record of a State.
//
// Integers are written as "0x"-prefixed hexadecimal strings: exact at any size, and linear
// to encode where decimal conversion of a multi-million digit value is not.
// Decimal strings are accepted on read.
type Checkpoint struct {
	CurrentN   string    `json:"current_n"`
	OriginalN  string    `json:"original_n"`
	StepCount  uint64    `json:"step_count"`
	DigitCount uint64    `json:"digit_count"`
	MaxDigits  uint64    `json:"max_digits"`
	SavedAt    time.Time `json:"saved_at,omitempty"`
	Checksum   string    `json:"checksum,omitempty"`
}

// NewCheckpoint converts a state into its record form.
func NewCheckpoint(s *State) *Checkpoint {
	return &Checkpoint{
		CurrentN:   EncodeInt(s.Current),
		OriginalN:  EncodeInt(s.Original),
		StepCount:  s.Steps,
		DigitCount: uint64(s.Key),
		MaxDigits:  s.MaxDigits,
		SavedAt:    time.Now().UTC(),
	}
}

// State reconstructs and validates the state held by the record.
// A record carrying a checksum must match its digest.
func (c *Checkpoint) State() (*State, error) {
	if c.Checksum != "" && c.Checksum != c.Digest() {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptCheckpoint)
	}
	cur, err := DecodeInt(c.CurrentN)
	if err != nil {
		return nil, fmt.Errorf("%w: current_n: %v", ErrCorruptCheckpoint, err)
	}
	orig, err := DecodeInt(c.OriginalN)
	if err != nil {
		return nil, fmt.Errorf("%w: original_n: %v", ErrCorruptCheckpoint, err)
	}
	s := &State{
		Current:   cur,
		Original:  orig,
		Steps:     c.StepCount,
		Key:       ProblemKey(c.DigitCount),
		MaxDigits: c.MaxDigits,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Digest returns the SHA-256 of the record's computational fields.
// SavedAt and Checksum do not take part.
func (c *Checkpoint) Digest() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n%s\n%d\n%d\n%d", c.CurrentN, c.OriginalN, c.StepCount, c.DigitCount, c.MaxDigits)
	return hex.EncodeToString(h.Sum(nil))
}

// Marshal encodes a state as a checksummed JSON checkpoint record.
func Marshal(s *State) ([]byte, error) {
	c := NewCheckpoint(s)
	c.Checksum = c.Digest()
	return json.Marshal(c)
}

// Unmarshal decodes a JSON checkpoint record. Any failure wraps ErrCorruptCheckpoint.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
	}
	return &c, nil
}

// EncodeInt writes n as a "0x"-prefixed hexadecimal string.
func EncodeInt(n *big.Int) string {
	if n == nil {
		return ""
	}
	return "0x" + n.Text(16)
}

// DecodeInt parses hexadecimal ("0x" prefix) or decimal strings.
func DecodeInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("malformed integer")
	}
	return n, nil
}
