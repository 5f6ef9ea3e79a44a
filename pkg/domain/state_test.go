package domain

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	s, err := NewState(big.NewInt(27))
	require.NoError(t, err)
	assert.Equal(t, ProblemKey(2), s.Key)
	assert.Equal(t, uint64(2), s.MaxDigits)
	assert.Equal(t, uint64(0), s.Steps)
	assert.True(t, s.Matches(big.NewInt(27)))
	assert.False(t, s.Matches(big.NewInt(28)))

	// The state owns its integers.
	n := big.NewInt(5)
	s, err = NewState(n)
	require.NoError(t, err)
	n.SetInt64(7)
	assert.Equal(t, int64(5), s.Current.Int64())

	for _, bad := range []*big.Int{nil, big.NewInt(0), big.NewInt(-3)} {
		_, err := NewState(bad)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestState_Clone(t *testing.T) {
	s, err := NewState(big.NewInt(6))
	require.NoError(t, err)
	c := s.Clone()
	c.Current.SetInt64(3)
	c.Steps = 1
	assert.Equal(t, int64(6), s.Current.Int64())
	assert.Equal(t, uint64(0), s.Steps)
}

func TestCheckpoint_RoundTrip(t *testing.T) {
	huge, ok := new(big.Int).SetString("9"+strings.Repeat("87654321", 250), 10)
	require.True(t, ok)

	s, err := NewState(huge)
	require.NoError(t, err)
	s.Current.Rsh(s.Current, 3)
	s.Steps = 12345
	s.MaxDigits = s.MaxDigits + 1

	data, err := Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"digit_count":2001`)

	rec, err := Unmarshal(data)
	require.NoError(t, err)
	got, err := rec.State()
	require.NoError(t, err)

	assert.Equal(t, 0, got.Current.Cmp(s.Current))
	assert.Equal(t, 0, got.Original.Cmp(s.Original))
	assert.Equal(t, s.Steps, got.Steps)
	assert.Equal(t, s.Key, got.Key)
	assert.Equal(t, s.MaxDigits, got.MaxDigits)
}

func TestCheckpoint_DecimalFields(t *testing.T) {
	rec, err := Unmarshal([]byte(`{"current_n":"3","original_n":"6","step_count":1,"digit_count":1,"max_digits":1}`))
	require.NoError(t, err)
	s, err := rec.State()
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Current.Int64())
	assert.Equal(t, int64(6), s.Original.Int64())
}

func TestCheckpoint_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Not JSON", `{"current_n":`},
		{"Empty Current", `{"current_n":"","original_n":"0x6","digit_count":1,"max_digits":1}`},
		{"Malformed Hex", `{"current_n":"0xzz","original_n":"0x6","digit_count":1,"max_digits":1}`},
		{"Zero Current", `{"current_n":"0x0","original_n":"0x6","digit_count":1,"max_digits":1}`},
		{"Missing Key", `{"current_n":"0x3","original_n":"0x6","digit_count":0,"max_digits":1}`},
		{"Max Below Key", `{"current_n":"0x3","original_n":"0x6","digit_count":2,"max_digits":1}`},
		{"Key Mismatch", `{"current_n":"0x3","original_n":"0x6","digit_count":2,"max_digits":2}`},
		{"Max Below Current", `{"current_n":"0x3e8","original_n":"0x1b","digit_count":2,"max_digits":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Unmarshal([]byte(tt.data))
			if err == nil {
				_, err = rec.State()
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptCheckpoint), "got %v", err)
		})
	}
}

func TestCheckpoint_Digest(t *testing.T) {
	s, err := NewState(big.NewInt(27))
	require.NoError(t, err)
	a := NewCheckpoint(s)
	b := NewCheckpoint(s)
	b.SavedAt = a.SavedAt.Add(1)
	assert.Equal(t, a.Digest(), b.Digest(), "saved_at must not affect the digest")

	b.StepCount++
	assert.NotEqual(t, a.Digest(), b.Digest())
}

func TestCheckpoint_ChecksumMismatch(t *testing.T) {
	s, err := NewState(big.NewInt(27))
	require.NoError(t, err)
	data, err := Marshal(s)
	require.NoError(t, err)

	rec, err := Unmarshal(data)
	require.NoError(t, err)
	require.NotEmpty(t, rec.Checksum)

	// Tampered counter, stale checksum.
	rec.StepCount = 5
	_, err = rec.State()
	assert.ErrorIs(t, err, ErrCorruptCheckpoint)

	// Records without a checksum are accepted.
	rec.Checksum = ""
	got, err := rec.State()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), got.Steps)
}

func TestValidate_DigitBounds(t *testing.T) {
	// 27 climbs to 9232 (4 digits).
	s, err := NewState(big.NewInt(27))
	require.NoError(t, err)
	s.Current.SetInt64(9232)
	s.MaxDigits = 4
	assert.NoError(t, s.Validate())

	s.MaxDigits = 3
	assert.ErrorIs(t, s.Validate(), ErrCorruptCheckpoint, "understated max digits")

	s.MaxDigits = 4
	s.Key = 3
	assert.ErrorIs(t, s.Validate(), ErrCorruptCheckpoint, "key does not match the original")

	// Boundaries around powers of ten, well past float64 precision.
	for _, d := range []uint64{1, 2, 19, 20, 308, 5000} {
		pow := new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(d), nil)
		below := new(big.Int).Sub(pow, big.NewInt(1))
		assert.True(t, withinDigits(below, d), "10^%d-1", d)
		assert.False(t, withinDigits(pow, d), "10^%d", d)
		assert.True(t, withinDigits(pow, d+1), "10^%d", d)
		assert.Equal(t, d, DigitLen(below))
	}
}

func TestCheckpoint_UnchecksummedUnderstatedMax(t *testing.T) {
	s, err := NewState(big.NewInt(27))
	require.NoError(t, err)
	s.Current.SetInt64(9232)
	s.MaxDigits = 4
	rec := NewCheckpoint(s)
	rec.MaxDigits = 2

	_, err = rec.State()
	assert.ErrorIs(t, err, ErrCorruptCheckpoint)
}
