package runtime

import "math/big"

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

// Step applies one elementary step to v in place and returns the steps it counts for:
// v/2 counts 1, the fused (3v+1)/2 counts 2. v must be > 1.
func Step(v *big.Int) uint64 {
	if v.Bit(0) == 0 {
		v.Rsh(v, 1)
		return 1
	}
	var tmp big.Int
	oddStep(v, &tmp)
	return 2
}

// oddStep sets v = (3v+1)/2 using tmp as scratch space.
func oddStep(v, tmp *big.Int) {
	tmp.Lsh(v, 1)
	v.Add(v, tmp)
	v.Add(v, bigOne)
	v.Rsh(v, 1)
}

// stepper advances a trajectory with reusable scratch space.
type stepper struct {
	tmp big.Int
}

// advance applies steps to v until it reaches 1 or at least budget steps are counted,
// and reports the steps taken and whether the last step could have grown v.
// A run of trailing zero bits is consumed in a single shift, capped at the budget.
func (s *stepper) advance(v *big.Int, budget uint64) (taken uint64, grew bool) {
	if v.Bit(0) == 0 {
		tz := uint64(v.TrailingZeroBits())
		if tz > budget {
			tz = budget
		}
		v.Rsh(v, uint(tz))
		return tz, false
	}
	oddStep(v, &s.tmp)
	return 2, true
}

// DigitTracker keeps the maximum decimal digit count of the values it observes.
//
// It holds 10^Max: a value has more than Max digits iff it is >= that threshold, and
// comparing bit lengths settles almost every observation without touching the digits.
type DigitTracker struct {
	max       uint64
	threshold *big.Int
	bits      int
}

// NewDigitTracker starts tracking from an already observed maximum.
func NewDigitTracker(max uint64) *DigitTracker {
	t := &DigitTracker{
		max:       max,
		threshold: new(big.Int).Exp(bigTen, new(big.Int).SetUint64(max), nil),
	}
	t.bits = t.threshold.BitLen()
	return t
}

// Observe records v and returns the updated maximum.
func (t *DigitTracker) Observe(v *big.Int) uint64 {
	for {
		bl := v.BitLen()
		if bl < t.bits || (bl == t.bits && v.Cmp(t.threshold) < 0) {
			return t.max
		}
		t.max++
		t.threshold.Mul(t.threshold, bigTen)
		t.bits = t.threshold.BitLen()
	}
}

// Max returns the maximum observed so far.
func (t *DigitTracker) Max() uint64 {
	return t.max
}
