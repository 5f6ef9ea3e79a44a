package runtime

import (
	"math/big"

	"github.com/aretw0/stoptime/pkg/domain"
)

// Sequence returns the canonical trajectory of n, applying 3v+1 and v/2 one at a time,
// from n down to 1 inclusive. A limit > 0 stops the walk after that many values, and
// truncated reports whether it did.
func Sequence(n *big.Int, limit int) (seq []*big.Int, truncated bool, err error) {
	err = Walk(n, func(v *big.Int) bool {
		if limit > 0 && len(seq) >= limit {
			truncated = true
			return false
		}
		seq = append(seq, new(big.Int).Set(v))
		return true
	})
	return seq, truncated, err
}

// Walk calls visit with each value of the canonical trajectory of n, n and 1 included,
// until visit returns false. The value passed to visit is reused between calls.
func Walk(n *big.Int, visit func(v *big.Int) bool) error {
	if n == nil || n.Sign() <= 0 {
		return domain.ErrInvalidInput
	}

	v := new(big.Int).Set(n)
	for visit(v) && !(v.IsInt64() && v.Int64() == 1) {
		if v.Bit(0) == 0 {
			v.Rsh(v, 1)
		} else {
			v.Mul(v, big.NewInt(3))
			v.Add(v, bigOne)
		}
	}
	return nil
}
