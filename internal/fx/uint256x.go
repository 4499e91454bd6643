package fx

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
)

// Q96 = 2^96, the fixed-point base for sqrt prices.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

// Q128 = 2^128, the fixed-point base used by the tick-math constant table.
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

var u256Pool = sync.Pool{
	New: func() interface{} { return new(uint256.Int) },
}

// GetU256 borrows a scratch uint256.Int from the pool. Callers must PutU256 it back.
func GetU256() *uint256.Int {
	return u256Pool.Get().(*uint256.Int)
}

// PutU256 returns a scratch uint256.Int to the pool.
func PutU256(v *uint256.Int) {
	v.Clear()
	u256Pool.Put(v)
}

// CeilDiv computes ceil(a/b) for non-negative a and positive b.
func CeilDiv(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return big.NewInt(0)
	}
	num := new(big.Int).Add(a, new(big.Int).Sub(b, big.NewInt(1)))
	return num.Div(num, b)
}

// MulDivBig computes floor(a*b/c) using arbitrary precision, for products that
// may exceed 256 bits (e.g. liquidity<<96 times a sqrt-price delta).
func MulDivBig(a, b, c *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return prod.Div(prod, c)
}

// MulDivCeilBig computes ceil(a*b/c) using arbitrary precision.
func MulDivCeilBig(a, b, c *big.Int) *big.Int {
	prod := new(big.Int).Mul(a, b)
	return CeilDiv(prod, c)
}

// U256ToBig converts a uint256.Int to a big.Int.
func U256ToBig(v *uint256.Int) *big.Int {
	return v.ToBig()
}

// BigToU256 converts a non-negative big.Int to a uint256.Int, returning
// ErrArithmeticOverflow if it does not fit.
func BigToU256(v *big.Int) (*uint256.Int, error) {
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, ErrArithmeticOverflow
	}
	out := new(uint256.Int)
	out.SetFromBig(v)
	return out, nil
}
