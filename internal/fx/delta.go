package fx

import (
	"math/big"

	"github.com/holiman/uint256"
)

// orderSqrt returns (sa, sb) with sa <= sb.
func orderSqrt(a, b *uint256.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) < 0 {
		return a.ToBig(), b.ToBig()
	}
	return b.ToBig(), a.ToBig()
}

// Amount0Delta computes the amount of token0 required to move the price
// between sqrtRatioA and sqrtRatioB at the given liquidity, using Uniswap's
// exact two-step rounding:
//
//	round_up:   ceil( ceil( (L<<96) * (sb-sa) / sb ) / sa )
//	round_down: floor( floor( (L<<96) * (sb-sa) / sb ) / sa )
//
// The intermediate product (L<<96)*(sb-sa) routinely exceeds 256 bits for
// realistic liquidity and price ranges, so this uses math/big throughout and
// only narrows to a fixed-width integer at the caller's boundary.
func Amount0Delta(sqrtRatioA, sqrtRatioB *uint256.Int, liquidity *big.Int, roundUp bool) *big.Int {
	if liquidity.Sign() == 0 {
		return big.NewInt(0)
	}
	sa, sb := orderSqrt(sqrtRatioA, sqrtRatioB)
	if sa.Sign() == 0 || sa.Cmp(sb) == 0 {
		return big.NewInt(0)
	}

	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sb, sa)

	if roundUp {
		t := MulDivCeilBig(numerator1, numerator2, sb)
		return CeilDiv(t, sa)
	}
	t := MulDivBig(numerator1, numerator2, sb)
	return t.Div(t, sa)
}

// Amount1Delta computes the amount of token1 required to move the price
// between sqrtRatioA and sqrtRatioB at the given liquidity:
//
//	round_up:   ceil( L * (sb-sa) / Q96 )
//	round_down: floor( L * (sb-sa) / Q96 )
func Amount1Delta(sqrtRatioA, sqrtRatioB *uint256.Int, liquidity *big.Int, roundUp bool) *big.Int {
	if liquidity.Sign() == 0 {
		return big.NewInt(0)
	}
	sa, sb := orderSqrt(sqrtRatioA, sqrtRatioB)
	if sa.Cmp(sb) == 0 {
		return big.NewInt(0)
	}

	num := new(big.Int).Mul(liquidity, new(big.Int).Sub(sb, sa))
	if roundUp {
		return CeilDiv(num, Q96)
	}
	return num.Div(num, Q96)
}
