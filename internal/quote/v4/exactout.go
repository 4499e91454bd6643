package v4

import (
	"errors"
	"math/big"
)

// ErrNoConvergence is returned when the exact-out binary search cannot find
// an input amount that fills the requested output within the iteration
// budget, per spec §4.2's exact-out failure mode.
var ErrNoConvergence = errors.New("v4: exact-out search did not converge")

const maxExactOutIterations = 96

// SimulateExactOut finds the smallest input amount that fills amountOut of
// the output token, by binary search over simulateExactIn. Uniswap has no
// closed-form exact-out formula once a swap can cross ticks, so this walks
// the same monotonic exact-in simulator the way a router would, narrowing an
// [lo, hi] input bracket until it is within one base unit of the true
// answer or the iteration budget is exhausted.
func SimulateExactOut(pool *PoolSnapshot, dir Direction, amountOut *big.Int, decimalsIn, decimalsOut int) (*Quote, error) {
	if amountOut.Sign() <= 0 {
		return nil, errors.New("v4: amount_out must be positive")
	}

	limit, err := defaultLimit(dir)
	if err != nil {
		return nil, err
	}

	// Establish an upper bracket by doubling amountIn until the simulated
	// output meets or exceeds the target, or liquidity runs out.
	one := big.NewInt(1)
	lo := big.NewInt(0)
	hi := new(big.Int).Set(one)
	var hiQuote *Quote

	for i := 0; i < maxExactOutIterations; i++ {
		q, err := simulateExactIn(pool, dir, hi, limit)
		if err != nil {
			if errors.Is(err, ErrInsufficientLiquidity) {
				return nil, ErrInsufficientLiquidity
			}
			return nil, err
		}
		if q.AmountOutRaw.Cmp(amountOut) >= 0 {
			hiQuote = q
			break
		}
		lo = hi
		hi = new(big.Int).Lsh(hi, 1)
	}
	if hiQuote == nil {
		return nil, ErrInsufficientLiquidity
	}

	// Binary search the bracket for the minimal amountIn whose simulated
	// output is >= amountOut, converging to within one raw base unit.
	best := hiQuote
	for i := 0; i < maxExactOutIterations; i++ {
		gap := new(big.Int).Sub(hi, lo)
		if gap.Cmp(one) <= 0 {
			break
		}
		mid := new(big.Int).Add(lo, gap)
		mid.Rsh(mid, 1)
		if mid.Sign() == 0 {
			mid.Set(one)
		}

		q, err := simulateExactIn(pool, dir, mid, limit)
		if err != nil {
			if errors.Is(err, ErrInsufficientLiquidity) {
				lo = mid
				continue
			}
			return nil, err
		}
		if q.AmountOutRaw.Cmp(amountOut) >= 0 {
			hi = mid
			best = q
		} else {
			lo = mid
		}
	}

	if new(big.Int).Sub(hi, lo).Cmp(one) > 0 {
		return nil, ErrNoConvergence
	}

	fillPricing(best, pool, dir, decimalsIn, decimalsOut)
	return best, nil
}
