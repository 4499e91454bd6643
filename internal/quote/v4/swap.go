package v4

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/pal9000i/arb-bot/internal/fx"
)

// Failure modes named directly in spec §4.2.
var (
	ErrInsufficientLiquidity = errors.New("v4: insufficient liquidity to fill requested amount")
	ErrSnapshotInconsistent  = errors.New("v4: tick sweep stepped past the snapshot's known ticks")
)

const feeDenominatorPPM = 1_000_000

// nextSqrtFromInputZeroForOne is Uniswap's getNextSqrtPriceFromAmount0RoundingUp:
//
//	sqrtQ = ceil( (L<<96) * sqrtP / ( (L<<96) + amountIn * sqrtP ) )
func nextSqrtFromInputZeroForOne(liquidity *big.Int, sqrtP *uint256.Int, amountInNet *big.Int) *uint256.Int {
	if amountInNet.Sign() == 0 || liquidity.Sign() == 0 {
		return sqrtP.Clone()
	}
	sqrtPBig := sqrtP.ToBig()
	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator := new(big.Int).Mul(numerator1, sqrtPBig)
	denominator := new(big.Int).Add(numerator1, new(big.Int).Mul(amountInNet, sqrtPBig))

	q := fx.CeilDiv(numerator, denominator)
	out, err := fx.BigToU256(q)
	if err != nil {
		// Cannot happen for a valid next price (it is bounded by sqrtP's own
		// width), but fail closed rather than silently truncate.
		return sqrtP.Clone()
	}
	return out
}

// nextSqrtFromInputOneForZero is Uniswap's getNextSqrtPriceFromAmount1RoundingDown:
//
//	sqrtQ = P + floor( amountIn * Q96 / L )
func nextSqrtFromInputOneForZero(liquidity *big.Int, sqrtP *uint256.Int, amountInNet *big.Int) *uint256.Int {
	if amountInNet.Sign() == 0 || liquidity.Sign() == 0 {
		return sqrtP.Clone()
	}
	inc := new(big.Int).Mul(amountInNet, fx.Q96)
	inc.Div(inc, liquidity)
	q := new(big.Int).Add(sqrtP.ToBig(), inc)
	out, err := fx.BigToU256(q)
	if err != nil {
		return sqrtP.Clone()
	}
	return out
}

// swapStepResult holds the outcome of a single bounded price move.
type swapStepResult struct {
	sqrtQ     *uint256.Int
	amountIn  *big.Int // net of fee
	amountOut *big.Int
	feeAmount *big.Int
}

// computeSwapStep mirrors Uniswap's SwapMath.computeSwapStep: move the price
// from sqrtPrice towards sqrtPriceTarget, consuming up to amountRemaining
// (gross, including fee) of the input asset.
func computeSwapStep(sqrtPrice, sqrtPriceTarget *uint256.Int, liquidity, amountRemaining *big.Int, feePips uint32, zeroForOne bool) swapStepResult {
	denom := big.NewInt(feeDenominatorPPM)
	feeComplement := new(big.Int).Sub(denom, big.NewInt(int64(feePips)))
	amountRemainingLessFee := new(big.Int).Mul(amountRemaining, feeComplement)
	amountRemainingLessFee.Div(amountRemainingLessFee, denom)

	if zeroForOne {
		amountInToTarget := fx.Amount0Delta(sqrtPriceTarget, sqrtPrice, liquidity, true)
		grossToTarget := fx.MulDivCeilBig(amountInToTarget, denom, feeComplement)

		if grossToTarget.Cmp(amountRemaining) <= 0 {
			amountOut := fx.Amount1Delta(sqrtPriceTarget, sqrtPrice, liquidity, false)
			feeAmt := new(big.Int).Sub(grossToTarget, amountInToTarget)
			return swapStepResult{sqrtQ: sqrtPriceTarget.Clone(), amountIn: amountInToTarget, amountOut: amountOut, feeAmount: feeAmt}
		}
		sqrtQ := nextSqrtFromInputZeroForOne(liquidity, sqrtPrice, amountRemainingLessFee)
		amountInUsed := fx.Amount0Delta(sqrtQ, sqrtPrice, liquidity, true)
		amountOutRecv := fx.Amount1Delta(sqrtQ, sqrtPrice, liquidity, false)
		// The target is not reached, so the whole remainder is spent: what the
		// price move does not use is taken as fee.
		feeAmt := new(big.Int).Sub(amountRemaining, amountInUsed)
		return swapStepResult{sqrtQ: sqrtQ, amountIn: amountInUsed, amountOut: amountOutRecv, feeAmount: feeAmt}
	}

	amountInToTarget := fx.Amount1Delta(sqrtPrice, sqrtPriceTarget, liquidity, true)
	grossToTarget := fx.MulDivCeilBig(amountInToTarget, denom, feeComplement)

	if grossToTarget.Cmp(amountRemaining) <= 0 {
		amountOut := fx.Amount0Delta(sqrtPrice, sqrtPriceTarget, liquidity, false)
		feeAmt := new(big.Int).Sub(grossToTarget, amountInToTarget)
		return swapStepResult{sqrtQ: sqrtPriceTarget.Clone(), amountIn: amountInToTarget, amountOut: amountOut, feeAmount: feeAmt}
	}
	sqrtQ := nextSqrtFromInputOneForZero(liquidity, sqrtPrice, amountRemainingLessFee)
	amountInUsed := fx.Amount1Delta(sqrtPrice, sqrtQ, liquidity, true)
	amountOutRecv := fx.Amount0Delta(sqrtPrice, sqrtQ, liquidity, false)
	feeAmt := new(big.Int).Sub(amountRemaining, amountInUsed)
	return swapStepResult{sqrtQ: sqrtQ, amountIn: amountInUsed, amountOut: amountOutRecv, feeAmount: feeAmt}
}

// defaultLimit returns the global price bound for a direction when the
// snapshot has no further initialized tick to sweep towards.
func defaultLimit(dir Direction) (*uint256.Int, error) {
	if dir == ZeroForOne {
		return fx.SqrtRatioAtTick(fx.MinTick + 1)
	}
	return fx.SqrtRatioAtTick(fx.MaxTick - 1)
}

// simulateExactIn runs the tick-crossing loop described in spec §4.2, steps
// 2-4, for a positive exact-input amount.
func simulateExactIn(pool *PoolSnapshot, dir Direction, amountIn *big.Int, sqrtPriceLimit *uint256.Int) (*Quote, error) {
	if amountIn.Sign() <= 0 {
		return nil, errors.New("v4: amount_in must be positive")
	}

	ticks := pool.sortedTicks()
	amountRemaining := new(big.Int).Set(amountIn)
	sqrtPrice := pool.SqrtPriceX96.Clone()
	liquidity := new(big.Int).Set(pool.Liquidity)
	currentTick := pool.CurrentTick

	amountInUsedTotal := big.NewInt(0)
	amountOutTotal := big.NewInt(0)
	ticksCrossed := 0

	zeroForOne := dir == ZeroForOne
	if zeroForOne && sqrtPriceLimit.Cmp(sqrtPrice) >= 0 {
		return nil, errors.New("v4: price limit must be below current sqrt price for ZeroForOne")
	}
	if !zeroForOne && sqrtPriceLimit.Cmp(sqrtPrice) <= 0 {
		return nil, errors.New("v4: price limit must be above current sqrt price for OneForZero")
	}

	for amountRemaining.Sign() > 0 && liquidity.Sign() > 0 {
		nextTick, hasNext := nextInitializedTick(ticks, currentTick, dir)
		var sqrtNext *uint256.Int
		var err error
		if hasNext {
			sqrtNext, err = fx.SqrtRatioAtTick(nextTick)
		} else {
			sqrtNext, err = defaultLimit(dir)
		}
		if err != nil {
			return nil, err
		}

		var sqrtTargetBound *uint256.Int
		if zeroForOne {
			if sqrtPriceLimit.Cmp(sqrtNext) > 0 {
				sqrtTargetBound = sqrtPriceLimit
			} else {
				sqrtTargetBound = sqrtNext
			}
		} else {
			if sqrtPriceLimit.Cmp(sqrtNext) < 0 {
				sqrtTargetBound = sqrtPriceLimit
			} else {
				sqrtTargetBound = sqrtNext
			}
		}

		step := computeSwapStep(sqrtPrice, sqrtTargetBound, liquidity, amountRemaining, pool.FeePips, zeroForOne)

		consumed := new(big.Int).Add(step.amountIn, step.feeAmount)
		amountRemaining.Sub(amountRemaining, consumed)
		amountInUsedTotal.Add(amountInUsedTotal, consumed)
		amountOutTotal.Add(amountOutTotal, step.amountOut)
		sqrtPrice = step.sqrtQ

		crossed := hasNext && sqrtPrice.Cmp(sqrtNext) == 0
		if crossed {
			ticksCrossed++
			if net, ok := tickNetAt(ticks, nextTick); ok {
				switch dir {
				case ZeroForOne:
					if net.Sign() < 0 {
						liquidity.Add(liquidity, new(big.Int).Neg(net))
					} else {
						liquidity.Sub(liquidity, net)
					}
				case OneForZero:
					liquidity.Add(liquidity, net)
				}
			}
			if dir == ZeroForOne {
				currentTick = nextTick - 1
			} else {
				currentTick = nextTick
			}
			continue
		}

		tick, err := fx.TickAtSqrtRatio(sqrtPrice)
		if err != nil {
			return nil, err
		}
		currentTick = tick
		break
	}

	if amountRemaining.Sign() > 0 {
		return nil, ErrInsufficientLiquidity
	}

	return &Quote{
		AmountInRaw:    amountInUsedTotal,
		AmountOutRaw:   amountOutTotal,
		FinalSqrtPrice: sqrtPrice,
		FinalTick:      currentTick,
		TicksCrossed:   ticksCrossed,
	}, nil
}

// SimulateExactIn simulates an exact-input swap and fills in the reporting
// fields (execution price, spot price, price impact) using the given token
// decimals. direction selects which side of the pair is being sold.
func SimulateExactIn(pool *PoolSnapshot, dir Direction, amountIn *big.Int, decimalsIn, decimalsOut int) (*Quote, error) {
	limit, err := defaultLimit(dir)
	if err != nil {
		return nil, err
	}
	q, err := simulateExactIn(pool, dir, amountIn, limit)
	if err != nil {
		return nil, err
	}
	fillPricing(q, pool, dir, decimalsIn, decimalsOut)
	return q, nil
}
