// Package v2 simulates exact-in and exact-out swaps against a constant-product
// pool snapshot (Aerodrome/Solidly-volatile style), using basis-point fees.
package v2

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientLiquidity mirrors the V4 quoter's failure mode: the pool
// cannot supply the requested output amount at any finite input.
var ErrInsufficientLiquidity = errors.New("v2: insufficient liquidity to fill requested amount")

const bpsDenominator = 10_000

// PoolSnapshot is the immutable, per-request view of a constant-product pool.
type PoolSnapshot struct {
	Token0       common.Address
	Token1       common.Address
	Reserve0     *big.Int
	Reserve1     *big.Int
	Decimals0    int
	Decimals1    int
	FeeBps       uint32 // e.g. 30 = 0.30%
}

// Direction selects which token is the input.
type Direction int

const (
	ZeroForOne Direction = iota
	OneForZero
)

func (p *PoolSnapshot) reservesFor(dir Direction) (reserveIn, reserveOut *big.Int) {
	if dir == ZeroForOne {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

// Quote is the externally observable result of a simulated swap.
type Quote struct {
	AmountInRaw    *big.Int
	AmountOutRaw   *big.Int
	ExecutionPrice float64
	SpotPrice      float64
	PriceImpactPct float64
}

// clampFeeBps mirrors the Rust source's defensive clamp of fee_bps to at most
// 9999 so the (10000 - fee) complement never underflows to zero or negative.
func clampFeeBps(feeBps uint32) uint32 {
	if feeBps > bpsDenominator-1 {
		return bpsDenominator - 1
	}
	return feeBps
}

// amountOut is Solidly/Aerodrome's constant-product formula with a basis-point
// fee taken out of the input before the x*y=k division:
//
//	out = (in * (10000-fee) * reserveOut) / (reserveIn*10000 + in*(10000-fee))
//
// Grounded on original_source/src/math/aerodrome_volatile.rs::volatile_amount_out.
func amountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint32) *big.Int {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return big.NewInt(0)
	}
	feeBps = clampFeeBps(feeBps)
	gamma := big.NewInt(int64(bpsDenominator - feeBps))

	amountInWithFee := new(big.Int).Mul(amountIn, gamma)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)

	denominator := new(big.Int).Mul(reserveIn, big.NewInt(bpsDenominator))
	denominator.Add(denominator, amountInWithFee)

	out := numerator.Div(numerator, denominator)
	return out
}

// amountIn inverts amountOut: given a desired output, returns an input that
// receives it: the minimal such input, or one unit more when the division
// below is exact. Per spec §4.3's explicit exact-out formula:
//
//	in = floor( reserveIn*desiredOut*10000 / ((reserveOut-desiredOut)*(10000-fee)) ) + 1
//
// This has no counterpart in original_source (the Rust implementation only
// ever quotes exact-in), so it is built directly from the spec's formula.
func amountIn(desiredOut, reserveIn, reserveOut *big.Int, feeBps uint32) (*big.Int, error) {
	if desiredOut.Sign() <= 0 {
		return nil, errors.New("v2: desired amount_out must be positive")
	}
	if desiredOut.Cmp(reserveOut) >= 0 {
		return nil, ErrInsufficientLiquidity
	}
	feeBps = clampFeeBps(feeBps)
	gamma := big.NewInt(int64(bpsDenominator - feeBps))

	numerator := new(big.Int).Mul(reserveIn, desiredOut)
	numerator.Mul(numerator, big.NewInt(bpsDenominator))

	denominator := new(big.Int).Sub(reserveOut, desiredOut)
	denominator.Mul(denominator, gamma)

	in := new(big.Int).Div(numerator, denominator)
	in.Add(in, big.NewInt(1))
	return in, nil
}

func toHuman(raw *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(raw)
	scale := new(big.Float).SetInt(pow10(decimals))
	f.Quo(f, scale)
	v, _ := f.Float64()
	return v
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func decimalsFor(pool *PoolSnapshot, dir Direction) (decimalsIn, decimalsOut int) {
	if dir == ZeroForOne {
		return pool.Decimals0, pool.Decimals1
	}
	return pool.Decimals1, pool.Decimals0
}

// token0IsWeth tells which side of the pair is WETH from the snapshot's own
// decimals, since WETH (18) and USDC (6) never tie within this pair. This is
// independent of trade direction: a pool's spot price doesn't change
// depending on which way you're about to trade it.
func (p *PoolSnapshot) token0IsWeth() bool {
	return p.Decimals0 > p.Decimals1
}

func spotPriceUsdcPerWeth(pool *PoolSnapshot) float64 {
	human0 := toHuman(pool.Reserve0, pool.Decimals0)
	human1 := toHuman(pool.Reserve1, pool.Decimals1)

	if pool.token0IsWeth() {
		if human0 == 0 {
			return 0
		}
		return human1 / human0 // USDC (token1) per WETH (token0)
	}
	if human1 == 0 {
		return 0
	}
	return human0 / human1 // USDC (token0) per WETH (token1)
}

func fillPricing(q *Quote, pool *PoolSnapshot, dir Direction) {
	decimalsIn, decimalsOut := decimalsFor(pool, dir)
	humanIn := toHuman(q.AmountInRaw, decimalsIn)
	humanOut := toHuman(q.AmountOutRaw, decimalsOut)

	// sellingWeth is true when this trade spends WETH, regardless of
	// whether WETH happens to be token0 or token1 on this pool.
	sellingWeth := (dir == ZeroForOne) == pool.token0IsWeth()

	var exec float64
	if sellingWeth {
		if humanIn != 0 {
			exec = humanOut / humanIn
		}
	} else {
		if humanOut != 0 {
			exec = humanIn / humanOut
		}
	}
	q.ExecutionPrice = exec
	q.SpotPrice = spotPriceUsdcPerWeth(pool)
	if q.SpotPrice != 0 {
		impact := (q.SpotPrice - exec) / q.SpotPrice * 100
		if impact < 0 {
			impact = -impact
		}
		q.PriceImpactPct = impact
	}
}

// SimulateExactIn quotes a swap of a fixed input amount.
func SimulateExactIn(pool *PoolSnapshot, dir Direction, amountIn *big.Int) (*Quote, error) {
	if amountIn.Sign() <= 0 {
		return nil, errors.New("v2: amount_in must be positive")
	}
	reserveIn, reserveOut := pool.reservesFor(dir)
	out := amountOut(amountIn, reserveIn, reserveOut, pool.FeeBps)
	if out.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	q := &Quote{AmountInRaw: new(big.Int).Set(amountIn), AmountOutRaw: out}
	fillPricing(q, pool, dir)
	return q, nil
}

// SimulateExactOut quotes the minimal input needed to receive a fixed output
// amount.
func SimulateExactOut(pool *PoolSnapshot, dir Direction, amountOutWanted *big.Int) (*Quote, error) {
	reserveIn, reserveOut := pool.reservesFor(dir)
	in, err := amountIn(amountOutWanted, reserveIn, reserveOut, pool.FeeBps)
	if err != nil {
		return nil, err
	}
	q := &Quote{AmountInRaw: in, AmountOutRaw: new(big.Int).Set(amountOutWanted)}
	fillPricing(q, pool, dir)
	return q, nil
}
