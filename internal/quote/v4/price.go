package v4

import (
	"math"
	"math/big"
)

var q96Float = new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))

// fillPricing populates a Quote's derived reporting fields once the raw
// amounts and final pool state are known. Prices are always reported as
// USDC per WETH regardless of which token is token0/token1 or which side of
// the pair is being bought or sold, matching the response shape in spec §6.
// Whether WETH is being sold or bought is read from the decimals passed in
// (18 vs 6), not from the raw Direction alone, since the same ZeroForOne/
// OneForZero value means "sell WETH" on one pool and "buy WETH" on another
// depending on which currency the pool calls token0.
func fillPricing(q *Quote, pool *PoolSnapshot, dir Direction, decimalsIn, decimalsOut int) {
	humanIn := toHuman(q.AmountInRaw, decimalsIn)
	humanOut := toHuman(q.AmountOutRaw, decimalsOut)

	sellingWeth := decimalsIn > decimalsOut
	token0IsWeth := (dir == ZeroForOne) == sellingWeth

	decimalsWeth, decimalsUsdc := decimalsIn, decimalsOut
	if !sellingWeth {
		decimalsWeth, decimalsUsdc = decimalsOut, decimalsIn
	}

	q.ExecutionPrice = usdcPerWeth(sellingWeth, humanIn, humanOut)
	q.SpotPrice = spotUsdcPerWeth(pool, token0IsWeth, decimalsWeth, decimalsUsdc)
	if q.SpotPrice != 0 {
		q.PriceImpactPct = math.Abs(q.SpotPrice-q.ExecutionPrice) / q.SpotPrice * 100
	}
}

func toHuman(raw *big.Int, decimals int) float64 {
	f := new(big.Float).SetInt(raw)
	f.Quo(f, big.NewFloat(math.Pow10(decimals)))
	v, _ := f.Float64()
	return v
}

// usdcPerWeth converts a human-unit (in, out) trade into a USDC-per-WETH
// price, given whether this particular trade sold WETH or bought it.
func usdcPerWeth(sellingWeth bool, humanIn, humanOut float64) float64 {
	if sellingWeth {
		if humanIn == 0 {
			return 0
		}
		return humanOut / humanIn
	}
	if humanOut == 0 {
		return 0
	}
	return humanIn / humanOut
}

// spotUsdcPerWeth reports the pool's pre-trade spot price in USDC per WETH,
// independent of which token happens to be token0 in the snapshot.
func spotUsdcPerWeth(pool *PoolSnapshot, token0IsWeth bool, decimalsWeth, decimalsUsdc int) float64 {
	ratio := new(big.Float).SetInt(pool.SqrtPriceX96.ToBig())
	ratio.Quo(ratio, q96Float)
	ratio.Mul(ratio, ratio) // token1 per token0, raw units

	var decimals0, decimals1 int
	if token0IsWeth {
		decimals0, decimals1 = decimalsWeth, decimalsUsdc
	} else {
		decimals0, decimals1 = decimalsUsdc, decimalsWeth
	}
	ratio.Mul(ratio, big.NewFloat(math.Pow10(decimals0-decimals1)))

	token1PerToken0, _ := ratio.Float64()
	if token0IsWeth {
		// token0 is WETH, token1 is USDC: already USDC per WETH.
		return token1PerToken0
	}
	// token0 is USDC, token1 is WETH: invert.
	if token1PerToken0 == 0 {
		return 0
	}
	return 1 / token1PerToken0
}
