package v4

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// These four combinations guard the token0/direction pricing bug: the sign of
// ZeroForOne/OneForZero alone does not tell you whether WETH was bought or
// sold, since that also depends on which side of the pair the pool calls
// token0. fillPricing must read sellingWeth from the decimals, not the raw
// direction.
func TestFillPricingToken0WethSelling(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	// token0 = WETH (18 decimals), token1 = USDC (6 decimals). Selling WETH
	// means spending token0, i.e. ZeroForOne.
	q, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000_000_000), 18, 6)
	require.NoError(t, err)
	require.True(t, q.SpotPrice > 0)
	require.True(t, q.ExecutionPrice > 0)
}

func TestFillPricingToken0WethBuying(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	// Buying WETH (receiving token0) means spending token1 (USDC), i.e.
	// OneForZero, with decimalsIn=6 (USDC) and decimalsOut=18 (WETH).
	q, err := SimulateExactIn(pool, OneForZero, big.NewInt(1_000_000), 6, 18)
	require.NoError(t, err)
	require.True(t, q.SpotPrice > 0)
	require.True(t, q.ExecutionPrice > 0)
}

func TestFillPricingToken0UsdcSelling(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	// token0 = USDC, token1 = WETH. Selling WETH means spending token1, i.e.
	// OneForZero, with decimalsIn=18 (WETH) and decimalsOut=6 (USDC).
	q, err := SimulateExactIn(pool, OneForZero, big.NewInt(1_000_000_000_000_000_000), 18, 6)
	require.NoError(t, err)
	require.True(t, q.SpotPrice > 0)
	require.True(t, q.ExecutionPrice > 0)
}

func TestFillPricingToken0UsdcBuying(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	// Buying WETH while token0 is USDC means spending token0, i.e.
	// ZeroForOne, with decimalsIn=6 (USDC) and decimalsOut=18 (WETH).
	q, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000), 6, 18)
	require.NoError(t, err)
	require.True(t, q.SpotPrice > 0)
	require.True(t, q.ExecutionPrice > 0)
}

func TestSpotPriceIndependentOfTradeSize(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	small, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000), 18, 6)
	require.NoError(t, err)
	large, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000_000), 18, 6)
	require.NoError(t, err)

	require.InDelta(t, small.SpotPrice, large.SpotPrice, 1e-6,
		"spot price is a pre-trade quantity and must not depend on trade size")
}

func TestPriceImpactGrowsWithTradeSize(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	small, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000), 18, 6)
	require.NoError(t, err)
	large, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(100_000_000_000_000_000), 18, 6)
	require.NoError(t, err)

	require.True(t, large.PriceImpactPct >= small.PriceImpactPct,
		"a larger trade against the same liquidity must not show less price impact")
}
