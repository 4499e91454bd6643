package v4

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/pal9000i/arb-bot/internal/fx"
)

func flatPool(feePips uint32, liquidity int64) *PoolSnapshot {
	sqrtP, err := fx.SqrtRatioAtTick(0)
	if err != nil {
		panic(err)
	}
	return &PoolSnapshot{
		Token0:       common.HexToAddress("0x1"),
		Token1:       common.HexToAddress("0x2"),
		FeePips:      feePips,
		TickSpacing:  60,
		SqrtPriceX96: sqrtP,
		CurrentTick:  0,
		Liquidity:    big.NewInt(liquidity),
		Ticks:        nil,
	}
}

func TestSimulateExactInWithinRangeBothDirections(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	q, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000), 18, 6)
	require.NoError(t, err)
	require.Equal(t, 0, q.TicksCrossed)
	require.True(t, q.AmountOutRaw.Sign() > 0)

	q2, err := SimulateExactIn(pool, OneForZero, big.NewInt(1_000_000), 6, 18)
	require.NoError(t, err)
	require.Equal(t, 0, q2.TicksCrossed)
	require.True(t, q2.AmountOutRaw.Sign() > 0)
}

func TestSimulateExactInFeeReducesOutput(t *testing.T) {
	cheap := flatPool(500, 1_000_000_000_000_000_000)
	pricey := flatPool(10000, 1_000_000_000_000_000_000)

	amountIn := big.NewInt(5_000_000_000_000)
	qCheap, err := SimulateExactIn(cheap, ZeroForOne, amountIn, 18, 6)
	require.NoError(t, err)
	qPricey, err := SimulateExactIn(pricey, ZeroForOne, amountIn, 18, 6)
	require.NoError(t, err)

	require.True(t, qCheap.AmountOutRaw.Cmp(qPricey.AmountOutRaw) > 0,
		"a lower fee tier must yield strictly more output for the same input")
}

func TestSimulateExactInCrossesInitializedTick(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	pool.Ticks = []TickInfo{
		{Tick: 60, LiquidityNet: big.NewInt(-200_000_000_000_000_000)},
		{Tick: 120, LiquidityNet: big.NewInt(-200_000_000_000_000_000)},
	}

	q, err := SimulateExactIn(pool, OneForZero, big.NewInt(5_000_000_000_000_000), 6, 18)
	require.NoError(t, err)
	require.True(t, q.TicksCrossed >= 1, "expected at least one tick crossing, got %d", q.TicksCrossed)
	require.True(t, q.FinalTick >= pool.CurrentTick)
}

func TestSimulateExactInInsufficientLiquidity(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := SimulateExactIn(pool, ZeroForOne, huge, 18, 6)
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestSimulateExactInRejectsNonPositiveAmount(t *testing.T) {
	pool := flatPool(3000, 1_000)
	_, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(0), 18, 6)
	require.Error(t, err)
	_, err = SimulateExactIn(pool, ZeroForOne, big.NewInt(-5), 18, 6)
	require.Error(t, err)
}

func TestSimulateExactInRejectsPriceLimitOnWrongSide(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	// For ZeroForOne the price only falls, so a limit at or above the
	// current sqrt price is invalid.
	_, err := simulateExactIn(pool, ZeroForOne, big.NewInt(1000), pool.SqrtPriceX96.Clone())
	require.Error(t, err)

	// For OneForZero the price only rises, so a limit at or below current
	// sqrt price is invalid.
	_, err = simulateExactIn(pool, OneForZero, big.NewInt(1000), pool.SqrtPriceX96.Clone())
	require.Error(t, err)
}
