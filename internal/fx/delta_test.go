package fx

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAmount0DeltaZeroLiquidity(t *testing.T) {
	sa, err := SqrtRatioAtTick(-100)
	require.NoError(t, err)
	sb, err := SqrtRatioAtTick(100)
	require.NoError(t, err)

	got := Amount0Delta(sa, sb, big.NewInt(0), false)
	require.Equal(t, big.NewInt(0), got)
}

func TestAmount0DeltaRoundUpVsRoundDown(t *testing.T) {
	sa, err := SqrtRatioAtTick(-1000)
	require.NoError(t, err)
	sb, err := SqrtRatioAtTick(1000)
	require.NoError(t, err)
	liq := big.NewInt(123456789)

	down := Amount0Delta(sa, sb, liq, false)
	up := Amount0Delta(sa, sb, liq, true)
	require.True(t, up.Cmp(down) >= 0, "round-up amount0 must be >= round-down")
	require.True(t, new(big.Int).Sub(up, down).CmpAbs(big.NewInt(1)) <= 0, "rounding difference should be at most 1")
}

func TestAmount0DeltaOrderIndependent(t *testing.T) {
	sa, err := SqrtRatioAtTick(-1000)
	require.NoError(t, err)
	sb, err := SqrtRatioAtTick(1000)
	require.NoError(t, err)
	liq := big.NewInt(555)

	ab := Amount0Delta(sa, sb, liq, false)
	ba := Amount0Delta(sb, sa, liq, false)
	require.Equal(t, ab, ba)
}

func TestAmount1DeltaZeroWhenEqual(t *testing.T) {
	s, err := SqrtRatioAtTick(0)
	require.NoError(t, err)
	got := Amount1Delta(s, s, big.NewInt(1000), true)
	require.Equal(t, big.NewInt(0), got)
}

func TestAmount1DeltaRoundUpVsRoundDown(t *testing.T) {
	sa, err := SqrtRatioAtTick(-1000)
	require.NoError(t, err)
	sb, err := SqrtRatioAtTick(1000)
	require.NoError(t, err)
	liq := big.NewInt(987654321)

	down := Amount1Delta(sa, sb, liq, false)
	up := Amount1Delta(sa, sb, liq, true)
	require.True(t, up.Cmp(down) >= 0)
}

func TestAmount1DeltaMatchesFormula(t *testing.T) {
	sa := new(uint256.Int).Lsh(uint256.NewInt(1), 96) // Q96, tick 0
	sb, err := SqrtRatioAtTick(1)
	require.NoError(t, err)
	liq := big.NewInt(1_000_000)

	got := Amount1Delta(sa, sb, liq, false)
	want := new(big.Int).Mul(liq, new(big.Int).Sub(sb.ToBig(), sa.ToBig()))
	want.Div(want, Q96)
	require.Equal(t, want, got)
}
