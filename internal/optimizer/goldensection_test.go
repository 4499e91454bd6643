package optimizer

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaximizeFindsPeakOfConcaveCurve(t *testing.T) {
	// Net profit peaks at size=50, falling off quadratically either side.
	f := func(size float64) (float64, error) {
		return 100 - (size-50)*(size-50)*0.01, nil
	}
	res, err := Maximize(f)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.InDelta(t, 50, res.SizeEth, 1.0)
	require.True(t, res.NetProfitUSD > 0)
}

func TestMaximizeNoArbitrageWhenAlwaysNegative(t *testing.T) {
	f := func(size float64) (float64, error) {
		return -1 - size, nil
	}
	res, err := Maximize(f)
	require.NoError(t, err)
	require.False(t, res.Found)
}

func TestMaximizeTreatsErrorsAsNegativeInfinity(t *testing.T) {
	errLiquidity := errors.New("insufficient liquidity")
	f := func(size float64) (float64, error) {
		if size > 100 {
			return 0, errLiquidity
		}
		return 10 - size*0.05, nil
	}
	res, err := Maximize(f)
	require.NoError(t, err)
	require.True(t, res.Found)
	require.True(t, res.SizeEth <= 200, "optimizer should not wander into the unfillable region")
}

func TestSafeEvalMapsErrorToNegInf(t *testing.T) {
	f := func(size float64) (float64, error) { return 0, errors.New("boom") }
	got := safeEval(f, 1)
	require.True(t, math.IsInf(got, -1))
}

func TestNeighborsClampsAtGridEdges(t *testing.T) {
	a, b := neighbors(0)
	require.Equal(t, grid[0], a)
	require.Equal(t, grid[1], b)

	a, b = neighbors(len(grid) - 1)
	require.Equal(t, grid[len(grid)-2], a)
	require.Equal(t, grid[len(grid)-1], b)
}
