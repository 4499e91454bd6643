package v4

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimulateExactOutMatchesExactInRoundTrip(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)

	in, err := SimulateExactIn(pool, ZeroForOne, big.NewInt(1_000_000_000_000), 18, 6)
	require.NoError(t, err)

	out, err := SimulateExactOut(pool, ZeroForOne, in.AmountOutRaw, 18, 6)
	require.NoError(t, err)

	diff := new(big.Int).Sub(out.AmountInRaw, in.AmountInRaw)
	require.True(t, diff.CmpAbs(big.NewInt(2)) <= 0,
		"exact-out input should match the exact-in input that produced the target output, got diff %s", diff)
}

func TestSimulateExactOutRejectsNonPositiveAmount(t *testing.T) {
	pool := flatPool(3000, 1_000_000_000_000_000_000)
	_, err := SimulateExactOut(pool, ZeroForOne, big.NewInt(0), 18, 6)
	require.Error(t, err)
}

func TestSimulateExactOutInsufficientLiquidity(t *testing.T) {
	pool := flatPool(3000, 1_000)
	hugeOut := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := SimulateExactOut(pool, ZeroForOne, hugeOut, 18, 6)
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}
