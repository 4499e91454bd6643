package orchestrator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToRawAndToHumanRoundTrip(t *testing.T) {
	raw := toRaw(1.5, 18)
	human := toHuman(raw, 18)
	require.InDelta(t, 1.5, human, 1e-9)
}

func TestToRawClampsNegativeToZero(t *testing.T) {
	raw := toRaw(-5, 18)
	require.Equal(t, big.NewInt(0), raw)
}

func TestToRawUsdcDecimals(t *testing.T) {
	raw := toRaw(100.5, 6)
	require.Equal(t, big.NewInt(100_500_000), raw)
}

func TestPow10f(t *testing.T) {
	require.Equal(t, 1.0, pow10f(0))
	require.Equal(t, 1000.0, pow10f(3))
	require.Equal(t, 1e18, pow10f(18))
}
