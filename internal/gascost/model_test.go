package gascost

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateComputesUSDFromGasUnitsAndPrice(t *testing.T) {
	// 100,000 gas units at 20 gwei, ETH at $3000:
	// totalWei = 100000 * 20e9 = 2e15 wei = 0.002 ETH => $6
	gasPriceWei := big.NewInt(20_000_000_000)
	got := Estimate(100_000, gasPriceWei, 3000)

	require.Equal(t, uint64(100_000), got.GasUnits)
	require.Equal(t, gasPriceWei, got.GasPriceWei)
	require.InDelta(t, 6.0, got.TotalUSD, 1e-9)
}

func TestEstimateZeroGasPriceYieldsZeroCost(t *testing.T) {
	got := Estimate(100_000, big.NewInt(0), 3000)
	require.Equal(t, 0.0, got.TotalUSD)
}
