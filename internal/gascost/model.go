// Package gascost is the gas cost model (C7): per-chain gas units × live gas
// price × reference price → USD, with no L1 data-availability modeling —
// the configured gas_units is expected to embed that overhead empirically.
package gascost

import (
	"math/big"

	"github.com/pal9000i/arb-bot/internal/types"
)

// Estimate computes a venue's projected USD gas cost for one swap:
//
//	total_usd = gas_units * gas_price_wei * eth_usd / 1e18
func Estimate(gasUnits uint64, gasPriceWei *big.Int, ethUSD float64) types.GasEstimate {
	totalWei := new(big.Int).Mul(gasPriceWei, new(big.Int).SetUint64(gasUnits))

	f := new(big.Float).SetInt(totalWei)
	f.Quo(f, big.NewFloat(1e18))
	f.Mul(f, big.NewFloat(ethUSD))
	usd, _ := f.Float64()

	return types.GasEstimate{
		GasUnits:       gasUnits,
		GasPriceWei:    gasPriceWei,
		TotalNativeWei: totalWei,
		TotalUSD:       usd,
	}
}
