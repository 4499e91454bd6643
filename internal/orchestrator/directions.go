package orchestrator

import (
	"github.com/ethereum/go-ethereum/common"

	v2 "github.com/pal9000i/arb-bot/internal/quote/v2"
	v4 "github.com/pal9000i/arb-bot/internal/quote/v4"
)

// v4SellDirFromFlag and v4BuyDirFromFlag use v4WethIsZero rather than reading
// the snapshot's Token0, since the V4 pool key's currency ordering is fixed
// at construction time (New sorts WETH/USDC itself) and is therefore already
// known before any snapshot is loaded.
func v4SellDirFromFlag(wethIsZero bool) v4.Direction {
	if wethIsZero {
		return v4.ZeroForOne
	}
	return v4.OneForZero
}

func v4BuyDirFromFlag(wethIsZero bool) v4.Direction {
	if wethIsZero {
		return v4.OneForZero
	}
	return v4.ZeroForOne
}

// V2's token0/token1 ordering is only known once a snapshot is loaded, so
// these take it as a parameter rather than a precomputed flag.
func v2SellDir(token0 common.Address, weth common.Address) v2.Direction {
	if token0 == weth {
		return v2.ZeroForOne
	}
	return v2.OneForZero
}

func v2BuyDir(token0 common.Address, weth common.Address) v2.Direction {
	if token0 == weth {
		return v2.OneForZero
	}
	return v2.ZeroForOne
}

// grossProfitUniToAero is the net-of-fees, pre-gas-and-bridge profit in USD
// of selling sizeEth WETH on the V4 venue and buying the same amount of
// WETH back on the V2 venue, evaluated against a fixed pair of snapshots.
func grossProfitUniToAero(v4Pool *v4.PoolSnapshot, v2Pool *v2.PoolSnapshot, v4WethIsZero bool, v2Weth common.Address, sizeEth float64) (float64, error) {
	amountWeth := toRaw(sizeEth, wethDecimals)

	sellDir := v4SellDirFromFlag(v4WethIsZero)
	sellQuote, err := v4.SimulateExactIn(v4Pool, sellDir, amountWeth, wethDecimals, usdcDecimals)
	if err != nil {
		return 0, err
	}
	usdcReceived := toHuman(sellQuote.AmountOutRaw, usdcDecimals)

	buyDir := v2BuyDir(v2Pool.Token0, v2Weth)
	buyQuote, err := v2.SimulateExactOut(v2Pool, buyDir, amountWeth)
	if err != nil {
		return 0, err
	}
	usdcSpent := toHuman(buyQuote.AmountInRaw, usdcDecimals)

	return usdcReceived - usdcSpent, nil
}

// grossProfitAeroToUni is the mirror: sell WETH on V2, buy it back on V4.
func grossProfitAeroToUni(v4Pool *v4.PoolSnapshot, v2Pool *v2.PoolSnapshot, v4WethIsZero bool, v2Weth common.Address, sizeEth float64) (float64, error) {
	amountWeth := toRaw(sizeEth, wethDecimals)

	sellDir := v2SellDir(v2Pool.Token0, v2Weth)
	sellQuote, err := v2.SimulateExactIn(v2Pool, sellDir, amountWeth)
	if err != nil {
		return 0, err
	}
	usdcReceived := toHuman(sellQuote.AmountOutRaw, usdcDecimals)

	buyDir := v4BuyDirFromFlag(v4WethIsZero)
	buyQuote, err := v4.SimulateExactOut(v4Pool, buyDir, amountWeth, usdcDecimals, wethDecimals)
	if err != nil {
		return 0, err
	}
	usdcSpent := toHuman(buyQuote.AmountInRaw, usdcDecimals)

	return usdcReceived - usdcSpent, nil
}
