// Package orchestrator is the fan-out coordinator (C8): it loads both
// venues' snapshots, the reference price, and both chains' gas prices
// concurrently, then quotes both arbitrage directions and runs the
// optimizer to assemble one evaluation report.
package orchestrator

import (
	"bytes"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pal9000i/arb-bot/internal/bridgefee"
	"github.com/pal9000i/arb-bot/internal/chain"
	"github.com/pal9000i/arb-bot/internal/config"
	"github.com/pal9000i/arb-bot/internal/refprice"
	"github.com/pal9000i/arb-bot/internal/venue"
)

const wethDecimals = 18
const usdcDecimals = 6

// Orchestrator holds every dependency Evaluate needs: one RPC client and
// adapter per chain/venue, the reference-price and bridge-fee clients, and
// the static configuration that doesn't change between requests.
type Orchestrator struct {
	ethClient  *chain.Client
	baseClient *chain.Client
	v4Adapter  *chain.V4Adapter
	v2Adapter  *chain.V2Adapter
	refPrice   *refprice.Client
	bridge     *bridgefee.Client
	bridgeCache bridgefee.Cache

	v4Key        chain.PoolKey
	v4WethIsZero bool
	v2Pool       common.Address

	addrs     bridgefee.AssetAddresses
	gasUnits  venue.GasUnits
	bridgeTTL time.Duration
	deadline  time.Duration
}

// New wires an Orchestrator from already-constructed clients and the loaded
// config. The V4 pool key's currency ordering is resolved once here (V4
// identifies a pool by the address-sorted pair, unlike V2 where token0/
// token1 are read live from the pair contract).
func New(
	cfg *config.Config,
	ethClient, baseClient *chain.Client,
	v4Adapter *chain.V4Adapter,
	v2Adapter *chain.V2Adapter,
	refPrice *refprice.Client,
	bridge *bridgefee.Client,
	bridgeCache bridgefee.Cache,
) *Orchestrator {
	weth := common.HexToAddress(cfg.WETHAddrEth)
	usdc := common.HexToAddress(cfg.USDCAddrEth)
	c0, c1, wethIsZero := sortPair(weth, usdc)

	return &Orchestrator{
		ethClient:   ethClient,
		baseClient:  baseClient,
		v4Adapter:   v4Adapter,
		v2Adapter:   v2Adapter,
		refPrice:    refPrice,
		bridge:      bridge,
		bridgeCache: bridgeCache,
		v4Key: chain.PoolKey{
			Currency0:   c0,
			Currency1:   c1,
			Fee:         cfg.V4FeePips,
			TickSpacing: cfg.V4TickSpacing,
		},
		v4WethIsZero: wethIsZero,
		v2Pool:       common.HexToAddress(cfg.AerodromePool),
		addrs: bridgefee.AssetAddresses{
			WETHEthereum: weth,
			USDCEthereum: usdc,
			WETHBase:     common.HexToAddress(cfg.WETHAddrBase),
			USDCBase:     common.HexToAddress(cfg.USDCAddrBase),
		},
		gasUnits:  venue.GasUnits{V4: cfg.GasUnitsV4, V2: cfg.GasUnitsV2},
		bridgeTTL: cfg.BridgeQuoteTTL,
		deadline:  cfg.RequestDeadline,
	}
}

func sortPair(a, b common.Address) (lo, hi common.Address, aIsLo bool) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b, true
	}
	return b, a, false
}

func (o *Orchestrator) v2DecimalsOf(addr common.Address) int {
	if addr == o.addrs.WETHBase {
		return wethDecimals
	}
	return usdcDecimals
}

// VenueDetails is one venue's point quote and cost at the caller's requested
// trade size.
type VenueDetails struct {
	SellPriceUsdcPerEth float64
	BuyPriceUsdcPerEth  float64
	PriceImpactPercent  float64
	EstimatedGasCostUSD float64
}

// ArbitrageSummary is the cross-venue comparison and the optimizer's global
// selection across both directions.
type ArbitrageSummary struct {
	SpreadUniToAero         float64
	SpreadAeroToUni         float64
	GrossProfitUniToAeroUSD float64
	GrossProfitAeroToUniUSD float64
	TotalGasCostUSD         float64
	BridgeCostUSD           float64
	NetProfitBestUSD        float64
	RecommendedAction       string
}

// Report is the fully assembled evaluation for one trade size.
type Report struct {
	TradeSizeEth         float64
	ReferenceCEXPriceUSD float64
	UniswapV4            VenueDetails
	Aerodrome            VenueDetails
	Summary              ArbitrageSummary
}
