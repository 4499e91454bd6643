package orchestrator

import (
	"context"
	"errors"
	"math"
	"math/big"
	"sync"

	"github.com/pal9000i/arb-bot/internal/errs"
	"github.com/pal9000i/arb-bot/internal/gascost"
	"github.com/pal9000i/arb-bot/internal/optimizer"
	v2 "github.com/pal9000i/arb-bot/internal/quote/v2"
	v4 "github.com/pal9000i/arb-bot/internal/quote/v4"
	"github.com/pal9000i/arb-bot/internal/types"
)

// tagQuoteErr maps the quote packages' plain sentinel errors onto the
// request-facing error taxonomy, since v4/v2 have no dependency on errs and
// return bare errors.
func tagQuoteErr(err error) error {
	switch {
	case errors.Is(err, v4.ErrInsufficientLiquidity), errors.Is(err, v2.ErrInsufficientLiquidity):
		return errs.Wrap(errs.InsufficientLiquidity, "insufficient on-chain liquidity for requested size", err)
	case errors.Is(err, v4.ErrSnapshotInconsistent):
		return errs.Wrap(errs.SnapshotInconsistent, "tick sweep exceeded snapshot window", err)
	case errors.Is(err, v4.ErrNoConvergence):
		return errs.Wrap(errs.NoConvergence, "exact-out search did not converge", err)
	default:
		return err
	}
}

// stage1Result is everything Evaluate needs that comes from a live chain or
// external price pull: both venues' snapshots, the reference price, and
// both chains' gas prices.
type stage1Result struct {
	v4Pool       *v4.PoolSnapshot
	v2Pool       *v2.PoolSnapshot
	ethUSD       float64
	gasPriceEth  *big.Int
	gasPriceBase *big.Int
}

// runStage1 fans out five independent reads concurrently and fails fast on
// the first error, mirroring the teacher's WaitGroup+mutex fan-out idiom
// (internal/marketdata/runner.go) rather than reaching for an errgroup.
func (o *Orchestrator) runStage1(ctx context.Context) (*stage1Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		res      stage1Result
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	wg.Add(5)

	go func() {
		defer wg.Done()
		snap, err := o.v4Adapter.LoadSnapshot(ctx, o.v4Key)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		res.v4Pool = snap
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		snap, _, err := o.v2Adapter.LoadSnapshot(ctx, o.v2Pool, o.v2DecimalsOf)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		res.v2Pool = snap
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		price, err := o.refPrice.ETHUSD(ctx)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		res.ethUSD = price
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		price, err := o.ethClient.GasPriceWei(ctx)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		res.gasPriceEth = price
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		price, err := o.baseClient.GasPriceWei(ctx)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		res.gasPriceBase = price
		mu.Unlock()
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return &res, nil
}

// runStage2 quotes the bridge-fee cost of both directions concurrently,
// tolerant of either direction's bridge quote failing independently (a
// failed direction just surfaces +Inf, handled entirely inside bridgefee).
func (o *Orchestrator) runStage2(ctx context.Context, sizeEth, ethUSD float64) (bridgeUni, bridgeAero float64) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		bridgeUni = o.bridgeUSD(ctx, types.SellUniBuyAero, sizeEth, ethUSD)
	}()
	go func() {
		defer wg.Done()
		bridgeAero = o.bridgeUSD(ctx, types.SellAeroBuyUni, sizeEth, ethUSD)
	}()

	wg.Wait()
	return bridgeUni, bridgeAero
}

func (o *Orchestrator) bridgeUSD(ctx context.Context, dir types.Direction, sizeEth, ethUSD float64) float64 {
	if cached, ok := o.bridgeCache.Get(ctx, dir); ok {
		return cached.USD
	}
	q := o.bridge.QuoteDirection(ctx, dir, sizeEth, ethUSD, o.addrs)
	o.bridgeCache.Set(ctx, dir, q, o.bridgeTTL)
	return q.USD
}

// pointAmount is the raw WETH amount used for the caller's requested point
// quote. A zero trade size still needs a non-zero probe amount to read a
// price off the pool, so it falls back to the smallest representable unit;
// the reported trade_size_eth and profit fields stay exactly zero regardless.
func pointAmount(sizeEth float64) *big.Int {
	raw := toRaw(sizeEth, wethDecimals)
	if raw.Sign() <= 0 {
		return big.NewInt(1)
	}
	return raw
}

func (o *Orchestrator) v4VenueDetails(pool *v4.PoolSnapshot, amountWeth *big.Int, gasUSD float64) (VenueDetails, error) {
	sellDir := v4SellDirFromFlag(o.v4WethIsZero)
	sellQuote, err := v4.SimulateExactIn(pool, sellDir, amountWeth, wethDecimals, usdcDecimals)
	if err != nil {
		return VenueDetails{}, err
	}

	buyDir := v4BuyDirFromFlag(o.v4WethIsZero)
	buyQuote, err := v4.SimulateExactOut(pool, buyDir, amountWeth, usdcDecimals, wethDecimals)
	if err != nil {
		return VenueDetails{}, err
	}

	return VenueDetails{
		SellPriceUsdcPerEth: sellQuote.ExecutionPrice,
		BuyPriceUsdcPerEth:  buyQuote.ExecutionPrice,
		PriceImpactPercent:  sellQuote.PriceImpactPct,
		EstimatedGasCostUSD: gasUSD,
	}, nil
}

func (o *Orchestrator) v2VenueDetails(pool *v2.PoolSnapshot, amountWeth *big.Int, gasUSD float64) (VenueDetails, error) {
	sellDir := v2SellDir(pool.Token0, o.addrs.WETHBase)
	sellQuote, err := v2.SimulateExactIn(pool, sellDir, amountWeth)
	if err != nil {
		return VenueDetails{}, err
	}

	buyDir := v2BuyDir(pool.Token0, o.addrs.WETHBase)
	buyQuote, err := v2.SimulateExactOut(pool, buyDir, amountWeth)
	if err != nil {
		return VenueDetails{}, err
	}

	return VenueDetails{
		SellPriceUsdcPerEth: sellQuote.ExecutionPrice,
		BuyPriceUsdcPerEth:  buyQuote.ExecutionPrice,
		PriceImpactPercent:  sellQuote.PriceImpactPct,
		EstimatedGasCostUSD: gasUSD,
	}, nil
}

// Evaluate assembles one full arbitrage evaluation for tradeSizeEth: live
// snapshots and prices (stage 1, fail-fast), bridge-fee quotes for both
// directions (stage 2, partial-failure tolerant), point quotes on both
// venues at the caller's requested size, and the profit-maximizing summary
// across both directions.
func (o *Orchestrator) Evaluate(ctx context.Context, tradeSizeEth float64) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	s1, err := o.runStage1(ctx)
	if err != nil {
		if ctx.Err() != nil && errs.KindOf(err) == "" {
			return nil, errs.Wrap(errs.DeadlineExceeded, "evaluation deadline exceeded during snapshot load", err)
		}
		return nil, err
	}

	gasV4 := gascost.Estimate(o.gasUnits.V4, s1.gasPriceEth, s1.ethUSD)
	gasV2 := gascost.Estimate(o.gasUnits.V2, s1.gasPriceBase, s1.ethUSD)
	totalGasUSD := gasV4.TotalUSD + gasV2.TotalUSD

	bridgeUni, bridgeAero := o.runStage2(ctx, tradeSizeEth, s1.ethUSD)

	amountWeth := pointAmount(tradeSizeEth)

	v4Details, err := o.v4VenueDetails(s1.v4Pool, amountWeth, gasV4.TotalUSD)
	if err != nil {
		return nil, tagQuoteErr(err)
	}
	v2Details, err := o.v2VenueDetails(s1.v2Pool, amountWeth, gasV2.TotalUSD)
	if err != nil {
		return nil, tagQuoteErr(err)
	}

	if tradeSizeEth <= 0 {
		v4Details.PriceImpactPercent = 0
		v2Details.PriceImpactPercent = 0
	}

	uniInputs := types.OptimizerInputs{
		Direction: types.SellUniBuyAero,
		GrossProfit: func(sizeEth float64) (float64, error) {
			return grossProfitUniToAero(s1.v4Pool, s1.v2Pool, o.v4WethIsZero, o.addrs.WETHBase, sizeEth)
		},
		GasUSD:    totalGasUSD,
		BridgeUSD: bridgeUni,
	}
	aeroInputs := types.OptimizerInputs{
		Direction: types.SellAeroBuyUni,
		GrossProfit: func(sizeEth float64) (float64, error) {
			return grossProfitAeroToUni(s1.v4Pool, s1.v2Pool, o.v4WethIsZero, o.addrs.WETHBase, sizeEth)
		},
		GasUSD:    totalGasUSD,
		BridgeUSD: bridgeAero,
	}

	summary, err := optimizer.BuildSummary(uniInputs, aeroInputs)
	if err != nil {
		return nil, err
	}

	grossUniToAero, _ := uniInputs.GrossProfit(tradeSizeEth)
	grossAeroToUni, _ := aeroInputs.GrossProfit(tradeSizeEth)
	if tradeSizeEth <= 0 {
		grossUniToAero, grossAeroToUni = 0, 0
	}

	bridgeCostUSD := 0.0
	if summary.HasArbitrage {
		if summary.BestDirection == types.SellUniBuyAero {
			bridgeCostUSD = bridgeUni
		} else {
			bridgeCostUSD = bridgeAero
		}
		if math.IsInf(bridgeCostUSD, 1) {
			bridgeCostUSD = 0
		}
	}

	report := &Report{
		TradeSizeEth:         tradeSizeEth,
		ReferenceCEXPriceUSD: s1.ethUSD,
		UniswapV4:            v4Details,
		Aerodrome:            v2Details,
		Summary: ArbitrageSummary{
			SpreadUniToAero:         v4Details.SellPriceUsdcPerEth - v2Details.BuyPriceUsdcPerEth,
			SpreadAeroToUni:         v2Details.SellPriceUsdcPerEth - v4Details.BuyPriceUsdcPerEth,
			GrossProfitUniToAeroUSD: grossUniToAero,
			GrossProfitAeroToUniUSD: grossAeroToUni,
			TotalGasCostUSD:         totalGasUSD,
			BridgeCostUSD:           bridgeCostUSD,
			NetProfitBestUSD:        summary.NetProfitBestUSD,
			RecommendedAction:       summary.RecommendedAction,
		},
	}
	return report, nil
}
