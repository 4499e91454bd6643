package optimizer

import (
	"github.com/pal9000i/arb-bot/internal/types"
)

// DirectionOutcome is one direction's optimizer result plus the fixed costs
// that were netted against its gross-profit curve.
type DirectionOutcome struct {
	Direction types.Direction
	Result    Result
	GasUSD    float64
	BridgeUSD float64
}

// Summary is the global selection across both directions: the best
// direction's maximizer size and net profit, or NO_ARBITRAGE if neither
// direction clears zero.
type Summary struct {
	Uni               DirectionOutcome
	Aero              DirectionOutcome
	BestDirection     types.Direction
	HasArbitrage      bool
	NetProfitBestUSD  float64
	RecommendedAction string
}

func netProfitFn(in types.OptimizerInputs) NetProfitFunc {
	return func(sizeEth float64) (float64, error) {
		gross, err := in.GrossProfit(sizeEth)
		if err != nil {
			return 0, err
		}
		return gross - in.GasUSD - in.BridgeUSD, nil
	}
}

// BuildSummary runs the optimizer independently for both directions and
// performs the global selection described in §4.9: pick the direction
// whose size* yields the larger positive net profit, else NO_ARBITRAGE.
func BuildSummary(uniInputs, aeroInputs types.OptimizerInputs) (*Summary, error) {
	uniResult, err := Maximize(netProfitFn(uniInputs))
	if err != nil {
		return nil, err
	}
	aeroResult, err := Maximize(netProfitFn(aeroInputs))
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Uni:  DirectionOutcome{Direction: types.SellUniBuyAero, Result: uniResult, GasUSD: uniInputs.GasUSD, BridgeUSD: uniInputs.BridgeUSD},
		Aero: DirectionOutcome{Direction: types.SellAeroBuyUni, Result: aeroResult, GasUSD: aeroInputs.GasUSD, BridgeUSD: aeroInputs.BridgeUSD},
	}

	best := 0.0
	bestDir := types.SellUniBuyAero
	found := false

	if uniResult.Found && uniResult.NetProfitUSD > best {
		best = uniResult.NetProfitUSD
		bestDir = types.SellUniBuyAero
		found = true
	}
	if aeroResult.Found && aeroResult.NetProfitUSD > best {
		best = aeroResult.NetProfitUSD
		bestDir = types.SellAeroBuyUni
		found = true
	}

	if !found || best <= 0 {
		s.NetProfitBestUSD = 0
		s.RecommendedAction = "NO_ARBITRAGE"
		s.HasArbitrage = false
		return s, nil
	}

	s.BestDirection = bestDir
	s.NetProfitBestUSD = best
	s.RecommendedAction = bestDir.String()
	s.HasArbitrage = true
	return s, nil
}
