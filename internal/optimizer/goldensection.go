// Package optimizer implements the golden-section search and report
// assembly described for the profit-maximizing trade size: bracket on a
// geometric grid, refine with golden-section search, then report the
// maximizer and its net profit.
package optimizer

import "math"

const phi = 1.618034
const maxIterations = 64

// grid is the fixed geometric bracket named explicitly in the algorithm.
var grid = []float64{0.01, 0.1, 1, 10, 100, 1000, 10000}

// NetProfitFunc is the pure, deterministic per-size objective. An error from
// a size that the quoter cannot fill (e.g. InsufficientLiquidity) is treated
// as -Inf so the search simply avoids that region rather than failing the
// whole optimization.
type NetProfitFunc func(sizeEth float64) (float64, error)

// Result is the outcome of maximizing one direction's net-profit curve.
type Result struct {
	Found        bool
	SizeEth      float64
	NetProfitUSD float64
}

func safeEval(f NetProfitFunc, size float64) float64 {
	v, err := f(size)
	if err != nil {
		return math.Inf(-1)
	}
	return v
}

// Maximize brackets netProfit on the fixed geometric grid, then refines with
// golden-section search. It finds a LOCAL optimum; it is only guaranteed
// global when the grid spans the profitable region, per the design notes'
// explicit caveat about non-unimodal net-profit curves.
func Maximize(netProfit NetProfitFunc) (Result, error) {
	vals := make([]float64, len(grid))
	for i, s := range grid {
		vals[i] = safeEval(netProfit, s)
	}

	bestIdx := 0
	anyPositive := false
	for i, v := range vals {
		if v > 0 {
			anyPositive = true
		}
		if v > vals[bestIdx] {
			bestIdx = i
		}
	}
	if !anyPositive {
		return Result{Found: false}, nil
	}

	a, b := neighbors(bestIdx)
	size, profit := goldenSectionSearch(netProfit, a, b)
	return Result{Found: true, SizeEth: size, NetProfitUSD: profit}, nil
}

// neighbors picks the bracket around the grid's best point, clamping at the
// grid's edges per the algorithm's "otherwise use the top-value point's
// immediate neighbors" rule.
func neighbors(bestIdx int) (a, b float64) {
	loIdx := bestIdx - 1
	hiIdx := bestIdx + 1
	if loIdx < 0 {
		loIdx = 0
	}
	if hiIdx > len(grid)-1 {
		hiIdx = len(grid) - 1
	}
	if loIdx == hiIdx {
		// bestIdx sits at the grid's only element; widen by one decade each
		// side so golden-section search still has a non-degenerate bracket.
		return grid[bestIdx] / 10, grid[bestIdx] * 10
	}
	return grid[loIdx], grid[hiIdx]
}

func goldenSectionSearch(f NetProfitFunc, a, b float64) (float64, float64) {
	invPhi := 1 / phi
	c := b - (b-a)*invPhi
	d := a + (b-a)*invPhi
	fc := safeEval(f, c)
	fd := safeEval(f, d)

	for i := 0; i < maxIterations; i++ {
		tol := 1e-6 * math.Max(1, a)
		if math.Abs(b-a) < tol {
			break
		}
		if fc > fd {
			b = d
			d = c
			fd = fc
			c = b - (b-a)*invPhi
			fc = safeEval(f, c)
		} else {
			a = c
			c = d
			fc = fd
			d = a + (b-a)*invPhi
			fd = safeEval(f, d)
		}
	}

	mid := (a + b) / 2
	midProfit := safeEval(f, mid)
	best, bestProfit := mid, midProfit
	if fc > bestProfit {
		best, bestProfit = c, fc
	}
	if fd > bestProfit {
		best, bestProfit = d, fd
	}
	return best, bestProfit
}
