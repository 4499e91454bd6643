// Package v4 simulates exact-in and exact-out swaps against a concentrated
// liquidity pool snapshot, the way a Uniswap-v4-style pool would execute them
// on-chain, using exact Q64.96 fixed-point arithmetic from internal/fx.
package v4

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/pal9000i/arb-bot/internal/fx"
)

// Direction selects which token is the input.
type Direction int

const (
	// ZeroForOne spends token0, receives token1.
	ZeroForOne Direction = iota
	// OneForZero spends token1, receives token0.
	OneForZero
)

// TickInfo is a single initialized tick boundary and its signed liquidity
// delta, applied when the price sweeps across it.
type TickInfo struct {
	Tick         int32
	LiquidityNet *big.Int // signed
}

// PoolSnapshot is the immutable, per-request view of a V4 pool used by the
// simulator. Ticks must contain every initialized tick within the window the
// chain adapter loaded. Past the last tick in Ticks the simulator assumes no
// further initialized tick up to the global price bound; a sweep past the
// loaded window is not detected, here or in the chain adapter.
type PoolSnapshot struct {
	Token0       common.Address
	Token1       common.Address
	FeePips      uint32
	TickSpacing  int32
	SqrtPriceX96 *uint256.Int
	CurrentTick  int32
	Liquidity    *big.Int   // non-negative
	Ticks        []TickInfo // sorted ascending by Tick
}

// sortedTicks returns the snapshot's ticks sorted ascending (callers are
// expected to have built Ticks already sorted, but we defend against
// unordered input since it is cheap and callers may assemble it from an
// unordered RPC result).
func (p *PoolSnapshot) sortedTicks() []TickInfo {
	ticks := p.Ticks
	if !sort.SliceIsSorted(ticks, func(i, j int) bool { return ticks[i].Tick < ticks[j].Tick }) {
		ticks = append([]TickInfo(nil), ticks...)
		sort.Slice(ticks, func(i, j int) bool { return ticks[i].Tick < ticks[j].Tick })
	}
	return ticks
}

// nextInitializedTick finds the next initialized tick in the sweep direction
// from currentTick (inclusive of currentTick for ZeroForOne, since a pool's
// current tick can itself be an initialized boundary). The bool return is
// false when the snapshot has no tick in that direction, signalling the
// simulator must fall back to the global tick bound.
func nextInitializedTick(ticks []TickInfo, currentTick int32, dir Direction) (int32, bool) {
	switch dir {
	case ZeroForOne:
		for i := len(ticks) - 1; i >= 0; i-- {
			if ticks[i].Tick <= currentTick {
				return ticks[i].Tick, true
			}
		}
		return fx.MinTick, false
	default: // OneForZero
		for i := 0; i < len(ticks); i++ {
			if ticks[i].Tick > currentTick {
				return ticks[i].Tick, true
			}
		}
		return fx.MaxTick, false
	}
}

func tickNetAt(ticks []TickInfo, tick int32) (*big.Int, bool) {
	for _, t := range ticks {
		if t.Tick == tick {
			return t.LiquidityNet, true
		}
	}
	return nil, false
}

// Quote is the externally observable result of a simulated exact-in swap.
type Quote struct {
	AmountInRaw    *big.Int
	AmountOutRaw   *big.Int
	ExecutionPrice float64 // USDC per ETH
	SpotPrice      float64 // USDC per ETH
	PriceImpactPct float64
	FinalSqrtPrice *uint256.Int
	FinalTick      int32
	TicksCrossed   int
}
