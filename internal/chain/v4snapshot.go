package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/pal9000i/arb-bot/internal/errs"
	v4 "github.com/pal9000i/arb-bot/internal/quote/v4"
)

// stateViewABI mirrors the read-only subset of Uniswap v4's StateView
// periphery contract this adapter needs: slot0, liquidity, the tick
// bitmap (256 ticks per word), and per-tick liquidity.
const stateViewABI = `[
  {"inputs":[{"internalType":"bytes32","name":"poolId","type":"bytes32"}],
   "name":"getSlot0","outputs":[
     {"internalType":"uint160","name":"sqrtPriceX96","type":"uint160"},
     {"internalType":"int24","name":"tick","type":"int24"},
     {"internalType":"uint24","name":"protocolFee","type":"uint24"},
     {"internalType":"uint24","name":"lpFee","type":"uint24"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"bytes32","name":"poolId","type":"bytes32"}],
   "name":"getLiquidity","outputs":[{"internalType":"uint128","name":"liquidity","type":"uint128"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[
     {"internalType":"bytes32","name":"poolId","type":"bytes32"},
     {"internalType":"int16","name":"wordPos","type":"int16"}],
   "name":"getTickBitmap","outputs":[{"internalType":"uint256","name":"bitmap","type":"uint256"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[
     {"internalType":"bytes32","name":"poolId","type":"bytes32"},
     {"internalType":"int24","name":"tick","type":"int24"}],
   "name":"getTickLiquidity","outputs":[
     {"internalType":"uint128","name":"liquidityGross","type":"uint128"},
     {"internalType":"int128","name":"liquidityNet","type":"int128"}],
   "stateMutability":"view","type":"function"}
]`

var stateViewParsed abi.ABI

func init() {
	var err error
	stateViewParsed, err = abi.JSON(strings.NewReader(stateViewABI))
	if err != nil {
		panic("chain: bad state view abi: " + err.Error())
	}
}

// v4WindowSpacings bounds how many tick-spacings either side of the current
// tick the snapshot loader scans for initialized ticks. Sized so a 10,000
// ETH trade (the largest size the optimizer or caller can request) cannot
// reach the window edge for any realistic WETH/USDC V4 pool. Reaching the
// edge is not detected: past the last loaded tick the simulator keeps the
// current liquidity up to the global price bound. SnapshotTooNarrow is
// returned only when a tick bitmap word cannot be read.
const v4WindowSpacings = 4096

// PoolKey is the V4 singleton's pool identity tuple. V4 has no per-pair
// deployed contract (unlike V3's factory+pool pattern); a pool is identified
// purely by keccak256(encode(key)).
type PoolKey struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         uint32
	TickSpacing int32
	Hooks       common.Address
}

// PoolID computes keccak256(abi.encode(PoolKey)), matching v4's on-chain
// pool identity derivation.
func PoolID(key PoolKey) (common.Hash, error) {
	args := abi.Arguments{
		{Type: mustType("address")},
		{Type: mustType("address")},
		{Type: mustType("uint24")},
		{Type: mustType("int24")},
		{Type: mustType("address")},
	}
	packed, err := args.Pack(
		key.Currency0,
		key.Currency1,
		big.NewInt(int64(key.Fee)),
		big.NewInt(int64(key.TickSpacing)),
		key.Hooks,
	)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encode pool key: %w", err)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(packed)
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic("chain: bad abi type " + t + ": " + err.Error())
	}
	return typ
}

// V4Adapter loads pool snapshots from a single StateView contract on one
// chain.
type V4Adapter struct {
	mc        *Multicall
	stateView common.Address
}

// NewV4Adapter binds a multicall batcher to the configured StateView
// address.
func NewV4Adapter(mc *Multicall, stateView common.Address) *V4Adapter {
	return &V4Adapter{mc: mc, stateView: stateView}
}

// LoadSnapshot batches reads of slot0, liquidity, the tick bitmap around the
// current tick within ±v4WindowSpacings, and tick info for each initialized
// tick in that window.
func (a *V4Adapter) LoadSnapshot(ctx context.Context, key PoolKey) (*v4.PoolSnapshot, error) {
	poolID, err := PoolID(key)
	if err != nil {
		return nil, errs.Wrap(errs.SnapshotInconsistent, "compute v4 pool id", err)
	}

	slot0Call, err := stateViewParsed.Pack("getSlot0", poolID)
	if err != nil {
		return nil, err
	}
	liquidityCall, err := stateViewParsed.Pack("getLiquidity", poolID)
	if err != nil {
		return nil, err
	}

	results, err := a.mc.Aggregate(ctx, []MulticallCall{
		{Target: a.stateView, CallData: slot0Call},
		{Target: a.stateView, CallData: liquidityCall},
	})
	if err != nil {
		return nil, err
	}
	if len(results) != 2 || !results[0].Success || !results[1].Success {
		return nil, errs.New(errs.RpcFailure, "v4 slot0/liquidity call reverted")
	}

	var slot0 struct {
		SqrtPriceX96 *big.Int
		Tick         *big.Int
		ProtocolFee  *big.Int
		LpFee        *big.Int
	}
	if err := stateViewParsed.UnpackIntoInterface(&slot0, "getSlot0", results[0].Data); err != nil {
		return nil, errs.Wrap(errs.SnapshotInconsistent, "decode v4 slot0", err)
	}
	var liq struct{ Liquidity *big.Int }
	if err := stateViewParsed.UnpackIntoInterface(&liq, "getLiquidity", results[1].Data); err != nil {
		return nil, errs.Wrap(errs.SnapshotInconsistent, "decode v4 liquidity", err)
	}

	currentTick := int32(slot0.Tick.Int64())
	sqrtPrice, overflow := uint256.FromBig(slot0.SqrtPriceX96)
	if overflow {
		return nil, errs.Wrap(errs.SnapshotInconsistent, "v4 sqrt price overflow", errors.New("uint256 overflow"))
	}

	ticks, err := a.loadInitializedTicks(ctx, poolID, key.TickSpacing, currentTick)
	if err != nil {
		return nil, err
	}

	return &v4.PoolSnapshot{
		Token0:       key.Currency0,
		Token1:       key.Currency1,
		FeePips:      key.Fee,
		TickSpacing:  key.TickSpacing,
		SqrtPriceX96: sqrtPrice,
		CurrentTick:  currentTick,
		Liquidity:    new(big.Int).Set(liq.Liquidity),
		Ticks:        ticks,
	}, nil
}

// loadInitializedTicks finds every initialized tick within the snapshot
// window by batching tick-bitmap reads one word at a time (256 compressed
// ticks per word), then batching a liquidity-net read for each set bit.
func (a *V4Adapter) loadInitializedTicks(ctx context.Context, poolID common.Hash, tickSpacing int32, currentTick int32) ([]v4.TickInfo, error) {
	compressed := currentTick / tickSpacing
	if currentTick < 0 && currentTick%tickSpacing != 0 {
		compressed--
	}
	centerWord := compressed >> 8

	spanWords := int32(v4WindowSpacings/256) + 1
	loWord := centerWord - spanWords
	hiWord := centerWord + spanWords

	calls := make([]MulticallCall, 0, hiWord-loWord+1)
	words := make([]int32, 0, hiWord-loWord+1)
	for w := loWord; w <= hiWord; w++ {
		packed, err := stateViewParsed.Pack("getTickBitmap", poolID, int16(w))
		if err != nil {
			return nil, err
		}
		calls = append(calls, MulticallCall{Target: a.stateView, CallData: packed})
		words = append(words, w)
	}

	results, err := a.mc.Aggregate(ctx, calls)
	if err != nil {
		return nil, err
	}

	var initializedCompressed []int32
	for i, res := range results {
		if !res.Success {
			return nil, errs.New(errs.SnapshotTooNarrow, "tick bitmap word unavailable")
		}
		var out struct{ Bitmap *big.Int }
		if err := stateViewParsed.UnpackIntoInterface(&out, "getTickBitmap", res.Data); err != nil {
			return nil, errs.Wrap(errs.SnapshotInconsistent, "decode tick bitmap", err)
		}
		word := words[i]
		for bit := 0; bit < 256; bit++ {
			if out.Bitmap.Bit(bit) == 0 {
				continue
			}
			tickCompressed := (word << 8) + int32(bit)
			initializedCompressed = append(initializedCompressed, tickCompressed)
		}
	}

	if len(initializedCompressed) == 0 {
		return nil, nil
	}

	tickCalls := make([]MulticallCall, 0, len(initializedCompressed))
	for _, c := range initializedCompressed {
		tick := c * tickSpacing
		packed, err := stateViewParsed.Pack("getTickLiquidity", poolID, big.NewInt(int64(tick)))
		if err != nil {
			return nil, err
		}
		tickCalls = append(tickCalls, MulticallCall{Target: a.stateView, CallData: packed})
	}

	tickResults, err := a.mc.Aggregate(ctx, tickCalls)
	if err != nil {
		return nil, err
	}

	ticks := make([]v4.TickInfo, 0, len(initializedCompressed))
	for i, res := range tickResults {
		if !res.Success {
			continue
		}
		var out struct {
			LiquidityGross *big.Int
			LiquidityNet   *big.Int
		}
		if err := stateViewParsed.UnpackIntoInterface(&out, "getTickLiquidity", res.Data); err != nil {
			return nil, errs.Wrap(errs.SnapshotInconsistent, "decode tick liquidity", err)
		}
		if out.LiquidityNet.Sign() == 0 {
			continue
		}
		tick := initializedCompressed[i] * tickSpacing
		ticks = append(ticks, v4.TickInfo{Tick: tick, LiquidityNet: new(big.Int).Set(out.LiquidityNet)})
	}
	return ticks, nil
}
