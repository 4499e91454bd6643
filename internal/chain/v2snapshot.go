package chain

import (
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pal9000i/arb-bot/internal/errs"
	v2 "github.com/pal9000i/arb-bot/internal/quote/v2"
)

const aerodromePoolABI = `[
  {"inputs":[],"name":"token0","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"token1","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
  {"inputs":[],"name":"getReserves","outputs":[
     {"internalType":"uint256","name":"_reserve0","type":"uint256"},
     {"internalType":"uint256","name":"_reserve1","type":"uint256"},
     {"internalType":"uint256","name":"_blockTimestampLast","type":"uint256"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[],"name":"stable","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

const aerodromeFactoryABI = `[
  {"inputs":[
     {"internalType":"address","name":"pool","type":"address"},
     {"internalType":"bool","name":"_stable","type":"bool"}],
   "name":"getFee","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],
   "stateMutability":"view","type":"function"}
]`

const defaultV2FeeBps = 30

var aerodromePoolParsed, aerodromeFactoryParsed abi.ABI

func init() {
	var err error
	aerodromePoolParsed, err = abi.JSON(strings.NewReader(aerodromePoolABI))
	if err != nil {
		panic("chain: bad aerodrome pool abi: " + err.Error())
	}
	aerodromeFactoryParsed, err = abi.JSON(strings.NewReader(aerodromeFactoryABI))
	if err != nil {
		panic("chain: bad aerodrome factory abi: " + err.Error())
	}
}

// V2Adapter loads constant-product pair snapshots from one Aerodrome-style
// pool, with the fee looked up from its factory's registered fee slot.
type V2Adapter struct {
	mc      *Multicall
	factory common.Address
}

// NewV2Adapter binds a multicall batcher to the configured factory address.
func NewV2Adapter(mc *Multicall, factory common.Address) *V2Adapter {
	return &V2Adapter{mc: mc, factory: factory}
}

// LoadSnapshot batches reads of token0/token1/getReserves, then separately
// reads the pair's fee from its factory; a failed fee read falls back to 30
// bps silently: the returned fee does not show that the fallback was taken,
// and no warning is logged. decimalsOf resolves a token address to its
// decimals count, since token0/token1 ordering is only known once this call
// returns.
func (a *V2Adapter) LoadSnapshot(ctx context.Context, pair common.Address, decimalsOf func(common.Address) int) (*v2.PoolSnapshot, uint32, error) {
	token0Call, err := aerodromePoolParsed.Pack("token0")
	if err != nil {
		return nil, 0, err
	}
	token1Call, err := aerodromePoolParsed.Pack("token1")
	if err != nil {
		return nil, 0, err
	}
	reservesCall, err := aerodromePoolParsed.Pack("getReserves")
	if err != nil {
		return nil, 0, err
	}
	stableCall, err := aerodromePoolParsed.Pack("stable")
	if err != nil {
		return nil, 0, err
	}

	results, err := a.mc.Aggregate(ctx, []MulticallCall{
		{Target: pair, CallData: token0Call},
		{Target: pair, CallData: token1Call},
		{Target: pair, CallData: reservesCall},
		{Target: pair, CallData: stableCall},
	})
	if err != nil {
		return nil, 0, err
	}
	if len(results) != 4 || !results[0].Success || !results[1].Success || !results[2].Success {
		return nil, 0, errs.New(errs.RpcFailure, "v2 pair call reverted")
	}

	var out0, out1 struct{ Addr common.Address }
	if vals, err := aerodromePoolParsed.Methods["token0"].Outputs.Unpack(results[0].Data); err == nil && len(vals) > 0 {
		out0.Addr = vals[0].(common.Address)
	} else {
		return nil, 0, errs.Wrap(errs.SnapshotInconsistent, "decode token0", err)
	}
	if vals, err := aerodromePoolParsed.Methods["token1"].Outputs.Unpack(results[1].Data); err == nil && len(vals) > 0 {
		out1.Addr = vals[0].(common.Address)
	} else {
		return nil, 0, errs.Wrap(errs.SnapshotInconsistent, "decode token1", err)
	}

	var reserves struct {
		Reserve0           *big.Int
		Reserve1           *big.Int
		BlockTimestampLast *big.Int
	}
	if err := aerodromePoolParsed.UnpackIntoInterface(&reserves, "getReserves", results[2].Data); err != nil {
		return nil, 0, errs.Wrap(errs.SnapshotInconsistent, "decode reserves", err)
	}

	stable := false
	if results[3].Success {
		if vals, err := aerodromePoolParsed.Methods["stable"].Outputs.Unpack(results[3].Data); err == nil && len(vals) > 0 {
			stable, _ = vals[0].(bool)
		}
	}

	feeBps := a.lookupFee(ctx, pair, stable)

	snap := &v2.PoolSnapshot{
		Token0:    out0.Addr,
		Token1:    out1.Addr,
		Reserve0:  new(big.Int).Set(reserves.Reserve0),
		Reserve1:  new(big.Int).Set(reserves.Reserve1),
		Decimals0: decimalsOf(out0.Addr),
		Decimals1: decimalsOf(out1.Addr),
		FeeBps:    feeBps,
	}
	return snap, feeBps, nil
}

// lookupFee reads the pool's fee from its factory, falling back to 30 bps on
// any failure; the fallback is not logged.
func (a *V2Adapter) lookupFee(ctx context.Context, pair common.Address, stable bool) uint32 {
	input, err := aerodromeFactoryParsed.Pack("getFee", pair, stable)
	if err != nil {
		return defaultV2FeeBps
	}

	var raw []byte
	err = a.mc.client.withCall(ctx, func(callCtx context.Context) error {
		var callErr error
		raw, callErr = a.mc.client.ec.CallContract(callCtx, ethereum.CallMsg{To: &a.factory, Data: input}, nil)
		return callErr
	})
	if err != nil {
		return defaultV2FeeBps
	}

	vals, err := aerodromeFactoryParsed.Methods["getFee"].Outputs.Unpack(raw)
	if err != nil || len(vals) == 0 {
		return defaultV2FeeBps
	}
	fee, ok := vals[0].(*big.Int)
	if !ok {
		return defaultV2FeeBps
	}
	if !fee.IsUint64() || fee.Uint64() > 9999 {
		return defaultV2FeeBps
	}
	return uint32(fee.Uint64())
}
