package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABI = `[
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var erc20Parsed abi.ABI

func init() {
	var err error
	erc20Parsed, err = abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic("chain: bad erc20 abi: " + err.Error())
	}
}

// DecimalsCache memoizes decimals() reads per token address, grounded on
// the teacher's univ3/utils.go decimal-fetch pattern but with a concurrency-
// safe cache (the teacher used a plain map under its single-pair pipeline,
// which never raced; this service serves concurrent requests).
type DecimalsCache struct {
	client *Client
	mu     sync.RWMutex
	cache  map[common.Address]int
}

// NewDecimalsCache builds an empty cache bound to one chain's client.
func NewDecimalsCache(client *Client) *DecimalsCache {
	return &DecimalsCache{client: client, cache: make(map[common.Address]int)}
}

// Decimals returns a token's decimals, calling the chain once per address.
func (d *DecimalsCache) Decimals(ctx context.Context, token common.Address) (int, error) {
	d.mu.RLock()
	if v, ok := d.cache[token]; ok {
		d.mu.RUnlock()
		return v, nil
	}
	d.mu.RUnlock()

	input, err := erc20Parsed.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}

	var raw []byte
	err = d.client.withCall(ctx, func(callCtx context.Context) error {
		var callErr error
		raw, callErr = d.client.ec.CallContract(callCtx, ethereum.CallMsg{To: &token, Data: input}, nil)
		return callErr
	})
	if err != nil {
		return 0, err
	}

	outs, err := erc20Parsed.Methods["decimals"].Outputs.Unpack(raw)
	if err != nil || len(outs) == 0 {
		return 0, fmt.Errorf("decode decimals: %w", err)
	}

	var dec int
	switch v := outs[0].(type) {
	case uint8:
		dec = int(v)
	case *big.Int:
		dec = int(v.Int64())
	default:
		return 0, fmt.Errorf("unexpected decimals type %T", v)
	}

	d.mu.Lock()
	d.cache[token] = dec
	d.mu.Unlock()
	return dec, nil
}
