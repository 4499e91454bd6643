package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// multicallABI and Aggregate are a near-verbatim port of the teacher's
// internal/multicall package (classic Multicall1 aggregate(tuple[])), kept
// in this package so the snapshot loaders can share one abi.ABI instance
// with the rest of the chain adapter.
const multicallABI = `[
{
    "constant": false,
    "inputs": [
        {
            "components": [
                {
                    "name": "target",
                    "type": "address"
                },
                {
                    "name": "callData",
                    "type": "bytes"
                }
            ],
            "name": "calls",
            "type": "tuple[]"
        }
    ],
    "name": "aggregate",
    "outputs": [
        {
            "name": "blockNumber",
            "type": "uint256"
        },
        {
            "name": "returnData",
            "type": "bytes[]"
        }
    ],
    "payable": false,
    "stateMutability": "nonpayable",
    "type": "function"
}
]`

// MulticallCall is one batched read.
type MulticallCall struct {
	Target   common.Address
	CallData []byte
}

// MulticallResult is one batched read's outcome.
type MulticallResult struct {
	Success bool
	Data    []byte
}

// Multicall batches read-only calls against a single multicall contract.
type Multicall struct {
	client *Client
	addr   common.Address
	abi    abi.ABI
}

// NewMulticall parses the aggregate ABI once and binds it to a chain client.
func NewMulticall(client *Client, multicallAddr common.Address) (*Multicall, error) {
	parsed, err := abi.JSON(strings.NewReader(multicallABI))
	if err != nil {
		return nil, fmt.Errorf("bad multicall abi: %w", err)
	}
	return &Multicall{client: client, addr: multicallAddr, abi: parsed}, nil
}

// Aggregate executes all calls in a single eth_call, within the client's
// pool-acquisition and timeout discipline.
func (m *Multicall) Aggregate(ctx context.Context, calls []MulticallCall) ([]MulticallResult, error) {
	payload, err := m.abi.Pack("aggregate", calls)
	if err != nil {
		return nil, fmt.Errorf("pack aggregate: %w", err)
	}

	var raw []byte
	err = m.client.withCall(ctx, func(callCtx context.Context) error {
		var callErr error
		raw, callErr = m.client.ec.CallContract(callCtx, ethereum.CallMsg{To: &m.addr, Data: payload}, nil)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	type aggregateResult struct {
		BlockNumber *big.Int
		ReturnData  [][]byte
	}
	var agg aggregateResult
	if err := m.abi.UnpackIntoInterface(&agg, "aggregate", raw); err != nil {
		return nil, fmt.Errorf("unpack aggregate: %w", err)
	}

	out := make([]MulticallResult, len(calls))
	for i, r := range agg.ReturnData {
		out[i] = MulticallResult{Success: len(r) > 0, Data: r}
	}
	return out, nil
}
