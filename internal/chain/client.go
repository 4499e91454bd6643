// Package chain is the read-only RPC adapter (C4): per-chain ethclient
// connections, multicall batching, and the V4/V2 snapshot loaders.
package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/pal9000i/arb-bot/internal/errs"
)

const defaultCallTimeout = 8 * time.Second
const poolAcquireTimeout = 200 * time.Millisecond

// Client wraps a single chain's ethclient.Client with a bounded-concurrency
// acquisition gate, so a burst of concurrent requests degrades with an
// explicit PoolExhausted error instead of an unbounded goroutine pileup.
// Grounded on the connection-pool-starvation contract in the concurrency
// design: acquisition must not exceed 200ms.
type Client struct {
	name string
	ec   *ethclient.Client
	sem  chan struct{}
}

// NewClient dials the RPC endpoint once at startup and sizes the
// acquisition gate to poolSize concurrent in-flight calls.
func NewClient(name, rpcURL string, poolSize int) (*Client, error) {
	ec, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errs.Wrap(errs.RpcFailure, "dial "+name+" rpc", err)
	}
	if poolSize <= 0 {
		poolSize = 16
	}
	return &Client{name: name, ec: ec, sem: make(chan struct{}, poolSize)}, nil
}

// acquire reserves a slot in the pool or fails with PoolExhausted after
// poolAcquireTimeout.
func (c *Client) acquire(ctx context.Context) (func(), error) {
	select {
	case c.sem <- struct{}{}:
		return func() { <-c.sem }, nil
	case <-time.After(poolAcquireTimeout):
		return nil, errs.New(errs.PoolExhausted, "connection pool exhausted for "+c.name)
	case <-ctx.Done():
		return nil, errs.Wrap(errs.DeadlineExceeded, "context done while acquiring "+c.name+" pool slot", ctx.Err())
	}
}

// withCall acquires a pool slot, bounds the call with defaultCallTimeout (or
// the caller's deadline, whichever is sooner), and runs fn.
func (c *Client) withCall(ctx context.Context, fn func(ctx context.Context) error) error {
	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	callCtx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	if err := fn(callCtx); err != nil {
		if callCtx.Err() != nil {
			return errs.Wrap(errs.DeadlineExceeded, c.name+" rpc call timed out", err)
		}
		return errs.Wrap(errs.RpcFailure, c.name+" rpc call failed", err)
	}
	return nil
}

// Raw exposes the underlying ethclient for callers (e.g. gas price fetch)
// that need direct access but still want pool accounting applied by the
// caller around it.
func (c *Client) Raw() *ethclient.Client { return c.ec }

// Name returns the adapter's configured label (used in metrics/log fields).
func (c *Client) Name() string { return c.name }
