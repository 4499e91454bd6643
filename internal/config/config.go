// Package config loads the service's configuration from environment
// variables, per the external interfaces contract: addresses, fee tiers,
// and endpoints are the only things the core consumes, and the caller
// (cmd/arb-quote) is responsible for everything the env vars don't cover
// (secret loading, container wiring, log format).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pal9000i/arb-bot/internal/errs"
)

// Config is the fully resolved, immutable process configuration.
type Config struct {
	EthereumRPCURL string
	BaseRPCURL     string

	UniswapV4StateView string

	MulticallAddrEth  string
	MulticallAddrBase string

	WETHAddrEth   string
	USDCAddrEth   string
	WETHAddrBase  string
	USDCAddrBase  string
	AerodromeFactory string
	AerodromePool string

	V4FeePips     uint32
	V4TickSpacing int32

	GasUnitsV4 uint64
	GasUnitsV2 uint64

	RequestDeadline time.Duration

	ServiceBindAddr string

	// Recovered from original_source but not required by the distilled
	// spec: optional knobs with sane defaults.
	AcrossAPIURL      string
	AcrossTimeout     time.Duration
	CEXAPIURL         string
	BridgeQuoteTTL    time.Duration
	RedisAddr         string
	MetricsBindAddr   string
}

func requireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", errs.New(errs.ConfigInvalid, fmt.Sprintf("%s must be set", name))
	}
	return v, nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Wrap(errs.ConfigInvalid, fmt.Sprintf("%s must be an integer", name), err)
	}
	return n, nil
}

func uint64Env(name string, def uint64) (uint64, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ConfigInvalid, fmt.Sprintf("%s must be a non-negative integer", name), err)
	}
	return n, nil
}

func stringEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// Load reads and validates the process configuration. It follows the
// teacher's from-env pattern (required fields hard-fail, optional fields
// fall back to documented defaults) but reads exactly the variable names
// named in the external interfaces contract, since that naming is part of
// the service's deployment protocol, not a free implementation choice.
func Load() (*Config, error) {
	var c Config
	var err error

	if c.EthereumRPCURL, err = requireEnv("ETHEREUM_RPC_URL"); err != nil {
		return nil, err
	}
	if c.BaseRPCURL, err = requireEnv("BASE_RPC_URL"); err != nil {
		return nil, err
	}
	if c.UniswapV4StateView, err = requireEnv("UNISWAP_V4_STATE_VIEW"); err != nil {
		return nil, err
	}

	// Multicall3 is deployed at this same address on nearly every EVM chain,
	// including both chains this service targets; overridable for chains or
	// test networks where that determinism doesn't hold.
	const defaultMulticallAddr = "0xcA11bde05977b3631167028862bE2a173976CA11"
	c.MulticallAddrEth = stringEnv("MULTICALL_ADDR_ETH", defaultMulticallAddr)
	c.MulticallAddrBase = stringEnv("MULTICALL_ADDR_BASE", defaultMulticallAddr)
	if c.WETHAddrEth, err = requireEnv("WETH_ADDR_ETH"); err != nil {
		return nil, err
	}
	if c.USDCAddrEth, err = requireEnv("USDC_ADDR_ETH"); err != nil {
		return nil, err
	}
	if c.WETHAddrBase, err = requireEnv("WETH_ADDR_BASE"); err != nil {
		return nil, err
	}
	if c.USDCAddrBase, err = requireEnv("USDC_ADDR_BASE"); err != nil {
		return nil, err
	}
	if c.AerodromeFactory, err = requireEnv("AERODROME_FACTORY"); err != nil {
		return nil, err
	}
	if c.AerodromePool, err = requireEnv("AERODROME_POOL"); err != nil {
		return nil, err
	}

	feePips, err := intEnv("V4_FEE_PIPS", 3000)
	if err != nil {
		return nil, err
	}
	c.V4FeePips = uint32(feePips)

	tickSpacing, err := intEnv("V4_TICK_SPACING", 60)
	if err != nil {
		return nil, err
	}
	c.V4TickSpacing = int32(tickSpacing)

	if c.GasUnitsV4, err = uint64Env("GAS_UNITS_V4", 180_000); err != nil {
		return nil, err
	}
	if c.GasUnitsV2, err = uint64Env("GAS_UNITS_V2", 160_000); err != nil {
		return nil, err
	}

	deadlineMs, err := intEnv("REQUEST_DEADLINE_MS", 10_000)
	if err != nil {
		return nil, err
	}
	c.RequestDeadline = time.Duration(deadlineMs) * time.Millisecond

	c.ServiceBindAddr = stringEnv("SERVICE_BIND_ADDR", "0.0.0.0:8000")

	c.AcrossAPIURL = stringEnv("ACROSS_API_URL", "https://app.across.to/api/suggested-fees")
	acrossTimeoutSecs, err := intEnv("ACROSS_TIMEOUT_SECS", 10)
	if err != nil {
		return nil, err
	}
	c.AcrossTimeout = time.Duration(acrossTimeoutSecs) * time.Second

	c.CEXAPIURL = stringEnv("CEX_API_URL", "https://api.coinbase.com/v2/exchange-rates?currency=ETH")

	bridgeTTLMs, err := intEnv("BRIDGE_QUOTE_TTL_MS", 30_000)
	if err != nil {
		return nil, err
	}
	c.BridgeQuoteTTL = time.Duration(bridgeTTLMs) * time.Millisecond

	c.RedisAddr = stringEnv("REDIS_ADDR", "")
	c.MetricsBindAddr = stringEnv("METRICS_BIND_ADDR", "0.0.0.0:9090")

	return &c, nil
}
