// Command arb-quote runs the stateless WETH/USDC arbitrage-quoting HTTP
// service: one process, one route, no persistent state beyond in-flight RPC
// connection pools and the optional bridge-fee cache.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pal9000i/arb-bot/internal/bridgefee"
	"github.com/pal9000i/arb-bot/internal/chain"
	"github.com/pal9000i/arb-bot/internal/config"
	"github.com/pal9000i/arb-bot/internal/httpapi"
	"github.com/pal9000i/arb-bot/internal/metrics"
	"github.com/pal9000i/arb-bot/internal/orchestrator"
	"github.com/pal9000i/arb-bot/internal/refprice"
)

const multicallPoolSize = 16

func main() {
	log, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Warn("received signal, shutting down...")
		cancel()
	}()

	ethClient, err := chain.NewClient("ethereum", cfg.EthereumRPCURL, multicallPoolSize)
	if err != nil {
		log.Fatal("dial ethereum rpc", zap.Error(err))
	}
	baseClient, err := chain.NewClient("base", cfg.BaseRPCURL, multicallPoolSize)
	if err != nil {
		log.Fatal("dial base rpc", zap.Error(err))
	}

	stateView := common.HexToAddress(cfg.UniswapV4StateView)
	ethMulticall, err := chain.NewMulticall(ethClient, common.HexToAddress(cfg.MulticallAddrEth))
	if err != nil {
		log.Fatal("build ethereum multicall", zap.Error(err))
	}
	aerodromeFactory := common.HexToAddress(cfg.AerodromeFactory)
	baseMulticall, err := chain.NewMulticall(baseClient, common.HexToAddress(cfg.MulticallAddrBase))
	if err != nil {
		log.Fatal("build base multicall", zap.Error(err))
	}

	v4Adapter := chain.NewV4Adapter(ethMulticall, stateView)
	v2Adapter := chain.NewV2Adapter(baseMulticall, aerodromeFactory)

	validateDecimals(ctx, log, ethClient, baseClient, cfg)

	refPrice := refprice.New(cfg.CEXAPIURL, 6*time.Second)
	bridge := bridgefee.New(cfg.AcrossAPIURL, cfg.AcrossTimeout)

	var bridgeCache bridgefee.Cache
	if cfg.RedisAddr != "" {
		bridgeCache = bridgefee.NewRedisCache(cfg.RedisAddr)
		log.Info("bridge fee cache backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		bridgeCache = bridgefee.NewNullCache()
		log.Info("bridge fee cache is in-process (REDIS_ADDR unset)")
	}

	orch := orchestrator.New(cfg, ethClient, baseClient, v4Adapter, v2Adapter, refPrice, bridge, bridgeCache)
	server := httpapi.New(orch, log)

	metrics.Serve(ctx, cfg.MetricsBindAddr, nil, log)

	httpSrv := &http.Server{
		Addr:              cfg.ServiceBindAddr,
		Handler:           server.Mux(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestDeadline + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("arb-quote listening", zap.String("addr", cfg.ServiceBindAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown error", zap.Error(err))
	}
	log.Info("arb-quote stopped")
}

// validateDecimals reads decimals() on both chains' configured WETH/USDC
// addresses and fails fast on a mismatch against the fixed pair this service
// quotes, catching a misconfigured address before it silently corrupts every
// price computed downstream.
func validateDecimals(ctx context.Context, log *zap.Logger, ethClient, baseClient *chain.Client, cfg *config.Config) {
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	ethDecimals := chain.NewDecimalsCache(ethClient)
	baseDecimals := chain.NewDecimalsCache(baseClient)

	checks := []struct {
		label    string
		cache    *chain.DecimalsCache
		addr     string
		expected int
	}{
		{"WETH_ADDR_ETH", ethDecimals, cfg.WETHAddrEth, 18},
		{"USDC_ADDR_ETH", ethDecimals, cfg.USDCAddrEth, 6},
		{"WETH_ADDR_BASE", baseDecimals, cfg.WETHAddrBase, 18},
		{"USDC_ADDR_BASE", baseDecimals, cfg.USDCAddrBase, 6},
	}

	for _, c := range checks {
		dec, err := c.cache.Decimals(checkCtx, common.HexToAddress(c.addr))
		if err != nil {
			log.Fatal("startup decimals check failed", zap.String("var", c.label), zap.Error(err))
		}
		if dec != c.expected {
			log.Fatal("configured token decimals do not match the fixed WETH/USDC pair",
				zap.String("var", c.label), zap.Int("got", dec), zap.Int("want", c.expected))
		}
	}
}

// newLogger builds the process logger: JSON output at info level, plain
// English field keys and RFC3339 timestamps.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}
