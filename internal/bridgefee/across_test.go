package bridgefee

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/pal9000i/arb-bot/internal/types"
)

func TestFeeDetailTotalRaw(t *testing.T) {
	f := FeeDetail{Total: "1500000000000000"}
	raw, err := f.TotalRaw()
	require.NoError(t, err)
	require.Equal(t, "1500000000000000", raw.String())
}

func TestFeeDetailTotalRawRejectsGarbage(t *testing.T) {
	f := FeeDetail{Total: "not-a-number"}
	_, err := f.TotalRaw()
	require.Error(t, err)
}

func TestFeeDetailTotalUSD(t *testing.T) {
	// 0.0015 WETH at $2000/ETH = $3
	f := FeeDetail{Total: "1500000000000000"}
	usd, err := f.TotalUSD(18, 2000)
	require.NoError(t, err)
	require.InDelta(t, 3.0, usd, 1e-9)
}

func TestLegsForDirectionSellUniBuyAero(t *testing.T) {
	addrs := AssetAddresses{
		WETHEthereum: common.HexToAddress("0x1"),
		USDCEthereum: common.HexToAddress("0x2"),
		WETHBase:     common.HexToAddress("0x3"),
		USDCBase:     common.HexToAddress("0x4"),
	}
	legs := legsForDirection(types.SellUniBuyAero, addrs)
	require.Len(t, legs, 2)
	require.Equal(t, addrs.WETHBase, legs[0].token)
	require.Equal(t, chainIDBase, legs[0].originChainID)
	require.Equal(t, chainIDEthereum, legs[0].destChainID)
	require.Equal(t, addrs.USDCEthereum, legs[1].token)
}

func TestLegAmountRawScalesByAssetKind(t *testing.T) {
	wethLeg := legEndpoint{isWETH: true, decimals: 18}
	got := legAmountRaw(wethLeg, 2.0, 3000)
	require.Equal(t, toBigFloatString(2.0, 18), got.String())

	usdcLeg := legEndpoint{isWETH: false, decimals: 6}
	got = legAmountRaw(usdcLeg, 2.0, 3000)
	require.Equal(t, toBigFloatString(6000, 6), got.String())
}

func toBigFloatString(human float64, decimals int) string {
	return fmt.Sprintf("%.0f", human*math.Pow10(decimals))
}

func TestQuoteDirectionBothLegsSucceed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalRelayFee":{"total":"1000000000000000"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	addrs := AssetAddresses{
		WETHEthereum: common.HexToAddress("0x1"),
		USDCEthereum: common.HexToAddress("0x2"),
		WETHBase:     common.HexToAddress("0x3"),
		USDCBase:     common.HexToAddress("0x4"),
	}

	q := c.QuoteDirection(context.Background(), types.SellUniBuyAero, 1.0, 3000, addrs)
	require.False(t, math.IsInf(q.USD, 1))
	require.True(t, q.USD > 0)
}

func TestQuoteDirectionBothLegsFailYieldsPositiveInfinity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	addrs := AssetAddresses{
		WETHEthereum: common.HexToAddress("0x1"),
		USDCEthereum: common.HexToAddress("0x2"),
		WETHBase:     common.HexToAddress("0x3"),
		USDCBase:     common.HexToAddress("0x4"),
	}

	q := c.QuoteDirection(context.Background(), types.SellAeroBuyUni, 1.0, 3000, addrs)
	require.True(t, math.IsInf(q.USD, 1))
	for _, e := range q.Legs {
		require.Error(t, e)
	}
}

func TestQuoteDirectionPartialFailureUsesSuccessfulLeg(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls%2 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalRelayFee":{"total":"2000000000000000"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	addrs := AssetAddresses{
		WETHEthereum: common.HexToAddress("0x1"),
		USDCEthereum: common.HexToAddress("0x2"),
		WETHBase:     common.HexToAddress("0x3"),
		USDCBase:     common.HexToAddress("0x4"),
	}

	q := c.QuoteDirection(context.Background(), types.SellUniBuyAero, 1.0, 3000, addrs)
	require.False(t, math.IsInf(q.USD, 1))
}
