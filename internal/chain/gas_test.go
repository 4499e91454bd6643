package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newMethodDispatchServer fakes a JSON-RPC node that returns a canned result
// per method name, for exercising GasPriceWei's fallback chain across
// eth_getBlockByNumber, eth_maxPriorityFeePerGas and eth_gasPrice.
func newMethodDispatchServer(byMethod map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		result, ok := byMethod[req.Method]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  json.RawMessage(result),
		})
	}))
}

func blockHeaderJSON(baseFeeHex string) string {
	extra := ""
	if baseFeeHex != "" {
		extra = fmt.Sprintf(`,"baseFeePerGas":"%s"`, baseFeeHex)
	}
	return fmt.Sprintf(`{
		"number":"0x1", "hash":"0x%064x", "parentHash":"0x%064x",
		"nonce":"0x0000000000000000", "mixHash":"0x%064x",
		"sha3Uncles":"0x%064x", "logsBloom":"0x%0512x",
		"transactionsRoot":"0x%064x", "stateRoot":"0x%064x", "receiptsRoot":"0x%064x",
		"miner":"0x0000000000000000000000000000000000000000",
		"difficulty":"0x0", "totalDifficulty":"0x0", "extraData":"0x",
		"size":"0x0", "gasLimit":"0x1c9c380", "gasUsed":"0x0",
		"timestamp":"0x6500000", "transactions":[], "uncles":[]%s
	}`, 0, 0, 0, 0, 0, 0, 0, 0, extra)
}

func TestGasPriceWeiPrefersBaseFeePlusTip(t *testing.T) {
	srv := newMethodDispatchServer(map[string]string{
		"eth_getBlockByNumber":     blockHeaderJSON("0x3b9aca00"), // 1 gwei base fee
		"eth_maxPriorityFeePerGas": `"0x77359400"`,                // 2 gwei tip
		"eth_chainId":              `"0x1"`,
	})
	defer srv.Close()

	c, err := NewClient("test", srv.URL, 4)
	require.NoError(t, err)

	price, err := c.GasPriceWei(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000_000+2_000_000_000), price.Int64())
}

func TestGasPriceWeiFallsBackToSuggestGasPriceWithoutBaseFee(t *testing.T) {
	srv := newMethodDispatchServer(map[string]string{
		"eth_getBlockByNumber": blockHeaderJSON(""), // pre-EIP-1559 header, no baseFeePerGas
		"eth_gasPrice":         `"0x4a817c800"`,      // 20 gwei
		"eth_chainId":          `"0x1"`,
	})
	defer srv.Close()

	c, err := NewClient("test", srv.URL, 4)
	require.NoError(t, err)

	price, err := c.GasPriceWei(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(20_000_000_000), price.Int64())
}

func TestGasPriceWeiFallsBackToFlatTipWhenSuggestTipFails(t *testing.T) {
	srv := newMethodDispatchServer(map[string]string{
		"eth_getBlockByNumber": blockHeaderJSON("0x3b9aca00"), // 1 gwei base fee
		// eth_maxPriorityFeePerGas omitted: server responds with method-not-found
		"eth_chainId": `"0x1"`,
	})
	defer srv.Close()

	c, err := NewClient("test", srv.URL, 4)
	require.NoError(t, err)

	price, err := c.GasPriceWei(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000_000+1_000_000_000), price.Int64())
}
