package chain

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// newFixedEthCallServer fakes a JSON-RPC node that answers every eth_call
// with the same pre-encoded result, which is all the chain package's decoding
// logic needs to be exercised end to end without a real node.
func newFixedEthCallServer(result []byte) *httptest.Server {
	hexResult := "0x" + hex.EncodeToString(result)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  hexResult,
		})
	}))
}
