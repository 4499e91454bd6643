// Package refprice is the reference-price client (C5): a single,
// cache-free pull of ETH/USD from an external spot source, used as the
// bridge-size anchor.
package refprice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pal9000i/arb-bot/internal/errs"
)

// coinbaseResponse mirrors the exchange-rates payload shape, grounded on
// original_source/src/chain/cex_client.rs's CoinbaseResponse/CoinbaseData.
type coinbaseResponse struct {
	Data struct {
		Rates map[string]string `json:"rates"`
	} `json:"data"`
}

// Client pulls ETH/USD from Coinbase's public exchange-rates endpoint,
// using the same fixed-timeout http.Client idiom as the teacher's MEXC REST
// client.
type Client struct {
	apiURL string
	http   *http.Client
}

// New builds a reference-price client bound to a single endpoint.
func New(apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Client{apiURL: apiURL, http: &http.Client{Timeout: timeout}}
}

// ETHUSD performs one uncached pull and returns the ETH/USD spot price.
func (c *Client) ETHUSD(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return 0, errs.Wrap(errs.ReferencePriceUnavailable, "build reference price request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, errs.Wrap(errs.ReferencePriceUnavailable, "fetch reference price", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, errs.Wrap(errs.ReferencePriceUnavailable, "reference price source returned non-200",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed coinbaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, errs.Wrap(errs.ReferencePriceUnavailable, "decode reference price response", err)
	}

	raw, ok := parsed.Data.Rates["USD"]
	if !ok {
		return 0, errs.New(errs.ReferencePriceUnavailable, "reference price response missing USD rate")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ReferencePriceUnavailable, "parse reference price", err)
	}
	return price, nil
}
