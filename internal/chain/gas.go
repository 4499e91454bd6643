package chain

import (
	"context"
	"math/big"

	"github.com/pal9000i/arb-bot/internal/errs"
)

// GasPriceWei returns a live per-gas-unit wei price for the chain. It
// follows the teacher's EIP-1559 fallback chain: prefer base fee + suggested
// tip, fall back to SuggestGasPrice, and fall back once more to a 1 gwei tip
// if the tip fetch itself fails.
func (c *Client) GasPriceWei(ctx context.Context) (*big.Int, error) {
	var price *big.Int

	err := c.withCall(ctx, func(callCtx context.Context) error {
		head, err := c.ec.HeaderByNumber(callCtx, nil)
		if err != nil || head.BaseFee == nil {
			gp, gpErr := c.ec.SuggestGasPrice(callCtx)
			if gpErr != nil {
				return gpErr
			}
			price = gp
			return nil
		}

		tip, tipErr := c.ec.SuggestGasTipCap(callCtx)
		if tipErr != nil {
			tip = big.NewInt(1_000_000_000) // 1 gwei fallback
		}
		price = new(big.Int).Add(head.BaseFee, tip)
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.RpcFailure, "fetch "+c.name+" gas price", err)
	}
	return price, nil
}
