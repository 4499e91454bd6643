package httpapi

import (
	"time"

	"github.com/pal9000i/arb-bot/internal/orchestrator"
)

// venueDetailsDTO mirrors one venue's block in the response JSON.
type venueDetailsDTO struct {
	SellPriceUsdcPerEth float64 `json:"sell_price_usdc_per_eth"`
	BuyPriceUsdcPerEth  float64 `json:"buy_price_usdc_per_eth"`
	PriceImpactPercent  float64 `json:"price_impact_percent"`
	EstimatedGasCostUSD float64 `json:"estimated_gas_cost_usd"`
}

type arbitrageSummaryDTO struct {
	SpreadUniToAero         float64 `json:"spread_uni_to_aero"`
	SpreadAeroToUni         float64 `json:"spread_aero_to_uni"`
	GrossProfitUniToAeroUSD float64 `json:"gross_profit_uni_to_aero_usd"`
	GrossProfitAeroToUniUSD float64 `json:"gross_profit_aero_to_uni_usd"`
	TotalGasCostUSD         float64 `json:"total_gas_cost_usd"`
	BridgeCostUSD           float64 `json:"bridge_cost_usd"`
	NetProfitBestUSD        float64 `json:"net_profit_best_usd"`
	RecommendedAction       string  `json:"recommended_action"`
}

// responseDTO is the full shape of a successful evaluation response.
type responseDTO struct {
	TimestampUTC         string              `json:"timestamp_utc"`
	TradeSizeEth         float64             `json:"trade_size_eth"`
	ReferenceCEXPriceUSD float64             `json:"reference_cex_price_usd"`
	UniswapV4Details     venueDetailsDTO     `json:"uniswap_v4_details"`
	AerodromeDetails     venueDetailsDTO     `json:"aerodrome_details"`
	ArbitrageSummary     arbitrageSummaryDTO `json:"arbitrage_summary"`
}

type errorDTO struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func toVenueDTO(v orchestrator.VenueDetails) venueDetailsDTO {
	return venueDetailsDTO{
		SellPriceUsdcPerEth: v.SellPriceUsdcPerEth,
		BuyPriceUsdcPerEth:  v.BuyPriceUsdcPerEth,
		PriceImpactPercent:  v.PriceImpactPercent,
		EstimatedGasCostUSD: v.EstimatedGasCostUSD,
	}
}

func toResponseDTO(r *orchestrator.Report) responseDTO {
	return responseDTO{
		TimestampUTC:         time.Now().UTC().Format(time.RFC3339),
		TradeSizeEth:         r.TradeSizeEth,
		ReferenceCEXPriceUSD: r.ReferenceCEXPriceUSD,
		UniswapV4Details:     toVenueDTO(r.UniswapV4),
		AerodromeDetails:     toVenueDTO(r.Aerodrome),
		ArbitrageSummary: arbitrageSummaryDTO{
			SpreadUniToAero:         r.Summary.SpreadUniToAero,
			SpreadAeroToUni:         r.Summary.SpreadAeroToUni,
			GrossProfitUniToAeroUSD: r.Summary.GrossProfitUniToAeroUSD,
			GrossProfitAeroToUniUSD: r.Summary.GrossProfitAeroToUniUSD,
			TotalGasCostUSD:         r.Summary.TotalGasCostUSD,
			BridgeCostUSD:           r.Summary.BridgeCostUSD,
			NetProfitBestUSD:        r.Summary.NetProfitBestUSD,
			RecommendedAction:       r.Summary.RecommendedAction,
		},
	}
}
