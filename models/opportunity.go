package models

// Opportunity is one row of the final ranked arbitrage table for a scan of
// venue A against venue B. Rows are created by the filter stage, have their
// chain fields appended by the enricher, and are immutable once returned to
// the caller.
type Opportunity struct {
	Symbol    string  `json:"symbol"`
	BidA      float64 `json:"bid_a"`
	AskA      float64 `json:"ask_a"`
	BidB      float64 `json:"bid_b"`
	AskB      float64 `json:"ask_b"`
	SpreadPct float64 `json:"spread_pct"`
	BuyVenue  string  `json:"buy_venue"`
	SellVenue string  `json:"sell_venue"`

	MeanBuyFillPrice  float64 `json:"mean_buy_fill_price"`
	MeanSellFillPrice float64 `json:"mean_sell_fill_price"`
	BuyFillVolume     float64 `json:"buy_fill_volume"`
	SellFillVolume    float64 `json:"sell_fill_volume"`

	DepositChainsBuyVenue   string `json:"deposit_chains_buy_venue"`
	WithdrawChainsSellVenue string `json:"withdraw_chains_sell_venue"`
	DepositChainsSellVenue  string `json:"deposit_chains_sell_venue"`
	WithdrawChainsBuyVenue  string `json:"withdraw_chains_buy_venue"`

	// PriceBasis records how the source quotes were derived: "bid/ask" for
	// true two-sided quotes, "last" when a venue only exposes a last-trade
	// price that was used for both sides. Callers should treat "last" rows
	// as approximations.
	PriceBasis string `json:"price_basis"`
}

// Complete reports whether the row survived depth pricing and enrichment with
// every field populated. Incomplete rows are dropped from the final table.
func (o Opportunity) Complete() bool {
	return o.BuyFillVolume > 0 && o.SellFillVolume > 0 &&
		o.DepositChainsBuyVenue != "" && o.WithdrawChainsSellVenue != "" &&
		o.DepositChainsSellVenue != "" && o.WithdrawChainsBuyVenue != ""
}
