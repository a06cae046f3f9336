package models

// Side identifies one side of an order book.
type Side string

const (
	SideBids Side = "bids"
	SideAsks Side = "asks"
)

// Quote represents one venue's normalized 24h ticker entry for a canonical
// BASE/QUOTE symbol. Bid or Ask may be nil when the venue returned null for
// that side; such symbols are excluded from spread computation rather than
// defaulted to zero.
type Quote struct {
	Symbol      string
	Bid         *float64
	Ask         *float64
	QuoteVolume float64
}

// HasPrices reports whether both sides of the quote are present.
func (q Quote) HasPrices() bool {
	return q.Bid != nil && q.Ask != nil
}

// DepthLevel is a single price level on one side of an order book.
type DepthLevel struct {
	Price float64
	Size  float64
}

// OrderBookSlice is one side of an order book truncated to the top levels.
// Ordering is venue-native; consumers aggregate across all levels, so best
// price first is not required.
type OrderBookSlice []DepthLevel

// DepthResult is the outcome of pricing a market order against an
// OrderBookSlice. OK is false when the slice carried no volume, which keeps
// "missing" distinct from a legitimate zero.
type DepthResult struct {
	Price  float64
	Volume float64
	OK     bool
}

// ChainAvailability lists the deposit-enabled and withdraw-enabled transfer
// networks for one coin on one venue. Both slices empty means the coin could
// not be resolved; that is an absence, never an error.
type ChainAvailability struct {
	Deposit  []string
	Withdraw []string
}
