package engine

import "arbscan/models"

// MeanFillPrice computes the volume-weighted average execution price for a
// market order walking every supplied level. Price is rounded to five
// decimals, volume to two. A slice with no volume yields an unset result,
// keeping "missing" distinct from zero.
func MeanFillPrice(levels models.OrderBookSlice) models.DepthResult {
	return meanFillPriceN(levels, 0)
}

// meanFillPriceN aggregates at most n levels; n <= 0 means no limit. Venue
// order books are requested with the same limit, so this only matters when a
// venue returns more levels than asked for.
func meanFillPriceN(levels models.OrderBookSlice, n int) models.DepthResult {
	if n > 0 && len(levels) > n {
		levels = levels[:n]
	}
	var notional, volume float64
	for _, lv := range levels {
		notional += lv.Price * lv.Size
		volume += lv.Size
	}
	if volume == 0 {
		return models.DepthResult{}
	}
	return models.DepthResult{
		Price:  round5(notional / volume),
		Volume: round2(volume),
		OK:     true,
	}
}
