package engine

import (
	"math"
	"sort"

	appconfig "arbscan/config"
	"arbscan/models"
)

// Thresholds for the two filter policies. Spread bounds are inclusive; the
// volume floors are strict.
const (
	maxSpreadPct = 35.0

	twoSidedMinSpreadPct = 0.6
	twoSidedVolumeFloor  = 200000.0

	lastPriceMinSpreadPct = 1.0
	lastPriceVolumeFloor  = 30000.0
)

// Price basis labels surfaced on every opportunity row.
const (
	basisBidAsk = "bid/ask"
	basisLast   = "last"
)

// intersect returns the sorted canonical symbols present in both quote maps.
// Symbols present on one side only are ignored, never paired with a default.
func intersect(quotesA, quotesB map[string]models.Quote) []string {
	common := make([]string, 0, len(quotesA))
	for sym := range quotesA {
		if _, ok := quotesB[sym]; ok {
			common = append(common, sym)
		}
	}
	sort.Strings(common)
	return common
}

// filterTwoSided builds opportunity rows from true bid/ask quotes. Symbols
// with a missing side are skipped; admitted rows carry the best direction's
// spread and venue labels.
func filterTwoSided(symbols []string, quotesA, quotesB map[string]models.Quote, venueA, venueB string) []models.Opportunity {
	var ops []models.Opportunity
	for _, sym := range symbols {
		qa, qb := quotesA[sym], quotesB[sym]
		if !qa.HasPrices() || !qb.HasPrices() {
			continue
		}
		if qa.QuoteVolume <= twoSidedVolumeFloor || qb.QuoteVolume <= twoSidedVolumeFloor {
			continue
		}

		pct, dir := Spread(*qa.Bid, *qa.Ask, *qb.Bid, *qb.Ask)
		if pct < twoSidedMinSpreadPct || pct > maxSpreadPct {
			continue
		}

		op := models.Opportunity{
			Symbol:     sym,
			BidA:       *qa.Bid,
			AskA:       *qa.Ask,
			BidB:       *qb.Bid,
			AskB:       *qb.Ask,
			SpreadPct:  pct,
			BuyVenue:   venueA,
			SellVenue:  venueB,
			PriceBasis: basisBidAsk,
		}
		if dir == DirectionBToA {
			op.BuyVenue, op.SellVenue = venueB, venueA
		}
		ops = append(ops, op)
	}
	return ops
}

// filterLastPrice builds opportunity rows from single-price quotes, where the
// venue exposes only a last-trade price carried on both sides. The spread is
// the absolute price gap relative to the cheaper venue; rows are flagged with
// the "last" price basis since effective spread absorption is unknown.
func filterLastPrice(symbols []string, quotesA, quotesB map[string]models.Quote, venueA, venueB string) []models.Opportunity {
	var ops []models.Opportunity
	for _, sym := range symbols {
		qa, qb := quotesA[sym], quotesB[sym]
		if qa.Bid == nil || qb.Bid == nil {
			continue
		}
		if qa.QuoteVolume <= lastPriceVolumeFloor || qb.QuoteVolume <= lastPriceVolumeFloor {
			continue
		}

		priceA, priceB := *qa.Bid, *qb.Bid
		low := math.Min(priceA, priceB)
		if low <= 0 {
			continue
		}
		pct := round2(math.Abs(priceA-priceB) / low * 100)
		if pct < lastPriceMinSpreadPct || pct > maxSpreadPct {
			continue
		}

		op := models.Opportunity{
			Symbol:     sym,
			BidA:       priceA,
			AskA:       priceA,
			BidB:       priceB,
			AskB:       priceB,
			SpreadPct:  pct,
			BuyVenue:   venueA,
			SellVenue:  venueB,
			PriceBasis: basisLast,
		}
		if priceB < priceA {
			op.BuyVenue, op.SellVenue = venueB, venueA
		}
		ops = append(ops, op)
	}
	return ops
}

func buildOpportunities(policy string, quotesA, quotesB map[string]models.Quote, venueA, venueB string) []models.Opportunity {
	symbols := intersect(quotesA, quotesB)
	if policy == appconfig.PolicyLastPrice {
		return filterLastPrice(symbols, quotesA, quotesB, venueA, venueB)
	}
	return filterTwoSided(symbols, quotesA, quotesB, venueA, venueB)
}

// rankAndTruncate sorts opportunities by spread descending and keeps the top
// N. Truncation happens before enrichment to bound rate-limited network
// calls.
func rankAndTruncate(ops []models.Opportunity, topN int) []models.Opportunity {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].SpreadPct > ops[j].SpreadPct
	})
	if len(ops) > topN {
		ops = ops[:topN]
	}
	return ops
}
