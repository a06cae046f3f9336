package engine

import (
	"testing"

	"arbscan/models"
)

func f(v float64) *float64 { return &v }

func quote(bid, ask *float64, vol float64) models.Quote {
	return models.Quote{Bid: bid, Ask: ask, QuoteVolume: vol}
}

func TestIntersectIgnoresOneSidedSymbols(t *testing.T) {
	a := map[string]models.Quote{"BTC/USDT": {}, "ETH/USDT": {}, "ONLYA/USDT": {}}
	b := map[string]models.Quote{"BTC/USDT": {}, "ETH/USDT": {}, "ONLYB/USDT": {}}
	got := intersect(a, b)
	if len(got) != 2 || got[0] != "BTC/USDT" || got[1] != "ETH/USDT" {
		t.Errorf("unexpected intersection: %v", got)
	}
}

func TestFilterTwoSidedSkipsMissingSides(t *testing.T) {
	a := map[string]models.Quote{"X/USDT": quote(nil, f(101), 300000)}
	b := map[string]models.Quote{"X/USDT": quote(f(103), f(104), 300000)}
	ops := filterTwoSided([]string{"X/USDT"}, a, b, "bybit", "kucoin")
	if len(ops) != 0 {
		t.Errorf("symbol with missing bid must be excluded, got %d rows", len(ops))
	}
}

func TestFilterTwoSidedSpreadBoundary(t *testing.T) {
	tests := []struct {
		name  string
		bidB  float64
		admit bool
	}{
		{"exactly 0.6 admitted", 100.6, true},
		{"0.59 rejected", 100.59, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := map[string]models.Quote{"X/USDT": quote(f(99), f(100), 300000)}
			b := map[string]models.Quote{"X/USDT": quote(f(tt.bidB), f(tt.bidB+1), 300000)}
			ops := filterTwoSided([]string{"X/USDT"}, a, b, "bybit", "kucoin")
			if got := len(ops) == 1; got != tt.admit {
				t.Errorf("admitted = %v, want %v", got, tt.admit)
			}
		})
	}
}

func TestFilterTwoSidedVolumeFloorStrict(t *testing.T) {
	b := map[string]models.Quote{"X/USDT": quote(f(103), f(104), 300000)}

	atFloor := map[string]models.Quote{"X/USDT": quote(f(100), f(101), 200000)}
	if ops := filterTwoSided([]string{"X/USDT"}, atFloor, b, "a", "b"); len(ops) != 0 {
		t.Error("volume exactly at the floor must be excluded")
	}

	aboveFloor := map[string]models.Quote{"X/USDT": quote(f(100), f(101), 200000.1)}
	if ops := filterTwoSided([]string{"X/USDT"}, aboveFloor, b, "a", "b"); len(ops) != 1 {
		t.Error("volume above the floor must be admitted")
	}
}

func TestFilterTwoSidedDirectionLabels(t *testing.T) {
	a := map[string]models.Quote{"X/USDT": quote(f(103), f(104), 300000)}
	b := map[string]models.Quote{"X/USDT": quote(f(100), f(101), 300000)}
	ops := filterTwoSided([]string{"X/USDT"}, a, b, "bybit", "kucoin")
	if len(ops) != 1 {
		t.Fatalf("expected one row, got %d", len(ops))
	}
	if ops[0].BuyVenue != "kucoin" || ops[0].SellVenue != "bybit" {
		t.Errorf("unexpected direction: buy=%s sell=%s", ops[0].BuyVenue, ops[0].SellVenue)
	}
	if ops[0].PriceBasis != "bid/ask" {
		t.Errorf("unexpected price basis: %s", ops[0].PriceBasis)
	}
}

func TestFilterLastPrice(t *testing.T) {
	a := map[string]models.Quote{"X/USDT": quote(f(100), f(100), 50000)}
	b := map[string]models.Quote{"X/USDT": quote(f(102), f(102), 50000)}
	ops := filterLastPrice([]string{"X/USDT"}, a, b, "bybit", "mexc")
	if len(ops) != 1 {
		t.Fatalf("expected one row, got %d", len(ops))
	}
	if ops[0].SpreadPct != 2.0 {
		t.Errorf("spread = %v, want 2.0", ops[0].SpreadPct)
	}
	// Cheaper venue is the buy side.
	if ops[0].BuyVenue != "bybit" || ops[0].SellVenue != "mexc" {
		t.Errorf("unexpected direction: buy=%s sell=%s", ops[0].BuyVenue, ops[0].SellVenue)
	}
	if ops[0].PriceBasis != "last" {
		t.Errorf("unexpected price basis: %s", ops[0].PriceBasis)
	}
}

func TestFilterLastPriceBoundsAndFloor(t *testing.T) {
	// 0.9% gap is below the 1% floor for the last-price policy.
	a := map[string]models.Quote{"X/USDT": quote(f(100), f(100), 50000)}
	b := map[string]models.Quote{"X/USDT": quote(f(100.9), f(100.9), 50000)}
	if ops := filterLastPrice([]string{"X/USDT"}, a, b, "a", "b"); len(ops) != 0 {
		t.Error("0.9% gap should be rejected by the last-price policy")
	}

	// Volume exactly at the 30000 floor is excluded.
	low := map[string]models.Quote{"X/USDT": quote(f(100), f(100), 30000)}
	high := map[string]models.Quote{"X/USDT": quote(f(102), f(102), 50000)}
	if ops := filterLastPrice([]string{"X/USDT"}, low, high, "a", "b"); len(ops) != 0 {
		t.Error("volume at the floor should be excluded")
	}
}

func TestRankAndTruncate(t *testing.T) {
	ops := make([]models.Opportunity, 0, 25)
	for i := 0; i < 25; i++ {
		ops = append(ops, models.Opportunity{SpreadPct: float64(i)})
	}
	ranked := rankAndTruncate(ops, 20)
	if len(ranked) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].SpreadPct > ranked[i-1].SpreadPct {
			t.Fatalf("not sorted descending at index %d", i)
		}
	}
	if ranked[0].SpreadPct != 24 {
		t.Errorf("best spread = %v, want 24", ranked[0].SpreadPct)
	}
}
