package engine

import (
	"testing"

	"arbscan/models"
)

func TestMeanFillPrice(t *testing.T) {
	levels := models.OrderBookSlice{{Price: 100, Size: 1}, {Price: 102, Size: 1}}
	res := MeanFillPrice(levels)
	if !res.OK {
		t.Fatal("expected OK result")
	}
	if res.Price != 101.0 {
		t.Errorf("price = %v, want 101.0", res.Price)
	}
	if res.Volume != 2.0 {
		t.Errorf("volume = %v, want 2.0", res.Volume)
	}
}

func TestMeanFillPriceIdempotent(t *testing.T) {
	levels := models.OrderBookSlice{{Price: 10.12345678, Size: 3}, {Price: 10.2, Size: 0.5}}
	first := MeanFillPrice(levels)
	second := MeanFillPrice(levels)
	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestMeanFillPriceZeroVolume(t *testing.T) {
	res := MeanFillPrice(models.OrderBookSlice{{Price: 10, Size: 0}})
	if res.OK {
		t.Error("zero-volume slice should not produce a price")
	}
	if res.Price != 0 || res.Volume != 0 {
		t.Errorf("expected zero result, got %+v", res)
	}
}

func TestMeanFillPriceEmptySlice(t *testing.T) {
	if res := MeanFillPrice(nil); res.OK {
		t.Error("empty slice should not produce a price")
	}
}

func TestMeanFillPriceRounding(t *testing.T) {
	levels := models.OrderBookSlice{{Price: 1, Size: 1}, {Price: 2, Size: 2}}
	res := MeanFillPrice(levels)
	// 5/3 rounded to five decimals.
	if res.Price != 1.66667 {
		t.Errorf("price = %v, want 1.66667", res.Price)
	}
}
