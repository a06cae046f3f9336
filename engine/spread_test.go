package engine

import "testing"

func TestSpreadSelectsBestDirection(t *testing.T) {
	tests := []struct {
		name                   string
		bidA, askA, bidB, askB float64
		wantPct                float64
		wantDir                Direction
	}{
		{"a to b profitable", 100, 101, 103, 104, 1.98, DirectionAToB},
		{"b to a profitable", 103, 104, 100, 101, 1.98, DirectionBToA},
		{"both negative picks less bad", 100, 110, 100, 105, -4.76, DirectionBToA},
		{"tie favors a to b", 100, 100, 100, 100, 0, DirectionAToB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, dir := Spread(tt.bidA, tt.askA, tt.bidB, tt.askB)
			if pct != tt.wantPct {
				t.Errorf("pct = %v, want %v", pct, tt.wantPct)
			}
			if dir != tt.wantDir {
				t.Errorf("direction = %v, want %v", dir, tt.wantDir)
			}
		})
	}
}

func TestSpreadMagnitudeInvariantToVenueOrder(t *testing.T) {
	pct1, dir1 := Spread(100, 101, 103, 104)
	pct2, dir2 := Spread(103, 104, 100, 101)
	if pct1 != pct2 {
		t.Errorf("best spread magnitude changed with venue order: %v vs %v", pct1, pct2)
	}
	if dir1 != DirectionAToB || dir2 != DirectionBToA {
		t.Errorf("swapping venues should swap direction: %v, %v", dir1, dir2)
	}
}

func TestSpreadZeroAskGuard(t *testing.T) {
	// A zero ask must not divide by zero.
	pct, _ := Spread(0.5, 0, 1, 1)
	if pct <= 0 {
		t.Errorf("expected positive guarded spread, got %v", pct)
	}
}
