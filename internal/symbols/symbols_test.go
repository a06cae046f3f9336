package symbols

import (
	"errors"
	"testing"
)

func TestFromDashed(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"BTC-USDT", "BTC/USDT", true},
		{"eth-usdt", "ETH/USDT", true},
		{"BTCUSDT", "", false},
		{"BTC-", "", false},
		{"-USDT", "", false},
		{"A-B-C", "", false},
	}
	for _, tt := range tests {
		got, ok := FromDashed(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FromDashed(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFromConcat(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"BTCUSDT", "BTC/USDT", true},
		{"btcusdt", "BTC/USDT", true},
		{"ETHBTC", "ETH/BTC", true},
		{"SOLFDUSD", "SOL/FDUSD", true},
		{"USDT", "", false},
		{"BTCXYZ", "", false},
	}
	for _, tt := range tests {
		got, ok := FromConcat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FromConcat(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestQuoteCurrenciesOrderedLongestFirst(t *testing.T) {
	// Suffix matching stops at the first hit, so a quote listed after a
	// longer quote it is a suffix of would never match.
	for i := 1; i < len(quoteCurrencies); i++ {
		if len(quoteCurrencies[i]) > len(quoteCurrencies[i-1]) {
			t.Errorf("quote %q listed after shorter %q", quoteCurrencies[i], quoteCurrencies[i-1])
		}
	}
}

func TestSplit(t *testing.T) {
	base, quote := Split("BTC/USDT")
	if base != "BTC" || quote != "USDT" {
		t.Errorf("Split(BTC/USDT) = %q,%q", base, quote)
	}
	if Base("ETH/BTC") != "ETH" {
		t.Errorf("Base(ETH/BTC) = %q", Base("ETH/BTC"))
	}
}

func TestTrackerCollision(t *testing.T) {
	tr := NewTracker("kucoin")
	if err := tr.Record("BTC/USDT", "BTC-USDT"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	// Re-recording the same native symbol is not a collision.
	if err := tr.Record("BTC/USDT", "BTC-USDT"); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}
	err := tr.Record("BTC/USDT", "BTCUSDT")
	if err == nil {
		t.Fatal("expected collision error")
	}
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected CollisionError, got %T", err)
	}
	if collision.Venue != "kucoin" || collision.Canonical != "BTC/USDT" {
		t.Errorf("unexpected collision: %+v", collision)
	}
}
