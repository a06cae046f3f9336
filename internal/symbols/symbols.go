package symbols

import (
	"fmt"
	"strings"
)

// quoteCurrencies are the quote assets recognized when splitting concatenated
// venue symbols such as BTCUSDT, ordered longest first so a longer quote is
// matched before any quote that is a suffix of it.
var quoteCurrencies = []string{
	"FDUSD", "USDT", "USDC", "TUSD", "DAI", "BTC", "ETH", "EUR", "TRY", "BRL",
}

// CollisionError reports two distinct venue-native symbols normalizing to the
// same canonical symbol within one venue's payload. This corrupts symbol
// intersection logic and is surfaced as a structural error instead of being
// merged silently.
type CollisionError struct {
	Venue     string
	Canonical string
	First     string
	Second    string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("symbol collision on %s: %q and %q both normalize to %q",
		e.Venue, e.First, e.Second, e.Canonical)
}

// FromDashed converts dash-separated venue symbols to canonical form.
// Examples: BTC-USDT -> BTC/USDT. Returns false when the symbol does not have
// exactly one dash or has an empty part.
func FromDashed(native string) (string, bool) {
	parts := strings.Split(native, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return strings.ToUpper(parts[0]) + "/" + strings.ToUpper(parts[1]), true
}

// FromConcat converts concatenated venue symbols to canonical form by
// matching a known quote currency suffix. Examples: BTCUSDT -> BTC/USDT,
// ethbtc -> ETH/BTC. Returns false when no known quote suffix matches or the
// base part would be empty.
func FromConcat(native string) (string, bool) {
	sym := strings.ToUpper(native)
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(sym, quote) && len(sym) > len(quote) {
			return sym[:len(sym)-len(quote)] + "/" + quote, true
		}
	}
	return "", false
}

// Split returns the base and quote parts of a canonical BASE/QUOTE symbol.
func Split(symbol string) (base, quote string) {
	if i := strings.IndexByte(symbol, '/'); i >= 0 {
		return symbol[:i], symbol[i+1:]
	}
	return symbol, ""
}

// Base returns the base currency of a canonical symbol, e.g. BTC for BTC/USDT.
func Base(symbol string) string {
	base, _ := Split(symbol)
	return base
}

// Tracker detects canonical-symbol collisions while a venue payload is being
// normalized. Record returns a CollisionError the first time two distinct
// native symbols map to the same canonical symbol.
type Tracker struct {
	venue string
	seen  map[string]string
}

// NewTracker creates a Tracker for the named venue.
func NewTracker(venue string) *Tracker {
	return &Tracker{venue: venue, seen: make(map[string]string)}
}

// Record notes that native normalized to canonical.
func (t *Tracker) Record(canonical, native string) error {
	if prev, ok := t.seen[canonical]; ok && prev != native {
		return &CollisionError{Venue: t.venue, Canonical: canonical, First: prev, Second: native}
	}
	t.seen[canonical] = native
	return nil
}
