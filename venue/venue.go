// Package venue defines the read-side abstraction over spot exchange APIs and
// the registry that constructs concrete clients. Every venue exposes the same
// three operations: a full 24h ticker snapshot, one side of an order book for
// a single symbol, and the deposit/withdraw network availability for a coin.
package venue

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	appconfig "arbscan/config"
	"arbscan/models"
	"arbscan/venue/bingx"
	"arbscan/venue/bitget"
	"arbscan/venue/bybit"
	"arbscan/venue/huobi"
	"arbscan/venue/kucoin"
	"arbscan/venue/mexc"
)

// Venue is a read-only client for one spot exchange. Tickers returns quotes
// keyed by canonical BASE/QUOTE symbol; Depth returns one truncated order-book
// side for a canonical symbol; CoinNetworks resolves transfer networks for a
// base coin. MinCallInterval reports the pacing the venue's coin-info endpoint
// requires between consecutive calls (zero means no pacing).
type Venue interface {
	Name() string
	Tickers(ctx context.Context) (map[string]models.Quote, error)
	Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error)
	CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error)
	MinCallInterval() time.Duration
}

var constructors = map[string]func(appconfig.VenueConfig, *http.Client) Venue{
	"bybit":  func(vc appconfig.VenueConfig, c *http.Client) Venue { return bybit.New(vc, c) },
	"kucoin": func(vc appconfig.VenueConfig, c *http.Client) Venue { return kucoin.New(vc, c) },
	"huobi":  func(vc appconfig.VenueConfig, c *http.Client) Venue { return huobi.New(vc, c) },
	"bingx":  func(vc appconfig.VenueConfig, c *http.Client) Venue { return bingx.New(vc, c) },
	"bitget": func(vc appconfig.VenueConfig, c *http.Client) Venue { return bitget.New(vc, c) },
	"mexc":   func(vc appconfig.VenueConfig, c *http.Client) Venue { return mexc.New(vc, c) },
}

// Names returns the supported venue names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the named venue client using the application configuration.
// The name is matched case-insensitively.
func New(name string, cfg *appconfig.Config) (Venue, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	ctor, ok := constructors[key]
	if !ok {
		return nil, fmt.Errorf("unknown venue %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(cfg.Venues.ByName(key), newHTTPClient(cfg.Reader)), nil
}

func newHTTPClient(rc appconfig.ReaderConfig) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        rc.ConnectionPool.MaxIdleConns,
		MaxIdleConnsPerHost: rc.ConnectionPool.MaxIdleConns,
		MaxConnsPerHost:     rc.ConnectionPool.MaxConnsPerHost,
		IdleConnTimeout:     rc.ConnectionPool.IdleConnTimeout,
	}
	return &http.Client{Transport: transport, Timeout: rc.Timeout}
}
