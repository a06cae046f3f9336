// Package mexc reads spot market data from the MEXC v3 REST API. The ticker
// and depth endpoints are public; the capital config endpoint requires an
// HMAC-SHA256 signature over the query string and an X-MEXC-APIKEY header,
// and always returns the full coin list.
package mexc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	appconfig "arbscan/config"
	"arbscan/internal/sign"
	"arbscan/internal/symbols"
	"arbscan/logger"
	"arbscan/models"
)

const venueName = "mexc"

// Client is a read-only MEXC spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a MEXC client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("mexc_reader"),
	}
}

func (c *Client) Name() string { return venueName }

func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerEntry struct {
	Symbol      string `json:"symbol"`
	BidPrice    string `json:"bidPrice"`
	AskPrice    string `json:"askPrice"`
	QuoteVolume string `json:"quoteVolume"`
}

// Tickers fetches the 24hr ticker snapshot. MEXC returns a bare JSON array
// rather than a wrapped envelope.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mexc tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var entries []tickerEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("mexc tickers: decode: %w", err)
	}

	tracker := symbols.NewTracker(venueName)
	quotes := make(map[string]models.Quote, len(entries))
	for _, t := range entries {
		canonical, ok := symbols.FromConcat(t.Symbol)
		if !ok {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Debug("skipping unrecognized instrument")
			continue
		}
		if err := tracker.Record(canonical, t.Symbol); err != nil {
			return nil, err
		}

		bid, err := parsePrice(t.BidPrice)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "bid": t.BidPrice}).Warn("dropping instrument with malformed bid")
			continue
		}
		ask, err := parsePrice(t.AskPrice)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "ask": t.AskPrice}).Warn("dropping instrument with malformed ask")
			continue
		}
		volume := 0.0
		if t.QuoteVolume != "" {
			volume, err = strconv.ParseFloat(t.QuoteVolume, 64)
			if err != nil {
				c.log.WithFields(logger.Fields{"symbol": t.Symbol, "volume": t.QuoteVolume}).Warn("dropping instrument with malformed volume")
				continue
			}
		}

		quotes[canonical] = models.Quote{
			Symbol:      canonical,
			Bid:         bid,
			Ask:         ask,
			QuoteVolume: math.Round(volume*10) / 10,
		}
	}
	return quotes, nil
}

type orderbookResponse struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// Depth fetches one side of the spot order book for a canonical symbol.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	native := strings.ReplaceAll(symbol, "/", "")
	body, err := c.get(ctx, c.cfg.OrderbookURL+"&symbol="+native, nil)
	if err != nil {
		return nil, fmt.Errorf("mexc depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("mexc depth %s: decode: %w", symbol, err)
	}

	raw := resp.Bids
	if side == models.SideAsks {
		raw = resp.Asks
	}
	levels := make(models.OrderBookSlice, 0, len(raw))
	for _, lv := range raw {
		price, err := strconv.ParseFloat(lv[0], 64)
		if err != nil {
			return nil, fmt.Errorf("mexc depth %s: malformed price %q: %w", symbol, lv[0], err)
		}
		size, err := strconv.ParseFloat(lv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("mexc depth %s: malformed size %q: %w", symbol, lv[1], err)
		}
		levels = append(levels, models.DepthLevel{Price: price, Size: size})
	}
	return levels, nil
}

type coinEntry struct {
	Coin        string `json:"coin"`
	NetworkList []struct {
		Network        string `json:"netWork"`
		DepositEnable  bool   `json:"depositEnable"`
		WithdrawEnable bool   `json:"withdrawEnable"`
	} `json:"networkList"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the signed
// capital config endpoint, filtering the full coin list client-side. Missing
// credentials or upstream failures yield an empty availability.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	if c.cfg.APIKey == "" || c.cfg.SecretKey == "" {
		c.log.Debug("mexc credentials missing; skipping coin info")
		return models.ChainAvailability{}, nil
	}

	query := "timestamp=" + sign.Timestamp()
	signature := sign.HMACSHA256Hex(c.cfg.SecretKey, query)

	header := http.Header{}
	header.Set("X-MEXC-APIKEY", c.cfg.APIKey)

	body, err := c.get(ctx, c.cfg.CoinInfoURL+"?"+query+"&signature="+signature, header)
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("mexc coin info request failed")
		return models.ChainAvailability{}, nil
	}

	var entries []coinEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("mexc coin info decode failed")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, entry := range entries {
		if !strings.EqualFold(entry.Coin, coin) {
			continue
		}
		for _, nw := range entry.NetworkList {
			if nw.DepositEnable {
				avail.Deposit = append(avail.Deposit, nw.Network)
			}
			if nw.WithdrawEnable {
				avail.Withdraw = append(avail.Withdraw, nw.Network)
			}
		}
	}
	return avail, nil
}

func (c *Client) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func parsePrice(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
