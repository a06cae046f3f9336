// Package huobi reads spot market data from the Huobi (HTX) public REST API.
// Huobi uses lowercase concatenated instrument names such as btcusdt and
// returns numeric JSON rather than price strings.
package huobi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	appconfig "arbscan/config"
	"arbscan/internal/symbols"
	"arbscan/logger"
	"arbscan/models"
)

const venueName = "huobi"

// Client is a read-only Huobi spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a Huobi client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("huobi_reader"),
	}
}

func (c *Client) Name() string { return venueName }

func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Symbol string  `json:"symbol"`
		Bid    float64 `json:"bid"`
		Ask    float64 `json:"ask"`
		Vol    float64 `json:"vol"`
	} `json:"data"`
}

// Tickers fetches the market-wide ticker snapshot. A zero bid or ask is
// treated as an absent side rather than a real price.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL)
	if err != nil {
		return nil, fmt.Errorf("huobi tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("huobi tickers: decode: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("huobi tickers: status %s", resp.Status)
	}

	tracker := symbols.NewTracker(venueName)
	quotes := make(map[string]models.Quote, len(resp.Data))
	for _, t := range resp.Data {
		canonical, ok := symbols.FromConcat(t.Symbol)
		if !ok {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Debug("skipping unrecognized instrument")
			continue
		}
		if err := tracker.Record(canonical, t.Symbol); err != nil {
			return nil, err
		}

		quotes[canonical] = models.Quote{
			Symbol:      canonical,
			Bid:         nonZero(t.Bid),
			Ask:         nonZero(t.Ask),
			QuoteVolume: math.Round(t.Vol*10) / 10,
		}
	}
	return quotes, nil
}

type orderbookResponse struct {
	Status string `json:"status"`
	Tick   struct {
		Bids [][]float64 `json:"bids"`
		Asks [][]float64 `json:"asks"`
	} `json:"tick"`
}

// Depth fetches one side of the merged order book for a canonical symbol.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	native := strings.ToLower(strings.ReplaceAll(symbol, "/", ""))
	body, err := c.get(ctx, c.cfg.OrderbookURL+"&symbol="+native)
	if err != nil {
		return nil, fmt.Errorf("huobi depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("huobi depth %s: decode: %w", symbol, err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("huobi depth %s: status %s", symbol, resp.Status)
	}

	raw := resp.Tick.Bids
	if side == models.SideAsks {
		raw = resp.Tick.Asks
	}
	if len(raw) > 5 {
		raw = raw[:5]
	}
	levels := make(models.OrderBookSlice, 0, len(raw))
	for _, lv := range raw {
		if len(lv) < 2 {
			return nil, fmt.Errorf("huobi depth %s: short level", symbol)
		}
		levels = append(levels, models.DepthLevel{Price: lv[0], Size: lv[1]})
	}
	return levels, nil
}

type currencyResponse struct {
	Code int `json:"code"`
	Data []struct {
		Currency string `json:"currency"`
		Chains   []struct {
			Chain          string `json:"chain"`
			FullName       string `json:"fullName"`
			DepositStatus  string `json:"depositStatus"`
			WithdrawStatus string `json:"withdrawStatus"`
		} `json:"chains"`
	} `json:"data"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the public
// reference currencies endpoint. Failures yield an empty availability.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	body, err := c.get(ctx, c.cfg.CoinInfoURL+"?currency="+strings.ToLower(coin))
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("huobi currency request failed")
		return models.ChainAvailability{}, nil
	}

	var resp currencyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("huobi currency decode failed")
		return models.ChainAvailability{}, nil
	}
	if resp.Code != 200 {
		c.log.WithFields(logger.Fields{"coin": coin, "code": resp.Code}).Warn("huobi currency rejected")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, cur := range resp.Data {
		if !strings.EqualFold(cur.Currency, coin) {
			continue
		}
		for _, ch := range cur.Chains {
			label := ch.Chain + "(" + ch.FullName + ")"
			if ch.DepositStatus == "allowed" {
				avail.Deposit = append(avail.Deposit, label)
			}
			if ch.WithdrawStatus == "allowed" {
				avail.Withdraw = append(avail.Withdraw, label)
			}
		}
	}
	return avail, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
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

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
