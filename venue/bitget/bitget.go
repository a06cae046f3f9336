// Package bitget reads spot market data from the Bitget v2 public REST API.
// All three endpoints are unauthenticated. Network availability comes from the
// public coins endpoint, which only exposes bare chain identifiers.
package bitget

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
	"arbscan/internal/symbols"
	"arbscan/logger"
	"arbscan/models"
)

const venueName = "bitget"

const successCode = "00000"

// Client is a read-only Bitget spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a Bitget client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("bitget_reader"),
	}
}

func (c *Client) Name() string { return venueName }

func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Symbol     string `json:"symbol"`
		BidPr      string `json:"bidPr"`
		AskPr      string `json:"askPr"`
		USDTVolume string `json:"usdtVolume"`
	} `json:"data"`
}

// Tickers fetches the full spot ticker snapshot and returns quotes keyed by
// canonical symbol.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL)
	if err != nil {
		return nil, fmt.Errorf("bitget tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bitget tickers: decode: %w", err)
	}
	if resp.Code != successCode {
		return nil, fmt.Errorf("bitget tickers: code %s: %s", resp.Code, resp.Msg)
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

		bid, err := parsePrice(t.BidPr)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "bid": t.BidPr}).Warn("dropping instrument with malformed bid")
			continue
		}
		ask, err := parsePrice(t.AskPr)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "ask": t.AskPr}).Warn("dropping instrument with malformed ask")
			continue
		}
		volume := 0.0
		if t.USDTVolume != "" {
			volume, err = strconv.ParseFloat(t.USDTVolume, 64)
			if err != nil {
				c.log.WithFields(logger.Fields{"symbol": t.Symbol, "volume": t.USDTVolume}).Warn("dropping instrument with malformed volume")
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
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Asks [][2]string `json:"asks"`
		Bids [][2]string `json:"bids"`
	} `json:"data"`
}

// Depth fetches one side of the merged order book for a canonical symbol.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	native := strings.ReplaceAll(symbol, "/", "")
	body, err := c.get(ctx, c.cfg.OrderbookURL+"&symbol="+native)
	if err != nil {
		return nil, fmt.Errorf("bitget depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bitget depth %s: decode: %w", symbol, err)
	}
	if resp.Code != successCode {
		return nil, fmt.Errorf("bitget depth %s: code %s: %s", symbol, resp.Code, resp.Msg)
	}

	raw := resp.Data.Bids
	if side == models.SideAsks {
		raw = resp.Data.Asks
	}
	levels := make(models.OrderBookSlice, 0, len(raw))
	for _, lv := range raw {
		price, err := strconv.ParseFloat(lv[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bitget depth %s: malformed price %q: %w", symbol, lv[0], err)
		}
		size, err := strconv.ParseFloat(lv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bitget depth %s: malformed size %q: %w", symbol, lv[1], err)
		}
		levels = append(levels, models.DepthLevel{Price: price, Size: size})
	}
	return levels, nil
}

type coinsResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Coin   string `json:"coin"`
		Chains []struct {
			Chain        string `json:"chain"`
			Rechargeable string `json:"rechargeable"`
			Withdrawable string `json:"withdrawable"`
		} `json:"chains"`
	} `json:"data"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the public
// coins endpoint. Failures yield an empty availability.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	body, err := c.get(ctx, c.cfg.CoinInfoURL+"?coin="+strings.ToUpper(coin))
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bitget coin info request failed")
		return models.ChainAvailability{}, nil
	}

	var resp coinsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bitget coin info decode failed")
		return models.ChainAvailability{}, nil
	}
	if resp.Code != successCode {
		c.log.WithFields(logger.Fields{"coin": coin, "code": resp.Code, "msg": resp.Msg}).Warn("bitget coin info rejected")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, entry := range resp.Data {
		if !strings.EqualFold(entry.Coin, coin) {
			continue
		}
		for _, ch := range entry.Chains {
			if ch.Rechargeable == "true" {
				avail.Deposit = append(avail.Deposit, ch.Chain)
			}
			if ch.Withdrawable == "true" {
				avail.Withdraw = append(avail.Withdraw, ch.Chain)
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
