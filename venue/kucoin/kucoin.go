// Package kucoin reads spot market data from the KuCoin public REST API.
// All three endpoints are unauthenticated; KuCoin uses dash-separated
// instrument names such as BTC-USDT.
package kucoin

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

const venueName = "kucoin"

const successCode = "200000"

// Client is a read-only KuCoin spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a KuCoin client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("kucoin_reader"),
	}
}

func (c *Client) Name() string { return venueName }

func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerResponse struct {
	Code string `json:"code"`
	Data struct {
		Ticker []struct {
			Symbol   string  `json:"symbol"`
			Buy      *string `json:"buy"`
			Sell     *string `json:"sell"`
			VolValue *string `json:"volValue"`
		} `json:"ticker"`
	} `json:"data"`
}

// Tickers fetches the allTickers snapshot. KuCoin returns null for the buy or
// sell side of thinly traded instruments; those sides stay nil on the quote.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL)
	if err != nil {
		return nil, fmt.Errorf("kucoin tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kucoin tickers: decode: %w", err)
	}
	if resp.Code != successCode {
		return nil, fmt.Errorf("kucoin tickers: code %s", resp.Code)
	}

	tracker := symbols.NewTracker(venueName)
	quotes := make(map[string]models.Quote, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		canonical, ok := symbols.FromDashed(t.Symbol)
		if !ok {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Debug("skipping unrecognized instrument")
			continue
		}
		if err := tracker.Record(canonical, t.Symbol); err != nil {
			return nil, err
		}

		bid, err := parseOptional(t.Buy)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Warn("dropping instrument with malformed buy price")
			continue
		}
		ask, err := parseOptional(t.Sell)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Warn("dropping instrument with malformed sell price")
			continue
		}
		volume := 0.0
		if t.VolValue != nil && *t.VolValue != "" {
			volume, err = strconv.ParseFloat(*t.VolValue, 64)
			if err != nil {
				c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Warn("dropping instrument with malformed volume")
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
	Data struct {
		Asks [][2]string `json:"asks"`
		Bids [][2]string `json:"bids"`
	} `json:"data"`
}

// Depth fetches one side of the level2 order book, truncated to the top five
// levels since the public endpoint returns twenty.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	base, quote := symbols.Split(symbol)
	native := base + "-" + quote
	body, err := c.get(ctx, c.cfg.OrderbookURL+"?symbol="+native)
	if err != nil {
		return nil, fmt.Errorf("kucoin depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kucoin depth %s: decode: %w", symbol, err)
	}
	if resp.Code != successCode {
		return nil, fmt.Errorf("kucoin depth %s: code %s", symbol, resp.Code)
	}

	levels := resp.Data.Bids
	if side == models.SideAsks {
		levels = resp.Data.Asks
	}
	if len(levels) > 5 {
		levels = levels[:5]
	}
	return parseLevels(levels)
}

type currencyResponse struct {
	Code string `json:"code"`
	Data struct {
		Currency string `json:"currency"`
		Chains   []struct {
			ChainName         string `json:"chainName"`
			ChainID           string `json:"chainId"`
			IsDepositEnabled  bool   `json:"isDepositEnabled"`
			IsWithdrawEnabled bool   `json:"isWithdrawEnabled"`
		} `json:"chains"`
	} `json:"data"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the public
// currency detail endpoint. Failures yield an empty availability.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	body, err := c.get(ctx, c.cfg.CoinInfoURL+"/"+strings.ToUpper(coin))
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("kucoin currency request failed")
		return models.ChainAvailability{}, nil
	}

	var resp currencyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("kucoin currency decode failed")
		return models.ChainAvailability{}, nil
	}
	if resp.Code != successCode {
		c.log.WithFields(logger.Fields{"coin": coin, "code": resp.Code}).Warn("kucoin currency rejected")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, ch := range resp.Data.Chains {
		label := ch.ChainID + "(" + ch.ChainName + ")"
		if ch.IsDepositEnabled {
			avail.Deposit = append(avail.Deposit, label)
		}
		if ch.IsWithdrawEnabled {
			avail.Withdraw = append(avail.Withdraw, label)
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

func parseOptional(s *string) (*float64, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseLevels(raw [][2]string) (models.OrderBookSlice, error) {
	levels := make(models.OrderBookSlice, 0, len(raw))
	for _, lv := range raw {
		price, err := strconv.ParseFloat(lv[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed level price %q: %w", lv[0], err)
		}
		size, err := strconv.ParseFloat(lv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed level size %q: %w", lv[1], err)
		}
		levels = append(levels, models.DepthLevel{Price: price, Size: size})
	}
	return levels, nil
}
