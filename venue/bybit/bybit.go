// Package bybit reads spot market data from the ByBit v5 REST API. Ticker and
// order-book endpoints are public; the coin-info endpoint requires an
// HMAC-SHA256 signature over timestamp+key+recv_window+query.
package bybit

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

const venueName = "bybit"

// Client is a read-only ByBit spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a ByBit client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("bybit_reader"),
	}
}

func (c *Client) Name() string { return venueName }

// MinCallInterval reports the pacing required between coin-info calls.
func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol      string `json:"symbol"`
			Bid1Price   string `json:"bid1Price"`
			Ask1Price   string `json:"ask1Price"`
			Turnover24h string `json:"turnover24h"`
		} `json:"list"`
	} `json:"result"`
}

// Tickers fetches the full spot ticker snapshot and returns quotes keyed by
// canonical symbol. Instruments whose symbol cannot be split on a known quote
// currency are skipped.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bybit tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bybit tickers: decode: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers: retCode %d: %s", resp.RetCode, resp.RetMsg)
	}

	tracker := symbols.NewTracker(venueName)
	quotes := make(map[string]models.Quote, len(resp.Result.List))
	for _, t := range resp.Result.List {
		canonical, ok := symbols.FromConcat(t.Symbol)
		if !ok {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Debug("skipping unrecognized instrument")
			continue
		}
		if err := tracker.Record(canonical, t.Symbol); err != nil {
			return nil, err
		}

		bid, err := parsePrice(t.Bid1Price)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "bid": t.Bid1Price}).Warn("dropping instrument with malformed bid")
			continue
		}
		ask, err := parsePrice(t.Ask1Price)
		if err != nil {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol, "ask": t.Ask1Price}).Warn("dropping instrument with malformed ask")
			continue
		}
		volume := 0.0
		if t.Turnover24h != "" {
			volume, err = strconv.ParseFloat(t.Turnover24h, 64)
			if err != nil {
				c.log.WithFields(logger.Fields{"symbol": t.Symbol, "turnover": t.Turnover24h}).Warn("dropping instrument with malformed turnover")
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
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Asks [][2]string `json:"a"`
		Bids [][2]string `json:"b"`
	} `json:"result"`
}

// Depth fetches one side of the spot order book for a canonical symbol.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	native := strings.ReplaceAll(symbol, "/", "")
	body, err := c.get(ctx, c.cfg.OrderbookURL+"&symbol="+native, nil)
	if err != nil {
		return nil, fmt.Errorf("bybit depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bybit depth %s: decode: %w", symbol, err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit depth %s: retCode %d: %s", symbol, resp.RetCode, resp.RetMsg)
	}

	levels := resp.Result.Bids
	if side == models.SideAsks {
		levels = resp.Result.Asks
	}
	return parseLevels(levels)
}

type coinInfoResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		Rows []struct {
			Coin   string `json:"coin"`
			Chains []struct {
				Chain         string `json:"chain"`
				ChainType     string `json:"chainType"`
				ChainDeposit  string `json:"chainDeposit"`
				ChainWithdraw string `json:"chainWithdraw"`
			} `json:"chains"`
		} `json:"rows"`
	} `json:"result"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the signed
// coin-info endpoint. Missing credentials or upstream failures yield an empty
// availability so enrichment degrades instead of aborting the scan.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	if c.cfg.APIKey == "" || c.cfg.SecretKey == "" {
		c.log.Debug("bybit credentials missing; skipping coin info")
		return models.ChainAvailability{}, nil
	}

	query := "coin=" + strings.ToUpper(coin)
	timestamp := sign.Timestamp()
	signature := sign.HMACSHA256Hex(c.cfg.SecretKey, timestamp+c.cfg.APIKey+c.cfg.RecvWindow+query)

	header := http.Header{}
	header.Set("X-BAPI-API-KEY", c.cfg.APIKey)
	header.Set("X-BAPI-TIMESTAMP", timestamp)
	header.Set("X-BAPI-RECV-WINDOW", c.cfg.RecvWindow)
	header.Set("X-BAPI-SIGN", signature)

	body, err := c.get(ctx, c.cfg.CoinInfoURL+"?"+query, header)
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bybit coin info request failed")
		return models.ChainAvailability{}, nil
	}

	var resp coinInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bybit coin info decode failed")
		return models.ChainAvailability{}, nil
	}
	if resp.RetCode != 0 {
		c.log.WithFields(logger.Fields{"coin": coin, "ret_code": resp.RetCode, "ret_msg": resp.RetMsg}).Warn("bybit coin info rejected")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, row := range resp.Result.Rows {
		if !strings.EqualFold(row.Coin, coin) {
			continue
		}
		for _, ch := range row.Chains {
			label := ch.Chain + "(" + ch.ChainType + ")"
			if ch.ChainDeposit == "1" {
				avail.Deposit = append(avail.Deposit, label)
			}
			if ch.ChainWithdraw == "1" {
				avail.Withdraw = append(avail.Withdraw, label)
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

// parsePrice converts a venue price string to a pointer; empty means absent.
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
