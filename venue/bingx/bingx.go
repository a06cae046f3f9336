// Package bingx reads spot market data from the BingX open API. Market
// endpoints want a millisecond timestamp parameter; the wallet coin-info
// endpoint additionally requires an HMAC-SHA256 signature over the query
// string and an X-BX-APIKEY header.
package bingx

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

const venueName = "bingx"

// Client is a read-only BingX spot client.
type Client struct {
	cfg  appconfig.VenueConfig
	http *http.Client
	log  *logger.Entry
}

// New creates a BingX client using the shared pooled HTTP client.
func New(cfg appconfig.VenueConfig, httpClient *http.Client) *Client {
	return &Client{
		cfg:  cfg,
		http: httpClient,
		log:  logger.GetLogger().WithComponent("bingx_reader"),
	}
}

func (c *Client) Name() string { return venueName }

func (c *Client) MinCallInterval() time.Duration { return c.cfg.MinCallInterval }

type tickerResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Symbol      string   `json:"symbol"`
		BidPrice    *float64 `json:"bidPrice"`
		AskPrice    *float64 `json:"askPrice"`
		QuoteVolume float64  `json:"quoteVolume"`
	} `json:"data"`
}

// Tickers fetches the 24hr ticker snapshot. BingX omits bidPrice or askPrice
// for instruments without resting orders; those sides stay nil on the quote.
func (c *Client) Tickers(ctx context.Context) (map[string]models.Quote, error) {
	body, err := c.get(ctx, c.cfg.TickerURL+"?timestamp="+sign.Timestamp(), nil)
	if err != nil {
		return nil, fmt.Errorf("bingx tickers: %w", err)
	}
	logger.IncrementTickerRead(venueName, len(body))

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bingx tickers: decode: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("bingx tickers: code %d: %s", resp.Code, resp.Msg)
	}

	tracker := symbols.NewTracker(venueName)
	quotes := make(map[string]models.Quote, len(resp.Data))
	for _, t := range resp.Data {
		canonical, ok := symbols.FromDashed(t.Symbol)
		if !ok {
			c.log.WithFields(logger.Fields{"symbol": t.Symbol}).Debug("skipping unrecognized instrument")
			continue
		}
		if err := tracker.Record(canonical, t.Symbol); err != nil {
			return nil, err
		}

		quotes[canonical] = models.Quote{
			Symbol:      canonical,
			Bid:         t.BidPrice,
			Ask:         t.AskPrice,
			QuoteVolume: math.Round(t.QuoteVolume*10) / 10,
		}
	}
	return quotes, nil
}

type orderbookResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Bids [][2]string `json:"bids"`
		Asks [][2]string `json:"asks"`
	} `json:"data"`
}

// Depth fetches one side of the spot order book for a canonical symbol.
func (c *Client) Depth(ctx context.Context, symbol string, side models.Side) (models.OrderBookSlice, error) {
	base, quote := symbols.Split(symbol)
	native := base + "-" + quote
	url := c.cfg.OrderbookURL + "&symbol=" + native + "&timestamp=" + sign.Timestamp()
	body, err := c.get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bingx depth %s: %w", symbol, err)
	}
	logger.IncrementDepthRead(venueName, len(body))

	var resp orderbookResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bingx depth %s: decode: %w", symbol, err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("bingx depth %s: code %d: %s", symbol, resp.Code, resp.Msg)
	}

	raw := resp.Data.Bids
	if side == models.SideAsks {
		raw = resp.Data.Asks
	}
	levels := make(models.OrderBookSlice, 0, len(raw))
	for _, lv := range raw {
		price, err := strconv.ParseFloat(lv[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bingx depth %s: malformed price %q: %w", symbol, lv[0], err)
		}
		size, err := strconv.ParseFloat(lv[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bingx depth %s: malformed size %q: %w", symbol, lv[1], err)
		}
		levels = append(levels, models.DepthLevel{Price: price, Size: size})
	}
	return levels, nil
}

type coinInfoResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Coin        string `json:"coin"`
		NetworkList []struct {
			Name           string `json:"name"`
			Network        string `json:"network"`
			DepositEnable  bool   `json:"depositEnable"`
			WithdrawEnable bool   `json:"withdrawEnable"`
		} `json:"networkList"`
	} `json:"data"`
}

// CoinNetworks resolves deposit/withdraw networks for a coin via the signed
// wallet endpoint. Missing credentials or upstream failures yield an empty
// availability so enrichment degrades instead of aborting the scan.
func (c *Client) CoinNetworks(ctx context.Context, coin string) (models.ChainAvailability, error) {
	if c.cfg.APIKey == "" || c.cfg.SecretKey == "" {
		c.log.Debug("bingx credentials missing; skipping coin info")
		return models.ChainAvailability{}, nil
	}

	query := fmt.Sprintf("timestamp=%s&recvWindow=%s&coin=%s", sign.Timestamp(), c.cfg.RecvWindow, strings.ToUpper(coin))
	signature := sign.HMACSHA256Hex(c.cfg.SecretKey, query)

	header := http.Header{}
	header.Set("X-BX-APIKEY", c.cfg.APIKey)

	body, err := c.get(ctx, c.cfg.CoinInfoURL+"?"+query+"&signature="+signature, header)
	logger.IncrementEnrichCall(venueName, err == nil)
	if err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bingx coin info request failed")
		return models.ChainAvailability{}, nil
	}

	var resp coinInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"coin": coin}).Warn("bingx coin info decode failed")
		return models.ChainAvailability{}, nil
	}
	if resp.Code != 0 {
		c.log.WithFields(logger.Fields{"coin": coin, "code": resp.Code, "msg": resp.Msg}).Warn("bingx coin info rejected")
		return models.ChainAvailability{}, nil
	}

	var avail models.ChainAvailability
	for _, entry := range resp.Data {
		if !strings.EqualFold(entry.Coin, coin) {
			continue
		}
		for _, nw := range entry.NetworkList {
			label := nw.Name + "(" + nw.Network + ")"
			if nw.DepositEnable {
				avail.Deposit = append(avail.Deposit, label)
			}
			if nw.WithdrawEnable {
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
