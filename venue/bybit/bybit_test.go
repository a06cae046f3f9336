package bybit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	appconfig "arbscan/config"
	"arbscan/models"
)

func newTestClient(ts *httptest.Server) *Client {
	cfg := appconfig.VenueConfig{
		TickerURL:    ts.URL + "/tickers?category=spot",
		OrderbookURL: ts.URL + "/orderbook?category=spot&limit=5",
		CoinInfoURL:  ts.URL + "/coin-info",
		RecvWindow:   "5000",
	}
	return New(cfg, ts.Client())
}

func TestTickers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","bid1Price":"50000.5","ask1Price":"50001.5","turnover24h":"1234567.89"},
			{"symbol":"WEIRD","bid1Price":"1","ask1Price":"2","turnover24h":"3"},
			{"symbol":"ETHUSDT","bid1Price":"","ask1Price":"3000","turnover24h":"500000"}
		]}}`))
	}))
	defer ts.Close()

	quotes, err := newTestClient(ts).Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}

	btc := quotes["BTC/USDT"]
	if btc.Bid == nil || *btc.Bid != 50000.5 {
		t.Errorf("unexpected bid: %v", btc.Bid)
	}
	if btc.QuoteVolume != 1234567.9 {
		t.Errorf("volume not rounded to one decimal: %v", btc.QuoteVolume)
	}

	eth := quotes["ETH/USDT"]
	if eth.Bid != nil {
		t.Error("empty bid string should map to nil")
	}
	if eth.HasPrices() {
		t.Error("quote with missing bid should not report HasPrices")
	}
}

func TestTickersSymbolCollision(t *testing.T) {
	// Both native symbols normalize to the same canonical symbol.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"result":{"list":[
			{"symbol":"ABCUSDT","bid1Price":"1","ask1Price":"2","turnover24h":"3"},
			{"symbol":"abcusdt","bid1Price":"1","ask1Price":"2","turnover24h":"3"}
		]}}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts).Tickers(context.Background()); err == nil {
		t.Fatal("expected collision error")
	}
}

func TestDepth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("unexpected symbol param: %s", got)
		}
		w.Write([]byte(`{"retCode":0,"result":{
			"a":[["101","2"],["102","3"]],
			"b":[["100","1"],["99","4"]]
		}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	asks, err := client.Depth(context.Background(), "BTC/USDT", models.SideAsks)
	if err != nil {
		t.Fatalf("Depth asks failed: %v", err)
	}
	if len(asks) != 2 || asks[0].Price != 101 || asks[0].Size != 2 {
		t.Errorf("unexpected asks: %+v", asks)
	}

	bids, err := client.Depth(context.Background(), "BTC/USDT", models.SideBids)
	if err != nil {
		t.Fatalf("Depth bids failed: %v", err)
	}
	if len(bids) != 2 || bids[0].Price != 100 {
		t.Errorf("unexpected bids: %+v", bids)
	}
}

func TestCoinNetworksSigned(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-BAPI-API-KEY") != "test-key" {
			t.Error("missing api key header")
		}
		if r.Header.Get("X-BAPI-SIGN") == "" {
			t.Error("missing signature header")
		}
		if r.Header.Get("X-BAPI-RECV-WINDOW") != "5000" {
			t.Error("missing recv window header")
		}
		w.Write([]byte(`{"retCode":0,"result":{"rows":[{"coin":"BTC","chains":[
			{"chain":"BTC","chainType":"Bitcoin","chainDeposit":"1","chainWithdraw":"1"},
			{"chain":"BEP20","chainType":"BSC","chainDeposit":"0","chainWithdraw":"1"}
		]}]}}`))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	client.cfg.APIKey = "test-key"
	client.cfg.SecretKey = "test-secret"

	avail, err := client.CoinNetworks(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CoinNetworks failed: %v", err)
	}
	if len(avail.Deposit) != 1 || avail.Deposit[0] != "BTC(Bitcoin)" {
		t.Errorf("unexpected deposit chains: %v", avail.Deposit)
	}
	if len(avail.Withdraw) != 2 {
		t.Errorf("unexpected withdraw chains: %v", avail.Withdraw)
	}
}

func TestCoinNetworksWithoutCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent without credentials")
	}))
	defer ts.Close()

	avail, err := newTestClient(ts).CoinNetworks(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CoinNetworks failed: %v", err)
	}
	if len(avail.Deposit) != 0 || len(avail.Withdraw) != 0 {
		t.Errorf("expected empty availability, got %+v", avail)
	}
}
