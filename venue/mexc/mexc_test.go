package mexc

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
		TickerURL:    ts.URL + "/ticker/24hr",
		OrderbookURL: ts.URL + "/depth?limit=5",
		CoinInfoURL:  ts.URL + "/capital/config/getall",
	}
	return New(cfg, ts.Client())
}

func TestTickersBareArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","bidPrice":"50000","askPrice":"50001","quoteVolume":"250000.55"},
			{"symbol":"ODDPAIR","bidPrice":"1","askPrice":"2","quoteVolume":"3"}
		]`))
	}))
	defer ts.Close()

	quotes, err := newTestClient(ts).Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}
	if len(quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(quotes))
	}
	btc := quotes["BTC/USDT"]
	if btc.QuoteVolume != 250000.6 {
		t.Errorf("volume not rounded to one decimal: %v", btc.QuoteVolume)
	}
}

func TestDepthTopLevelBook(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("unexpected symbol param: %s", got)
		}
		w.Write([]byte(`{"bids":[["100","1"],["99","2"]],"asks":[["101","3"]]}`))
	}))
	defer ts.Close()

	asks, err := newTestClient(ts).Depth(context.Background(), "BTC/USDT", models.SideAsks)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if len(asks) != 1 || asks[0].Price != 101 || asks[0].Size != 3 {
		t.Errorf("unexpected asks: %+v", asks)
	}
}

func TestCoinNetworksFiltersFullList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MEXC-APIKEY") != "test-key" {
			t.Error("missing api key header")
		}
		if r.URL.Query().Get("signature") == "" {
			t.Error("missing signature param")
		}
		// The endpoint always returns every coin; the client filters.
		w.Write([]byte(`[
			{"coin":"ETH","networkList":[{"netWork":"ERC20","depositEnable":true,"withdrawEnable":true}]},
			{"coin":"BTC","networkList":[
				{"netWork":"BTC","depositEnable":true,"withdrawEnable":true},
				{"netWork":"BSC","depositEnable":false,"withdrawEnable":true}
			]}
		]`))
	}))
	defer ts.Close()

	client := newTestClient(ts)
	client.cfg.APIKey = "test-key"
	client.cfg.SecretKey = "test-secret"

	avail, err := client.CoinNetworks(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CoinNetworks failed: %v", err)
	}
	if len(avail.Deposit) != 1 || avail.Deposit[0] != "BTC" {
		t.Errorf("unexpected deposit chains: %v", avail.Deposit)
	}
	if len(avail.Withdraw) != 2 || avail.Withdraw[1] != "BSC" {
		t.Errorf("unexpected withdraw chains: %v", avail.Withdraw)
	}
}
