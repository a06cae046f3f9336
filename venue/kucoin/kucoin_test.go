package kucoin

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
		TickerURL:    ts.URL + "/allTickers",
		OrderbookURL: ts.URL + "/orderbook/level2_20",
		CoinInfoURL:  ts.URL + "/currencies",
	}
	return New(cfg, ts.Client())
}

func TestTickersNullSides(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"200000","data":{"ticker":[
			{"symbol":"BTC-USDT","buy":"50000","sell":"50001","volValue":"300000.77"},
			{"symbol":"DIM-USDT","buy":null,"sell":"0.002","volValue":null}
		]}}`))
	}))
	defer ts.Close()

	quotes, err := newTestClient(ts).Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers failed: %v", err)
	}

	btc := quotes["BTC/USDT"]
	if !btc.HasPrices() {
		t.Error("BTC/USDT should have both sides")
	}
	if btc.QuoteVolume != 300000.8 {
		t.Errorf("volume not rounded to one decimal: %v", btc.QuoteVolume)
	}

	dim := quotes["DIM/USDT"]
	if dim.Bid != nil {
		t.Error("null buy should map to nil bid")
	}
	if dim.Ask == nil || *dim.Ask != 0.002 {
		t.Errorf("unexpected ask: %v", dim.Ask)
	}
}

func TestDepthTruncatesToFiveLevels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTC-USDT" {
			t.Errorf("unexpected symbol param: %s", got)
		}
		w.Write([]byte(`{"code":"200000","data":{
			"asks":[["101","1"],["102","1"],["103","1"],["104","1"],["105","1"],["106","1"],["107","1"]],
			"bids":[["100","1"]]
		}}`))
	}))
	defer ts.Close()

	asks, err := newTestClient(ts).Depth(context.Background(), "BTC/USDT", models.SideAsks)
	if err != nil {
		t.Fatalf("Depth failed: %v", err)
	}
	if len(asks) != 5 {
		t.Fatalf("expected 5 levels after truncation, got %d", len(asks))
	}
	if asks[4].Price != 105 {
		t.Errorf("unexpected last level: %+v", asks[4])
	}
}

func TestCoinNetworks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/currencies/BTC" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"code":"200000","data":{"currency":"BTC","chains":[
			{"chainName":"BTC","chainId":"btc","isDepositEnabled":true,"isWithdrawEnabled":true},
			{"chainName":"KCC","chainId":"kcc","isDepositEnabled":false,"isWithdrawEnabled":true}
		]}}`))
	}))
	defer ts.Close()

	avail, err := newTestClient(ts).CoinNetworks(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CoinNetworks failed: %v", err)
	}
	if len(avail.Deposit) != 1 || avail.Deposit[0] != "btc(BTC)" {
		t.Errorf("unexpected deposit chains: %v", avail.Deposit)
	}
	if len(avail.Withdraw) != 2 {
		t.Errorf("unexpected withdraw chains: %v", avail.Withdraw)
	}
}

func TestCoinNetworksUpstreamFailureDegrades(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	avail, err := newTestClient(ts).CoinNetworks(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("expected degradation, got error: %v", err)
	}
	if len(avail.Deposit) != 0 || len(avail.Withdraw) != 0 {
		t.Errorf("expected empty availability, got %+v", avail)
	}
}
