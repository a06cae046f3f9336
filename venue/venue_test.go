package venue

import (
	"testing"
	"time"

	appconfig "arbscan/config"
)

func minimalConfig() *appconfig.Config {
	cfg := &appconfig.Config{
		Reader: appconfig.ReaderConfig{
			Timeout: time.Second,
			ConnectionPool: appconfig.ConnectionPoolConfig{
				MaxIdleConns:    1,
				MaxConnsPerHost: 1,
				IdleConnTimeout: time.Second,
			},
		},
	}
	return cfg
}

func TestNewKnownVenues(t *testing.T) {
	cfg := minimalConfig()
	for _, name := range Names() {
		v, err := New(name, cfg)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if v.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, v.Name())
		}
	}
}

func TestNewIsCaseInsensitive(t *testing.T) {
	v, err := New("ByBit", minimalConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.Name() != "bybit" {
		t.Errorf("unexpected name: %s", v.Name())
	}
}

func TestNewUnknownVenue(t *testing.T) {
	if _, err := New("binance", minimalConfig()); err == nil {
		t.Fatal("expected error for unsupported venue")
	}
}

func TestMinCallIntervalFromConfig(t *testing.T) {
	cfg := minimalConfig()
	cfg.Venues.Bingx.MinCallInterval = time.Second
	v, err := New("bingx", cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.MinCallInterval() != time.Second {
		t.Errorf("unexpected interval: %v", v.MinCallInterval())
	}
}
