package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Arbscan ArbscanConfig `yaml:"arbscan"`
	Engine  EngineConfig  `yaml:"engine"`
	Reader  ReaderConfig  `yaml:"reader"`
	Venues  VenuesConfig  `yaml:"venues"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type ArbscanConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type EngineConfig struct {
	// Policy selects the filter policy: "two_sided" compares true bid/ask
	// quotes, "last_price" compares single traded prices. Empty means
	// two_sided unless a venue is marked last_price_only.
	Policy          string        `yaml:"policy"`
	TopN            int           `yaml:"top_n"`
	DepthLevels     int           `yaml:"depth_levels"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

type ReaderConfig struct {
	Timeout        time.Duration        `yaml:"timeout"`
	ConnectionPool ConnectionPoolConfig `yaml:"connection_pool"`
}

type ConnectionPoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

type VenuesConfig struct {
	Bybit  VenueConfig `yaml:"bybit"`
	Kucoin VenueConfig `yaml:"kucoin"`
	Huobi  VenueConfig `yaml:"huobi"`
	Bingx  VenueConfig `yaml:"bingx"`
	Bitget VenueConfig `yaml:"bitget"`
	Mexc   VenueConfig `yaml:"mexc"`
}

// ByName returns the configuration record for a venue by its lowercase name.
// Unknown names return a zero record.
func (v VenuesConfig) ByName(name string) VenueConfig {
	switch strings.ToLower(name) {
	case "bybit":
		return v.Bybit
	case "kucoin":
		return v.Kucoin
	case "huobi":
		return v.Huobi
	case "bingx":
		return v.Bingx
	case "bitget":
		return v.Bitget
	case "mexc":
		return v.Mexc
	default:
		return VenueConfig{}
	}
}

// VenueConfig is the per-venue configuration record consulted by the engine
// and the enricher scheduler: endpoints, connection behaviour, whether the
// coin-info endpoint demands request signing, and the minimum interval to
// keep between coin-info calls.
type VenueConfig struct {
	TickerURL       string        `yaml:"ticker_url"`
	OrderbookURL    string        `yaml:"orderbook_url"`
	CoinInfoURL     string        `yaml:"coin_info_url"`
	RequiresSigning bool          `yaml:"requires_signing"`
	MinCallInterval time.Duration `yaml:"min_call_interval"`
	RecvWindow      string        `yaml:"recv_window"`
	LastPriceOnly   bool          `yaml:"last_price_only"`
	APIKey          string        `yaml:"api_key"`
	SecretKey       string        `yaml:"secret_key"`
}

type StorageConfig struct {
	Reports ReportsConfig `yaml:"reports"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ReportsConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Dir         string   `yaml:"dir"`
	Compression string   `yaml:"compression"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	DashboardName string `yaml:"dashboard_name"`
}

// Filter policies understood by the engine.
const (
	PolicyTwoSided  = "two_sided"
	PolicyLastPrice = "last_price"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)
	applyEnvOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Engine.Policy == "" {
		cfg.Engine.Policy = PolicyTwoSided
	}
	if cfg.Engine.TopN <= 0 {
		cfg.Engine.TopN = 20
	}
	if cfg.Engine.DepthLevels <= 0 {
		cfg.Engine.DepthLevels = 5
	}
	if cfg.Engine.RefreshInterval <= 0 {
		cfg.Engine.RefreshInterval = 10 * time.Second
	}
	if cfg.Reader.Timeout <= 0 {
		cfg.Reader.Timeout = 10 * time.Second
	}
	if cfg.Reader.ConnectionPool.MaxIdleConns <= 0 {
		cfg.Reader.ConnectionPool.MaxIdleConns = 10
	}
	if cfg.Reader.ConnectionPool.MaxConnsPerHost <= 0 {
		cfg.Reader.ConnectionPool.MaxConnsPerHost = 10
	}
	if cfg.Reader.ConnectionPool.IdleConnTimeout <= 0 {
		cfg.Reader.ConnectionPool.IdleConnTimeout = 90 * time.Second
	}

	applyVenueDefaults(&cfg.Venues.Bybit, VenueConfig{
		TickerURL:       "https://api.bybit.com/v5/market/tickers?category=spot",
		OrderbookURL:    "https://api.bybit.com/v5/market/orderbook?category=spot&limit=5",
		CoinInfoURL:     "https://api.bybit.com/v5/asset/coin/query-info",
		RequiresSigning: true,
		RecvWindow:      "5000",
	})
	applyVenueDefaults(&cfg.Venues.Kucoin, VenueConfig{
		TickerURL:    "https://api.kucoin.com/api/v1/market/allTickers",
		OrderbookURL: "https://api.kucoin.com/api/v1/market/orderbook/level2_20",
		CoinInfoURL:  "https://api.kucoin.com/api/v2/currencies",
	})
	applyVenueDefaults(&cfg.Venues.Huobi, VenueConfig{
		TickerURL:    "https://api.huobi.pro/market/tickers",
		OrderbookURL: "https://api.huobi.pro/market/depth?depth=5&type=step1",
		CoinInfoURL:  "https://api.huobi.pro/v2/reference/currencies",
	})
	applyVenueDefaults(&cfg.Venues.Bingx, VenueConfig{
		TickerURL:       "https://open-api.bingx.com/openApi/spot/v1/ticker/24hr",
		OrderbookURL:    "https://open-api.bingx.com/openApi/spot/v1/market/depth?limit=5",
		CoinInfoURL:     "https://open-api.bingx.com/openApi/wallets/v1/capital/config/getall",
		RequiresSigning: true,
		MinCallInterval: time.Second,
		RecvWindow:      "5000",
	})
	applyVenueDefaults(&cfg.Venues.Bitget, VenueConfig{
		TickerURL:    "https://api.bitget.com/api/v2/spot/market/tickers",
		OrderbookURL: "https://api.bitget.com/api/v2/spot/market/orderbook?type=step1&limit=5",
		CoinInfoURL:  "https://api.bitget.com/api/v2/spot/public/coins",
	})
	applyVenueDefaults(&cfg.Venues.Mexc, VenueConfig{
		TickerURL:       "https://api.mexc.com/api/v3/ticker/24hr",
		OrderbookURL:    "https://api.mexc.com/api/v3/depth?limit=5",
		CoinInfoURL:     "https://api.mexc.com/api/v3/capital/config/getall",
		RequiresSigning: true,
	})
}

func applyVenueDefaults(vc *VenueConfig, def VenueConfig) {
	if vc.TickerURL == "" {
		vc.TickerURL = def.TickerURL
	}
	if vc.OrderbookURL == "" {
		vc.OrderbookURL = def.OrderbookURL
	}
	if vc.CoinInfoURL == "" {
		vc.CoinInfoURL = def.CoinInfoURL
	}
	if !vc.RequiresSigning {
		vc.RequiresSigning = def.RequiresSigning
	}
	if vc.MinCallInterval <= 0 {
		vc.MinCallInterval = def.MinCallInterval
	}
	if vc.RecvWindow == "" {
		vc.RecvWindow = def.RecvWindow
	}
}

func applyEnvOverrides(cfg *Config) {
	venueEnv := func(vc *VenueConfig, keyVar, secretVar string) {
		if v := os.Getenv(keyVar); v != "" {
			vc.APIKey = strings.TrimSpace(v)
		}
		if v := os.Getenv(secretVar); v != "" {
			vc.SecretKey = strings.TrimSpace(v)
		}
	}
	venueEnv(&cfg.Venues.Bybit, "BYBIT_API_KEY", "BYBIT_SECRET_KEY")
	venueEnv(&cfg.Venues.Bingx, "BINGX_API_KEY", "BINGX_SECRET_KEY")
	venueEnv(&cfg.Venues.Mexc, "MEXC_API_KEY", "MEXC_SECRET_KEY")

	if cfg.Storage.Reports.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			cfg.Storage.Reports.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			cfg.Storage.Reports.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			cfg.Storage.Reports.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			cfg.Storage.Reports.S3.Bucket = strings.TrimSpace(v)
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Arbscan.Name == "" {
		return fmt.Errorf("arbscan.name is required")
	}
	if cfg.Arbscan.Version == "" {
		return fmt.Errorf("arbscan.version is required")
	}

	switch cfg.Engine.Policy {
	case PolicyTwoSided, PolicyLastPrice:
	default:
		return fmt.Errorf("engine.policy '%s' is invalid", cfg.Engine.Policy)
	}

	if cfg.Engine.TopN <= 0 {
		return fmt.Errorf("engine.top_n must be greater than 0")
	}
	if cfg.Reader.Timeout <= 0 {
		return fmt.Errorf("reader.timeout must be greater than 0")
	}

	venues := map[string]*VenueConfig{
		"bybit":  &cfg.Venues.Bybit,
		"kucoin": &cfg.Venues.Kucoin,
		"huobi":  &cfg.Venues.Huobi,
		"bingx":  &cfg.Venues.Bingx,
		"bitget": &cfg.Venues.Bitget,
		"mexc":   &cfg.Venues.Mexc,
	}
	for name, vc := range venues {
		if vc.TickerURL == "" {
			return fmt.Errorf("venues.%s.ticker_url is required", name)
		}
		if vc.OrderbookURL == "" {
			return fmt.Errorf("venues.%s.orderbook_url is required", name)
		}
		if vc.CoinInfoURL == "" {
			return fmt.Errorf("venues.%s.coin_info_url is required", name)
		}
	}

	// In development a signing venue without credentials degrades to empty
	// chain info; production-like deployments fail fast instead.
	if env := AppEnvironment(); IsProductionLike(env) {
		for _, name := range []string{"bybit", "kucoin", "huobi", "bingx", "bitget", "mexc"} {
			vc := venues[name]
			if vc.RequiresSigning && (vc.APIKey == "" || vc.SecretKey == "") {
				return fmt.Errorf("venues.%s.api_key and secret_key are required in the %s environment", name, env)
			}
		}
	}

	if cfg.Storage.Reports.Enabled && cfg.Storage.Reports.Dir == "" && !cfg.Storage.Reports.S3.Enabled {
		return fmt.Errorf("storage.reports requires a dir or an enabled s3 target")
	}
	if cfg.Storage.Reports.S3.Enabled {
		if cfg.Storage.Reports.S3.Bucket == "" {
			return fmt.Errorf("storage.reports.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.Reports.S3.Region == "" {
			return fmt.Errorf("storage.reports.s3.region is required when S3 is enabled")
		}
	}

	if cfg.Storage.Kafka.Enabled {
		if len(cfg.Storage.Kafka.Brokers) == 0 {
			return fmt.Errorf("storage.kafka.brokers is required when kafka is enabled")
		}
		if cfg.Storage.Kafka.Topic == "" {
			return fmt.Errorf("storage.kafka.topic is required when kafka is enabled")
		}
	}

	return nil
}
