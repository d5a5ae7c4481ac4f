package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"weeklypay_go/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultChartURL     = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultQuoteURL     = "https://query1.finance.yahoo.com/v7/finance/quote"
	DefaultFXSymbol     = "USDKRW=X"
	DefaultExchangeTZ   = "America/New_York"
	DefaultViewerTZ     = "Asia/Seoul"
	DefaultQuoteTTLSec  = 15
	DefaultHTTPTimeout  = 10
	DefaultServerAddr   = ":8080"
	DefaultSnowballWeek = 156

	// PriceSourceChart fetches each symbol from the v8 chart endpoint.
	PriceSourceChart = "chart"
	// PriceSourceQuote batches all symbols into one v7 quote request.
	PriceSourceQuote = "quote"
)

var (
	// DefaultFallbackFX is used whenever the live USD/KRW rate is unavailable.
	DefaultFallbackFX = decimal.NewFromInt(1440)
	// DefaultTaxRate is the Korean dividend withholding rate (15.4%).
	DefaultTaxRate = decimal.RequireFromString("0.154")
	// DefaultHolidays are NYSE full-day closures the dashboard knows about.
	DefaultHolidays = []string{"2025-12-25", "2026-01-01", "2026-01-19", "2026-02-16"}
)

// Config holds every setting of the application.
// Values loaded from the file may be overridden by WEEKLYPAY_* environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		Mode string `yaml:"mode"` // gin mode: debug, release, test
	} `yaml:"server"`

	Market struct {
		ExchangeTimezone string   `yaml:"exchange_timezone"`
		ViewerTimezone   string   `yaml:"viewer_timezone"`
		Holidays         []string `yaml:"holidays"`
	} `yaml:"market"`

	Quotes struct {
		TTLSec         int             `yaml:"ttl_sec"`
		HTTPTimeoutSec int             `yaml:"http_timeout_sec"`
		FXSymbol       string          `yaml:"fx_symbol"`
		FallbackFX     decimal.Decimal `yaml:"fallback_fx"`
		ChartURL       string          `yaml:"chart_url"`
		QuoteURL       string          `yaml:"quote_url"`
		PriceSource    string          `yaml:"price_source"` // chart, quote
	} `yaml:"quotes"`

	Calc struct {
		TaxRate       decimal.Decimal `yaml:"tax_rate"`
		SnowballWeeks int             `yaml:"snowball_weeks"`
	} `yaml:"calc"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration usable without any file.
func DefaultConfig() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig reads and parses the configuration file.
// A missing file yields the defaults so the dashboard can start bare.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "WeeklyPay"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Market.ExchangeTimezone == "" {
		c.Market.ExchangeTimezone = DefaultExchangeTZ
	}
	if c.Market.ViewerTimezone == "" {
		c.Market.ViewerTimezone = DefaultViewerTZ
	}
	if c.Market.Holidays == nil {
		c.Market.Holidays = append([]string(nil), DefaultHolidays...)
	}
	if c.Quotes.TTLSec == 0 {
		c.Quotes.TTLSec = DefaultQuoteTTLSec
	}
	if c.Quotes.HTTPTimeoutSec == 0 {
		c.Quotes.HTTPTimeoutSec = DefaultHTTPTimeout
	}
	if c.Quotes.FXSymbol == "" {
		c.Quotes.FXSymbol = DefaultFXSymbol
	}
	if c.Quotes.FallbackFX.IsZero() {
		c.Quotes.FallbackFX = DefaultFallbackFX
	}
	if c.Quotes.ChartURL == "" {
		c.Quotes.ChartURL = DefaultChartURL
	}
	if c.Quotes.QuoteURL == "" {
		c.Quotes.QuoteURL = DefaultQuoteURL
	}
	if c.Quotes.PriceSource == "" {
		c.Quotes.PriceSource = PriceSourceChart
	}
	if c.Calc.TaxRate.IsZero() {
		c.Calc.TaxRate = DefaultTaxRate
	}
	if c.Calc.SnowballWeeks == 0 {
		c.Calc.SnowballWeeks = DefaultSnowballWeek
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return &domain.ConfigError{Field: "server.mode", Err: fmt.Errorf("unknown mode %q", c.Server.Mode)}
	}

	if _, err := time.LoadLocation(c.Market.ExchangeTimezone); err != nil {
		return &domain.ConfigError{Field: "market.exchange_timezone", Err: err}
	}
	if _, err := time.LoadLocation(c.Market.ViewerTimezone); err != nil {
		return &domain.ConfigError{Field: "market.viewer_timezone", Err: err}
	}
	for _, h := range c.Market.Holidays {
		if _, err := time.Parse(time.DateOnly, h); err != nil {
			return &domain.ConfigError{Field: "market.holidays", Err: err}
		}
	}

	if c.Quotes.TTLSec < 0 {
		return &domain.ConfigError{Field: "quotes.ttl_sec", Err: fmt.Errorf("must not be negative, got %d", c.Quotes.TTLSec)}
	}
	if c.Quotes.HTTPTimeoutSec < 0 {
		return &domain.ConfigError{Field: "quotes.http_timeout_sec", Err: fmt.Errorf("must not be negative, got %d", c.Quotes.HTTPTimeoutSec)}
	}
	if !c.Quotes.FallbackFX.IsPositive() {
		return &domain.ConfigError{Field: "quotes.fallback_fx", Err: fmt.Errorf("must be positive, got %s", c.Quotes.FallbackFX)}
	}
	switch c.Quotes.PriceSource {
	case PriceSourceChart, PriceSourceQuote:
	default:
		return &domain.ConfigError{Field: "quotes.price_source", Err: fmt.Errorf("unknown source %q", c.Quotes.PriceSource)}
	}
	for field, u := range map[string]string{"quotes.chart_url": c.Quotes.ChartURL, "quotes.quote_url": c.Quotes.QuoteURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return &domain.ConfigError{Field: field, Err: fmt.Errorf("invalid URL %q", u)}
		}
	}

	if c.Calc.TaxRate.IsNegative() || c.Calc.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return &domain.ConfigError{Field: "calc.tax_rate", Err: fmt.Errorf("must be in [0, 1), got %s", c.Calc.TaxRate)}
	}
	if c.Calc.SnowballWeeks < 0 {
		return &domain.ConfigError{Field: "calc.snowball_weeks", Err: fmt.Errorf("must not be negative, got %d", c.Calc.SnowballWeeks)}
	}

	return nil
}

// QuoteTTL returns the cache freshness window.
func (c *Config) QuoteTTL() time.Duration {
	return time.Duration(c.Quotes.TTLSec) * time.Second
}

// HTTPTimeout returns the per-request timeout for upstream calls.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Quotes.HTTPTimeoutSec) * time.Second
}

// overrideWithEnv overwrites settings with environment variables when present.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("WEEKLYPAY_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("WEEKLYPAY_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if ttl := os.Getenv("WEEKLYPAY_QUOTE_TTL_SEC"); ttl != "" {
		if v, err := strconv.Atoi(ttl); err == nil {
			cfg.Quotes.TTLSec = v
		}
	}
	if fx := os.Getenv("WEEKLYPAY_FALLBACK_FX"); fx != "" {
		if v, err := decimal.NewFromString(fx); err == nil {
			cfg.Quotes.FallbackFX = v
		}
	}
	if u := os.Getenv("WEEKLYPAY_CHART_URL"); u != "" {
		cfg.Quotes.ChartURL = u
	}
	if u := os.Getenv("WEEKLYPAY_QUOTE_URL"); u != "" {
		cfg.Quotes.QuoteURL = u
	}
	if src := os.Getenv("WEEKLYPAY_PRICE_SOURCE"); src != "" {
		cfg.Quotes.PriceSource = src
	}
}
