package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"weeklypay_go/internal/api"
	"weeklypay_go/internal/catalog"
	"weeklypay_go/internal/domain"
	"weeklypay_go/internal/infra"
	"weeklypay_go/internal/infra/yahoo"
	"weeklypay_go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	configPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	Config   *infra.Config
	Catalog  *catalog.Catalog
	Sessions *service.SessionClassifier
	Quotes   *service.QuoteCache
	Metrics  *infra.Metrics
	Registry *prometheus.Registry
}

// NewBootstrap creates a new Bootstrap instance reading configPath.
func NewBootstrap(configPath string) *Bootstrap {
	return &Bootstrap{configPath: configPath}
}

// Initialize loads configuration and wires every component.
func (b *Bootstrap) Initialize() error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(b.configPath)
	if err != nil {
		return err
	}
	if b.LogLevel != "" {
		cfg.Logging.Level = b.LogLevel
	}
	b.Config = cfg

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("🚀 Bootstrapping WeeklyPay...", slog.String("config", b.configPath))

	// 3. Reference data
	cat, err := catalog.Load()
	if err != nil {
		return err
	}
	b.Catalog = cat
	slog.Info("✅ Catalog loaded", slog.Int("funds", cat.Len()), slog.String("week", cat.Schedule().Week))

	// 4. Session classifier
	sessions, err := service.NewSessionClassifier(cfg.Market.ExchangeTimezone, cfg.Market.Holidays)
	if err != nil {
		return err
	}
	b.Sessions = sessions

	// 5. Quote cache over the two Yahoo sources
	viewer, err := time.LoadLocation(cfg.Market.ViewerTimezone)
	if err != nil {
		return fmt.Errorf("failed to load viewer timezone: %w", err)
	}
	fx := infra.NewExchangeRateClientWithConfig(cfg.Quotes.ChartURL, cfg.Quotes.FXSymbol, cfg.HTTPTimeout())
	var prices domain.PriceBatchProvider = yahoo.NewChartClient(cfg.Quotes.ChartURL, cfg.HTTPTimeout())
	if cfg.Quotes.PriceSource == infra.PriceSourceQuote {
		prices = yahoo.NewClient(cfg.Quotes.QuoteURL, cfg.HTTPTimeout())
	}

	b.Metrics = infra.NewMetrics()
	b.Quotes = service.NewQuoteCache(fx, prices, cfg.QuoteTTL(),
		service.WithMetrics(b.Metrics),
		service.WithViewerLocation(viewer),
		service.WithFallbackFX(cfg.Quotes.FallbackFX),
	)
	slog.Info("✅ Quote cache ready", slog.Duration("ttl", cfg.QuoteTTL()), slog.String("price_source", cfg.Quotes.PriceSource))

	// 6. Metrics registry
	b.Registry = prometheus.NewRegistry()
	b.Registry.MustRegister(
		infra.NewMetricsCollector(b.Metrics),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return nil
}

// Router builds the HTTP handler tree. Initialize must have succeeded.
func (b *Bootstrap) Router() (*gin.Engine, error) {
	gin.SetMode(b.Config.Server.Mode)

	httpMetrics, err := api.NewHTTPMetrics(b.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	h := api.NewHandler(b.Catalog, b.Sessions, b.Quotes, api.Options{
		TaxRate:       b.Config.Calc.TaxRate,
		SnowballWeeks: b.Config.Calc.SnowballWeeks,
	})
	return api.NewRouter(h, b.Registry, httpMetrics, slog.Default().With("module", "http")), nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (b *Bootstrap) Serve(ctx context.Context) error {
	router, err := b.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              b.Config.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	slog.InfoContext(ctx, "✨ HTTP server listening", slog.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
