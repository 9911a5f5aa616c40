package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-cart/internal/app"
	"github.com/noah-isme/toko-cart/internal/cart"
	"github.com/noah-isme/toko-cart/internal/catalog"
	"github.com/noah-isme/toko-cart/internal/config"
	"github.com/noah-isme/toko-cart/internal/obs"
	"github.com/noah-isme/toko-cart/internal/repo"
	"github.com/noah-isme/toko-cart/internal/resilience"
	"github.com/noah-isme/toko-cart/internal/shop"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "cartcalc:", err)
		os.Exit(1)
	}
}

type options struct {
	cartPath    string
	contextPath string
	catalogPath string
	metrics     bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cartcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cartPath, "cart", "", "path to the cart container JSON")
	fs.StringVar(&opts.contextPath, "context", "", "path to the shop context JSON")
	fs.StringVar(&opts.catalogPath, "catalog", "", "path to a catalog fixture JSON (default: DATABASE_URL)")
	fs.BoolVar(&opts.metrics, "metrics", false, "write calculation metrics to stderr")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.cartPath == "" || opts.contextPath == "" {
		return opts, errors.New("-cart and -context are required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := obs.NewLoggerTo(stderr, cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	registry := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), registry)
	resilience.MustRegisterMetrics(cfg.Obs.MetricsNamespace, registry)

	if cfg.Obs.EnableTracing {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "toko-cart",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	var container cart.Container
	if err := readJSON(opts.cartPath, &container); err != nil {
		return err
	}
	var sc shop.Context
	if err := readJSON(opts.contextPath, &sc); err != nil {
		return err
	}
	if sc.Shop.TaxCalculation == "" {
		sc.Shop.TaxCalculation = cfg.TaxCalculation
	}

	sources, closeSources, err := openSources(ctx, cfg, opts.catalogPath, sc.Shop.ID, logger)
	if err != nil {
		return err
	}
	defer closeSources()

	calculator := app.NewCalculator(app.Dependencies{
		Sources:           sources,
		Logger:            logger,
		MaxRecalculations: cfg.MaxRecalculations,
	})
	calculated, err := calculator.Calculate(ctx, &container, sc)
	if err != nil {
		return fmt.Errorf("calculate cart: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(calculated); err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if opts.metrics {
		return writeMetrics(registry, stderr)
	}
	return nil
}

func readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// openSources prefers the catalog fixture and falls back to PostgreSQL with
// an optional Redis product cache.
func openSources(ctx context.Context, cfg *config.Config, catalogPath string, shopID int, logger zerolog.Logger) (app.Sources, func(), error) {
	if catalogPath != "" {
		f, err := os.Open(catalogPath)
		if err != nil {
			return app.Sources{}, nil, err
		}
		defer f.Close()
		fixture, err := app.ReadFixture(f)
		if err != nil {
			return app.Sources{}, nil, err
		}
		return fixture.Sources(), func() {}, nil
	}
	if !cfg.UseDatabase() {
		return app.Sources{}, nil, errors.New("either -catalog or DATABASE_URL is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return app.Sources{}, nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "toko-cart"

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return app.Sources{}, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return app.Sources{}, nil, fmt.Errorf("ping database: %w", err)
	}

	ruleData := repo.RuleDataStore{Q: pool}
	sources := app.Sources{
		Products:    repo.ProductStore{Q: pool, FallbackGroup: cfg.FallbackGroup},
		Vouchers:    repo.VoucherStore{Q: pool, ShopID: shopID},
		Categories:  ruleData,
		Attributes:  ruleData,
		OrderStates: ruleData,
	}
	breaker := resilience.NewBreaker("catalog_db", cfg.BreakerFailures, cfg.BreakerOpenFor).WithLogger(logger)
	sources = app.Guard(sources, breaker)
	closers := []func(){pool.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return app.Sources{}, nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		})
		if err := redisClient.Ping(connectCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		} else {
			sources.Products = catalog.CachedProducts{
				Source: sources.Products,
				Cache:  catalog.NewCache(redisClient, cfg.CatalogCacheTTL, "toko-cart:"),
				Logger: logger,
			}
		}
	}
	return sources, closeAll, nil
}

func writeMetrics(gatherer prometheus.Gatherer, w io.Writer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
