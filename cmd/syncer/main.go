package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media_catalog/internal/catalog"
	"media_catalog/internal/config"
	"media_catalog/internal/domain"
	"media_catalog/internal/freshness"
	"media_catalog/internal/logging"
	"media_catalog/internal/publisher"
	"media_catalog/internal/scheduler"
	"media_catalog/internal/service"
	"media_catalog/internal/source/tmdb"
	"media_catalog/internal/storage/memory"
	"media_catalog/internal/storage/postgres"
)

type stores struct {
	items     service.ItemStore
	genres    service.GenreStore
	freshness freshness.Store
	txManager service.TransactionManager
	close     func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	refreshLabel := flag.String("refresh", "", "refresh a single category and exit")
	similarTo := flag.String("similar", "", "log items similar to <media_type>:<external_id> and exit")
	flag.Parse()

	logger, _ := logging.New(logging.Config{Level: "info"})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer closeLog()

	if err := run(cfg, *refreshLabel, *similarTo, logger); err != nil {
		logger.Error("syncer stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, refreshLabel, similarTo string, logger *slog.Logger) error {
	clock := clockwork.NewRealClock()

	st, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	registry := catalog.Default()
	if len(cfg.Categories) > 0 {
		registry, err = catalog.New(cfg.Categories)
		if err != nil {
			return &domain.ConfigurationError{Field: "categories", Err: err}
		}
	}

	provider := tmdb.New(tmdb.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Timeout:           cfg.Provider.Timeout,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Burst:             cfg.Provider.Burst,
		TrendingWindow:    cfg.Provider.TrendingWindow,
	}, logger)

	images := service.ImageConfig{
		BaseURL:      cfg.Provider.ImageBaseURL,
		PosterSize:   cfg.Provider.PosterSize,
		BackdropSize: cfg.Provider.BackdropSize,
		ProfileSize:  cfg.Provider.ProfileSize,
	}

	tracker := freshness.NewTracker(st.freshness, freshness.Policy{
		domain.ClassDaily:  cfg.Freshness.DailyTTL,
		domain.ClassWeekly: cfg.Freshness.WeeklyTTL,
	}, clock, logger)

	materializer := service.NewMaterializer(service.NewTrailerResolver(provider, logger), images, clock)
	ingest := service.NewIngestService(provider, st.items, st.txManager, materializer, pub, clock, logger)
	refresh := service.NewRefreshService(
		ingest,
		st.items,
		st.genres,
		provider,
		st.txManager,
		tracker,
		registry,
		pub,
		clock,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return &domain.ConfigurationError{Field: "schedule.timezone", Err: err}
	}

	sched, err := scheduler.New(refresh, scheduler.Config{
		DailyCron:      cfg.Schedule.DailyCron,
		WeeklyCron:     cfg.Schedule.WeeklyCron,
		Location:       loc,
		Bootstrap:      cfg.Schedule.BootstrapEnabled(),
		CatchUpOnStart: cfg.Schedule.CatchUpOnStart,
	}, clock, logger)
	if err != nil {
		return err
	}

	if refreshLabel != "" || similarTo != "" {
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Warn("scheduler stop failed", "error", err)
			}
		}()
	}

	if refreshLabel != "" {
		stats, err := sched.RunNow(ctx, refreshLabel)
		if err != nil {
			return err
		}
		logger.Info("category refreshed", "category", stats.Category, "added", stats.Added, "merged", stats.Merged)
		return nil
	}

	if similarTo != "" {
		mt, externalID, err := parseItemRef(similarTo)
		if err != nil {
			return &domain.ConfigurationError{Field: "similar", Err: err}
		}
		ranker := service.NewRanker(st.items, registry.PopularFallback(), cfg.Similarity.DefaultLimit)
		reads := service.NewCatalog(st.items, provider, ranker, images, logger)

		similar, err := reads.Similar(ctx, mt, externalID, 0)
		if err != nil {
			return err
		}
		for i, item := range similar {
			logger.Info("similar item",
				"rank", i+1,
				"external_id", item.ExternalID,
				"title", item.Title,
				"popularity", item.Popularity,
			)
		}
		logger.Info("similarity query done", "media_type", mt, "external_id", externalID, "results", len(similar))
		return nil
	}

	if cfg.Metrics.ListenAddr != "" {
		srv := serveMetrics(cfg.Metrics.ListenAddr, logger)
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting catalog syncer",
		"source", provider.Name(),
		"storage", cfg.Storage.Driver,
		"categories", len(registry.All()),
		"daily_cron", cfg.Schedule.DailyCron,
		"weekly_cron", cfg.Schedule.WeeklyCron,
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// parseItemRef reads "<media_type>:<external_id>", e.g. "movie:550".
func parseItemRef(ref string) (domain.MediaType, int64, error) {
	kind, id, ok := strings.Cut(ref, ":")
	if !ok {
		return "", 0, fmt.Errorf("item reference %q: want <media_type>:<external_id>", ref)
	}
	mt := domain.MediaType(kind)
	if !mt.Valid() {
		return "", 0, fmt.Errorf("item reference %q: unknown media type %q", ref, kind)
	}
	externalID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || externalID < 1 {
		return "", 0, fmt.Errorf("item reference %q: invalid external id %q", ref, id)
	}
	return mt, externalID, nil
}

func openStores(cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("using in-memory storage, catalog will be rebuilt on every start")
		store := memory.New()
		return &stores{
			items:     store,
			genres:    store,
			freshness: store,
			txManager: store,
			close:     func() error { return nil },
		}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		items:     postgres.NewItemStore(db),
		genres:    postgres.NewGenreStore(db),
		freshness: postgres.NewFreshnessStore(db),
		txManager: postgres.NewTransactionManager(db),
		close:     db.Close,
	}, nil
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
