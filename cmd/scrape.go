package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	pubsubv2 "cloud.google.com/go/pubsub/v2"
	gcs "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/config"
	"github.com/jobwire/boardcrawler/internal/extractor"
	"github.com/jobwire/boardcrawler/internal/logging"
	"github.com/jobwire/boardcrawler/internal/metrics"
	"github.com/jobwire/boardcrawler/internal/publisher"
	"github.com/jobwire/boardcrawler/internal/scraper"
	"github.com/jobwire/boardcrawler/internal/snapshot"
	"github.com/jobwire/boardcrawler/internal/store"
	"github.com/jobwire/boardcrawler/internal/store/postgres"
	"github.com/jobwire/boardcrawler/internal/transport"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Runs one full crawl of the configured site",
		Long: `Runs one crawl pass over every configured category. Exits non-zero
when the run crashes, and also when it completes cleanly without finding a
single new posting; that usually means the site changed under the
selectors.`,
		RunE: runScrape,
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, logger)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", zap.Error(err))
			}
		}()
	}

	postingStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	snapshots, err := buildSnapshots(ctx, cfg)
	if err != nil {
		return err
	}

	events, cleanup, err := buildPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	fieldExtractor, err := extractor.NewXPath(cfg.Extractor.Fields, cfg.Extractor.Required, logger)
	if err != nil {
		return fmt.Errorf("init extractor: %w", err)
	}

	sessions := transport.NewFactory(transport.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	}, logger)

	orch, err := scraper.New(cfg.ScraperConfig(), scraper.Deps{
		Sessions:  sessions,
		Store:     postingStore,
		Extractor: fieldExtractor,
		Publisher: events,
		Snapshots: snapshots,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	summary, err := orch.Run(ctx)
	switch {
	case errors.Is(err, scraper.ErrNoNewPostings):
		logger.Error("run found no new postings; check the selectors", zap.String("run_id", orch.RunID()))
		return err
	case err != nil:
		logger.Error("run failed", zap.String("run_id", orch.RunID()), zap.Error(err))
		return err
	}

	logger.Info("run succeeded",
		zap.String("run_id", orch.RunID()),
		zap.Int("new_postings", summary.NewPostings),
	)
	return nil
}

func buildStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (scraper.Store, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("db.dsn not set; postings will only be kept in memory")
		return store.NewMemory(), nil
	}
	s, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		Site:     cfg.Site.Name,
		MaxConns: cfg.DB.MaxConns,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init posting store: %w", err)
	}
	return s, nil
}

func buildSnapshots(ctx context.Context, cfg config.Config) (scraper.SnapshotStore, error) {
	dir := cfg.Snapshots.Dir
	if dir == "" {
		return nil, nil
	}
	if bucket, ok := strings.CutPrefix(dir, "gs://"); ok {
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		return snapshot.NewGCS(client, strings.TrimSuffix(bucket, "/"))
	}
	return snapshot.NewLocal(dir)
}

func buildPublisher(ctx context.Context, cfg config.Config) (scraper.Publisher, func(), error) {
	if cfg.PubSub.ProjectID == "" {
		return nil, nil, nil
	}
	client, err := pubsubv2.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub client: %w", err)
	}
	pub, err := publisher.NewPubSub(client.Publisher(cfg.PubSub.TopicID))
	if err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup
		return nil, nil, err
	}
	cleanup := func() {
		client.Close() //nolint:errcheck // best-effort cleanup
	}
	return pub, cleanup, nil
}
