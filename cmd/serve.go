package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gcppubsub "cloud.google.com/go/pubsub"
	gcpstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopsight/shopsight/internal/api"
	"github.com/shopsight/shopsight/internal/archive"
	archivegcs "github.com/shopsight/shopsight/internal/archive/gcs"
	archivelocal "github.com/shopsight/shopsight/internal/archive/local"
	archivememory "github.com/shopsight/shopsight/internal/archive/memory"
	"github.com/shopsight/shopsight/internal/config"
	"github.com/shopsight/shopsight/internal/fetch"
	"github.com/shopsight/shopsight/internal/ingest"
	"github.com/shopsight/shopsight/internal/logging"
	"github.com/shopsight/shopsight/internal/publisher"
	publishermemory "github.com/shopsight/shopsight/internal/publisher/memory"
	publisherpubsub "github.com/shopsight/shopsight/internal/publisher/pubsub"
	"github.com/shopsight/shopsight/internal/scrape"
	"github.com/shopsight/shopsight/internal/storage/postgres"
	"github.com/shopsight/shopsight/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP ingestion service.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	zap.ReplaceGlobals(logger)

	telemetry.Init()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracerProvider(ctx, "shopsight")
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("trace provider shutdown error", zap.Error(err))
		}
	}()

	store, err := postgres.NewStore(ctx, postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
		MinConns: cfg.DB.MinConns,
	})
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	service, err := buildIngestService(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	apiServer := api.NewServer(service, store, logger.Named("api"), cfg)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

func buildIngestService(ctx context.Context, cfg config.Config, store *postgres.Store, logger *zap.Logger) (*ingest.Service, error) {
	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	})
	scraper := scrape.New(fetcher, logger.Named("scrape"))

	var opts []ingest.Option
	archiver, err := buildArchiver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if archiver != nil {
		opts = append(opts, ingest.WithArchiver(archiver))
	}
	events, err := buildPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if events != nil {
		opts = append(opts, ingest.WithEvents(events, cfg.Events.Topic))
	}

	return ingest.New(fetcher, scraper, store, logger.Named("ingest"), opts...)
}

func buildArchiver(ctx context.Context, cfg config.Config) (*archive.Archiver, error) {
	var blobs archive.BlobStore
	switch cfg.Archive.Provider {
	case "none":
		return nil, nil
	case "memory":
		blobs = archivememory.NewBlobStore()
	case "local":
		store, err := archivelocal.New(archivelocal.Config{BaseDir: cfg.Archive.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("init local archive: %w", err)
		}
		blobs = store
	case "gcs":
		client, err := gcpstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		store, err := archivegcs.New(client, archivegcs.Config{Bucket: cfg.Archive.Bucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs archive: %w", err)
		}
		blobs = store
	default:
		return nil, fmt.Errorf("unknown archive provider %q", cfg.Archive.Provider)
	}
	return archive.New(blobs, cfg.Archive.Prefix)
}

func buildPublisher(ctx context.Context, cfg config.Config) (publisher.Publisher, error) {
	switch cfg.Events.Provider {
	case "none":
		return nil, nil
	case "memory":
		return publishermemory.New(), nil
	case "pubsub":
		client, err := gcppubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub client: %w", err)
		}
		return publisherpubsub.New(client)
	default:
		return nil, fmt.Errorf("unknown events provider %q", cfg.Events.Provider)
	}
}
