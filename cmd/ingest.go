package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopsight/shopsight/internal/config"
	"github.com/shopsight/shopsight/internal/logging"
	"github.com/shopsight/shopsight/internal/storage/postgres"
	"github.com/shopsight/shopsight/internal/telemetry"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <website-url>",
		Short: "Ingest one storefront and print the persisted profile.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

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

			profile, err := service.Ingest(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(profile); err != nil {
				return fmt.Errorf("encode profile: %w", err)
			}
			return nil
		},
	}
}
