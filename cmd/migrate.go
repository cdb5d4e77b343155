package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"crazzzytube/config"
	"crazzzytube/pkg/storage"
	"crazzzytube/repository"
)

func migrate(config *config.Config) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create the publish job table, mongo indexes and the media bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(os.Stdout).With().Timestamp().Str("cmd", "migrate").Logger()
			ctx, cancel := context.WithTimeout(logger.WithContext(cmd.Context()), timeout)
			defer cancel()

			jobs, err := repository.NewRepo(config.DB)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			if err := jobs.AutoMigrate(ctx); err != nil {
				return fmt.Errorf("migrate ledger: %w", err)
			}
			logger.Info().Msg("publish_jobs table ready")

			if err := repository.EnsureIndexes(ctx, config.Mongo); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			logger.Info().Msg("mongo indexes ready")

			blobs := storage.NewMinIOStore(config.Storage, config.MinIOBucket, config.Media.PublicURL)
			if err := blobs.EnsureBucket(ctx); err != nil {
				return fmt.Errorf("ensure bucket: %w", err)
			}
			logger.Info().Str("bucket", config.MinIOBucket).Msg("media bucket ready")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall migration timeout")
	return cmd
}
