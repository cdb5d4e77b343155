package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"crazzzytube/dto"
	"crazzzytube/pkg/metrics"
	"crazzzytube/pkg/storage"
)

type CleanupService interface {
	// SweepDeleted removes every object left under a deleted video's prefix.
	SweepDeleted(ctx context.Context, event dto.VideoEventMessage) error
}

type cleanupService struct {
	blobs storage.BlobStore
}

func NewCleanupService(blobs storage.BlobStore) CleanupService {
	return &cleanupService{blobs: blobs}
}

func (s *cleanupService) SweepDeleted(ctx context.Context, event dto.VideoEventMessage) error {
	logger := zerolog.Ctx(ctx).With().
		Str("video_id", event.VideoId).
		Str("storage_prefix", event.StoragePrefix).
		Logger()

	prefix := strings.TrimSuffix(event.StoragePrefix, "/")
	if !strings.HasPrefix(prefix, "videos/") || len(prefix) <= len("videos/") {
		return errors.Join(ErrNonRetryable, fmt.Errorf("refusing to sweep prefix %q", event.StoragePrefix))
	}

	removed, err := s.blobs.RemovePrefix(ctx, prefix+"/")
	metrics.CleanupObjectsTotal.WithLabelValues("removed").Add(float64(removed))
	if err != nil {
		metrics.CleanupObjectsTotal.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Int("removed", removed).Msg("segment sweep incomplete")
		return err
	}

	logger.Info().Int("removed", removed).Msg("segment sweep complete")
	return nil
}
