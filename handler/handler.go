package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"crazzzytube/dto"
	"crazzzytube/service"
)

type EventDependencies struct {
	Cleanup service.CleanupService
}

// VideoDeletedHandler sweeps the remaining objects of a deleted video.
// Malformed messages and refused prefixes are not retried.
func VideoDeletedHandler(ctx context.Context, msg amqp.Delivery, deps EventDependencies) error {
	var event dto.VideoEventMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to unmarshal video event")
		return backoff.Permanent(err)
	}

	zerolog.Ctx(ctx).Info().
		Str("event_id", event.EventId.String()).
		Str("video_id", event.VideoId).
		Msg("received video deleted event")

	err := deps.Cleanup.SweepDeleted(ctx, event)
	if errors.Is(err, service.ErrNonRetryable) {
		return backoff.Permanent(err)
	}
	return err
}
