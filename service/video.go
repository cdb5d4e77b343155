package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/pkg/metrics"
	"crazzzytube/pkg/rabbitmq"
	"crazzzytube/pkg/storage"
	"crazzzytube/repository"
)

type VideoService interface {
	// Get returns a video for playback, joined with its owner's channel and
	// subscriber count, and records the view. Unpublished videos are only
	// visible to their owner.
	Get(ctx context.Context, videoID, viewerID primitive.ObjectID) (*entities.VideoDetail, error)
	RecordView(ctx context.Context, videoID, viewerID primitive.ObjectID) error
	Update(ctx context.Context, videoID, ownerID primitive.ObjectID, req dto.UpdateVideoRequest) (*entities.Video, error)
	Delete(ctx context.Context, videoID, ownerID primitive.ObjectID) error
	TogglePublish(ctx context.Context, videoID, ownerID primitive.ObjectID) (*entities.Video, error)
	ListPublished(ctx context.Context) ([]entities.VideoView, error)
	ListByOwner(ctx context.Context, ownerID, viewerID primitive.ObjectID) ([]entities.Video, error)
	LikeCount(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

type videoService struct {
	videos    repository.VideoRepository
	users     repository.UserRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	playlists repository.PlaylistRepository
	blobs     storage.BlobStore
	events    rabbitmq.EventPublisher
}

func NewVideoService(
	videos repository.VideoRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	playlists repository.PlaylistRepository,
	blobs storage.BlobStore,
	events rabbitmq.EventPublisher,
) VideoService {
	if events == nil {
		events = rabbitmq.NopPublisher{}
	}
	return &videoService{
		videos:    videos,
		users:     users,
		comments:  comments,
		likes:     likes,
		playlists: playlists,
		blobs:     blobs,
		events:    events,
	}
}

func (s *videoService) Get(ctx context.Context, videoID, viewerID primitive.ObjectID) (*entities.VideoDetail, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	if !video.IsPublished && !video.OwnedBy(viewerID) {
		return nil, apperror.NotFound("video not found")
	}

	if err := s.recordView(ctx, videoID, viewerID); err != nil {
		return nil, err
	}

	detail, err := s.videos.FindDetail(ctx, videoID)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	return detail, nil
}

func (s *videoService) RecordView(ctx context.Context, videoID, viewerID primitive.ObjectID) error {
	return s.recordView(ctx, videoID, viewerID)
}

// recordView increments the counter server-side and adds the video to the
// viewer's history set. Neither write reads the current value first. The
// viewer is checked before the increment, so an unknown viewer leaves the
// counter untouched.
func (s *videoService) recordView(ctx context.Context, videoID, viewerID primitive.ObjectID) error {
	exists, err := s.users.Exists(ctx, viewerID)
	if err != nil {
		return fromRepo(err, "user")
	}
	if !exists {
		return apperror.NotFound("user not found")
	}

	if _, err := s.videos.IncrementViews(ctx, videoID); err != nil {
		return fromRepo(err, "video")
	}
	metrics.ViewsTotal.Inc()

	if err := s.users.AddToWatchHistory(ctx, viewerID, videoID); err != nil {
		return fromRepo(err, "user")
	}
	return nil
}

func (s *videoService) Update(ctx context.Context, videoID, ownerID primitive.ObjectID, req dto.UpdateVideoRequest) (*entities.Video, error) {
	defer removeFiles(ctx, req.ThumbnailPath)

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"title":       req.Title,
		"description": req.Description,
	}

	var uploaded, replaced storage.UploadResult
	if req.ThumbnailPath != "" {
		if err := checkReadable(req.ThumbnailPath); err != nil {
			return nil, apperror.Validation("thumbnail is not a readable file")
		}
		key := storage.ObjectKey("thumbnails", uuid.NewString()+strings.ToLower(filepath.Ext(req.ThumbnailPath)))
		res, err := s.blobs.Upload(ctx, key, req.ThumbnailPath)
		if err != nil {
			return nil, apperror.Storage("thumbnail upload failed", err)
		}
		set["thumbnail"] = res.URL
		set["thumbnailPublicId"] = res.PublicID
		uploaded = res
		replaced = storage.UploadResult{URL: video.Thumbnail, PublicID: video.ThumbnailPublicID}
	}

	updated, err := s.videos.UpdateByID(ctx, videoID, set)
	if err != nil {
		if uploaded.PublicID != "" {
			if delErr := s.blobs.Delete(ctx, uploaded.PublicID, constant.ResourceTypeImage); delErr != nil {
				zerolog.Ctx(ctx).Warn().Err(delErr).Str("key", uploaded.PublicID).Msg("failed to delete unused thumbnail")
			}
		}
		return nil, fromRepo(err, "video")
	}

	if replaced.PublicID != "" {
		if err := s.blobs.Delete(ctx, replaced.PublicID, constant.ResourceTypeImage); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", replaced.PublicID).Msg("failed to delete replaced thumbnail")
		}
	}
	return updated, nil
}

// Delete releases the manifest object before dropping the record so a
// storage failure leaves the video intact. The remaining segments are swept
// asynchronously from the video.deleted event.
func (s *videoService) Delete(ctx context.Context, videoID, ownerID primitive.ObjectID) error {
	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return err
	}

	if video.VideoPublicID != "" {
		if err := s.blobs.Delete(ctx, video.VideoPublicID, constant.ResourceTypeVideo); err != nil {
			return apperror.Storage("failed to delete video file", err)
		}
	}

	if _, err := s.videos.DeleteByID(ctx, videoID); err != nil {
		return fromRepo(err, "video")
	}

	logger := zerolog.Ctx(ctx).With().Str("video_id", videoID.Hex()).Logger()
	if video.ThumbnailPublicID != "" {
		if err := s.blobs.Delete(ctx, video.ThumbnailPublicID, constant.ResourceTypeImage); err != nil {
			logger.Warn().Err(err).Msg("failed to delete thumbnail")
		}
	}
	if _, err := s.comments.DeleteByVideo(ctx, videoID); err != nil {
		logger.Warn().Err(err).Msg("failed to delete comments of deleted video")
	}
	if _, err := s.likes.DeleteByTarget(ctx, entities.LikeTargetVideo, videoID); err != nil {
		logger.Warn().Err(err).Msg("failed to delete likes of deleted video")
	}
	if _, err := s.playlists.PullVideoEverywhere(ctx, videoID); err != nil {
		logger.Warn().Err(err).Msg("failed to remove deleted video from playlists")
	}

	emitVideoEvent(ctx, s.events, constant.RoutingVideoDeleted, video)
	logger.Info().Msg("video deleted")
	return nil
}

func (s *videoService) TogglePublish(ctx context.Context, videoID, ownerID primitive.ObjectID) (*entities.Video, error) {
	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.videos.UpdateByID(ctx, videoID, bson.M{"isPublished": !video.IsPublished})
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	return updated, nil
}

func (s *videoService) ListPublished(ctx context.Context) ([]entities.VideoView, error) {
	videos, err := s.videos.ListPublished(ctx)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	return videos, nil
}

func (s *videoService) ListByOwner(ctx context.Context, ownerID, viewerID primitive.ObjectID) ([]entities.Video, error) {
	videos, err := s.videos.ListByOwner(ctx, ownerID, ownerID != viewerID)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	return videos, nil
}

func (s *videoService) LikeCount(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return 0, fromRepo(err, "video")
	}
	n, err := s.likes.Count(ctx, entities.LikeTargetVideo, videoID)
	if err != nil {
		return 0, fromRepo(err, "like")
	}
	return n, nil
}

func (s *videoService) ownedVideo(ctx context.Context, videoID, ownerID primitive.ObjectID) (*entities.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	if !video.OwnedBy(ownerID) {
		return nil, apperror.Forbidden("only the owner can modify this video")
	}
	return video, nil
}
