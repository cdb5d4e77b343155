package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"crazzzytube/apperror"
	"crazzzytube/config"
	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/pkg/metrics"
	"crazzzytube/pkg/rabbitmq"
	"crazzzytube/pkg/storage"
	"crazzzytube/pkg/tracing"
	"crazzzytube/pkg/transcoder"
	"crazzzytube/repository"
)

type PublishService interface {
	// Publish turns an uploaded video and thumbnail into a playable,
	// persisted video. The request's files are always removed on return.
	Publish(ctx context.Context, req dto.PublishRequest) (*entities.Video, error)
}

type publishService struct {
	videos     repository.VideoRepository
	jobs       repository.JobRepository
	blobs      storage.BlobStore
	transcoder transcoder.Transcoder
	events     rabbitmq.EventPublisher
	media      config.Media
}

func NewPublishService(
	videos repository.VideoRepository,
	jobs repository.JobRepository,
	blobs storage.BlobStore,
	tc transcoder.Transcoder,
	events rabbitmq.EventPublisher,
	media config.Media,
) PublishService {
	if media.UploadConcurrency < 1 {
		media.UploadConcurrency = 1
	}
	if events == nil {
		events = rabbitmq.NopPublisher{}
	}
	return &publishService{
		videos:     videos,
		jobs:       jobs,
		blobs:      blobs,
		transcoder: tc,
		events:     events,
		media:      media,
	}
}

func (s *publishService) Publish(ctx context.Context, req dto.PublishRequest) (video *entities.Video, err error) {
	defer removeFiles(ctx, req.VideoPath, req.ThumbnailPath)

	ctx, span := tracing.Tracer().Start(ctx, "publish")
	defer span.End()

	metrics.ActivePublishes.Inc()
	defer metrics.ActivePublishes.Dec()

	run := startRun(ctx, s.jobs, req.OwnerId, req.Title)
	defer func() {
		if err != nil {
			run.abort(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, apperror.MessageOf(err))
			metrics.PublishTotal.WithLabelValues(string(apperror.KindOf(err))).Inc()
			return
		}
		run.complete(video.ID.Hex())
		metrics.PublishTotal.WithLabelValues("success").Inc()
	}()

	owner, err := s.validateRequest(&req)
	if err != nil {
		return nil, err
	}

	// From here on the operation runs to completion or failure; caller
	// cancellation is not propagated to the transcoder or the stores.
	ctx = context.WithoutCancel(ctx)

	assetKey := uuid.NewString()
	prefix := storage.ObjectKey("videos", assetKey)
	logger := zerolog.Ctx(ctx).With().Str("asset_key", assetKey).Str("job_id", run.jobID.String()).Logger()
	ctx = logger.WithContext(ctx)
	span.SetAttributes(attribute.String("asset_key", assetKey))

	outputDir := filepath.Join(s.media.TempDir, "hls", assetKey)
	defer func() {
		if rmErr := os.RemoveAll(outputDir); rmErr != nil {
			logger.Warn().Err(rmErr).Str("dir", outputDir).Msg("failed to remove transcoder output")
		}
	}()

	run.advance(constant.PublishStateTranscoding)
	hls, err := s.transcode(ctx, req.VideoPath, outputDir)
	if err != nil {
		return nil, err
	}

	run.advance(constant.PublishStateUploading)
	manifest, thumbnail, err := s.upload(ctx, prefix, assetKey, hls, req.ThumbnailPath)
	if err != nil {
		return nil, err
	}

	run.advance(constant.PublishStatePersisting)
	video, err = s.videos.Create(ctx, &entities.Video{
		Title:             req.Title,
		Description:       req.Description,
		Owner:             owner,
		VideoFile:         manifest.URL,
		VideoPublicID:     manifest.PublicID,
		Thumbnail:         thumbnail.URL,
		ThumbnailPublicID: thumbnail.PublicID,
		StoragePrefix:     prefix,
		Duration:          hls.Duration,
		Views:             0,
		IsPublished:       true,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("storage_prefix", prefix).
			Str("thumbnail", thumbnail.PublicID).
			Msg("video record not created, uploaded objects are orphaned")
		return nil, apperror.Persistence("failed to save video", err)
	}

	logger.Info().Str("video_id", video.ID.Hex()).Float64("duration", video.Duration).Msg("video published")
	emitVideoEvent(ctx, s.events, constant.RoutingVideoPublish, video)
	return video, nil
}

func (s *publishService) validateRequest(req *dto.PublishRequest) (primitive.ObjectID, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if err := validate.Struct(req); err != nil {
		return primitive.NilObjectID, validationError(err)
	}

	files := []struct{ field, path string }{
		{"videoFile", req.VideoPath},
		{"thumbnail", req.ThumbnailPath},
	}
	for _, f := range files {
		if err := checkReadable(f.path); err != nil {
			return primitive.NilObjectID, apperror.Validation(fmt.Sprintf("%s is not a readable file", f.field))
		}
	}

	owner, err := primitive.ObjectIDFromHex(req.OwnerId)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("ownerId is not a valid id")
	}
	return owner, nil
}

func (s *publishService) transcode(ctx context.Context, inputPath, outputDir string) (*transcoder.HLSOutput, error) {
	ctx, span := tracing.Tracer().Start(ctx, "publish.transcode")
	defer span.End()

	hls, err := s.transcoder.Transcode(ctx, inputPath, outputDir)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindTranscode, apperror.KindMetadata:
			return nil, err
		default:
			return nil, apperror.Transcode("video transcoding failed", err)
		}
	}
	if hls == nil {
		return nil, apperror.Transcode("transcoder returned no output", nil)
	}
	if hls.Duration < 0 {
		return nil, apperror.Metadata(fmt.Sprintf("invalid duration %v", hls.Duration), nil)
	}
	return hls, nil
}

// upload stores the HLS package and the thumbnail concurrently and resolves
// the manifest among the uploaded objects.
func (s *publishService) upload(ctx context.Context, prefix, assetKey string, hls *transcoder.HLSOutput, thumbnailPath string) (manifest, thumbnail storage.UploadResult, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "publish.upload")
	defer span.End()

	var objects []storage.UploadResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		uploaded, err := s.uploadPackage(gctx, prefix, hls)
		objects = uploaded
		return err
	})
	g.Go(func() error {
		key := storage.ObjectKey("thumbnails", assetKey+strings.ToLower(filepath.Ext(thumbnailPath)))
		res, err := s.blobs.Upload(gctx, key, thumbnailPath)
		if err != nil {
			return apperror.Storage("thumbnail upload failed", err)
		}
		thumbnail = res
		return nil
	})
	if err = g.Wait(); err != nil {
		return storage.UploadResult{}, storage.UploadResult{}, err
	}

	var ok bool
	manifest, ok = locateManifest(objects)
	if !ok {
		return storage.UploadResult{}, storage.UploadResult{}, apperror.Storage("streaming manifest missing from uploaded objects", nil)
	}
	if thumbnail.URL == "" {
		return storage.UploadResult{}, storage.UploadResult{}, apperror.Storage("thumbnail upload returned no url", nil)
	}

	span.SetAttributes(attribute.Int("objects", len(objects)+1))
	return manifest, thumbnail, nil
}

func (s *publishService) uploadPackage(ctx context.Context, prefix string, hls *transcoder.HLSOutput) ([]storage.UploadResult, error) {
	files := hls.SegmentPaths
	if hls.ManifestPath != "" {
		files = append([]string{hls.ManifestPath}, files...)
	}

	results := make([]storage.UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.media.UploadConcurrency)
	for i, file := range files {
		g.Go(func() error {
			name := filepath.Base(file)
			res, err := s.blobs.Upload(gctx, storage.ObjectKey(prefix, name), file)
			if err != nil {
				return apperror.Storage(fmt.Sprintf("upload of %s failed", name), err)
			}
			results[i] = res
			metrics.UploadedObjectsTotal.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func locateManifest(objects []storage.UploadResult) (storage.UploadResult, bool) {
	for _, obj := range objects {
		if path.Base(obj.PublicID) == constant.ManifestName && obj.URL != "" {
			return obj, true
		}
	}
	return storage.UploadResult{}, false
}

func checkReadable(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", p)
	}
	return nil
}

// removeFiles deletes request-scoped temporary files. Missing files are fine.
func removeFiles(ctx context.Context, paths ...string) {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to remove temporary files")
	}
}

func emitVideoEvent(ctx context.Context, events rabbitmq.EventPublisher, routingKey string, video *entities.Video) {
	msg := dto.VideoEventMessage{
		EventId:       uuid.New(),
		VideoId:       video.ID.Hex(),
		OwnerId:       video.Owner.Hex(),
		StoragePrefix: video.StoragePrefix,
		OccurredAt:    time.Now().UTC(),
	}
	if err := events.Publish(ctx, routingKey, msg); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Str("video_id", msg.VideoId).Msg("failed to publish video event")
	}
}
