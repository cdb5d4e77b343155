package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/config"
	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/pkg/storage"
)

type publishFixture struct {
	videos  *fakeVideoRepo
	blobs   *fakeBlobStore
	tc      *fakeTranscoder
	ledger  *fakeLedger
	events  *fakeEvents
	tempDir string
	svc     PublishService
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()
	f := &publishFixture{
		videos:  newFakeVideoRepo(),
		blobs:   &fakeBlobStore{},
		tc:      &fakeTranscoder{duration: 10},
		ledger:  &fakeLedger{},
		events:  &fakeEvents{},
		tempDir: t.TempDir(),
	}
	f.svc = NewPublishService(f.videos, f.ledger, f.blobs, f.tc, f.events, config.Media{
		TempDir:           f.tempDir,
		UploadConcurrency: 2,
	})
	return f
}

func (f *publishFixture) request(t *testing.T) dto.PublishRequest {
	t.Helper()
	return dto.PublishRequest{
		Title:         "Intro",
		Description:   "Hello world",
		VideoPath:     writeTempFile(t, f.tempDir, "upload.mp4"),
		ThumbnailPath: writeTempFile(t, f.tempDir, "thumb.JPG"),
		OwnerId:       primitive.NewObjectID().Hex(),
	}
}

func assertRemoved(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.Truef(t, errors.Is(err, os.ErrNotExist), "%s should have been removed", p)
	}
}

func TestPublishSuccess(t *testing.T) {
	f := newPublishFixture(t)
	req := f.request(t)

	video, err := f.svc.Publish(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, video.ID.IsZero())
	assert.Equal(t, "Intro", video.Title)
	assert.Equal(t, "Hello world", video.Description)
	assert.Equal(t, req.OwnerId, video.Owner.Hex())
	assert.Equal(t, 10.0, video.Duration)
	assert.Zero(t, video.Views)
	assert.True(t, video.IsPublished)
	assert.True(t, strings.HasSuffix(video.VideoFile, ".m3u8"))
	assert.NotEmpty(t, video.Thumbnail)
	assert.True(t, strings.HasPrefix(video.StoragePrefix, "videos/"))
	assert.Equal(t, video.StoragePrefix+"/"+constant.ManifestName, video.VideoPublicID)
	assert.True(t, strings.HasPrefix(video.ThumbnailPublicID, "thumbnails/"))
	assert.True(t, strings.HasSuffix(video.ThumbnailPublicID, ".jpg"))

	assert.Equal(t, 1, f.videos.createCalls)
	assert.Equal(t, 5, f.blobs.uploadCount())
	assert.Equal(t, []constant.PublishState{
		constant.PublishStateValidating,
		constant.PublishStateTranscoding,
		constant.PublishStateUploading,
		constant.PublishStatePersisting,
		constant.PublishStateDone,
	}, f.ledger.states)
	assert.Equal(t, []string{constant.RoutingVideoPublish}, f.events.events)

	assertRemoved(t, req.VideoPath, req.ThumbnailPath, filepath.Join(f.tempDir, "hls", strings.TrimPrefix(video.StoragePrefix, "videos/")))
}

func TestPublishIgnoresCallerCancellationAfterValidation(t *testing.T) {
	f := newPublishFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	video, err := f.svc.Publish(ctx, f.request(t))
	require.NoError(t, err)
	assert.True(t, video.IsPublished)
}

func TestPublishValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *dto.PublishRequest)
	}{
		{"blank title", func(req *dto.PublishRequest) { req.Title = "   " }},
		{"blank description", func(req *dto.PublishRequest) { req.Description = "" }},
		{"missing video", func(req *dto.PublishRequest) { req.VideoPath = "" }},
		{"unreadable video", func(req *dto.PublishRequest) { req.VideoPath = "/does/not/exist.mp4" }},
		{"missing thumbnail", func(req *dto.PublishRequest) { req.ThumbnailPath = "" }},
		{"bad owner", func(req *dto.PublishRequest) { req.OwnerId = "not-an-id" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPublishFixture(t)
			req := f.request(t)
			tt.mutate(&req)

			_, err := f.svc.Publish(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Zero(t, f.tc.calls)
			assert.Zero(t, f.blobs.uploadCount())
			assert.Zero(t, f.videos.createCalls)
			assert.Equal(t, constant.PublishStateAborted, f.ledger.states[len(f.ledger.states)-1])
			assertRemoved(t, req.VideoPath, req.ThumbnailPath)
		})
	}
}

func TestPublishTranscodeFailure(t *testing.T) {
	f := newPublishFixture(t)
	f.tc.err = errors.New("ffmpeg exited with status 1")
	req := f.request(t)

	_, err := f.svc.Publish(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindTranscode, apperror.KindOf(err))
	assert.Zero(t, f.blobs.uploadCount())
	assert.Zero(t, f.videos.createCalls)
	assert.Equal(t, string(apperror.KindTranscode), f.ledger.kind)
	assert.Empty(t, f.events.events)
	assertRemoved(t, req.VideoPath, req.ThumbnailPath)
}

func TestPublishMetadataFailure(t *testing.T) {
	f := newPublishFixture(t)
	f.tc.err = apperror.Metadata("duration unavailable", nil)

	_, err := f.svc.Publish(context.Background(), f.request(t))
	assert.Equal(t, apperror.KindMetadata, apperror.KindOf(err))
	assert.Zero(t, f.videos.createCalls)
}

func TestPublishNegativeDuration(t *testing.T) {
	f := newPublishFixture(t)
	f.tc.duration = -1

	_, err := f.svc.Publish(context.Background(), f.request(t))
	assert.Equal(t, apperror.KindMetadata, apperror.KindOf(err))
	assert.Zero(t, f.blobs.uploadCount())
}

func TestPublishSegmentUploadFailure(t *testing.T) {
	f := newPublishFixture(t)
	f.blobs.failKey = func(key string) bool { return strings.HasSuffix(key, "_001.ts") }
	req := f.request(t)

	_, err := f.svc.Publish(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	assert.Zero(t, f.videos.createCalls)
	assertRemoved(t, req.VideoPath, req.ThumbnailPath)
}

func TestPublishThumbnailUploadFailure(t *testing.T) {
	f := newPublishFixture(t)
	f.blobs.failKey = func(key string) bool { return strings.HasPrefix(key, "thumbnails/") }

	_, err := f.svc.Publish(context.Background(), f.request(t))
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	assert.Zero(t, f.videos.createCalls)
}

func TestPublishThumbnailWithoutURL(t *testing.T) {
	f := newPublishFixture(t)
	f.blobs.noURL = func(key string) bool { return strings.HasPrefix(key, "thumbnails/") }

	_, err := f.svc.Publish(context.Background(), f.request(t))
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	assert.Zero(t, f.videos.createCalls)
}

func TestPublishMissingManifest(t *testing.T) {
	f := newPublishFixture(t)
	f.tc.omitManifest = true

	_, err := f.svc.Publish(context.Background(), f.request(t))
	require.Error(t, err)
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))
	assert.Zero(t, f.videos.createCalls)
}

func TestPublishPersistenceFailure(t *testing.T) {
	f := newPublishFixture(t)
	f.videos.createErr = errors.New("connection reset")
	req := f.request(t)

	_, err := f.svc.Publish(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	assert.Equal(t, 1, f.videos.createCalls)
	assert.Equal(t, 5, f.blobs.uploadCount())
	assert.Empty(t, f.events.events)
	assertRemoved(t, req.VideoPath, req.ThumbnailPath)
}

func TestPublishWithoutLedger(t *testing.T) {
	f := newPublishFixture(t)
	svc := NewPublishService(f.videos, nil, f.blobs, f.tc, nil, config.Media{TempDir: f.tempDir})

	video, err := svc.Publish(context.Background(), f.request(t))
	require.NoError(t, err)
	assert.True(t, video.IsPublished)
}

func TestLocateManifest(t *testing.T) {
	_, ok := locateManifest(nil)
	assert.False(t, ok)

	_, ok = locateManifest([]storage.UploadResult{{PublicID: "videos/k/master.m3u8"}})
	assert.False(t, ok, "manifest without url")

	m, ok := locateManifest([]storage.UploadResult{
		{PublicID: "videos/k/360p_000.ts", URL: "u1"},
		{PublicID: "videos/k/master.m3u8", URL: "u2"},
	})
	assert.True(t, ok)
	assert.Equal(t, "u2", m.URL)
}
