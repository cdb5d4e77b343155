package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/entities"
)

type videoFixture struct {
	videos    *fakeVideoRepo
	users     *fakeUserRepo
	comments  *fakeCommentRepo
	likes     *fakeLikeRepo
	playlists *fakePlaylistRepo
	blobs     *fakeBlobStore
	events    *fakeEvents
	svc       VideoService
}

func newVideoFixture(users ...primitive.ObjectID) *videoFixture {
	f := &videoFixture{
		videos:    newFakeVideoRepo(),
		users:     newFakeUserRepo(users...),
		comments:  newFakeCommentRepo(),
		likes:     newFakeLikeRepo(),
		playlists: newFakePlaylistRepo(),
		blobs:     &fakeBlobStore{},
		events:    &fakeEvents{},
	}
	f.svc = NewVideoService(f.videos, f.users, f.comments, f.likes, f.playlists, f.blobs, f.events)
	return f
}

func publishedVideo(owner primitive.ObjectID) entities.Video {
	return entities.Video{
		Title:             "Intro",
		Description:       "Hello world",
		Owner:             owner,
		VideoFile:         "http://blob.test/videos/k/master.m3u8",
		VideoPublicID:     "videos/k/master.m3u8",
		Thumbnail:         "http://blob.test/thumbnails/k.jpg",
		ThumbnailPublicID: "thumbnails/k.jpg",
		StoragePrefix:     "videos/k",
		Duration:          10,
		IsPublished:       true,
	}
}

func TestRecordViewConcurrent(t *testing.T) {
	const viewers = 25
	owner := primitive.NewObjectID()
	ids := make([]primitive.ObjectID, viewers)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	f := newVideoFixture(ids...)
	videoID := f.videos.put(publishedVideo(owner))

	var wg sync.WaitGroup
	for _, viewer := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.RecordView(context.Background(), videoID, viewer))
		}()
	}
	wg.Wait()

	video, err := f.videos.FindByID(context.Background(), videoID)
	require.NoError(t, err)
	assert.EqualValues(t, viewers, video.Views)

	for _, viewer := range ids {
		user, err := f.users.FindByID(context.Background(), viewer)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{videoID}, user.WatchHistory)
	}
}

func TestRecordViewRepeatedViewerKeepsHistoryUnique(t *testing.T) {
	viewer := primitive.NewObjectID()
	f := newVideoFixture(viewer)
	videoID := f.videos.put(publishedVideo(primitive.NewObjectID()))

	for range 3 {
		_, err := f.svc.Get(context.Background(), videoID, viewer)
		require.NoError(t, err)
	}

	video, _ := f.videos.FindByID(context.Background(), videoID)
	assert.EqualValues(t, 3, video.Views)
	user, _ := f.users.FindByID(context.Background(), viewer)
	assert.Len(t, user.WatchHistory, 1)
}

func TestRecordViewUnknownViewerLeavesCountUntouched(t *testing.T) {
	f := newVideoFixture()
	videoID := f.videos.put(publishedVideo(primitive.NewObjectID()))

	err := f.svc.RecordView(context.Background(), videoID, primitive.NewObjectID())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	video, _ := f.videos.FindByID(context.Background(), videoID)
	assert.Zero(t, video.Views)
}

func TestGetJoinsOwnerAndSubscriberCount(t *testing.T) {
	owner, viewer := primitive.NewObjectID(), primitive.NewObjectID()
	f := newVideoFixture(viewer)
	f.videos.subscribers = 7
	videoID := f.videos.put(publishedVideo(owner))

	detail, err := f.svc.Get(context.Background(), videoID, viewer)
	require.NoError(t, err)

	assert.EqualValues(t, 7, detail.SubscribersCount)
	require.NotNil(t, detail.OwnerChannel)
	assert.Equal(t, owner, detail.OwnerChannel.ID)
	assert.EqualValues(t, 1, detail.Views)
}

func TestGetUnknownVideo(t *testing.T) {
	viewer := primitive.NewObjectID()
	f := newVideoFixture(viewer)

	_, err := f.svc.Get(context.Background(), primitive.NewObjectID(), viewer)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestGetUnpublishedVisibleOnlyToOwner(t *testing.T) {
	owner, viewer := primitive.NewObjectID(), primitive.NewObjectID()
	f := newVideoFixture(owner, viewer)
	v := publishedVideo(owner)
	v.IsPublished = false
	videoID := f.videos.put(v)

	_, err := f.svc.Get(context.Background(), videoID, viewer)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	video, err := f.svc.Get(context.Background(), videoID, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, video.Views)
}

func TestDeleteVideo(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	videoID := f.videos.put(publishedVideo(owner))
	_, err := f.comments.Create(context.Background(), &entities.Comment{Content: "nice", Video: videoID, Owner: owner})
	require.NoError(t, err)
	_, err = f.likes.Create(context.Background(), entities.LikeTargetVideo, videoID, owner)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), videoID, owner))

	assert.Equal(t, 1, f.blobs.deletesOf("videos/k/master.m3u8"))
	assert.Equal(t, 1, f.blobs.deletesOf("thumbnails/k.jpg"))
	_, err = f.videos.FindByID(context.Background(), videoID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(fromRepo(err, "video")))

	n, _ := f.likes.Count(context.Background(), entities.LikeTargetVideo, videoID)
	assert.Zero(t, n)
	assert.Empty(t, f.comments.comments)
	assert.Equal(t, []primitive.ObjectID{videoID}, f.playlists.pulled)

	require.Len(t, f.events.msgs, 1)
	assert.Equal(t, []string{constant.RoutingVideoDeleted}, f.events.events)
	assert.Equal(t, "videos/k", f.events.msgs[0].StoragePrefix)
	assert.Equal(t, videoID.Hex(), f.events.msgs[0].VideoId)
}

func TestDeleteVideoForbidden(t *testing.T) {
	owner, other := primitive.NewObjectID(), primitive.NewObjectID()
	f := newVideoFixture(owner, other)
	videoID := f.videos.put(publishedVideo(owner))

	err := f.svc.Delete(context.Background(), videoID, other)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Empty(t, f.blobs.deletes)

	_, err = f.videos.FindByID(context.Background(), videoID)
	assert.NoError(t, err)
}

func TestDeleteVideoStorageFailureKeepsRecord(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	f.blobs.deleteErr = errors.New("bucket unreachable")
	videoID := f.videos.put(publishedVideo(owner))

	err := f.svc.Delete(context.Background(), videoID, owner)
	assert.Equal(t, apperror.KindStorage, apperror.KindOf(err))

	_, err = f.videos.FindByID(context.Background(), videoID)
	assert.NoError(t, err)
	assert.Empty(t, f.events.events)
}

func TestUpdateVideoReplacesThumbnail(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	videoID := f.videos.put(publishedVideo(owner))
	thumb := writeTempFile(t, t.TempDir(), "new.png")

	video, err := f.svc.Update(context.Background(), videoID, owner, dto.UpdateVideoRequest{
		Title:         "  Renamed ",
		Description:   "Updated",
		ThumbnailPath: thumb,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", video.Title)
	assert.Equal(t, "Updated", video.Description)
	assert.NotEqual(t, "thumbnails/k.jpg", video.ThumbnailPublicID)
	assert.Equal(t, 1, f.blobs.deletesOf("thumbnails/k.jpg"))
	assertRemoved(t, thumb)
}

func TestUpdateVideoReleasesNewThumbnailWhenSaveFails(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	videoID := f.videos.put(publishedVideo(owner))
	f.videos.updateErr = errors.New("write conflict")
	thumb := writeTempFile(t, t.TempDir(), "new.png")

	_, err := f.svc.Update(context.Background(), videoID, owner, dto.UpdateVideoRequest{
		Title:         "Renamed",
		Description:   "Updated",
		ThumbnailPath: thumb,
	})
	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))

	require.Len(t, f.blobs.uploads, 1)
	assert.Equal(t, 1, f.blobs.deletesOf(f.blobs.uploads[0]))
	assert.Zero(t, f.blobs.deletesOf("thumbnails/k.jpg"))
	assertRemoved(t, thumb)
}

func TestUpdateVideoValidation(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	videoID := f.videos.put(publishedVideo(owner))

	_, err := f.svc.Update(context.Background(), videoID, owner, dto.UpdateVideoRequest{Title: "", Description: "x"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Zero(t, f.blobs.uploadCount())
}

func TestTogglePublish(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	videoID := f.videos.put(publishedVideo(owner))

	video, err := f.svc.TogglePublish(context.Background(), videoID, owner)
	require.NoError(t, err)
	assert.False(t, video.IsPublished)

	video, err = f.svc.TogglePublish(context.Background(), videoID, owner)
	require.NoError(t, err)
	assert.True(t, video.IsPublished)
}

func TestListByOwnerHidesUnpublishedFromOthers(t *testing.T) {
	owner := primitive.NewObjectID()
	f := newVideoFixture(owner)
	f.videos.put(publishedVideo(owner))
	hidden := publishedVideo(owner)
	hidden.IsPublished = false
	f.videos.put(hidden)

	mine, err := f.svc.ListByOwner(context.Background(), owner, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := f.svc.ListByOwner(context.Background(), owner, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
