package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/pkg/storage"
	"crazzzytube/pkg/transcoder"
	"crazzzytube/repository"
)

type fakeVideoRepo struct {
	mu          sync.Mutex
	videos      map[primitive.ObjectID]*entities.Video
	createCalls int
	createErr   error
	updateErr   error
	// subscribers is reported as every video's owner subscriber count.
	subscribers int64
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: map[primitive.ObjectID]*entities.Video{}}
}

func (r *fakeVideoRepo) put(v entities.Video) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	r.videos[v.ID] = &v
	return v.ID
}

func (r *fakeVideoRepo) Create(_ context.Context, video *entities.Video) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	video.ID = primitive.NewObjectID()
	stored := *video
	r.videos[video.ID] = &stored
	return video, nil
}

func (r *fakeVideoRepo) FindByID(_ context.Context, id primitive.ObjectID) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (r *fakeVideoRepo) FindDetail(_ context.Context, id primitive.ObjectID) (*entities.VideoDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entities.VideoDetail{
		VideoView: entities.VideoView{
			Video:        *v,
			OwnerChannel: &entities.Channel{ID: v.Owner, Username: "owner"},
		},
		SubscribersCount: r.subscribers,
	}, nil
}

func (r *fakeVideoRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for key, value := range set {
		switch key {
		case "title":
			v.Title = value.(string)
		case "description":
			v.Description = value.(string)
		case "thumbnail":
			v.Thumbnail = value.(string)
		case "thumbnailPublicId":
			v.ThumbnailPublicID = value.(string)
		case "isPublished":
			v.IsPublished = value.(bool)
		}
	}
	out := *v
	return &out, nil
}

func (r *fakeVideoRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.videos, id)
	return v, nil
}

func (r *fakeVideoRepo) IncrementViews(_ context.Context, id primitive.ObjectID) (*entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v.Views++
	out := *v
	return &out, nil
}

func (r *fakeVideoRepo) ListByOwner(_ context.Context, owner primitive.ObjectID, publishedOnly bool) ([]entities.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entities.Video{}
	for _, v := range r.videos {
		if v.Owner == owner && (!publishedOnly || v.IsPublished) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) ListPublished(context.Context) ([]entities.VideoView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entities.VideoView{}
	for _, v := range r.videos {
		if v.IsPublished {
			out = append(out, entities.VideoView{Video: *v})
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]*entities.User
	updateErr error
}

func newFakeUserRepo(users ...primitive.ObjectID) *fakeUserRepo {
	r := &fakeUserRepo{users: map[primitive.ObjectID]*entities.User{}}
	for _, u := range users {
		r.users[u] = &entities.User{ID: u, WatchHistory: []primitive.ObjectID{}}
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	out.WatchHistory = slices.Clone(u.WatchHistory)
	return &out, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for key, value := range set {
		v := value.(string)
		switch key {
		case "fullName":
			u.FullName = v
		case "username":
			u.Username = v
		case "avatar":
			u.Avatar = v
		case "avatarPublicId":
			u.AvatarPublicID = v
		case "coverImage":
			u.CoverImage = v
		case "coverImagePublicId":
			u.CoverImagePublicID = v
		}
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) AddToWatchHistory(_ context.Context, userID, videoID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if !slices.Contains(u.WatchHistory, videoID) {
		u.WatchHistory = append(u.WatchHistory, videoID)
	}
	return nil
}

func (r *fakeUserRepo) WatchHistory(context.Context, primitive.ObjectID) ([]entities.VideoView, error) {
	return []entities.VideoView{}, nil
}

func (r *fakeUserRepo) ChannelProfile(_ context.Context, username string, _ primitive.ObjectID) (*dto.ChannelProfile, error) {
	return &dto.ChannelProfile{Username: username}, nil
}

type fakeBlobStore struct {
	mu        sync.Mutex
	uploads   []string
	deletes   []string
	swept     []string
	failKey   func(key string) bool
	deleteErr error
	sweepErr  error
	noURL     func(key string) bool
}

func (b *fakeBlobStore) Upload(_ context.Context, key string, filePath string) (storage.UploadResult, error) {
	if _, err := os.Stat(filePath); err != nil {
		return storage.UploadResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploads = append(b.uploads, key)
	if b.failKey != nil && b.failKey(key) {
		return storage.UploadResult{}, errors.New("blob store unavailable")
	}
	if b.noURL != nil && b.noURL(key) {
		return storage.UploadResult{}, nil
	}
	return storage.UploadResult{URL: "http://blob.test/" + key, PublicID: key}, nil
}

func (b *fakeBlobStore) Delete(_ context.Context, publicID string, _ constant.ResourceType) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes = append(b.deletes, publicID)
	return b.deleteErr
}

func (b *fakeBlobStore) RemovePrefix(_ context.Context, prefix string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swept = append(b.swept, prefix)
	return 3, b.sweepErr
}

func (b *fakeBlobStore) uploadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.uploads)
}

func (b *fakeBlobStore) deletesOf(publicID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.deletes {
		if d == publicID {
			n++
		}
	}
	return n
}

// fakeTranscoder writes a small HLS layout into outputDir.
type fakeTranscoder struct {
	calls        int
	duration     float64
	err          error
	omitManifest bool
}

func (f *fakeTranscoder) Transcode(_ context.Context, inputPath, outputDir string) (*transcoder.HLSOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(inputPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	out := &transcoder.HLSOutput{Duration: f.duration}
	for _, name := range []string{constant.ManifestName, "360p.m3u8", "360p_000.ts", "360p_001.ts"} {
		p := filepath.Join(outputDir, name)
		if err := os.WriteFile(p, []byte(name), 0o644); err != nil {
			return nil, err
		}
		if name == constant.ManifestName {
			if !f.omitManifest {
				out.ManifestPath = p
			}
			continue
		}
		out.SegmentPaths = append(out.SegmentPaths, p)
	}
	return out, nil
}

type fakeLedger struct {
	mu     sync.Mutex
	states []constant.PublishState
	kind   string
}

func (l *fakeLedger) AutoMigrate(context.Context) error { return nil }

func (l *fakeLedger) CreateJob(_ context.Context, job *entities.PublishJob) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, job.State)
	return nil
}

func (l *fakeLedger) FindJobById(context.Context, uuid.UUID) (*entities.PublishJob, error) {
	return nil, repository.ErrNotFound
}

func (l *fakeLedger) ListJobsByOwner(context.Context, string, int) ([]*entities.PublishJob, error) {
	return nil, nil
}

func (l *fakeLedger) UpdateStateJob(_ context.Context, state constant.PublishState, _ uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
	return nil
}

func (l *fakeLedger) CompleteJob(context.Context, uuid.UUID, string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, constant.PublishStateDone)
	return nil
}

func (l *fakeLedger) AbortJob(_ context.Context, _ uuid.UUID, kind string, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, constant.PublishStateAborted)
	l.kind = kind
	return nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []string
	msgs   []dto.VideoEventMessage
}

func (e *fakeEvents) Publish(_ context.Context, routingKey string, event any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, routingKey)
	if msg, ok := event.(dto.VideoEventMessage); ok {
		e.msgs = append(e.msgs, msg)
	}
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*entities.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[primitive.ObjectID]*entities.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *entities.Comment) (*entities.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = primitive.NewObjectID()
	stored := *c
	r.comments[c.ID] = &stored
	return c, nil
}

func (r *fakeCommentRepo) FindByID(_ context.Context, id primitive.ObjectID) (*entities.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (r *fakeCommentRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*entities.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Content = content
	out := *c
	return &out, nil
}

func (r *fakeCommentRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*entities.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.comments, id)
	return c, nil
}

func (r *fakeCommentRepo) DeleteByVideo(_ context.Context, videoID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.Video == videoID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) ListByVideo(context.Context, primitive.ObjectID) ([]entities.CommentView, error) {
	return []entities.CommentView{}, nil
}

type likeKey struct {
	target   entities.LikeTarget
	targetID primitive.ObjectID
	userID   primitive.ObjectID
}

type fakeLikeRepo struct {
	mu    sync.Mutex
	likes map[likeKey]primitive.ObjectID
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{likes: map[likeKey]primitive.ObjectID{}}
}

func (r *fakeLikeRepo) Find(_ context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.likes[likeKey{target, targetID, userID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entities.Like{ID: id, LikedBy: userID}, nil
}

func (r *fakeLikeRepo) Create(_ context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := likeKey{target, targetID, userID}
	if _, ok := r.likes[k]; ok {
		return nil, repository.ErrDuplicate
	}
	id := primitive.NewObjectID()
	r.likes[k] = id
	return &entities.Like{ID: id, LikedBy: userID}, nil
}

func (r *fakeLikeRepo) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.likes {
		if v == id {
			delete(r.likes, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeLikeRepo) DeleteByTarget(_ context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.likes {
		if k.target == target && k.targetID == targetID {
			delete(r.likes, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) Count(_ context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.likes {
		if k.target == target && k.targetID == targetID {
			n++
		}
	}
	return n, nil
}

func (r *fakeLikeRepo) LikedVideos(context.Context, primitive.ObjectID) ([]entities.VideoView, error) {
	return []entities.VideoView{}, nil
}

type fakePlaylistRepo struct {
	mu        sync.Mutex
	playlists map[primitive.ObjectID]*entities.Playlist
	pulled    []primitive.ObjectID
}

func newFakePlaylistRepo() *fakePlaylistRepo {
	return &fakePlaylistRepo{playlists: map[primitive.ObjectID]*entities.Playlist{}}
}

func (r *fakePlaylistRepo) Create(_ context.Context, p *entities.Playlist) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	stored := *p
	r.playlists[p.ID] = &stored
	return p, nil
}

func (r *fakePlaylistRepo) FindByID(_ context.Context, id primitive.ObjectID) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *p
	out.Videos = slices.Clone(p.Videos)
	return &out, nil
}

func (r *fakePlaylistRepo) UpdateByID(_ context.Context, id primitive.ObjectID, set bson.M) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name, ok := set["name"].(string); ok {
		p.Name = name
	}
	if description, ok := set["description"].(string); ok {
		p.Description = description
	}
	out := *p
	return &out, nil
}

func (r *fakePlaylistRepo) DeleteByID(_ context.Context, id primitive.ObjectID) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.playlists, id)
	return p, nil
}

func (r *fakePlaylistRepo) ListByOwner(context.Context, primitive.ObjectID) ([]entities.Playlist, error) {
	return []entities.Playlist{}, nil
}

func (r *fakePlaylistRepo) AddVideo(_ context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !slices.Contains(p.Videos, videoID) {
		p.Videos = append(p.Videos, videoID)
	}
	out := *p
	out.Videos = slices.Clone(p.Videos)
	return &out, nil
}

func (r *fakePlaylistRepo) RemoveVideo(_ context.Context, id, videoID primitive.ObjectID) (*entities.Playlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.playlists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Videos = slices.DeleteFunc(p.Videos, func(v primitive.ObjectID) bool { return v == videoID })
	out := *p
	out.Videos = slices.Clone(p.Videos)
	return &out, nil
}

func (r *fakePlaylistRepo) PullVideoEverywhere(_ context.Context, videoID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulled = append(r.pulled, videoID)
	return 0, nil
}

// writeTempFile creates a file under dir and returns its path.
func writeTempFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(strings.Repeat("x", 16)), 0o644))
	return p
}
