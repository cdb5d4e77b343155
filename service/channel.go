package service

import (
	"context"
	"errors"
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
	"crazzzytube/pkg/storage"
	"crazzzytube/repository"
)

type DashboardService interface {
	Stats(ctx context.Context, ownerID primitive.ObjectID) (*dto.ChannelStats, error)
	Videos(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Video, error)
}

type dashboardService struct {
	dashboard repository.DashboardRepository
	videos    repository.VideoRepository
}

func NewDashboardService(dashboard repository.DashboardRepository, videos repository.VideoRepository) DashboardService {
	return &dashboardService{dashboard: dashboard, videos: videos}
}

func (s *dashboardService) Stats(ctx context.Context, ownerID primitive.ObjectID) (*dto.ChannelStats, error) {
	stats, err := s.dashboard.ChannelStats(ctx, ownerID)
	if err != nil {
		return nil, fromRepo(err, "channel stats")
	}
	return stats, nil
}

func (s *dashboardService) Videos(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Video, error) {
	videos, err := s.videos.ListByOwner(ctx, ownerID, false)
	if err != nil {
		return nil, fromRepo(err, "video")
	}
	return videos, nil
}

type UserService interface {
	Current(ctx context.Context, userID primitive.ObjectID) (*entities.User, error)
	ChannelProfile(ctx context.Context, username string, viewerID primitive.ObjectID) (*dto.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error)
	PublishJobs(ctx context.Context, userID primitive.ObjectID) ([]*entities.PublishJob, error)
	PublishJob(ctx context.Context, userID primitive.ObjectID, jobID uuid.UUID) (*entities.PublishJob, error)
	UpdateAccount(ctx context.Context, userID primitive.ObjectID, req dto.UpdateAccountRequest) (*entities.User, error)
	// UpdateAvatar and UpdateCoverImage store the image at path, point the
	// profile at it and release the previous image. The file is always
	// removed on return.
	UpdateAvatar(ctx context.Context, userID primitive.ObjectID, path string) (*entities.User, error)
	UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, path string) (*entities.User, error)
}

type userService struct {
	users repository.UserRepository
	jobs  repository.JobRepository
	blobs storage.BlobStore
}

func NewUserService(users repository.UserRepository, jobs repository.JobRepository, blobs storage.BlobStore) UserService {
	return &userService{users: users, jobs: jobs, blobs: blobs}
}

func (s *userService) Current(ctx context.Context, userID primitive.ObjectID) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	return user, nil
}

func (s *userService) ChannelProfile(ctx context.Context, username string, viewerID primitive.ObjectID) (*dto.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("username is required")
	}
	profile, err := s.users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		return nil, fromRepo(err, "channel")
	}
	return profile, nil
}

func (s *userService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error) {
	history, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	return history, nil
}

func (s *userService) PublishJobs(ctx context.Context, userID primitive.ObjectID) ([]*entities.PublishJob, error) {
	if s.jobs == nil {
		return []*entities.PublishJob{}, nil
	}
	jobs, err := s.jobs.ListJobsByOwner(ctx, userID.Hex(), 50)
	if err != nil {
		return nil, fromRepo(err, "publish job")
	}
	return jobs, nil
}

func (s *userService) PublishJob(ctx context.Context, userID primitive.ObjectID, jobID uuid.UUID) (*entities.PublishJob, error) {
	if s.jobs == nil {
		return nil, apperror.NotFound("publish job not found")
	}
	job, err := s.jobs.FindJobById(ctx, jobID)
	if err != nil {
		return nil, fromRepo(err, "publish job")
	}
	if job.OwnerId != userID.Hex() {
		return nil, apperror.NotFound("publish job not found")
	}
	return job, nil
}

func (s *userService) UpdateAccount(ctx context.Context, userID primitive.ObjectID, req dto.UpdateAccountRequest) (*entities.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.UpdateByID(ctx, userID, bson.M{
		"fullName": req.FullName,
		"username": req.Username,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Validation("username is already taken")
	}
	if err != nil {
		return nil, fromRepo(err, "user")
	}
	return user, nil
}

// profileImage names the document fields and key prefix of one user image.
type profileImage struct {
	field    string
	idKey    string
	prefix   string
	publicID func(*entities.User) string
}

var (
	avatarImage = profileImage{
		field:    "avatar",
		idKey:    "avatarPublicId",
		prefix:   "avatars",
		publicID: func(u *entities.User) string { return u.AvatarPublicID },
	}
	coverImage = profileImage{
		field:    "coverImage",
		idKey:    "coverImagePublicId",
		prefix:   "covers",
		publicID: func(u *entities.User) string { return u.CoverImagePublicID },
	}
)

func (s *userService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, path string) (*entities.User, error) {
	return s.replaceImage(ctx, userID, path, avatarImage)
}

func (s *userService) UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, path string) (*entities.User, error) {
	return s.replaceImage(ctx, userID, path, coverImage)
}

func (s *userService) replaceImage(ctx context.Context, userID primitive.ObjectID, path string, img profileImage) (*entities.User, error) {
	defer removeFiles(ctx, path)

	if path == "" {
		return nil, apperror.Validation(img.field + " is required")
	}
	if err := checkReadable(path); err != nil {
		return nil, apperror.Validation(img.field + " is not a readable file")
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "user")
	}

	key := storage.ObjectKey(img.prefix, uuid.NewString()+strings.ToLower(filepath.Ext(path)))
	res, err := s.blobs.Upload(ctx, key, path)
	if err != nil {
		return nil, apperror.Storage(img.field+" upload failed", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("user_id", userID.Hex()).Str("field", img.field).Logger()
	updated, err := s.users.UpdateByID(ctx, userID, bson.M{
		img.field: res.URL,
		img.idKey: res.PublicID,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, res.PublicID, constant.ResourceTypeImage); delErr != nil {
			logger.Warn().Err(delErr).Str("key", res.PublicID).Msg("failed to delete unused image")
		}
		return nil, fromRepo(err, "user")
	}

	if old := img.publicID(current); old != "" {
		if err := s.blobs.Delete(ctx, old, constant.ResourceTypeImage); err != nil {
			logger.Warn().Err(err).Str("key", old).Msg("failed to delete replaced image")
		}
	}
	return updated, nil
}
