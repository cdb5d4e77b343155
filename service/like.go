package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/entities"
	"crazzzytube/repository"
)

type LikeService interface {
	// Toggle likes the target when the user has not liked it yet and unlikes
	// it otherwise. It returns whether the target is liked afterwards.
	Toggle(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (bool, error)
	LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error)
}

type likeService struct {
	likes    repository.LikeRepository
	videos   repository.VideoRepository
	comments repository.CommentRepository
	tweets   repository.TweetRepository
}

func NewLikeService(
	likes repository.LikeRepository,
	videos repository.VideoRepository,
	comments repository.CommentRepository,
	tweets repository.TweetRepository,
) LikeService {
	return &likeService{likes: likes, videos: videos, comments: comments, tweets: tweets}
}

func (s *likeService) Toggle(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (bool, error) {
	if err := s.targetExists(ctx, target, targetID); err != nil {
		return false, err
	}

	existing, err := s.likes.Find(ctx, target, targetID, userID)
	switch {
	case err == nil:
		if err := s.likes.DeleteByID(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return false, fromRepo(err, "like")
		}
		return false, nil
	case errors.Is(err, repository.ErrNotFound):
		_, err := s.likes.Create(ctx, target, targetID, userID)
		if err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return false, fromRepo(err, "like")
		}
		return true, nil
	default:
		return false, fromRepo(err, "like")
	}
}

func (s *likeService) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error) {
	videos, err := s.likes.LikedVideos(ctx, userID)
	if err != nil {
		return nil, fromRepo(err, "like")
	}
	return videos, nil
}

func (s *likeService) targetExists(ctx context.Context, target entities.LikeTarget, id primitive.ObjectID) error {
	var err error
	switch target {
	case entities.LikeTargetVideo:
		_, err = s.videos.FindByID(ctx, id)
	case entities.LikeTargetComment:
		_, err = s.comments.FindByID(ctx, id)
	case entities.LikeTargetTweet:
		_, err = s.tweets.FindByID(ctx, id)
	default:
		return apperror.Validation("unknown like target " + string(target))
	}
	return fromRepo(err, string(target))
}
