package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/entities"
	"crazzzytube/repository"
)

type TweetService interface {
	Create(ctx context.Context, ownerID primitive.ObjectID, content string) (*entities.Tweet, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Tweet, error)
	ListAll(ctx context.Context) ([]entities.Tweet, error)
	Update(ctx context.Context, tweetID, ownerID primitive.ObjectID, content string) (*entities.Tweet, error)
	Delete(ctx context.Context, tweetID, ownerID primitive.ObjectID) error
}

type tweetService struct {
	tweets repository.TweetRepository
	likes  repository.LikeRepository
}

func NewTweetService(tweets repository.TweetRepository, likes repository.LikeRepository) TweetService {
	return &tweetService{tweets: tweets, likes: likes}
}

func (s *tweetService) Create(ctx context.Context, ownerID primitive.ObjectID, content string) (*entities.Tweet, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	tweet, err := s.tweets.Create(ctx, &entities.Tweet{Content: content, Owner: ownerID})
	if err != nil {
		return nil, fromRepo(err, "tweet")
	}
	return tweet, nil
}

func (s *tweetService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]entities.Tweet, error) {
	tweets, err := s.tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fromRepo(err, "tweet")
	}
	return tweets, nil
}

func (s *tweetService) ListAll(ctx context.Context) ([]entities.Tweet, error) {
	tweets, err := s.tweets.ListAll(ctx)
	if err != nil {
		return nil, fromRepo(err, "tweet")
	}
	return tweets, nil
}

func (s *tweetService) Update(ctx context.Context, tweetID, ownerID primitive.ObjectID, content string) (*entities.Tweet, error) {
	content, err := requireContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, tweetID, ownerID); err != nil {
		return nil, err
	}
	tweet, err := s.tweets.UpdateContent(ctx, tweetID, content)
	if err != nil {
		return nil, fromRepo(err, "tweet")
	}
	return tweet, nil
}

func (s *tweetService) Delete(ctx context.Context, tweetID, ownerID primitive.ObjectID) error {
	if err := s.checkOwner(ctx, tweetID, ownerID); err != nil {
		return err
	}
	if _, err := s.tweets.DeleteByID(ctx, tweetID); err != nil {
		return fromRepo(err, "tweet")
	}
	if _, err := s.likes.DeleteByTarget(ctx, entities.LikeTargetTweet, tweetID); err != nil {
		return fromRepo(err, "like")
	}
	return nil
}

func (s *tweetService) checkOwner(ctx context.Context, tweetID, ownerID primitive.ObjectID) error {
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return fromRepo(err, "tweet")
	}
	if tweet.Owner != ownerID {
		return apperror.Forbidden("only the author can modify this tweet")
	}
	return nil
}
