package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"crazzzytube/constant"
	"crazzzytube/entities"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *entities.Tweet) (*entities.Tweet, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entities.Tweet, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entities.Tweet, error)
	ListAll(ctx context.Context) ([]entities.Tweet, error)
}

type tweetRepo struct {
	collection[entities.Tweet]
}

func NewTweetRepository(db *mongo.Database) TweetRepository {
	return &tweetRepo{collection: newCollection[entities.Tweet](db, constant.CollectionTweets)}
}

func (r *tweetRepo) Create(ctx context.Context, tweet *entities.Tweet) (*entities.Tweet, error) {
	if tweet.ID.IsZero() {
		tweet.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now

	if _, err := r.insert(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (r *tweetRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Tweet, error) {
	return r.findByID(ctx, id)
}

func (r *tweetRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entities.Tweet, error) {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"content": content}})
}

func (r *tweetRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Tweet, error) {
	return r.deleteByID(ctx, id)
}

func (r *tweetRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entities.Tweet, error) {
	return r.find(ctx, bson.M{"owner": owner}, newestFirst())
}

func (r *tweetRepo) ListAll(ctx context.Context) ([]entities.Tweet, error) {
	return r.find(ctx, bson.M{}, newestFirst())
}
