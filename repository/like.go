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

type LikeRepository interface {
	Find(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error)
	Create(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	DeleteByTarget(ctx context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error)
	Count(ctx context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error)
	LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error)
}

type likeRepo struct {
	collection[entities.Like]
}

func NewLikeRepository(db *mongo.Database) LikeRepository {
	return &likeRepo{collection: newCollection[entities.Like](db, constant.CollectionLikes)}
}

func (r *likeRepo) Find(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error) {
	return r.findOne(ctx, bson.M{string(target): targetID, "likedBy": userID})
}

func (r *likeRepo) Create(ctx context.Context, target entities.LikeTarget, targetID, userID primitive.ObjectID) (*entities.Like, error) {
	like := &entities.Like{
		ID:        primitive.NewObjectID(),
		LikedBy:   userID,
		CreatedAt: time.Now().UTC(),
	}
	switch target {
	case entities.LikeTargetVideo:
		like.Video = &targetID
	case entities.LikeTargetComment:
		like.Comment = &targetID
	case entities.LikeTargetTweet:
		like.Tweet = &targetID
	}

	if _, err := r.insert(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

func (r *likeRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.deleteByID(ctx, id)
	return err
}

func (r *likeRepo) DeleteByTarget(ctx context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{string(target): targetID})
}

func (r *likeRepo) Count(ctx context.Context, target entities.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	return r.count(ctx, bson.M{string(target): targetID})
}

func (r *likeRepo) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error) {
	videoPipeline := bson.A{}
	for _, stage := range ownerLookup("owner", "ownerChannel") {
		videoPipeline = append(videoPipeline, stage)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"likedBy": userID, "video": bson.M{"$exists": true}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionVideos,
			"localField":   "video",
			"foreignField": "_id",
			"as":           "likedVideo",
			"pipeline":     videoPipeline,
		}}},
		{{Key: "$unwind", Value: "$likedVideo"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$likedVideo"}}},
	}
	return aggregate[entities.VideoView](ctx, r.coll, pipeline)
}
