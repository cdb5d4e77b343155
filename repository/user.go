package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crazzzytube/constant"
	"crazzzytube/dto"
	"crazzzytube/entities"
)

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*entities.User, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// UpdateByID applies set and returns the updated user.
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.User, error)
	// AddToWatchHistory records videoID at most once in the user's history.
	AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error)
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*dto.ChannelProfile, error)
}

type userRepo struct {
	collection[entities.User]
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepo{collection: newCollection[entities.User](db, constant.CollectionUsers)}
}

func (r *userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entities.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"password": 0, "refreshToken": 0}))
}

func (r *userRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, convertMongoError(err)
	}
	return n > 0, nil
}

func (r *userRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.User, error) {
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *userRepo) AddToWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"watchHistory": videoID}},
	)
	if err != nil {
		return convertMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]entities.VideoView, error) {
	videoPipeline := bson.A{}
	for _, stage := range ownerLookup("owner", "ownerChannel") {
		videoPipeline = append(videoPipeline, stage)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionVideos,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "history",
			"pipeline":     videoPipeline,
		}}},
		{{Key: "$unwind", Value: "$history"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$history"}}},
	}
	return aggregate[entities.VideoView](ctx, r.coll, pipeline)
}

func (r *userRepo) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*dto.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionSubscriptions,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionSubscriptions,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$project", Value: bson.M{
			"username":          1,
			"fullName":          1,
			"avatar":            1,
			"coverImage":        1,
			"subscribersCount":  bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":      bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
		}}},
	}

	profiles, err := aggregate[dto.ChannelProfile](ctx, r.coll, pipeline)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}
