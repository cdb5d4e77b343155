package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crazzzytube/constant"
)

var indexes = map[string][]mongo.IndexModel{
	constant.CollectionVideos: {
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	constant.CollectionUsers: {
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	constant.CollectionComments: {
		{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	constant.CollectionLikes: {
		{Keys: bson.D{{Key: "video", Value: 1}, {Key: "likedBy", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"video": bson.M{"$exists": true}})},
		{Keys: bson.D{{Key: "comment", Value: 1}, {Key: "likedBy", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"comment": bson.M{"$exists": true}})},
		{Keys: bson.D{{Key: "tweet", Value: 1}, {Key: "likedBy", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"tweet": bson.M{"$exists": true}})},
	},
	constant.CollectionSubscriptions: {
		{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "channel", Value: 1}}},
	},
	constant.CollectionPlaylists: {
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "videos", Value: 1}}},
	},
	constant.CollectionTweets: {
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
}

// EnsureIndexes creates the indexes every repository query relies on.
// The unique like and subscription indexes back the toggle semantics.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
