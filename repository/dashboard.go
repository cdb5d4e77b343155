package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"crazzzytube/constant"
	"crazzzytube/dto"
)

type DashboardRepository interface {
	ChannelStats(ctx context.Context, owner primitive.ObjectID) (*dto.ChannelStats, error)
}

type dashboardRepo struct {
	videos        *mongo.Collection
	subscriptions *mongo.Collection
}

func NewDashboardRepository(db *mongo.Database) DashboardRepository {
	return &dashboardRepo{
		videos:        db.Collection(constant.CollectionVideos),
		subscriptions: db.Collection(constant.CollectionSubscriptions),
	}
}

func (r *dashboardRepo) ChannelStats(ctx context.Context, owner primitive.ObjectID) (*dto.ChannelStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": owner}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionLikes,
			"localField":   "_id",
			"foreignField": "video",
			"as":           "likes",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalVideos": bson.M{"$sum": 1},
			"totalViews":  bson.M{"$sum": "$views"},
			"totalLikes":  bson.M{"$sum": bson.M{"$size": "$likes"}},
		}}},
	}

	rows, err := aggregate[dto.ChannelStats](ctx, r.videos, pipeline)
	if err != nil {
		return nil, err
	}

	stats := &dto.ChannelStats{}
	if len(rows) > 0 {
		*stats = rows[0]
	}

	subscribers, err := r.subscriptions.CountDocuments(ctx, bson.M{"channel": owner})
	if err != nil {
		return nil, convertMongoError(err)
	}
	stats.TotalSubscribers = subscribers
	return stats, nil
}
