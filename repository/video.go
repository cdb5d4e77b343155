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

type VideoRepository interface {
	Create(ctx context.Context, video *entities.Video) (*entities.Video, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Video, error)
	// FindDetail joins the owner's channel and subscriber count.
	FindDetail(ctx context.Context, id primitive.ObjectID) (*entities.VideoDetail, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.Video, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Video, error)
	// IncrementViews adds one to the view counter server-side and returns
	// the updated document.
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*entities.Video, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID, publishedOnly bool) ([]entities.Video, error)
	ListPublished(ctx context.Context) ([]entities.VideoView, error)
}

type videoRepo struct {
	collection[entities.Video]
}

func NewVideoRepository(db *mongo.Database) VideoRepository {
	return &videoRepo{collection: newCollection[entities.Video](db, constant.CollectionVideos)}
}

func (r *videoRepo) Create(ctx context.Context, video *entities.Video) (*entities.Video, error) {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	if _, err := r.insert(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (r *videoRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Video, error) {
	return r.findByID(ctx, id)
}

func (r *videoRepo) FindDetail(ctx context.Context, id primitive.ObjectID) (*entities.VideoDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}
	pipeline = append(pipeline, ownerLookup("owner", "ownerChannel")...)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionSubscriptions,
			"localField":   "owner",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"subscribersCount": bson.M{"$size": "$subscribers"}}}},
		bson.D{{Key: "$project", Value: bson.M{"subscribers": 0}}},
	)

	details, err := aggregate[entities.VideoDetail](ctx, r.coll, pipeline)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrNotFound
	}
	return &details[0], nil
}

func (r *videoRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*entities.Video, error) {
	return r.updateByID(ctx, id, bson.M{"$set": set})
}

func (r *videoRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Video, error) {
	return r.deleteByID(ctx, id)
}

func (r *videoRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) (*entities.Video, error) {
	return r.updateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *videoRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID, publishedOnly bool) ([]entities.Video, error) {
	filter := bson.M{"owner": owner}
	if publishedOnly {
		filter["isPublished"] = true
	}
	return r.find(ctx, filter, newestFirst())
}

func (r *videoRepo) ListPublished(ctx context.Context) ([]entities.VideoView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isPublished": true}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
	pipeline = append(pipeline, ownerLookup("owner", "ownerChannel")...)
	return aggregate[entities.VideoView](ctx, r.coll, pipeline)
}
