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

type CommentRepository interface {
	Create(ctx context.Context, comment *entities.Comment) (*entities.Comment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entities.Comment, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Comment, error)
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]entities.CommentView, error)
}

type commentRepo struct {
	collection[entities.Comment]
}

func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepo{collection: newCollection[entities.Comment](db, constant.CollectionComments)}
}

func (r *commentRepo) Create(ctx context.Context, comment *entities.Comment) (*entities.Comment, error) {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	if _, err := r.insert(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*entities.Comment, error) {
	return r.findByID(ctx, id)
}

func (r *commentRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entities.Comment, error) {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{"content": content}})
}

func (r *commentRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*entities.Comment, error) {
	return r.deleteByID(ctx, id)
}

func (r *commentRepo) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return r.deleteMany(ctx, bson.M{"video": videoID})
}

func (r *commentRepo) ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]entities.CommentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"video": videoID}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
	pipeline = append(pipeline, ownerLookup("owner", "owner")...)
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         constant.CollectionLikes,
			"localField":   "_id",
			"foreignField": "comment",
			"as":           "likes",
		}}},
		bson.D{{Key: "$addFields", Value: bson.M{"likeCount": bson.M{"$size": "$likes"}}}},
		bson.D{{Key: "$project", Value: bson.M{"likes": 0}}},
	)
	return aggregate[entities.CommentView](ctx, r.coll, pipeline)
}
