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

type SubscriptionRepository interface {
	Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*entities.Subscription, error)
	Create(ctx context.Context, subscriber, channel primitive.ObjectID) (*entities.Subscription, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]entities.Channel, error)
	SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]entities.Channel, error)
}

type subscriptionRepo struct {
	collection[entities.Subscription]
}

func NewSubscriptionRepository(db *mongo.Database) SubscriptionRepository {
	return &subscriptionRepo{collection: newCollection[entities.Subscription](db, constant.CollectionSubscriptions)}
}

func (r *subscriptionRepo) Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*entities.Subscription, error) {
	return r.findOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
}

func (r *subscriptionRepo) Create(ctx context.Context, subscriber, channel primitive.ObjectID) (*entities.Subscription, error) {
	sub := &entities.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.insert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.deleteByID(ctx, id)
	return err
}

func (r *subscriptionRepo) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	return r.count(ctx, bson.M{"channel": channel})
}

func (r *subscriptionRepo) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]entities.Channel, error) {
	return r.joinUsers(ctx, bson.M{"channel": channel}, "subscriber")
}

func (r *subscriptionRepo) SubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]entities.Channel, error) {
	return r.joinUsers(ctx, bson.M{"subscriber": subscriber}, "channel")
}

// joinUsers returns the user on the userField side of every matching subscription.
func (r *subscriptionRepo) joinUsers(ctx context.Context, match bson.M, userField string) ([]entities.Channel, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
	}
	pipeline = append(pipeline, ownerLookup(userField, "user")...)
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{"user": bson.M{"$exists": true}}}},
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$user"}}},
	)
	return aggregate[entities.Channel](ctx, r.coll, pipeline)
}
