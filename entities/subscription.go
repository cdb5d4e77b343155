package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriberId"`
	Channel    primitive.ObjectID `bson:"channel" json:"channelId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
