package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like targets exactly one of Video, Comment or Tweet.
type Like struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"videoId,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"commentId,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweetId,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)
