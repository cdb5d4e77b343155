package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Video     primitive.ObjectID `bson:"video" json:"videoId"`
	Owner     primitive.ObjectID `bson:"owner" json:"ownerId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CommentView is a comment joined with its author and like count.
type CommentView struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Owner     *Channel           `bson:"owner" json:"owner"`
	LikeCount int64              `bson:"likeCount" json:"likeCount"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
