package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username           string               `bson:"username" json:"username"`
	Email              string               `bson:"email" json:"email"`
	FullName           string               `bson:"fullName" json:"fullName"`
	Avatar             string               `bson:"avatar" json:"avatar"`
	AvatarPublicID     string               `bson:"avatarPublicId,omitempty" json:"-"`
	CoverImage         string               `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CoverImagePublicID string               `bson:"coverImagePublicId,omitempty" json:"-"`
	WatchHistory       []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Channel is the public projection of a user joined into other documents.
type Channel struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}
