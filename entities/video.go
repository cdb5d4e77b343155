package entities

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a published (or unpublished) HLS asset. VideoFile points at the
// top-level manifest; the remaining segments live under StoragePrefix.
type Video struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Owner             primitive.ObjectID `bson:"owner" json:"ownerId"`
	VideoFile         string             `bson:"videoFile" json:"videoUrl"`
	VideoPublicID     string             `bson:"videoPublicId" json:"-"`
	Thumbnail         string             `bson:"thumbnail" json:"thumbnailUrl"`
	ThumbnailPublicID string             `bson:"thumbnailPublicId" json:"-"`
	StoragePrefix     string             `bson:"storagePrefix" json:"-"`
	Duration          float64            `bson:"duration" json:"duration"`
	Views             int64              `bson:"views" json:"views"`
	IsPublished       bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (v *Video) OwnedBy(userID primitive.ObjectID) bool {
	return v.Owner == userID
}

// VideoView is a video joined with its owner's channel.
type VideoView struct {
	Video        `bson:",inline"`
	OwnerChannel *Channel `bson:"ownerChannel,omitempty" json:"owner,omitempty"`
}

// VideoDetail is the playback view: the video, its owner and the owner's
// subscriber count.
type VideoDetail struct {
	VideoView        `bson:",inline"`
	SubscribersCount int64 `bson:"subscribersCount" json:"subscribersCount"`
}
