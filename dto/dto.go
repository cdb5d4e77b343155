package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishRequest is the transient input of one publish operation. VideoPath
// and ThumbnailPath are local temporary files owned by the pipeline.
type PublishRequest struct {
	Title         string `validate:"required,max=200"`
	Description   string `validate:"required,max=5000"`
	VideoPath     string `validate:"required"`
	ThumbnailPath string `validate:"required"`
	OwnerId       string `validate:"required,mongodb"`
}

type VideoResponse struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoUrl     string    `json:"videoUrl"`
	ThumbnailUrl string    `json:"thumbnailUrl"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	OwnerId      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpdateVideoRequest edits metadata; ThumbnailPath is optional.
type UpdateVideoRequest struct {
	Title         string `validate:"required,max=200"`
	Description   string `validate:"required,max=5000"`
	ThumbnailPath string
}

type ContentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type PlaylistRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

type UpdatePlaylistRequest struct {
	Name        string `json:"name" binding:"max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateAccountRequest edits the caller's public profile fields.
type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"required,max=100" validate:"required,max=100"`
	Username string `json:"username" binding:"required,max=50" validate:"required,max=50,alphanum"`
}

type LikeToggleResponse struct {
	Liked bool `json:"liked"`
}

type SubscriptionToggleResponse struct {
	Subscribed bool `json:"subscribed"`
}

type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos" bson:"totalVideos"`
	TotalViews       int64 `json:"totalViews" bson:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers" bson:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes" bson:"totalLikes"`
}

type ChannelProfile struct {
	Id               string `json:"id" bson:"_id"`
	Username         string `json:"username" bson:"username"`
	FullName         string `json:"fullName" bson:"fullName"`
	Avatar           string `json:"avatar" bson:"avatar"`
	CoverImage       string `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	SubscribersCount int64  `json:"subscribersCount" bson:"subscribersCount"`
	SubscribedCount  int64  `json:"subscribedToCount" bson:"subscribedToCount"`
	IsSubscribed     bool   `json:"isSubscribed" bson:"isSubscribed"`
}

// ApiResponse is the success envelope of every HTTP endpoint.
type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// VideoEventMessage is published on the media exchange.
type VideoEventMessage struct {
	EventId       uuid.UUID `json:"eventId"`
	VideoId       string    `json:"videoId"`
	OwnerId       string    `json:"ownerId"`
	StoragePrefix string    `json:"storagePrefix"`
	OccurredAt    time.Time `json:"occurredAt"`
}
