package handler

import (
	"github.com/gin-gonic/gin"

	"crazzzytube/config"
	"crazzzytube/service"
)

type Services struct {
	Publish       service.PublishService
	Videos        service.VideoService
	Comments      service.CommentService
	Likes         service.LikeService
	Subscriptions service.SubscriptionService
	Playlists     service.PlaylistService
	Tweets        service.TweetService
	Dashboard     service.DashboardService
	Users         service.UserService
}

// Register mounts every resource route on r. Callers put r behind the auth
// middleware.
func Register(r gin.IRouter, svc Services, media config.Media) {
	routes := []interface{ register(gin.IRouter) }{
		&videoHandler{publish: svc.Publish, videos: svc.Videos, uploads: newUploads(media.TempDir, media.MaxUploadBytes)},
		&commentHandler{comments: svc.Comments},
		&likeHandler{likes: svc.Likes},
		&subscriptionHandler{subscriptions: svc.Subscriptions},
		&playlistHandler{playlists: svc.Playlists},
		&tweetHandler{tweets: svc.Tweets},
		&dashboardHandler{dashboard: svc.Dashboard},
		&userHandler{users: svc.Users, uploads: newUploads(media.TempDir, media.MaxUploadBytes)},
	}
	for _, h := range routes {
		h.register(r)
	}
}
