package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/middleware"
	"crazzzytube/service"
)

type tweetHandler struct {
	tweets service.TweetService
}

func (h *tweetHandler) register(r gin.IRouter) {
	g := r.Group("/tweets")
	g.POST("", h.create)
	g.GET("", h.all)
	g.GET("/user/:id", h.byOwner)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *tweetHandler) create(c *gin.Context) {
	var req dto.ContentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	tweet, err := h.tweets.Create(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, tweet, "Tweet created successfully")
}

func (h *tweetHandler) all(c *gin.Context) {
	tweets, err := h.tweets.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

func (h *tweetHandler) byOwner(c *gin.Context) {
	ownerID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	tweets, err := h.tweets.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

func (h *tweetHandler) update(c *gin.Context) {
	tweetID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req dto.ContentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	tweet, err := h.tweets.Update(c.Request.Context(), tweetID, middleware.UserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, tweet, "Tweet updated successfully")
}

func (h *tweetHandler) delete(c *gin.Context) {
	tweetID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.tweets.Delete(c.Request.Context(), tweetID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Tweet deleted successfully")
}

type dashboardHandler struct {
	dashboard service.DashboardService
}

func (h *dashboardHandler) register(r gin.IRouter) {
	g := r.Group("/dashboard")
	g.GET("/stats", h.stats)
	g.GET("/all-videos", h.videos)
}

func (h *dashboardHandler) stats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "Channel stats fetched successfully")
}

func (h *dashboardHandler) videos(c *gin.Context) {
	videos, err := h.dashboard.Videos(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Channel videos fetched successfully")
}

type userHandler struct {
	users   service.UserService
	uploads uploads
}

func (h *userHandler) register(r gin.IRouter) {
	g := r.Group("/users")
	g.GET("/current-user", h.current)
	g.GET("/c/:username", h.channel)
	g.PATCH("/update-account", h.updateAccount)
	g.PATCH("/avatar", h.updateImage("avatar", service.UserService.UpdateAvatar, "Avatar updated successfully"))
	g.PATCH("/cover-image", h.updateImage("coverImage", service.UserService.UpdateCoverImage, "Cover image updated successfully"))
	g.GET("/watch-history", h.history)
	g.GET("/publish-jobs", h.publishJobs)
	g.GET("/publish-jobs/:jobId", h.publishJob)
}

func (h *userHandler) current(c *gin.Context) {
	user, err := h.users.Current(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "Current user fetched successfully")
}

func (h *userHandler) channel(c *gin.Context) {
	profile, err := h.users.ChannelProfile(c.Request.Context(), c.Param("username"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile, "Channel fetched successfully")
}

func (h *userHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.UpdateAccount(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user, "Account details updated successfully")
}

type imageUpdate func(users service.UserService, ctx context.Context, userID primitive.ObjectID, path string) (*entities.User, error)

// updateImage saves the single file in field and hands it to update.
func (h *userHandler) updateImage(field string, update imageUpdate, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.uploads.parse(c); err != nil {
			fail(c, err)
			return
		}
		path, err := h.uploads.save(c, field)
		if err != nil {
			fail(c, err)
			return
		}

		user, err := update(h.users, c.Request.Context(), middleware.UserID(c), path)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, user, msg)
	}
}

func (h *userHandler) history(c *gin.Context) {
	history, err := h.users.WatchHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, history, "Watch history fetched successfully")
}

func (h *userHandler) publishJobs(c *gin.Context) {
	jobs, err := h.users.PublishJobs(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, jobs, "Publish jobs fetched successfully")
}

func (h *userHandler) publishJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("jobId"))
	if err != nil {
		fail(c, apperror.Validation("jobId is not a valid id"))
		return
	}

	job, err := h.users.PublishJob(c.Request.Context(), middleware.UserID(c), jobID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, job, "Publish job fetched successfully")
}
