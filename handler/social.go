package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/middleware"
	"crazzzytube/service"
)

type commentHandler struct {
	comments service.CommentService
}

func (h *commentHandler) register(r gin.IRouter) {
	g := r.Group("/comments")
	g.GET("/c/:id", h.likeCount)
	g.GET("/:id", h.list)
	g.POST("/:id", h.add)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *commentHandler) list(c *gin.Context) {
	videoID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	comments, err := h.comments.List(c.Request.Context(), videoID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comments, "Comments fetched successfully")
}

func (h *commentHandler) add(c *gin.Context) {
	videoID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req dto.ContentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), videoID, middleware.UserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, comment, "Comment added successfully")
}

func (h *commentHandler) update(c *gin.Context) {
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	var req dto.ContentRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), commentID, middleware.UserID(c), req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, comment, "Comment updated successfully")
}

func (h *commentHandler) delete(c *gin.Context) {
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), commentID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Comment deleted successfully")
}

func (h *commentHandler) likeCount(c *gin.Context) {
	commentID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	n, err := h.comments.LikeCount(c.Request.Context(), commentID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"likes": n}, "Likes fetched successfully")
}

type likeHandler struct {
	likes service.LikeService
}

func (h *likeHandler) register(r gin.IRouter) {
	g := r.Group("/likes")
	g.POST("/toggle/v/:id", h.toggle(entities.LikeTargetVideo))
	g.POST("/toggle/c/:id", h.toggle(entities.LikeTargetComment))
	g.POST("/toggle/t/:id", h.toggle(entities.LikeTargetTweet))
	g.GET("/liked-videos", h.likedVideos)
}

func (h *likeHandler) toggle(target entities.LikeTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := objectIDParam(c, "id")
		if err != nil {
			fail(c, err)
			return
		}

		liked, err := h.likes.Toggle(c.Request.Context(), target, targetID, middleware.UserID(c))
		if err != nil {
			fail(c, err)
			return
		}
		message := "Unliked successfully"
		if liked {
			message = "Liked successfully"
		}
		respond(c, http.StatusOK, dto.LikeToggleResponse{Liked: liked}, message)
	}
}

func (h *likeHandler) likedVideos(c *gin.Context) {
	videos, err := h.likes.LikedVideos(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Liked videos fetched successfully")
}

type subscriptionHandler struct {
	subscriptions service.SubscriptionService
}

func (h *subscriptionHandler) register(r gin.IRouter) {
	g := r.Group("/subscriptions")
	g.GET("/c/:id", h.subscribers)
	g.GET("/status/:id", h.status)
	g.GET("/u/:id", h.subscribed)
	g.POST("/u/:id", h.toggle)
}

func (h *subscriptionHandler) toggle(c *gin.Context) {
	channelID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	subscribed, err := h.subscriptions.Toggle(c.Request.Context(), middleware.UserID(c), channelID)
	if err != nil {
		fail(c, err)
		return
	}
	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	respond(c, http.StatusOK, dto.SubscriptionToggleResponse{Subscribed: subscribed}, message)
}

func (h *subscriptionHandler) status(c *gin.Context) {
	channelID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	subscribed, err := h.subscriptions.IsSubscribed(c.Request.Context(), middleware.UserID(c), channelID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.SubscriptionToggleResponse{Subscribed: subscribed}, "Subscription status fetched successfully")
}

func (h *subscriptionHandler) subscribers(c *gin.Context) {
	channelID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	channels, err := h.subscriptions.Subscribers(c.Request.Context(), channelID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, channels, "Subscribers fetched successfully")
}

func (h *subscriptionHandler) subscribed(c *gin.Context) {
	subscriberID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	channels, err := h.subscriptions.SubscribedChannels(c.Request.Context(), subscriberID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
