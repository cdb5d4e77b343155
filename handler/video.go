package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crazzzytube/dto"
	"crazzzytube/middleware"
	"crazzzytube/service"
)

type videoHandler struct {
	publish service.PublishService
	videos  service.VideoService
	uploads uploads
}

func (h *videoHandler) register(r gin.IRouter) {
	g := r.Group("/videos")
	g.POST("/upload-video", h.upload)
	g.GET("/get-all-videos", h.mine)
	g.GET("/v/all-videos", h.published)
	g.GET("/u/all-videos/:id", h.byOwner)
	g.GET("/likes/:videoId", h.likeCount)
	g.PATCH("/toggle/publish/:videoId", h.togglePublish)
	g.GET("/:videoId", h.get)
	g.PATCH("/:videoId", h.update)
	g.DELETE("/:videoId", h.delete)
}

func (h *videoHandler) upload(c *gin.Context) {
	if err := h.uploads.parse(c); err != nil {
		fail(c, err)
		return
	}

	req := dto.PublishRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		OwnerId:     middleware.UserID(c).Hex(),
	}
	var err error
	if req.VideoPath, err = h.uploads.save(c, "videoFile"); err == nil {
		req.ThumbnailPath, err = h.uploads.save(c, "thumbnail")
	}
	if err != nil {
		removeUploads(c, req.VideoPath)
		fail(c, err)
		return
	}

	video, err := h.publish.Publish(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toVideoResponse(video), "Video published successfully")
}

func (h *videoHandler) get(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.videos.Get(c.Request.Context(), videoID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video fetched successfully")
}

func (h *videoHandler) update(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.uploads.parse(c); err != nil {
		fail(c, err)
		return
	}

	thumbnail, err := h.uploads.save(c, "thumbnail")
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.videos.Update(c.Request.Context(), videoID, middleware.UserID(c), dto.UpdateVideoRequest{
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		ThumbnailPath: thumbnail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Video updated successfully")
}

func (h *videoHandler) delete(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.videos.Delete(c.Request.Context(), videoID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Video deleted successfully")
}

func (h *videoHandler) togglePublish(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.videos.TogglePublish(c.Request.Context(), videoID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, video, "Publish status toggled successfully")
}

func (h *videoHandler) mine(c *gin.Context) {
	userID := middleware.UserID(c)
	videos, err := h.videos.ListByOwner(c.Request.Context(), userID, userID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

func (h *videoHandler) byOwner(c *gin.Context) {
	ownerID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	videos, err := h.videos.ListByOwner(c.Request.Context(), ownerID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

func (h *videoHandler) published(c *gin.Context) {
	videos, err := h.videos.ListPublished(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

func (h *videoHandler) likeCount(c *gin.Context) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}

	n, err := h.videos.LikeCount(c.Request.Context(), videoID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"likes": n}, "Likes fetched successfully")
}
