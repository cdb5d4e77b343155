package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/dto"
	"crazzzytube/entities"
	"crazzzytube/middleware"
	"crazzzytube/service"
)

type playlistHandler struct {
	playlists service.PlaylistService
}

func (h *playlistHandler) register(r gin.IRouter) {
	g := r.Group("/playlists")
	g.POST("/create-playlist", h.create)
	g.GET("/p/:id", h.get)
	g.GET("/:id", h.byOwner)
	g.DELETE("/:id", h.delete)
	g.PATCH("/add/:videoId/:playlistId", h.addVideo)
	g.PATCH("/remove/:videoId/:playlistId", h.removeVideo)
	g.PATCH("/update-playlist/:playlistId", h.update)
}

func (h *playlistHandler) create(c *gin.Context) {
	var req dto.PlaylistRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	playlist, err := h.playlists.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, playlist, "Playlist created successfully")
}

func (h *playlistHandler) get(c *gin.Context) {
	playlistID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	playlist, err := h.playlists.Get(c.Request.Context(), playlistID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist fetched successfully")
}

func (h *playlistHandler) byOwner(c *gin.Context) {
	ownerID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	playlists, err := h.playlists.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlists, "Playlists fetched successfully")
}

func (h *playlistHandler) update(c *gin.Context) {
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		fail(c, err)
		return
	}
	var req dto.UpdatePlaylistRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	playlist, err := h.playlists.Update(c.Request.Context(), playlistID, middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, "Playlist updated successfully")
}

func (h *playlistHandler) delete(c *gin.Context) {
	playlistID, err := objectIDParam(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.playlists.Delete(c.Request.Context(), playlistID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{}, "Playlist deleted successfully")
}

func (h *playlistHandler) addVideo(c *gin.Context) {
	h.changeVideo(c, h.playlists.AddVideo, "Video added to playlist")
}

func (h *playlistHandler) removeVideo(c *gin.Context) {
	h.changeVideo(c, h.playlists.RemoveVideo, "Video removed from playlist")
}

func (h *playlistHandler) changeVideo(c *gin.Context, change func(ctx context.Context, playlistID, videoID, ownerID primitive.ObjectID) (*entities.Playlist, error), message string) {
	videoID, err := objectIDParam(c, "videoId")
	if err != nil {
		fail(c, err)
		return
	}
	playlistID, err := objectIDParam(c, "playlistId")
	if err != nil {
		fail(c, err)
		return
	}

	playlist, err := change(c.Request.Context(), playlistID, videoID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, playlist, message)
}
