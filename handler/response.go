package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/dto"
	"crazzzytube/entities"
)

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, dto.ApiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < 400,
	})
}

// fail is the single place request errors are logged.
func fail(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	logger := zerolog.Ctx(c.Request.Context())
	event := logger.Warn()
	if status >= 500 {
		event = logger.Error()
	}
	event.Err(err).Str("kind", string(kind)).Int("status", status).Msg("request failed")

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Kind:    string(kind),
		Message: apperror.MessageOf(err),
	})
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, apperror.Validation(name + " is not a valid id")
	}
	return id, nil
}

func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Validation(err.Error())
	}
	return nil
}

func toVideoResponse(v *entities.Video) dto.VideoResponse {
	return dto.VideoResponse{
		Id:           v.ID.Hex(),
		Title:        v.Title,
		Description:  v.Description,
		VideoUrl:     v.VideoFile,
		ThumbnailUrl: v.Thumbnail,
		Duration:     v.Duration,
		Views:        v.Views,
		IsPublished:  v.IsPublished,
		OwnerId:      v.Owner.Hex(),
		CreatedAt:    v.CreatedAt,
	}
}
