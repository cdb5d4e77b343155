package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"crazzzytube/apperror"
	"crazzzytube/dto"
)

const (
	accessTokenCookie = "accessToken"
	userIDKey         = "userId"
)

// Auth verifies the access token issued by the account service and stores the
// caller's id on the gin context. The token is read from the accessToken
// cookie first and the Authorization header second.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())

	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			abortUnauthorized(c, "unauthorized request")
			return
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return key, nil }); err != nil {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("rejected access token")
			abortUnauthorized(c, "invalid access token")
			return
		}

		userID, err := subject(claims)
		if err != nil {
			abortUnauthorized(c, "invalid access token")
			return
		}

		c.Set(userIDKey, userID)
		logger := zerolog.Ctx(c.Request.Context()).With().Str("user_id", userID.Hex()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// UserID returns the id stored by Auth, or NilObjectID on public routes.
func UserID(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(primitive.ObjectID); ok {
			return id
		}
	}
	return primitive.NilObjectID
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func subject(claims jwt.MapClaims) (primitive.ObjectID, error) {
	raw, ok := claims["_id"].(string)
	if !ok {
		return primitive.NilObjectID, errors.New("token has no _id claim")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("token _id claim: %w", err)
	}
	return id, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Kind:    string(apperror.KindUnauthorized),
		Message: message,
	})
}
