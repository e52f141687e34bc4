package middleware

import (
	"context"
	"errors"
	"net/http"

	"projectmanager/database"
	"projectmanager/models"
	"projectmanager/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userKey      = "user"
	sessionIDKey = "session_id"
)

type SessionLoader interface {
	Load(ctx context.Context, id string) (*session.Data, error)
}

type UserGetter interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Identity resolves the session cookie into the current user. Requests
// without a valid session continue anonymously; handlers decide what
// anonymous visitors may see.
func Identity(sessions SessionLoader, users UserGetter, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		data, err := sessions.Load(ctx, sid)
		if errors.Is(err, session.ErrSessionNotFound) {
			c.Next()
			return
		}
		if err != nil {
			logger.Error("Failed to load session", zap.Error(err), zap.String("request_id", GetRequestID(ctx)))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(sessionIDKey, sid)

		if data.UserID != nil {
			user, err := users.GetUser(ctx, *data.UserID)
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				// account removed since login; carry on anonymously
			case err != nil:
				logger.Error("Failed to load session user", zap.Error(err), zap.Stringer("user_id", data.UserID))
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			default:
				c.Set(userKey, user)
			}
		}

		c.Next()
	}
}

// CurrentUser returns the signed-in user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SessionID returns the id of the request's live session, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// SetSessionID records a session started during this request so later
// reads in the same request see it.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
}
