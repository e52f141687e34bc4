package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"projectmanager/database"
	"projectmanager/models"
	"projectmanager/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeSessions map[string]*session.Data

func (f fakeSessions) Load(_ context.Context, id string) (*session.Data, error) {
	if id == "broken" {
		return nil, errors.New("redis down")
	}
	data, ok := f[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return data, nil
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return user, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIdentity(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "user1"}
	goneID := uuid.New()

	sessions := fakeSessions{
		"user-session": {UserID: &user.ID},
		"anon-session": {},
		"gone-session": {UserID: &goneID},
	}
	users := fakeUsers{user.ID: user}

	tests := []struct {
		name          string
		cookie        string
		wantStatus    int
		wantUser      string
		wantSessionID string
	}{
		{"no cookie", "", http.StatusOK, "", ""},
		{"unknown session", "stale", http.StatusOK, "", ""},
		{"signed in", "user-session", http.StatusOK, "user1", "user-session"},
		{"anonymous session", "anon-session", http.StatusOK, "", "anon-session"},
		{"deleted user", "gone-session", http.StatusOK, "", "gone-session"},
		{"store failure", "broken", http.StatusInternalServerError, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotSession string

			r := gin.New()
			r.Use(Identity(sessions, users, "sessionid", zap.NewNop()))
			r.GET("/", func(c *gin.Context) {
				if u := CurrentUser(c); u != nil {
					gotUser = u.Username
				}
				gotSession = SessionID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sessionid", Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUser)
			assert.Equal(t, tt.wantSessionID, gotSession)
		})
	}
}
