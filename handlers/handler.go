package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"projectmanager/auth"
	"projectmanager/database"
	"projectmanager/middleware"
	"projectmanager/models"
	"projectmanager/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	loginPath = "/login/"
	homePath  = "/"

	msgNotOwner       = "You are not allowed to change this project."
	msgInvalidRequest = "Invalid request."
)

type ProjectStore interface {
	CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, fields models.ProjectFields) (*models.Project, error)
	MarkProjectDone(ctx context.Context, projectID uuid.UUID) error
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByAssignee(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, superuser bool) (*models.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID *uuid.UUID) (string, error)
	Load(ctx context.Context, id string) (*session.Data, error)
	Delete(ctx context.Context, id string) error
	AddFlash(ctx context.Context, id, message string) error
	Flashes(ctx context.Context, id string) ([]string, error)
	TTL() time.Duration
}

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CookieConfig struct {
	Name   string
	Secure bool
}

type Deps struct {
	Projects ProjectStore
	Users    UserStore
	Sessions SessionStore
	Cookie   CookieConfig
	Logger   *zap.Logger
	// Checks are pinged by /readyz, keyed by the name reported on failure.
	Checks map[string]Pinger
}

type Handler struct {
	projects ProjectStore
	users    UserStore
	sessions SessionStore
	cookie   CookieConfig
	logger   *zap.Logger
	checks   map[string]Pinger
}

func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		projects: deps.Projects,
		users:    deps.Users,
		sessions: deps.Sessions,
		cookie:   deps.Cookie,
		logger:   logger,
		checks:   deps.Checks,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", HealthCheck)
	r.GET("/readyz", h.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.Home)
	r.GET("/project/:id/", h.ProjectDetail)
	r.GET("/dashboard/", h.AdminDashboard)
	r.POST("/dashboard/", h.CreateProject)
	r.Any("/project/:id/done/", h.MarkProjectDone)
	r.Any("/project/:id/delete/", h.DeleteProject)
	r.GET("/project/:id/edit/", h.EditProjectPage)
	r.POST("/project/:id/edit/", h.UpdateProject)
	r.GET("/user-dashboard/", h.UserDashboard)

	r.GET("/signup/", h.SignupPage)
	r.POST("/signup/", h.Signup)
	r.GET("/login/", h.LoginPage)
	r.POST("/login/", h.Login)
	r.GET("/logout/", h.Logout)
	r.POST("/logout/", h.Logout)
}

// enforce applies an authorization outcome. It returns false when the
// response has already been written.
func (h *Handler) enforce(c *gin.Context, outcome auth.Outcome, forbiddenMsg string) bool {
	switch outcome {
	case auth.Allowed:
		return true
	case auth.RedirectToLogin:
		c.Redirect(http.StatusFound, loginPath)
	default:
		c.String(http.StatusForbidden, forbiddenMsg)
	}
	return false
}

// render writes a page, adding the current user and any pending flashes.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["Flashes"] = h.popFlashes(c)

	c.HTML(status, page, data)
}

func (h *Handler) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error", gin.H{
		"Title":   "Not found",
		"Message": "The requested page does not exist.",
	})
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c.Request.Context())),
	)
	h.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":   "Server error",
		"Message": "Something went wrong. Please try again later.",
	})
}

// loadProject resolves the :id path parameter. A malformed id is treated
// like a missing project.
func (h *Handler) loadProject(c *gin.Context) (*models.Project, bool) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.notFound(c)
		return nil, false
	}

	project, err := h.projects.GetProject(c.Request.Context(), projectID)
	if errors.Is(err, database.ErrProjectNotFound) {
		h.notFound(c)
		return nil, false
	}
	if err != nil {
		h.serverError(c, "Failed to load project", err)
		return nil, false
	}

	return project, true
}

// flash queues a one-shot message, starting an anonymous session if the
// visitor has none yet. Failures are logged; the message is simply lost.
func (h *Handler) flash(c *gin.Context, message string) {
	ctx := c.Request.Context()

	sid := middleware.SessionID(c)
	if sid == "" {
		var err error
		sid, err = h.sessions.Create(ctx, nil)
		if err != nil {
			h.logger.Warn("Failed to start session for flash", zap.Error(err))
			return
		}
		h.setSessionCookie(c, sid)
	}

	if err := h.sessions.AddFlash(ctx, sid, message); err != nil {
		h.logger.Warn("Failed to add flash", zap.Error(err))
	}
}

func (h *Handler) popFlashes(c *gin.Context) []string {
	sid := middleware.SessionID(c)
	if sid == "" {
		return nil
	}

	messages, err := h.sessions.Flashes(c.Request.Context(), sid)
	if err != nil {
		h.logger.Warn("Failed to read flashes", zap.Error(err))
		return nil
	}
	return messages
}

// startSession replaces any existing session with one bound to user.
func (h *Handler) startSession(c *gin.Context, user *models.User) error {
	ctx := c.Request.Context()

	if old := middleware.SessionID(c); old != "" {
		if err := h.sessions.Delete(ctx, old); err != nil {
			h.logger.Warn("Failed to delete previous session", zap.Error(err))
		}
	}

	sid, err := h.sessions.Create(ctx, &user.ID)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, sid)
	return nil
}

func (h *Handler) setSessionCookie(c *gin.Context, sid string) {
	middleware.SetSessionID(c, sid)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sid, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
