package handlers

import (
	"errors"
	"net/http"

	"projectmanager/auth"
	"projectmanager/database"
	"projectmanager/forms"
	"projectmanager/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgSignedUp           = "Account created. You can now log in."
	msgUsernameTaken      = "A user with that username already exists."
	msgInvalidCredentials = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

// redirectIfSignedIn sends an identified visitor to their dashboard.
func redirectIfSignedIn(c *gin.Context) bool {
	user := middleware.CurrentUser(c)
	if user == nil {
		return false
	}
	c.Redirect(http.StatusFound, auth.DashboardPath(user))
	return true
}

func (h *Handler) SignupPage(c *gin.Context) {
	if redirectIfSignedIn(c) {
		return
	}

	h.render(c, http.StatusOK, "signup", gin.H{
		"Title":  "Sign up",
		"Errors": forms.FieldErrors{},
	})
}

func (h *Handler) Signup(c *gin.Context) {
	if redirectIfSignedIn(c) {
		return
	}

	var form forms.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	result := forms.ValidateSignup(form)
	if !result.Valid() {
		h.renderSignup(c, form.Username, result.Errors)
		return
	}

	hash, err := auth.HashPassword(result.Password)
	if err != nil {
		h.serverError(c, "Failed to hash password", err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), result.Username, hash, false)
	if errors.Is(err, database.ErrUsernameTaken) {
		h.renderSignup(c, form.Username, forms.FieldErrors{"username": msgUsernameTaken})
		return
	}
	if err != nil {
		h.serverError(c, "Failed to create user", err)
		return
	}

	h.logger.Info("User signed up", zap.Stringer("user_id", user.ID), zap.String("username", user.Username))
	h.flash(c, msgSignedUp)
	c.Redirect(http.StatusFound, loginPath)
}

func (h *Handler) renderSignup(c *gin.Context, username string, errs forms.FieldErrors) {
	h.render(c, http.StatusOK, "signup", gin.H{
		"Title":    "Sign up",
		"Username": username,
		"Errors":   errs,
	})
}

func (h *Handler) LoginPage(c *gin.Context) {
	if redirectIfSignedIn(c) {
		return
	}

	h.render(c, http.StatusOK, "login", gin.H{
		"Title":  "Log in",
		"Errors": forms.FieldErrors{},
	})
}

func (h *Handler) Login(c *gin.Context) {
	if redirectIfSignedIn(c) {
		return
	}

	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	if errs := forms.ValidateLogin(form); !errs.Empty() {
		h.renderLogin(c, form.Username, errs)
		return
	}

	user, err := auth.Authenticate(c.Request.Context(), h.users, form.Username, form.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.logger.Info("Failed login attempt", zap.String("username", form.Username))
		h.renderLogin(c, form.Username, forms.FieldErrors{forms.NonFieldErrors: msgInvalidCredentials})
		return
	}
	if err != nil {
		h.serverError(c, "Failed to authenticate", err)
		return
	}

	if err := h.startSession(c, user); err != nil {
		h.serverError(c, "Failed to start session", err)
		return
	}

	h.logger.Info("User logged in", zap.Stringer("user_id", user.ID))
	c.Redirect(http.StatusFound, auth.DashboardPath(user))
}

func (h *Handler) renderLogin(c *gin.Context, username string, errs forms.FieldErrors) {
	h.render(c, http.StatusOK, "login", gin.H{
		"Title":    "Log in",
		"Username": username,
		"Errors":   errs,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if sid := middleware.SessionID(c); sid != "" {
		if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
			h.logger.Warn("Failed to delete session on logout", zap.Error(err))
		}
	}

	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, homePath)
}
