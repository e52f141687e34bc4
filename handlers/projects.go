package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"projectmanager/auth"
	"projectmanager/database"
	"projectmanager/forms"
	"projectmanager/metrics"
	"projectmanager/middleware"
	"projectmanager/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	adminDashboardPath = "/dashboard/"
	userDashboardPath  = "/user-dashboard/"
)

func (h *Handler) Home(c *gin.Context) {
	projects, err := h.projects.ListProjects(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to list projects", err)
		return
	}

	h.render(c, http.StatusOK, "home", gin.H{
		"Title":    "Projects",
		"Projects": projects,
	})
}

func (h *Handler) ProjectDetail(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	h.render(c, http.StatusOK, "project_detail", gin.H{
		"Title":       project.Name,
		"Project":     project,
		"CanComplete": auth.IsOwner(user, project) && !project.IsDone,
		"CanManage":   auth.IsAdmin(user),
	})
}

// AdminDashboard shows the creation form above every project.
func (h *Handler) AdminDashboard(c *gin.Context) {
	if !h.enforce(c, auth.RequireAdmin(middleware.CurrentUser(c)), msgInvalidRequest) {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to list users", err)
		return
	}

	h.renderDashboard(c, forms.ProjectForm{}, forms.FieldErrors{}, users)
}

func (h *Handler) CreateProject(c *gin.Context) {
	if !h.enforce(c, auth.RequireAdmin(middleware.CurrentUser(c)), msgInvalidRequest) {
		return
	}

	var form forms.ProjectForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.serverError(c, "Failed to list users", err)
		return
	}

	result := forms.ValidateProject(form, users)
	if !result.Valid() {
		h.renderDashboard(c, form, result.Errors, users)
		return
	}

	project, err := h.projects.CreateProject(ctx, result.Fields)
	if err != nil {
		h.serverError(c, "Failed to create project", err)
		return
	}

	metrics.IncProjectTransition(metrics.ActionCreated)
	h.logger.Info("Project created via dashboard",
		zap.Stringer("project_id", project.ID),
		zap.String("admin", middleware.CurrentUser(c).Username),
	)
	c.Redirect(http.StatusFound, adminDashboardPath)
}

func (h *Handler) renderDashboard(c *gin.Context, form forms.ProjectForm, errs forms.FieldErrors, users []models.User) {
	projects, err := h.projects.ListProjects(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to list projects", err)
		return
	}

	h.render(c, http.StatusOK, "admin_dashboard", gin.H{
		"Title":    "Dashboard",
		"Form":     form,
		"Errors":   errs,
		"Users":    users,
		"Projects": projects,
	})
}

func (h *Handler) EditProjectPage(c *gin.Context) {
	if !h.enforce(c, auth.RequireAdmin(middleware.CurrentUser(c)), msgInvalidRequest) {
		return
	}

	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.serverError(c, "Failed to list users", err)
		return
	}

	h.renderEdit(c, project, forms.ProjectFormFrom(project), forms.FieldErrors{}, users)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	if !h.enforce(c, auth.RequireAdmin(middleware.CurrentUser(c)), msgInvalidRequest) {
		return
	}

	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	var form forms.ProjectForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, msgInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	users, err := h.users.ListUsers(ctx)
	if err != nil {
		h.serverError(c, "Failed to list users", err)
		return
	}

	result := forms.ValidateProject(form, users)
	if !result.Valid() {
		h.renderEdit(c, project, form, result.Errors, users)
		return
	}

	updated, err := h.projects.UpdateProject(ctx, project.ID, result.Fields)
	if errors.Is(err, database.ErrProjectNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.serverError(c, "Failed to update project", err)
		return
	}

	metrics.IncProjectTransition(metrics.ActionUpdated)
	h.flash(c, fmt.Sprintf(`Project "%s" was updated.`, updated.Name))
	c.Redirect(http.StatusFound, adminDashboardPath)
}

func (h *Handler) renderEdit(c *gin.Context, project *models.Project, form forms.ProjectForm, errs forms.FieldErrors, users []models.User) {
	h.render(c, http.StatusOK, "edit_project", gin.H{
		"Title":   "Edit " + project.Name,
		"Project": project,
		"Form":    form,
		"Errors":  errs,
		"Users":   users,
	})
}

// MarkProjectDone lets the assignee close their own project. Checks run in
// a fixed order: identity, existence, ownership, then method.
func (h *Handler) MarkProjectDone(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !h.enforce(c, auth.RequireAuthenticated(user), msgInvalidRequest) {
		return
	}

	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	if !h.enforce(c, auth.RequireOwner(user, project), msgNotOwner) {
		return
	}

	if c.Request.Method != http.MethodPost {
		c.String(http.StatusForbidden, msgInvalidRequest)
		return
	}

	err := h.projects.MarkProjectDone(c.Request.Context(), project.ID)
	if errors.Is(err, database.ErrProjectNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.serverError(c, "Failed to mark project done", err)
		return
	}

	metrics.IncProjectTransition(metrics.ActionCompleted)
	h.logger.Info("Project marked done",
		zap.Stringer("project_id", project.ID),
		zap.String("user", user.Username),
	)
	c.Redirect(http.StatusFound, userDashboardPath)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if !h.enforce(c, auth.RequireAdmin(middleware.CurrentUser(c)), msgInvalidRequest) {
		return
	}

	project, ok := h.loadProject(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		c.String(http.StatusForbidden, msgInvalidRequest)
		return
	}

	err := h.projects.DeleteProject(c.Request.Context(), project.ID)
	if errors.Is(err, database.ErrProjectNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.serverError(c, "Failed to delete project", err)
		return
	}

	metrics.IncProjectTransition(metrics.ActionDeleted)
	h.flash(c, fmt.Sprintf(`Project "%s" was deleted.`, project.Name))
	c.Redirect(http.StatusFound, adminDashboardPath)
}

func (h *Handler) UserDashboard(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !h.enforce(c, auth.RequireAuthenticated(user), msgInvalidRequest) {
		return
	}

	if auth.IsAdmin(user) {
		c.Redirect(http.StatusFound, adminDashboardPath)
		return
	}

	projects, err := h.projects.ListProjectsByAssignee(c.Request.Context(), user.ID)
	if err != nil {
		h.serverError(c, "Failed to list assigned projects", err)
		return
	}

	h.render(c, http.StatusOK, "user_dashboard", gin.H{
		"Title":    "My projects",
		"Projects": projects,
	})
}
