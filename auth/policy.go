// Package auth decides who may do what to a project.
//
// Every gated handler asks one of the Require* policies and acts on the
// returned Outcome; no handler inspects roles directly.
package auth

import "projectmanager/models"

// Outcome is the result of an authorization check.
type Outcome int

const (
	Allowed Outcome = iota
	// RedirectToLogin sends the caller to the login page instead of failing.
	RedirectToLogin
	// Forbidden is for an identified caller acting on something not theirs.
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case RedirectToLogin:
		return "redirect_to_login"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// IsAdmin reports whether user has superuser privilege.
func IsAdmin(user *models.User) bool {
	return user != nil && user.IsSuperuser
}

// IsOwner reports whether user is the project's assignee.
func IsOwner(user *models.User, project *models.Project) bool {
	return user != nil && project != nil && project.AssignedTo(user.ID)
}

func RequireAuthenticated(user *models.User) Outcome {
	if user == nil {
		return RedirectToLogin
	}
	return Allowed
}

// RequireAdmin sends both anonymous and non-superuser callers to the login page.
func RequireAdmin(user *models.User) Outcome {
	if !IsAdmin(user) {
		return RedirectToLogin
	}
	return Allowed
}

// RequireOwner redirects anonymous callers and forbids everyone but the assignee.
func RequireOwner(user *models.User, project *models.Project) Outcome {
	if user == nil {
		return RedirectToLogin
	}
	if !IsOwner(user, project) {
		return Forbidden
	}
	return Allowed
}

// DashboardPath is where a freshly identified user lands.
func DashboardPath(user *models.User) string {
	if IsAdmin(user) {
		return "/dashboard/"
	}
	return "/user-dashboard/"
}
