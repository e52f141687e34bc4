package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is a unit of work an administrator hands to at most one user.
// IsDone only ever moves from false to true, through the completion action.
type Project struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty" db:"assignee_id"`
	IsDone      bool       `json:"is_done" db:"is_done"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// AssigneeUsername is joined from users for display; empty when unassigned.
	AssigneeUsername string `json:"assignee_username,omitempty" db:"-"`
}

// AssignedTo reports whether the project is assigned to userID.
func (p *Project) AssignedTo(userID uuid.UUID) bool {
	return p.AssigneeID != nil && *p.AssigneeID == userID
}

// ProjectFields holds the admin-editable columns of a project after validation.
// Creation and edit both write every field; IsDone is deliberately absent.
type ProjectFields struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	AssigneeID  *uuid.UUID
}
