package forms

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"projectmanager/models"

	"github.com/google/uuid"
)

const maxProjectNameLength = 200

// dateLayouts are tried in order; the first is what the date input submits.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "01/02/06"}

// ProjectForm is the raw project form as submitted by the admin.
type ProjectForm struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Assignee    string `form:"assignee"`
}

// ProjectFormFrom prefills the form with an existing project's values.
func ProjectFormFrom(p *models.Project) ProjectForm {
	form := ProjectForm{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.Format(dateLayouts[0]),
	}
	if p.EndDate != nil {
		form.EndDate = p.EndDate.Format(dateLayouts[0])
	}
	if p.AssigneeID != nil {
		form.Assignee = p.AssigneeID.String()
	}
	return form
}

// ProjectResult is either validated Fields or a non-empty Errors map.
type ProjectResult struct {
	Fields models.ProjectFields
	Errors FieldErrors
}

func (r ProjectResult) Valid() bool {
	return r.Errors.Empty()
}

// ValidateProject checks a submitted project form. users is the set of
// identities the assignee may be chosen from.
func ValidateProject(form ProjectForm, users []models.User) ProjectResult {
	result := ProjectResult{Errors: FieldErrors{}}

	name := strings.TrimSpace(form.Name)
	switch {
	case name == "":
		result.Errors.Add("name", msgRequired)
	case utf8.RuneCountInString(name) > maxProjectNameLength:
		result.Errors.Add("name", fmt.Sprintf(
			"Ensure this value has at most %d characters (it has %d).",
			maxProjectNameLength, utf8.RuneCountInString(name)))
	default:
		result.Fields.Name = name
	}

	result.Fields.Description = strings.TrimSpace(form.Description)

	if strings.TrimSpace(form.StartDate) == "" {
		result.Errors.Add("start_date", msgRequired)
	} else if start, err := ParseDate(form.StartDate); err != nil {
		result.Errors.Add("start_date", msgInvalidDate)
	} else {
		result.Fields.StartDate = start
	}

	if strings.TrimSpace(form.EndDate) != "" {
		end, err := ParseDate(form.EndDate)
		if err != nil {
			result.Errors.Add("end_date", msgInvalidDate)
		} else {
			result.Fields.EndDate = &end
		}
	}

	if assignee := strings.TrimSpace(form.Assignee); assignee != "" {
		id, err := uuid.Parse(assignee)
		if err != nil || !containsUser(users, id) {
			result.Errors.Add("assignee", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			result.Fields.AssigneeID = &id
		}
	}

	return result
}

// ParseDate parses a calendar date in any accepted layout, as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func containsUser(users []models.User, id uuid.UUID) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
