// Package forms turns submitted form values into typed fields or per-field
// error messages. Nothing here renders or persists anything.
package forms

const (
	msgRequired    = "This field is required."
	msgInvalidDate = "Enter a valid date."
)

// NonFieldErrors is the key for errors that belong to the form as a whole.
const NonFieldErrors = "__all__"

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (e FieldErrors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}
