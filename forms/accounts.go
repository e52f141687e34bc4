package forms

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const maxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\pL\pN.@+_-]+$`)

// SignupForm is the raw registration form.
type SignupForm struct {
	Username  string `form:"username"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`
}

// SignupResult carries the cleaned credentials or the field errors.
// Username uniqueness is checked by the store on insert, not here.
type SignupResult struct {
	Username string
	Password string
	Errors   FieldErrors
}

func (r SignupResult) Valid() bool {
	return r.Errors.Empty()
}

func ValidateSignup(form SignupForm) SignupResult {
	result := SignupResult{Errors: FieldErrors{}}

	username := strings.TrimSpace(form.Username)
	switch {
	case username == "":
		result.Errors.Add("username", msgRequired)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		result.Errors.Add("username", fmt.Sprintf(
			"Ensure this value has at most %d characters (it has %d).",
			maxUsernameLength, utf8.RuneCountInString(username)))
	case !usernamePattern.MatchString(username):
		result.Errors.Add("username",
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	default:
		result.Username = username
	}

	if form.Password1 == "" {
		result.Errors.Add("password1", msgRequired)
	}
	if form.Password2 == "" {
		result.Errors.Add("password2", msgRequired)
	}
	if form.Password1 == "" || form.Password2 == "" {
		return result
	}

	if form.Password1 != form.Password2 {
		result.Errors.Add("password2", "The two password fields didn't match.")
		return result
	}

	if msg := CheckPasswordStrength(form.Password2, username); msg != "" {
		result.Errors.Add("password2", msg)
		return result
	}

	result.Password = form.Password1
	return result
}

// LoginForm is the raw login form.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// ValidateLogin only checks presence; credentials are checked by auth.
func ValidateLogin(form LoginForm) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(form.Username) == "" {
		errs.Add("username", msgRequired)
	}
	if form.Password == "" {
		errs.Add("password", msgRequired)
	}
	return errs
}
