package forms

import (
	"bufio"
	_ "embed"
	"io"
	"strings"
)

const minPasswordLength = 8

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = mustLoadCommonPasswords()

// LoadCommonPasswords reads one password per line into a lookup set.
// Entries are lowercased; blank lines and # comments are skipped.
func LoadCommonPasswords(r io.Reader) (map[string]bool, error) {
	list := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list[strings.ToLower(line)] = true
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func mustLoadCommonPasswords() map[string]bool {
	list, err := LoadCommonPasswords(strings.NewReader(commonPasswordList))
	if err != nil {
		panic(err)
	}
	return list
}

// CheckPasswordStrength returns the first policy the password violates, or "".
func CheckPasswordStrength(password, username string) string {
	lowered := strings.ToLower(password)
	name := strings.ToLower(strings.TrimSpace(username))

	if len(name) >= 3 && strings.Contains(lowered, name) {
		return "The password is too similar to the username."
	}
	if len([]rune(password)) < minPasswordLength {
		return "This password is too short. It must contain at least 8 characters."
	}
	if commonPasswords[lowered] {
		return "This password is too common."
	}
	if isNumeric(password) {
		return "This password is entirely numeric."
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
