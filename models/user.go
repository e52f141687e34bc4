package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity that can log in. Superusers administer every project;
// regular users only see and complete the projects assigned to them.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
