package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// User is an administrator account. Regular participants never log in; they
// act through entry tokens.
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
