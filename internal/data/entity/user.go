package entity

import "github.com/google/uuid"

type UserRole string

const (
	RoleStaff UserRole = "staff"
	RoleAdmin UserRole = "admin"
)

type User struct {
	Base
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

// Actor is the staff member (or the system) performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   UserRole
}

// SystemActor is used for provider-driven operations such as webhooks.
var SystemActor = Actor{}

func (a Actor) IsSystem() bool {
	return a.UserID == uuid.Nil
}

// Ref returns the user id for audit columns, nil for the system.
func (a Actor) Ref() *uuid.UUID {
	if a.IsSystem() {
		return nil
	}
	id := a.UserID
	return &id
}
