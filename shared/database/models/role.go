package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleName is the closed set of role labels the workflow core understands.
// Other role names may exist in the table; the core treats them as opaque.
type RoleName string

const (
	RoleAdmin   RoleName = "ADMIN"
	RoleMaker   RoleName = "MAKER"
	RoleChecker RoleName = "CHECKER"
)

type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        RoleName  `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Role
func (Role) TableName() string {
	return "roles"
}
