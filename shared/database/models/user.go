package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User is the identity consumed by the workflow core: a unit assignment plus
// a set of role labels. Credential handling lives in the auth boundary, not here.
type User struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  string     `json:"employee_id" gorm:"size:20;uniqueIndex;not null"`
	Email       string     `json:"email" gorm:"uniqueIndex;not null"`
	Password    string     `json:"-" gorm:"not null"`
	FirstName   string     `json:"first_name" gorm:"size:100"`
	LastName    string     `json:"last_name" gorm:"size:100"`
	Designation string     `json:"designation" gorm:"size:100"`
	Status      string     `json:"status" gorm:"default:'ACTIVE'"`
	UnitID      *uuid.UUID `json:"unit_id" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Unit  *Unit  `json:"unit,omitempty" gorm:"foreignKey:UnitID"`
	Roles []Role `json:"roles,omitempty" gorm:"many2many:user_roles;"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account may act in the workflow.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// HasRole reports whether the user carries the given role label.
// Roles must be preloaded.
func (u *User) HasRole(name RoleName) bool {
	for _, role := range u.Roles {
		if role.Name == name {
			return true
		}
	}
	return false
}

// FullName returns the display name for audit remarks and notifications.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.EmployeeID
	}
	return u.FirstName + " " + u.LastName
}
