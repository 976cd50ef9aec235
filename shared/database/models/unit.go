package models

import (
	"time"

	"github.com/google/uuid"
)

// UnitType enumerates the organizational levels of the unit tree.
type UnitType string

const (
	UnitTypeHeadOffice     UnitType = "HO"
	UnitTypeCircle         UnitType = "CIRCLE"
	UnitTypeNetwork        UnitType = "NETWORK"
	UnitTypeAdminOffice    UnitType = "AO"
	UnitTypeRegionalOffice UnitType = "RBO"
	UnitTypeBranch         UnitType = "BR"
)

// Unit is a node in the organizational tree. A unit has at most one parent
// and must never be its own ancestor; the cycle invariant is enforced at
// mutation time, not at traversal time.
type Unit struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `json:"name" gorm:"size:100;not null"`
	Code      string     `json:"code" gorm:"size:20;uniqueIndex;not null"`
	UnitType  UnitType   `json:"unit_type" gorm:"size:10;not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Parent *Unit `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
}

// TableName returns the table name for Unit
func (Unit) TableName() string {
	return "units"
}

// IsRoot reports whether the unit has no parent.
func (u *Unit) IsRoot() bool {
	return u.ParentID == nil
}
