package approval

import (
	"time"

	"github.com/google/uuid"

	"approvalflow-backend/shared/database/models"
)

// Status enumerates the approval request lifecycle states.
// PENDING is the only non-terminal state; once a request is decided it
// never returns to PENDING.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Decision is the action a checker takes on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// TerminalStatus maps a decision to the status it produces.
func (d Decision) TerminalStatus() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// ApprovalRequest is the central maker-checker entity.
//
// MakerUnitID is a snapshot of the creator's unit taken at creation time and
// never updated afterwards, so routing history stays correct even if the
// creator is later moved to another unit.
type ApprovalRequest struct {
	ID                uuid.UUID              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedByID       uuid.UUID              `json:"created_by_id" gorm:"type:uuid;not null;index:idx_approval_requests_maker,priority:1"`
	MakerUnitID       uuid.UUID              `json:"maker_unit_id" gorm:"type:uuid;not null;index:idx_approval_requests_maker_unit,priority:1"`
	RequestType       string                 `json:"request_type" gorm:"size:100;not null"`
	Title             string                 `json:"title" gorm:"size:255"`
	Description       string                 `json:"description" gorm:"type:text"`
	Payload           map[string]interface{} `json:"payload" gorm:"type:jsonb;serializer:json"`
	AssignedCheckerID *uuid.UUID             `json:"assigned_checker_id" gorm:"type:uuid;index:idx_approval_requests_queue,priority:2"`
	CheckerUnitID     *uuid.UUID             `json:"checker_unit_id" gorm:"type:uuid"`
	Status            Status                 `json:"status" gorm:"size:20;not null;default:'PENDING';index:idx_approval_requests_queue,priority:1;index:idx_approval_requests_maker,priority:2;index:idx_approval_requests_maker_unit,priority:2"`
	ReviewedByID      *uuid.UUID             `json:"reviewed_by_id" gorm:"type:uuid"`
	ReviewedAt        *time.Time             `json:"reviewed_at"`
	Remarks           string                 `json:"remarks" gorm:"type:text"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`

	// Relations
	CreatedBy       *models.User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	MakerUnit       *models.Unit `json:"maker_unit,omitempty" gorm:"foreignKey:MakerUnitID"`
	AssignedChecker *models.User `json:"assigned_checker,omitempty" gorm:"foreignKey:AssignedCheckerID"`
	CheckerUnit     *models.Unit `json:"checker_unit,omitempty" gorm:"foreignKey:CheckerUnitID"`
	ReviewedBy      *models.User `json:"reviewed_by,omitempty" gorm:"foreignKey:ReviewedByID"`
	Logs            []Log        `json:"logs,omitempty" gorm:"foreignKey:ApprovalRequestID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for ApprovalRequest
func (ApprovalRequest) TableName() string {
	return "approval_requests"
}

// IsPending reports whether the request can still be decided.
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsAssigned reports whether routing already picked a checker.
func (r *ApprovalRequest) IsAssigned() bool {
	return r.AssignedCheckerID != nil
}
