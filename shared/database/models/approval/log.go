package approval

import (
	"time"

	"github.com/google/uuid"
)

// Action enumerates the lifecycle events recorded in the approval log.
type Action string

const (
	ActionCreate   Action = "CREATE"
	ActionAssign   Action = "ASSIGN"
	ActionApprove  Action = "APPROVE"
	ActionReject   Action = "REJECT"
	ActionResubmit Action = "RESUBMIT"
	ActionView     Action = "VIEW"
)

// Log is an append-only ledger entry owned by exactly one approval request.
// Entries are never updated or deleted; ordering is by timestamp with the
// autoincrement sequence breaking ties.
type Log struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Sequence          int64      `json:"-" gorm:"autoIncrement;uniqueIndex"`
	ApprovalRequestID uuid.UUID  `json:"approval_request_id" gorm:"type:uuid;not null;index"`
	Action            Action     `json:"action" gorm:"size:20;not null"`
	PerformedByID     *uuid.UUID `json:"performed_by_id" gorm:"type:uuid"`
	Remarks           string     `json:"remarks" gorm:"type:text"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for Log
func (Log) TableName() string {
	return "approval_logs"
}

// SystemEntry builds a log entry performed by the system rather than a user.
// ASSIGN entries use this since routing runs without an acting identity.
func SystemEntry(requestID uuid.UUID, action Action, remarks string) Log {
	return Log{
		ApprovalRequestID: requestID,
		Action:            action,
		Remarks:           remarks,
	}
}

// UserEntry builds a log entry attributed to an acting user.
func UserEntry(requestID uuid.UUID, action Action, performedBy uuid.UUID, remarks string) Log {
	return Log{
		ApprovalRequestID: requestID,
		Action:            action,
		PerformedByID:     &performedBy,
		Remarks:           remarks,
	}
}
