package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/database/models/approval"
	"approvalflow-backend/shared/utils/hierarchy"
)

// SelectChecker picks the checker for a request originating in makerUnitID.
//
// The maker's ancestor chain is walked nearest-parent-first; the first
// ancestor unit holding at least one active CHECKER wins, and within that
// unit the smallest employee id is chosen. Determinism is favored over load
// distribution. Returns nil when no ancestor has an eligible checker; that
// is a valid outcome, the request simply stays unassigned.
func SelectChecker(idx *hierarchy.Index, makerUnitID uuid.UUID, candidates []models.User) (*models.User, error) {
	eligible, err := idx.EligibleCheckers(makerUnitID, candidates)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	return &eligible[0], nil
}

// AssignChecker routes a freshly created request to a checker inside the
// submission transaction. Only meaningful while the request is PENDING and
// unassigned; sets the checker fields and appends a system ASSIGN log entry.
// Does not change the request status.
func AssignChecker(tx *gorm.DB, req *approval.ApprovalRequest, idx *hierarchy.Index) error {
	if !req.IsPending() || req.IsAssigned() {
		return nil
	}

	candidates, err := loadCheckerCandidates(tx)
	if err != nil {
		return err
	}

	checker, err := SelectChecker(idx, req.MakerUnitID, candidates)
	if err != nil {
		return err
	}
	if checker == nil {
		// No eligible checker in any ancestor unit; the request stays in
		// PENDING awaiting manual pickup via the broad queue.
		return nil
	}

	updates := map[string]interface{}{
		"assigned_checker_id": checker.ID,
		"checker_unit_id":     *checker.UnitID,
	}
	if err := tx.Model(req).Updates(updates).Error; err != nil {
		return err
	}
	req.AssignedCheckerID = &checker.ID
	req.CheckerUnitID = checker.UnitID

	checkerUnit, err := idx.Unit(*checker.UnitID)
	if err != nil {
		return err
	}

	entry := approval.SystemEntry(req.ID, approval.ActionAssign,
		fmt.Sprintf("Auto-assigned to %s (%s) in unit %s", checker.FullName(), checker.EmployeeID, checkerUnit.Code))
	return tx.Create(&entry).Error
}

// loadCheckerCandidates reads all active users holding the CHECKER role.
// Roles are preloaded so eligibility checks can run on the snapshot.
func loadCheckerCandidates(tx *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := tx.
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ? AND users.status = ?", models.RoleChecker, models.UserStatusActive).
		Preload("Roles").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
