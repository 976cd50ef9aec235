package approval

import (
	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/utils/hierarchy"
)

// IsEligibleChecker reports whether candidate may decide the request right
// now. Eligibility is evaluated at decision time, not trusted from
// assignment time: unit or role membership may have changed since routing.
//
// A checker in the maker's own unit is never eligible; the maker must sit in
// a strictly subordinate unit.
func IsEligibleChecker(req *ApprovalRequest, candidate *models.User, idx *hierarchy.Index) (bool, error) {
	if !req.IsPending() {
		return false, nil
	}
	if candidate == nil || !candidate.IsActive() || candidate.UnitID == nil {
		return false, nil
	}
	if !candidate.HasRole(models.RoleChecker) {
		return false, nil
	}
	return idx.IsAncestorOf(*candidate.UnitID, req.MakerUnitID)
}
