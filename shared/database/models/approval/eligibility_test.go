package approval

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/utils/hierarchy"
)

// fixture: HO -> RO -> BR, maker sits in BR
type eligibilityFixture struct {
	ho, ro, br models.Unit
	idx        *hierarchy.Index
	req        *ApprovalRequest
}

func newEligibilityFixture() eligibilityFixture {
	f := eligibilityFixture{
		ho: models.Unit{ID: uuid.New(), Name: "Head Office", Code: "HO001", UnitType: models.UnitTypeHeadOffice},
	}
	f.ro = models.Unit{ID: uuid.New(), Name: "Regional Office", Code: "RO001", UnitType: models.UnitTypeRegionalOffice, ParentID: &f.ho.ID}
	f.br = models.Unit{ID: uuid.New(), Name: "Branch", Code: "BR001", UnitType: models.UnitTypeBranch, ParentID: &f.ro.ID}
	f.idx = hierarchy.BuildIndex([]models.Unit{f.ho, f.ro, f.br})
	f.req = &ApprovalRequest{
		ID:          uuid.New(),
		CreatedByID: uuid.New(),
		MakerUnitID: f.br.ID,
		RequestType: "LOAN_SANCTION",
		Status:      StatusPending,
	}
	return f
}

func activeChecker(unitID uuid.UUID) *models.User {
	return &models.User{
		ID:         uuid.New(),
		EmployeeID: "EMP2001",
		Status:     models.UserStatusActive,
		UnitID:     &unitID,
		Roles:      []models.Role{{Name: models.RoleChecker}},
	}
}

func TestIsEligibleCheckerAncestor(t *testing.T) {
	f := newEligibilityFixture()

	for _, unitID := range []uuid.UUID{f.ro.ID, f.ho.ID} {
		eligible, err := IsEligibleChecker(f.req, activeChecker(unitID), f.idx)
		require.NoError(t, err)
		assert.True(t, eligible, "checker in any ancestor unit is eligible")
	}
}

func TestIsEligibleCheckerSameUnit(t *testing.T) {
	f := newEligibilityFixture()

	eligible, err := IsEligibleChecker(f.req, activeChecker(f.br.ID), f.idx)
	require.NoError(t, err)
	assert.False(t, eligible, "a checker in the maker's own unit is never eligible")
}

func TestIsEligibleCheckerRejections(t *testing.T) {
	f := newEligibilityFixture()

	inactive := activeChecker(f.ro.ID)
	inactive.Status = models.UserStatusInactive

	unitless := activeChecker(f.ro.ID)
	unitless.UnitID = nil

	noRole := activeChecker(f.ro.ID)
	noRole.Roles = []models.Role{{Name: models.RoleMaker}}

	cases := []struct {
		name      string
		candidate *models.User
	}{
		{"nil candidate", nil},
		{"inactive account", inactive},
		{"no unit assignment", unitless},
		{"missing checker role", noRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eligible, err := IsEligibleChecker(f.req, tc.candidate, f.idx)
			require.NoError(t, err)
			assert.False(t, eligible)
		})
	}
}

func TestIsEligibleCheckerDecidedRequest(t *testing.T) {
	f := newEligibilityFixture()
	f.req.Status = StatusApproved

	eligible, err := IsEligibleChecker(f.req, activeChecker(f.ro.ID), f.idx)
	require.NoError(t, err)
	assert.False(t, eligible, "terminal requests accept no further decisions")
}

func TestDecisionTerminalStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, DecisionApprove.TerminalStatus())
	assert.Equal(t, StatusRejected, DecisionReject.TerminalStatus())
}

func TestRequestStateHelpers(t *testing.T) {
	req := &ApprovalRequest{Status: StatusPending}
	assert.True(t, req.IsPending())
	assert.False(t, req.IsAssigned())

	checkerID := uuid.New()
	req.AssignedCheckerID = &checkerID
	assert.True(t, req.IsAssigned())

	req.Status = StatusRejected
	assert.False(t, req.IsPending())
}

func TestLogEntryBuilders(t *testing.T) {
	requestID := uuid.New()
	actorID := uuid.New()

	system := SystemEntry(requestID, ActionAssign, "Auto-assigned")
	assert.Equal(t, requestID, system.ApprovalRequestID)
	assert.Equal(t, ActionAssign, system.Action)
	assert.Nil(t, system.PerformedByID, "system entries carry no acting user")

	user := UserEntry(requestID, ActionApprove, actorID, "looks good")
	require.NotNil(t, user.PerformedByID)
	assert.Equal(t, actorID, *user.PerformedByID)
	assert.Equal(t, "looks good", user.Remarks)
}
