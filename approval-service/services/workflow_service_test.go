package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/database/models/approval"
	"approvalflow-backend/shared/utils/apperrors"
)

func activeMaker(unitID uuid.UUID) *models.User {
	return &models.User{
		ID:         uuid.New(),
		EmployeeID: "EMP1001",
		Status:     models.UserStatusActive,
		UnitID:     &unitID,
		Roles:      []models.Role{{Name: models.RoleMaker}},
	}
}

func TestValidateMakerSubmission(t *testing.T) {
	unitID := uuid.New()

	inactive := activeMaker(unitID)
	inactive.Status = models.UserStatusInactive

	checkerOnly := activeMaker(unitID)
	checkerOnly.Roles = []models.Role{{Name: models.RoleChecker}}

	unitless := activeMaker(unitID)
	unitless.UnitID = nil

	cases := []struct {
		name     string
		maker    *models.User
		wantKind apperrors.Kind
	}{
		{"nil maker", nil, apperrors.KindValidation},
		{"inactive account", inactive, apperrors.KindForbidden},
		{"missing maker role", checkerOnly, apperrors.KindForbidden},
		{"no unit assignment", unitless, apperrors.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMakerSubmission(tc.maker)
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, tc.wantKind), "got %v", err)
		})
	}

	assert.NoError(t, ValidateMakerSubmission(activeMaker(unitID)))
}

func TestDecisionGuard(t *testing.T) {
	f := newRoutingFixture()

	pending := &approval.ApprovalRequest{
		ID:          uuid.New(),
		CreatedByID: uuid.New(),
		MakerUnitID: f.br.ID,
		RequestType: "LOAN_SANCTION",
		Status:      approval.StatusPending,
	}

	roChecker := makeChecker("EMP2001", f.ro.ID)

	t.Run("eligible ancestor checker passes", func(t *testing.T) {
		assert.NoError(t, DecisionGuard(pending, &roChecker, f.idx))
	})

	t.Run("decided request conflicts", func(t *testing.T) {
		decided := *pending
		decided.Status = approval.StatusApproved
		err := DecisionGuard(&decided, &roChecker, f.idx)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})

	t.Run("same unit checker forbidden", func(t *testing.T) {
		sameUnit := makeChecker("EMP4001", f.br.ID)
		err := DecisionGuard(pending, &sameUnit, f.idx)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("descendant unit checker forbidden", func(t *testing.T) {
		// Maker in RO, checker below in BR
		roRequest := *pending
		roRequest.MakerUnitID = f.ro.ID
		brChecker := makeChecker("EMP4002", f.br.ID)
		err := DecisionGuard(&roRequest, &brChecker, f.idx)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("deactivated checker forbidden at decision time", func(t *testing.T) {
		// Was eligible when assigned; re-validation still rejects.
		deactivated := makeChecker("EMP2001", f.ro.ID)
		deactivated.Status = models.UserStatusInactive
		err := DecisionGuard(pending, &deactivated, f.idx)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("checker role revoked forbidden", func(t *testing.T) {
		revoked := makeChecker("EMP2001", f.ro.ID)
		revoked.Roles = nil
		err := DecisionGuard(pending, &revoked, f.idx)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}
