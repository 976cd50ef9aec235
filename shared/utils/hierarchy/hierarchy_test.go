package hierarchy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/utils/apperrors"
)

// testTree builds the fixture hierarchy used across the tests:
//
//	HO001
//	└── CIRCLE_NORTH
//	    ├── RO_NORTH_DELHI
//	    │   ├── BR_KAROL_BAGH
//	    │   └── BR_SAKET
//	    └── RO_SOUTH_DELHI
//
// plus HO002, a second root with no relation to the first tree.
type testTree struct {
	ho, circle, roNorth, roSouth, brKarol, brSaket, ho2 models.Unit
}

func newTestTree() testTree {
	t := testTree{
		ho:     models.Unit{ID: uuid.New(), Name: "Head Office", Code: "HO001", UnitType: models.UnitTypeHeadOffice},
		ho2:    models.Unit{ID: uuid.New(), Name: "Second Head Office", Code: "HO002", UnitType: models.UnitTypeHeadOffice},
		circle: models.Unit{ID: uuid.New(), Name: "North Circle", Code: "CIRCLE_NORTH", UnitType: models.UnitTypeCircle},
	}
	t.circle.ParentID = &t.ho.ID
	t.roNorth = models.Unit{ID: uuid.New(), Name: "North Delhi RO", Code: "RO_NORTH_DELHI", UnitType: models.UnitTypeRegionalOffice, ParentID: &t.circle.ID}
	t.roSouth = models.Unit{ID: uuid.New(), Name: "South Delhi RO", Code: "RO_SOUTH_DELHI", UnitType: models.UnitTypeRegionalOffice, ParentID: &t.circle.ID}
	t.brKarol = models.Unit{ID: uuid.New(), Name: "Karol Bagh Branch", Code: "BR_KAROL_BAGH", UnitType: models.UnitTypeBranch, ParentID: &t.roNorth.ID}
	t.brSaket = models.Unit{ID: uuid.New(), Name: "Saket Branch", Code: "BR_SAKET", UnitType: models.UnitTypeBranch, ParentID: &t.roNorth.ID}
	return t
}

func (t testTree) index() *Index {
	return BuildIndex([]models.Unit{t.ho, t.ho2, t.circle, t.roNorth, t.roSouth, t.brKarol, t.brSaket})
}

func unitIDs(units []*models.Unit) []uuid.UUID {
	ids := make([]uuid.UUID, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func TestUnitLookup(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	unit, err := idx.Unit(tree.brKarol.ID)
	require.NoError(t, err)
	assert.Equal(t, "BR_KAROL_BAGH", unit.Code)

	_, err = idx.Unit(uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestParentChain(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	chain, err := idx.ParentChain(tree.brKarol.ID)
	require.NoError(t, err)
	assert.Equal(t,
		[]uuid.UUID{tree.ho.ID, tree.circle.ID, tree.roNorth.ID, tree.brKarol.ID},
		unitIDs(chain))

	chain, err = idx.ParentChain(tree.ho.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tree.ho.ID}, unitIDs(chain))
}

func TestAncestors(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	ancestors, err := idx.Ancestors(tree.brKarol.ID)
	require.NoError(t, err)
	// Nearest first, unit itself excluded
	assert.Equal(t,
		[]uuid.UUID{tree.roNorth.ID, tree.circle.ID, tree.ho.ID},
		unitIDs(ancestors))

	ancestors, err = idx.Ancestors(tree.ho.ID)
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestAncestorsDanglingParent(t *testing.T) {
	orphanParent := uuid.New()
	orphan := models.Unit{ID: uuid.New(), Name: "Orphan", Code: "ORPHAN", UnitType: models.UnitTypeBranch, ParentID: &orphanParent}
	idx := BuildIndex([]models.Unit{orphan})

	_, err := idx.Ancestors(orphan.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDescendants(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	descendants, err := idx.Descendants(tree.circle.ID)
	require.NoError(t, err)
	ids := unitIDs(descendants)
	assert.Len(t, ids, 4)
	assert.Contains(t, ids, tree.roNorth.ID)
	assert.Contains(t, ids, tree.roSouth.ID)
	assert.Contains(t, ids, tree.brKarol.ID)
	assert.Contains(t, ids, tree.brSaket.ID)
	assert.NotContains(t, ids, tree.circle.ID)
	assert.NotContains(t, ids, tree.ho2.ID)

	descendants, err = idx.Descendants(tree.brSaket.ID)
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestIsAncestorOf(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	cases := []struct {
		name string
		a, b uuid.UUID
		want bool
	}{
		{"grandparent", tree.circle.ID, tree.brKarol.ID, true},
		{"root over leaf", tree.ho.ID, tree.brSaket.ID, true},
		{"direct parent", tree.roNorth.ID, tree.brKarol.ID, true},
		{"same unit is not its own ancestor", tree.roNorth.ID, tree.roNorth.ID, false},
		{"inverted", tree.brKarol.ID, tree.roNorth.ID, false},
		{"cousin branch", tree.roSouth.ID, tree.brKarol.ID, false},
		{"separate tree", tree.ho2.ID, tree.brKarol.ID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := idx.IsAncestorOf(tc.a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsDescendantOf(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	got, err := idx.IsDescendantOf(tree.brKarol.ID, tree.ho.ID)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = idx.IsDescendantOf(tree.ho.ID, tree.brKarol.ID)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIsSiblingOf(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	got, err := idx.IsSiblingOf(tree.brKarol.ID, tree.brSaket.ID)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = idx.IsSiblingOf(tree.brKarol.ID, tree.brKarol.ID)
	require.NoError(t, err)
	assert.False(t, got, "a unit is not its own sibling")

	got, err = idx.IsSiblingOf(tree.brKarol.ID, tree.roSouth.ID)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = idx.IsSiblingOf(tree.ho.ID, tree.ho2.ID)
	require.NoError(t, err)
	assert.False(t, got, "two parentless roots are not siblings")
}

func TestDepthAndRoot(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	depth, err := idx.Depth(tree.ho.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	depth, err = idx.Depth(tree.brKarol.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	root, err := idx.Root(tree.brSaket.ID)
	require.NoError(t, err)
	assert.Equal(t, tree.ho.ID, root.ID)

	root, err = idx.Root(tree.ho2.ID)
	require.NoError(t, err)
	assert.Equal(t, tree.ho2.ID, root.ID)
}

func TestWouldCreateCycle(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	cycle, err := idx.WouldCreateCycle(tree.circle.ID, tree.circle.ID)
	require.NoError(t, err)
	assert.True(t, cycle, "a unit cannot be its own parent")

	cycle, err = idx.WouldCreateCycle(tree.circle.ID, tree.brKarol.ID)
	require.NoError(t, err)
	assert.True(t, cycle, "moving under a descendant closes a cycle")

	cycle, err = idx.WouldCreateCycle(tree.roSouth.ID, tree.roNorth.ID)
	require.NoError(t, err)
	assert.False(t, cycle)

	cycle, err = idx.WouldCreateCycle(tree.circle.ID, tree.ho2.ID)
	require.NoError(t, err)
	assert.False(t, cycle, "moving to another tree is legal")

	_, err = idx.WouldCreateCycle(tree.circle.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func checkerUser(employeeID string, unitID uuid.UUID) models.User {
	return models.User{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Status:     models.UserStatusActive,
		UnitID:     &unitID,
		Roles:      []models.Role{{Name: models.RoleChecker}},
	}
}

func TestEligibleCheckersOrdering(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	roCheckerB := checkerUser("EMP2002", tree.roNorth.ID)
	roCheckerA := checkerUser("EMP2001", tree.roNorth.ID)
	circleChecker := checkerUser("EMP1001", tree.circle.ID)
	hoChecker := checkerUser("EMP0001", tree.ho.ID)
	cousinChecker := checkerUser("EMP3001", tree.roSouth.ID)
	sameUnitChecker := checkerUser("EMP4001", tree.brKarol.ID)

	candidates := []models.User{cousinChecker, hoChecker, roCheckerB, circleChecker, roCheckerA, sameUnitChecker}

	eligible, err := idx.EligibleCheckers(tree.brKarol.ID, candidates)
	require.NoError(t, err)

	got := make([]string, len(eligible))
	for i, u := range eligible {
		got[i] = u.EmployeeID
	}
	// Ancestor proximity first, employee id within a unit. The same-unit
	// checker and the cousin never appear.
	assert.Equal(t, []string{"EMP2001", "EMP2002", "EMP1001", "EMP0001"}, got)
}

func TestEligibleCheckersFiltering(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	inactive := checkerUser("EMP5001", tree.roNorth.ID)
	inactive.Status = models.UserStatusInactive

	unitless := checkerUser("EMP5002", tree.roNorth.ID)
	unitless.UnitID = nil

	makerOnly := checkerUser("EMP5003", tree.roNorth.ID)
	makerOnly.Roles = []models.Role{{Name: models.RoleMaker}}

	eligible, err := idx.EligibleCheckers(tree.brKarol.ID, []models.User{inactive, unitless, makerOnly})
	require.NoError(t, err)
	assert.Empty(t, eligible)
}

func TestEligibleCheckersRootMaker(t *testing.T) {
	tree := newTestTree()
	idx := tree.index()

	hoChecker := checkerUser("EMP0001", tree.ho.ID)

	eligible, err := idx.EligibleCheckers(tree.ho.ID, []models.User{hoChecker})
	require.NoError(t, err)
	assert.Empty(t, eligible, "a root unit has no ancestors, so no checker is eligible")
}

func TestBuildIndexLen(t *testing.T) {
	tree := newTestTree()
	assert.Equal(t, 7, tree.index().Len())
	assert.Equal(t, 0, BuildIndex(nil).Len())
}
