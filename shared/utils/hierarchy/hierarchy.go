// Package hierarchy answers ancestor/descendant/sibling queries over a
// consistent snapshot of the unit table. The snapshot index is immutable
// after construction, so reads need no synchronization; callers rebuild the
// index per operation (the tree is small and read-mostly).
package hierarchy

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/utils/apperrors"
)

// Index is a snapshot of the unit tree keyed by unit id.
type Index struct {
	units    map[uuid.UUID]*models.Unit
	children map[uuid.UUID][]uuid.UUID
}

// BuildIndex constructs an index from a snapshot slice of units.
func BuildIndex(units []models.Unit) *Index {
	idx := &Index{
		units:    make(map[uuid.UUID]*models.Unit, len(units)),
		children: make(map[uuid.UUID][]uuid.UUID, len(units)),
	}
	for i := range units {
		u := &units[i]
		idx.units[u.ID] = u
	}
	for i := range units {
		u := &units[i]
		if u.ParentID != nil {
			idx.children[*u.ParentID] = append(idx.children[*u.ParentID], u.ID)
		}
	}
	// Deterministic child order for traversals
	for parentID := range idx.children {
		ids := idx.children[parentID]
		sort.Slice(ids, func(a, b int) bool {
			return idx.units[ids[a]].Code < idx.units[ids[b]].Code
		})
	}
	return idx
}

// LoadIndex reads a snapshot of all units from the database and indexes it.
func LoadIndex(db *gorm.DB) (*Index, error) {
	var units []models.Unit
	if err := db.Find(&units).Error; err != nil {
		return nil, err
	}
	return BuildIndex(units), nil
}

// Unit resolves a unit by id.
func (idx *Index) Unit(id uuid.UUID) (*models.Unit, error) {
	unit, ok := idx.units[id]
	if !ok {
		return nil, apperrors.NotFound("unit", id.String())
	}
	return unit, nil
}

// Len returns the number of units in the snapshot.
func (idx *Index) Len() int {
	return len(idx.units)
}

// ParentChain returns the ordered chain from the tree root down to the unit,
// inclusive of the unit itself.
func (idx *Index) ParentChain(id uuid.UUID) ([]*models.Unit, error) {
	unit, err := idx.Unit(id)
	if err != nil {
		return nil, err
	}
	chain := []*models.Unit{unit}
	current := unit
	for current.ParentID != nil {
		parent, err := idx.Unit(*current.ParentID)
		if err != nil {
			// Dangling parent reference; should not happen while the
			// mutation-time invariant holds.
			return nil, err
		}
		chain = append([]*models.Unit{parent}, chain...)
		current = parent
	}
	return chain, nil
}

// Ancestors returns the units from the immediate parent up to the root,
// exclusive of the unit itself. Empty for a root unit.
func (idx *Index) Ancestors(id uuid.UUID) ([]*models.Unit, error) {
	unit, err := idx.Unit(id)
	if err != nil {
		return nil, err
	}
	var ancestors []*models.Unit
	current := unit
	for current.ParentID != nil {
		parent, err := idx.Unit(*current.ParentID)
		if err != nil {
			return nil, err
		}
		ancestors = append(ancestors, parent)
		current = parent
	}
	return ancestors, nil
}

// Descendants returns every unit reachable via child links, exclusive of the
// unit itself. The tree invariant guarantees each unit is visited once.
func (idx *Index) Descendants(id uuid.UUID) ([]*models.Unit, error) {
	if _, err := idx.Unit(id); err != nil {
		return nil, err
	}
	var result []*models.Unit
	stack := append([]uuid.UUID(nil), idx.children[id]...)
	for len(stack) > 0 {
		childID := stack[0]
		stack = stack[1:]
		child := idx.units[childID]
		result = append(result, child)
		stack = append(stack, idx.children[childID]...)
	}
	return result, nil
}

// IsAncestorOf reports whether a is a strict ancestor of b.
func (idx *Index) IsAncestorOf(a, b uuid.UUID) (bool, error) {
	ancestors, err := idx.Ancestors(b)
	if err != nil {
		return false, err
	}
	for _, unit := range ancestors {
		if unit.ID == a {
			return true, nil
		}
	}
	return false, nil
}

// IsDescendantOf reports whether a is a strict descendant of b.
func (idx *Index) IsDescendantOf(a, b uuid.UUID) (bool, error) {
	return idx.IsAncestorOf(b, a)
}

// IsSiblingOf reports whether a and b share the same non-nil parent.
// Two distinct roots are not siblings: units without a parent are not
// comparable.
func (idx *Index) IsSiblingOf(a, b uuid.UUID) (bool, error) {
	unitA, err := idx.Unit(a)
	if err != nil {
		return false, err
	}
	unitB, err := idx.Unit(b)
	if err != nil {
		return false, err
	}
	if a == b {
		return false, nil
	}
	if unitA.ParentID == nil || unitB.ParentID == nil {
		return false, nil
	}
	return *unitA.ParentID == *unitB.ParentID, nil
}

// Depth returns the number of ancestors above the unit (root has depth 0).
func (idx *Index) Depth(id uuid.UUID) (int, error) {
	ancestors, err := idx.Ancestors(id)
	if err != nil {
		return 0, err
	}
	return len(ancestors), nil
}

// Root returns the topmost unit of the tree containing the given unit.
func (idx *Index) Root(id uuid.UUID) (*models.Unit, error) {
	chain, err := idx.ParentChain(id)
	if err != nil {
		return nil, err
	}
	return chain[0], nil
}

// WouldCreateCycle reports whether re-parenting unitID under newParentID
// would make the unit its own ancestor. Checked before every parent mutation.
func (idx *Index) WouldCreateCycle(unitID, newParentID uuid.UUID) (bool, error) {
	if unitID == newParentID {
		return true, nil
	}
	descendants, err := idx.Descendants(unitID)
	if err != nil {
		return false, err
	}
	for _, unit := range descendants {
		if unit.ID == newParentID {
			return true, nil
		}
	}
	if _, err := idx.Unit(newParentID); err != nil {
		return false, err
	}
	return false, nil
}

// EligibleCheckers filters candidates down to active users with the CHECKER
// role whose unit is a strict ancestor of the given unit, ordered by ancestor
// proximity (immediate parent first) and employee id within a unit.
func (idx *Index) EligibleCheckers(unitID uuid.UUID, candidates []models.User) ([]models.User, error) {
	ancestors, err := idx.Ancestors(unitID)
	if err != nil {
		return nil, err
	}

	byUnit := make(map[uuid.UUID][]models.User)
	for _, user := range candidates {
		if !user.IsActive() || user.UnitID == nil || !user.HasRole(models.RoleChecker) {
			continue
		}
		byUnit[*user.UnitID] = append(byUnit[*user.UnitID], user)
	}

	var eligible []models.User
	for _, ancestor := range ancestors {
		unitUsers := byUnit[ancestor.ID]
		sort.Slice(unitUsers, func(a, b int) bool {
			if unitUsers[a].EmployeeID != unitUsers[b].EmployeeID {
				return unitUsers[a].EmployeeID < unitUsers[b].EmployeeID
			}
			return unitUsers[a].ID.String() < unitUsers[b].ID.String()
		})
		eligible = append(eligible, unitUsers...)
	}
	return eligible, nil
}
