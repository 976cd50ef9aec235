package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserHasRole(t *testing.T) {
	user := User{Roles: []Role{{Name: RoleMaker}, {Name: RoleChecker}}}

	assert.True(t, user.HasRole(RoleMaker))
	assert.True(t, user.HasRole(RoleChecker))
	assert.False(t, user.HasRole(RoleAdmin))
	assert.False(t, (&User{}).HasRole(RoleMaker))
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&User{Status: UserStatusActive}).IsActive())
	assert.False(t, (&User{Status: UserStatusInactive}).IsActive())
	assert.False(t, (&User{}).IsActive())
}

func TestUserFullName(t *testing.T) {
	user := User{FirstName: "Asha", LastName: "Verma", EmployeeID: "EMP1001"}
	assert.Equal(t, "Asha Verma", user.FullName())

	nameless := User{EmployeeID: "EMP1001"}
	assert.Equal(t, "EMP1001", nameless.FullName())
}

func TestUnitIsRoot(t *testing.T) {
	parentID := uuid.New()
	assert.True(t, (&Unit{}).IsRoot())
	assert.False(t, (&Unit{ParentID: &parentID}).IsRoot())
}
