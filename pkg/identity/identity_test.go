package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("Superuser")
	assert.Error(t, err)

	_, err = ParseRole("admin") // case sensitive
	assert.Error(t, err)
}

func TestCanModifyGifts(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.CanModifyGifts())
	assert.True(t, Principal{Role: RoleEventManager}.CanModifyGifts())
	assert.False(t, Principal{Role: RoleEventCoordinator}.CanModifyGifts())
}

func TestCanManageUsers(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.CanManageUsers())
	assert.False(t, Principal{Role: RoleEventManager}.CanManageUsers())
	assert.False(t, Principal{Role: RoleEventCoordinator}.CanManageUsers())
}

func TestAllRoles(t *testing.T) {
	assert.Len(t, AllRoles(), 3)
}
