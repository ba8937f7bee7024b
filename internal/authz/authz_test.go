package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestAdminHasEveryPermission(t *testing.T) {
	for _, perm := range Permissions {
		assert.True(t, HasPermission(RoleAdmin, perm), "admin should hold %s", perm)
	}
}

func TestLibrarianGrants(t *testing.T) {
	tests := []struct {
		perm Permission
		want bool
	}{
		{PermCreateItem, true},
		{PermEditItem, true},
		{PermDeleteItem, true},
		{PermListItems, true},
		{PermLendAnyItem, true},
		{PermReturnAnyItem, true},
		{PermListAllLoans, true},
		{PermViewStatistics, true},
		{PermListUsers, true},
		{PermCreateUser, false},
		{PermEditUser, false},
		{PermDeleteUser, false},
		{PermLendOwnItem, false},
		{PermReturnOwnItem, false},
		{PermListOwnLoans, false},
		{PermGenerateReports, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPermission(RoleLibrarian, tt.perm), "librarian %s", tt.perm)
	}
}

func TestMemberGrants(t *testing.T) {
	tests := []struct {
		perm Permission
		want bool
	}{
		{PermListItems, true},
		{PermLendOwnItem, true},
		{PermReturnOwnItem, true},
		{PermListOwnLoans, true},
		{PermCreateUser, false},
		{PermListUsers, false},
		{PermCreateItem, false},
		{PermDeleteItem, false},
		{PermLendAnyItem, false},
		{PermReturnAnyItem, false},
		{PermViewStatistics, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasPermission(RoleMember, tt.perm), "member %s", tt.perm)
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, ok := ParseRole(string(role))
		assert.True(t, ok)
		assert.Equal(t, role, got)
	}

	_, ok := ParseRole("SUPERUSER")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

// The permission check must be total and stable: defined for every
// role/permission pair, never permissive for unknown roles, and the
// librarian/member grants must stay subsets of the admin wildcard.
func TestHasPermissionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		perm := rapid.SampledFrom(Permissions).Draw(t, "perm")

		for _, role := range Roles {
			granted := HasPermission(role, perm)
			if role == RoleAdmin {
				assert.True(t, granted)
			}
			if granted {
				assert.True(t, HasPermission(RoleAdmin, perm))
			}
		}

		unknown := rapid.StringMatching(`[A-Z_]{1,20}`).Draw(t, "role")
		if _, ok := ParseRole(unknown); !ok {
			assert.False(t, HasPermission(Role(unknown), perm))
		}
	})
}
