// Package authz holds the role and permission model. The table below is
// the single source of truth for every authorization decision in the
// system; no other component re-implements role logic.
package authz

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleLibrarian Role = "LIBRARIAN"
	RoleMember    Role = "MEMBER"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleLibrarian, RoleMember}

// ParseRole maps a wire value to a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleLibrarian, RoleMember:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Permission is one named, indivisible capability checked against a role.
type Permission string

const (
	// User management
	PermCreateUser Permission = "CREATE_USER"
	PermEditUser   Permission = "EDIT_USER"
	PermDeleteUser Permission = "DELETE_USER"
	PermListUsers  Permission = "LIST_USERS"

	// Item management
	PermCreateItem Permission = "CREATE_ITEM"
	PermEditItem   Permission = "EDIT_ITEM"
	PermDeleteItem Permission = "DELETE_ITEM"
	PermListItems  Permission = "LIST_ITEMS"

	// Lending
	PermLendAnyItem   Permission = "LEND_ANY_ITEM"
	PermLendOwnItem   Permission = "LEND_OWN_ITEM"
	PermReturnAnyItem Permission = "RETURN_ANY_ITEM"
	PermReturnOwnItem Permission = "RETURN_OWN_ITEM"
	PermListAllLoans  Permission = "LIST_ALL_LOANS"
	PermListOwnLoans  Permission = "LIST_OWN_LOANS"

	// Reporting
	PermGenerateReports Permission = "GENERATE_REPORTS"
	PermViewStatistics  Permission = "VIEW_STATISTICS"
)

// Permissions lists every known permission atom.
var Permissions = []Permission{
	PermCreateUser, PermEditUser, PermDeleteUser, PermListUsers,
	PermCreateItem, PermEditItem, PermDeleteItem, PermListItems,
	PermLendAnyItem, PermLendOwnItem, PermReturnAnyItem, PermReturnOwnItem,
	PermListAllLoans, PermListOwnLoans,
	PermGenerateReports, PermViewStatistics,
}

// librarianGrants covers full item management, lending and return of any
// item, statistics, and read-only listing of users.
var librarianGrants = map[Permission]bool{
	PermCreateItem:     true,
	PermEditItem:       true,
	PermDeleteItem:     true,
	PermListItems:      true,
	PermLendAnyItem:    true,
	PermReturnAnyItem:  true,
	PermListAllLoans:   true,
	PermViewStatistics: true,
	PermListUsers:      true,
}

// memberGrants covers listing items and handling the member's own loans.
var memberGrants = map[Permission]bool{
	PermListItems:     true,
	PermLendOwnItem:   true,
	PermReturnOwnItem: true,
	PermListOwnLoans:  true,
}

// HasPermission reports whether role may perform perm. It is pure, total
// over the role/permission space, and never mutates state. Unknown roles
// hold no permissions.
func HasPermission(role Role, perm Permission) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleLibrarian:
		return librarianGrants[perm]
	case RoleMember:
		return memberGrants[perm]
	}
	return false
}
