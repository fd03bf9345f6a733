// internal/app/system/authz/roles.go
package authz

// Global account roles. These gate what a user may do app-wide
// (scheduling walks, managing users). Per-walk roles — creator, leader,
// participant, responsible — are resolved by the walkpolicy package
// relative to a specific walk or finding, not stored on the account.
const (
	RoleAdmin     = "admin"
	RoleScheduler = "scheduler"
	RoleUser      = "user"
)
