// internal/app/system/status/status.go
package status

// Canonical entity status values shared by users and session records.
const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is one of the canonical status values.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}
