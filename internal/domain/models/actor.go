package models

// StaffRole enumerates the roles recognised by the roster.
type StaffRole string

const (
	// RoleDirector is the top-level role, exempt from branch staffing floors.
	RoleDirector StaffRole = "director"
	// RoleManager is the single privileged role per branch.
	RoleManager StaffRole = "manager"
	// RoleSalesAgent is a branch role holding slot 1 or 2.
	RoleSalesAgent StaffRole = "sales_agent"
)

// Actor describes the authenticated principal a request acts on behalf of.
// It is passed explicitly into every reconciler and guard call.
type Actor struct {
	Name   string    `json:"name"`
	Role   StaffRole `json:"role"`
	Branch string    `json:"branch"`
}

// StaffingFloor returns the mandated headcount floor for a branch role. Roles
// without a floor (directors) report ok=false.
func StaffingFloor(role StaffRole) (floor int, ok bool) {
	switch role {
	case RoleManager:
		return 1, true
	case RoleSalesAgent:
		return 2, true
	default:
		return 0, false
	}
}
