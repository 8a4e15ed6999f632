package model

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer           Role = "customer"
	RoleDriver             Role = "driver"
	RoleAdmin              Role = "admin"
	RoleApprovalSupervisor Role = "approval_supervisor"
	RoleMonitoring         Role = "monitoring"
)

var allRoles = [...]Role{
	RoleCustomer, RoleDriver, RoleAdmin, RoleApprovalSupervisor, RoleMonitoring,
}

// Roles returns every known role in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles[:])
	return out
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range allRoles {
		if r == v {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Staff reports whether the role belongs to back-office personnel.
func (r Role) Staff() bool {
	switch r {
	case RoleAdmin, RoleApprovalSupervisor, RoleMonitoring:
		return true
	case RoleCustomer, RoleDriver:
		return false
	}
	return false
}

// User represents an account of the platform.
type User struct {
	ID           int64
	Phone        string
	Name         string
	Role         Role
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	AddedBy      *int64
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role Role
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *Role
	Active *bool
	Search string
}

// UserStats aggregates account counters.
type UserStats struct {
	Total               int64 `json:"totalUsers"`
	Customers           int64 `json:"totalCustomers"`
	Drivers             int64 `json:"totalDrivers"`
	Admins              int64 `json:"totalAdmins"`
	Supervisors         int64 `json:"totalSupervisors"`
	Monitoring          int64 `json:"totalMonitoring"`
	Active              int64 `json:"activeUsers"`
	Inactive            int64 `json:"inactiveUsers"`
	Verified            int64 `json:"verifiedUsers"`
	PendingVerification int64 `json:"pendingVerification"`
	NewToday            int64 `json:"newUsersToday"`
}
