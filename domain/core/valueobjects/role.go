package valueobjects

// Role is a user's capability level
type Role string

const (
	// RoleUnregistered is assigned at sign-up
	RoleUnregistered Role = "UNREGISTERED"
	// RoleRegistered may create trees and operations
	RoleRegistered Role = "REGISTERED"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUnregistered || r == RoleRegistered
}

func (r Role) String() string {
	return string(r)
}
