package auth

// UserRole is the user's role, also used as its authority
type UserRole string

const (
	// RoleUser is the default role assigned on registration
	RoleUser UserRole = "USER"
	// RoleAdmin can manage other principals
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Authorities expands a role into the authority set granted to it.
// Admins also hold the user authority.
func (r UserRole) Authorities() []string {
	switch r {
	case RoleAdmin:
		return []string{string(RoleAdmin), string(RoleUser)}
	case RoleUser:
		return []string{string(RoleUser)}
	default:
		return nil
	}
}
