package domain

const (
	RoleAdmin  = "Admin"
	RoleSeller = "Seller"
	RoleUser   = "User"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = RoleUser

// SeedRoles lists the roles provisioned at startup.
var SeedRoles = []string{RoleAdmin, RoleSeller, RoleUser}

// Role is a named authorization grouping. Stores look roles up by ID;
// memberships and token claims carry the Name.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Claims is the identity snapshot embedded in an issued token.
type Claims struct {
	Subject string
	Email   string
	Roles   []string
}

// HasRole reports whether role is held, by exact name.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
