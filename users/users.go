package users

// RoleType is the role carried in a user's access token
type RoleType string

const (
	RoleCustomer RoleType = "customer" // Default role for storefront shoppers
	RoleAdmin    RoleType = "admin"    // Can manage the catalog
)

// User is the profile returned by the auth service
type User struct {
	ID    string   `json:"_id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  RoleType `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
