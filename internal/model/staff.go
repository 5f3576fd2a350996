package model

import "time"

// Role controls what a user may do.  Customers book seats; the staff
// roles gate the admin back office.
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleSeller     Role = "SELLER"
	RoleControl    Role = "CONTROL"
	RoleAccounting Role = "ACCOUNTING"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSeller, RoleControl, RoleAccounting:
		return true
	}
	return false
}

// User is an account that can authenticate, either a customer or a staff
// member.  Only the bcrypt hash of the password is ever stored.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email, unique
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
