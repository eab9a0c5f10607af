package domain

// Role is the privilege level of a user. Roles form a total order:
// ROOT > ADMIN > CASHIER.
type Role string

const (
	RoleRoot    Role = "ROOT"
	RoleAdmin   Role = "ADMIN"
	RoleCashier Role = "CASHIER"
)

func (r Role) rank() int {
	switch r {
	case RoleRoot:
		return 3
	case RoleAdmin:
		return 2
	case RoleCashier:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.rank() > 0 }

// IsAtLeast reports whether r grants at least the privileges of min.
// An unknown role on either side always denies.
func (r Role) IsAtLeast(min Role) bool {
	return r.rank() > 0 && min.rank() > 0 && r.rank() >= min.rank()
}
