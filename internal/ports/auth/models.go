package auth

import "time"

const RoleAdmin = "admin"

// Claims representa la información extraída del token o de la sesión.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
