package auth

import "mykitchen/models"

// Principal is the authenticated caller as seen by domain services.
type Principal struct {
	UserID uint
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanModify reports whether p may change a resource owned by ownerID.
// Administrators may change anything.
func (p Principal) CanModify(ownerID uint) bool {
	return p.UserID == ownerID || p.IsAdmin()
}
