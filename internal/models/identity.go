// internal/models/identity.go
package models

import (
	"github.com/google/uuid"

	"github.com/javajoker/placement-backend/internal/apperror"
)

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	UserID     uuid.UUID  `json:"user_id"`
	Role       Role       `json:"role"`
	Department Department `json:"department,omitempty"`
}

func (i Identity) Is(role Role) bool {
	return i.Role == role
}

func (i Identity) InDepartment(d Department) bool {
	return i.Department != "" && i.Department == d
}

// Require fails with Forbidden unless the identity holds one of roles.
func (i Identity) Require(roles ...Role) error {
	for _, role := range roles {
		if i.Role == role {
			return nil
		}
	}
	return apperror.Forbidden("role " + string(i.Role) + " may not perform this action")
}
