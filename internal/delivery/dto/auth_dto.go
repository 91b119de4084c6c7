package dto

import (
	"time"

	"github.com/google/uuid"
)

// PrincipalResponse describes the authenticated caller and its session.
type PrincipalResponse struct {
	UserID         uuid.UUID  `json:"user_id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	TokenID        string     `json:"token_id,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}
