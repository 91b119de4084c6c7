package handler

import (
	"net/http"

	"medical-scheduling/internal/usecase"
	"medical-scheduling/pkg/response"
)

// AuthHandler exposes the caller's session. Sign-in happens at the
// identity provider.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Logout revokes the bearer token until its natural expiry.
// POST /auth/logout -> 204
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authUsecase.Logout(r.Context()); err != nil {
		writeError(w, err, "Failed to revoke token")
		return
	}
	response.NoContent(w)
}

// GET /auth/me
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	principal, err := h.authUsecase.GetCurrentUser(r.Context())
	if err != nil {
		writeError(w, err, "Failed to describe session")
		return
	}
	response.Success(w, http.StatusOK, "Session retrieved successfully", principal)
}
