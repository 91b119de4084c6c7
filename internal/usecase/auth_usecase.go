package usecase

import (
	"context"
	"time"

	"medical-scheduling/internal/delivery/dto"
	"medical-scheduling/internal/delivery/http/middleware"
	"medical-scheduling/internal/service"

	"github.com/sirupsen/logrus"
)

// AuthUsecase covers the parts of identity this service owns: describing
// the caller and revoking its token. Accounts live with the identity
// provider.
type AuthUsecase interface {
	GetCurrentUser(ctx context.Context) (*dto.PrincipalResponse, error)
	Logout(ctx context.Context) error
}

type authUsecase struct {
	log         *logrus.Logger
	revocations service.TokenRevocationStore
	now         func() time.Time
}

func NewAuthUsecase(log *logrus.Logger, revocations service.TokenRevocationStore) AuthUsecase {
	return &authUsecase{
		log:         log,
		revocations: revocations,
		now:         time.Now,
	}
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.PrincipalResponse, error) {
	userID, role, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	email, _ := middleware.GetUserEmailFromContext(ctx)
	tokenID, _ := middleware.GetTokenIDFromContext(ctx)

	principal := &dto.PrincipalResponse{
		UserID:  userID,
		Email:   email,
		Role:    role,
		TokenID: tokenID,
	}
	if expiry, ok := middleware.GetTokenExpiryFromContext(ctx); ok {
		principal.TokenExpiresAt = &expiry
	}
	return principal, nil
}

// Logout revokes the current access token until it would have expired
func (u *authUsecase) Logout(ctx context.Context) error {
	userID, _, err := principalFrom(ctx)
	if err != nil {
		return err
	}

	tokenID, ok := middleware.GetTokenIDFromContext(ctx)
	if !ok || tokenID == "" {
		return ErrNoPrincipal
	}
	expiry, ok := middleware.GetTokenExpiryFromContext(ctx)
	if !ok {
		return ErrNoPrincipal
	}

	if err := u.revocations.Revoke(ctx, tokenID, expiry.Sub(u.now())); err != nil {
		u.log.Warnf("Failed to revoke token for user %s: %+v", userID, err)
		return &TransientError{Op: "revoke token", Err: err}
	}

	u.log.Infof("Token revoked: user=%s", userID)
	return nil
}
