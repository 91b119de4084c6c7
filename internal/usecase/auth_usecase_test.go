package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"medical-scheduling/internal/delivery/http/middleware"
	"medical-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

func authContext(tokenID string, expiry time.Time) context.Context {
	ctx := middleware.WithPrincipal(context.Background(), uuid.New(), entity.RolePatient)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, "ada@example.com")
	ctx = context.WithValue(ctx, middleware.TokenIDKey, tokenID)
	return context.WithValue(ctx, middleware.TokenExpiryKey, expiry)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	store := &memRevocationStore{}
	uc := NewAuthUsecase(testLogger(), store).(*authUsecase)
	uc.now = func() time.Time { return fixedNow }

	if err := uc.Logout(authContext("token-1", fixedNow.Add(10*time.Minute))); err != nil {
		t.Fatalf("Logout() unexpected error: %v", err)
	}

	if got := store.revoked["token-1"]; got != 10*time.Minute {
		t.Errorf("revoked ttl = %v, want 10m", got)
	}
}

func TestLogout_Errors(t *testing.T) {
	store := &memRevocationStore{err: errStoreDown}
	uc := NewAuthUsecase(testLogger(), store)

	if err := uc.Logout(authContext("token-1", time.Now().Add(time.Minute))); !errors.Is(err, ErrTransient) {
		t.Errorf("Logout() with store down error = %v, want ErrTransient", err)
	}
	if err := uc.Logout(context.Background()); !errors.Is(err, ErrForbidden) {
		t.Errorf("Logout() without principal error = %v, want ErrForbidden", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	uc := NewAuthUsecase(testLogger(), &memRevocationStore{})

	expiry := time.Date(2030, 1, 6, 9, 0, 0, 0, time.UTC)
	resp, err := uc.GetCurrentUser(authContext("token-1", expiry))
	if err != nil {
		t.Fatalf("GetCurrentUser() unexpected error: %v", err)
	}
	if resp.Email != "ada@example.com" || resp.Role != entity.RolePatient {
		t.Errorf("GetCurrentUser() = %+v", resp)
	}
	if resp.TokenID != "token-1" || resp.TokenExpiresAt == nil || !resp.TokenExpiresAt.Equal(expiry) {
		t.Errorf("GetCurrentUser() session = %q %v", resp.TokenID, resp.TokenExpiresAt)
	}
}
