package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medical-scheduling/internal/delivery/http/middleware"

	"github.com/google/uuid"
)

// principalFrom reads the authenticated user set by the auth middleware
func principalFrom(ctx context.Context) (uuid.UUID, string, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, "", ErrNoPrincipal
	}
	role, _ := middleware.GetRoleFromContext(ctx)
	return userID, role, nil
}

func isTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// Layouts accepted for instants. Values without an offset are UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseInstant parses a client supplied timestamp and normalizes it to UTC.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid time %q, expected RFC 3339", ErrValidation, value)
}
