package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation", &pgconn.PgError{Code: "23P01"}, ErrSlotUnavailable},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrSlotUnavailable},
		{"other pg error", &pgconn.PgError{Code: "57014"}, ErrTransient},
		{"plain error", errors.New("connection reset"), ErrTransient},
		{"known kind kept", ErrAppointmentTerminal, ErrInvalidTransition},
		{"conflict kind kept", ErrFeedbackExists, ErrConflict},
		{"cancelled context", context.Canceled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransientErrorIsNotSlotUnavailable(t *testing.T) {
	err := classify("find overlapping", errors.New("i/o timeout"))

	if errors.Is(err, ErrSlotUnavailable) {
		t.Fatal("transient error must not match ErrSlotUnavailable")
	}
	var transient *TransientError
	if !errors.As(err, &transient) || transient.Op != "find overlapping" {
		t.Fatalf("expected *TransientError with op, got %#v", err)
	}
}
