package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medical-scheduling/config"
	"medical-scheduling/internal/domain/entity"
	"medical-scheduling/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return f.revoked[tokenID], f.err
}

func (f *fakeRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	f.revoked[tokenID] = true
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", Issuer: "identity", AccessExpiry: time.Minute})
	userID := uuid.New()
	token, tokenID, err := jwtService.GenerateAccessToken(userID, "ada@example.com", entity.RolePatient)
	if err != nil {
		t.Fatal(err)
	}
	revokedToken, revokedID, err := jwtService.GenerateAccessToken(userID, "ada@example.com", entity.RolePatient)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
		err    error
		want   int
	}{
		{"valid token", "Bearer " + token, nil, http.StatusOK},
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, nil, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", nil, http.StatusUnauthorized},
		{"revoked token", "Bearer " + revokedToken, nil, http.StatusUnauthorized},
		{"revocation store down", "Bearer " + token, errors.New("refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revocations := &fakeRevocations{revoked: map[string]bool{revokedID: true}, err: tt.err}
			m := NewAuthMiddleware(jwtService, revocations, quietLogger())

			var ctx context.Context
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx = r.Context()
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			m.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}

			if got, _ := GetUserIDFromContext(ctx); got != userID {
				t.Errorf("user id = %s, want %s", got, userID)
			}
			if got, _ := GetRoleFromContext(ctx); got != entity.RolePatient {
				t.Errorf("role = %q", got)
			}
			if got, _ := GetTokenIDFromContext(ctx); got != tokenID {
				t.Errorf("token id = %q, want %q", got, tokenID)
			}
			if expiry, ok := GetTokenExpiryFromContext(ctx); !ok || expiry.IsZero() {
				t.Error("token expiry missing from context")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"allowed", WithPrincipal(context.Background(), uuid.New(), entity.RolePhysician), http.StatusOK},
		{"other role", WithPrincipal(context.Background(), uuid.New(), entity.RolePatient), http.StatusForbidden},
		{"no role", context.Background(), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler := RequirePhysician(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	log := quietLogger()
	var entries []*logrus.Entry
	log.AddHook(&captureHook{entries: &entries})

	handler := NewLoggingMiddleware(log).Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if len(entries) != 1 || entries[0].Data["status"] != http.StatusTeapot || entries[0].Data["path"] != "/api/v1/health" {
		t.Fatalf("log entries = %+v", entries)
	}
}

type captureHook struct {
	entries *[]*logrus.Entry
}

func (h *captureHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *captureHook) Fire(e *logrus.Entry) error {
	*h.entries = append(*h.entries, e)
	return nil
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origins    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", []string{"*"}, http.MethodGet, "https://a.example.com", "*", http.StatusTeapot},
		{"empty list allows all", nil, http.MethodGet, "", "*", http.StatusTeapot},
		{"listed origin echoed", []string{"https://a.example.com"}, http.MethodGet, "https://a.example.com", "https://a.example.com", http.StatusTeapot},
		{"unlisted origin", []string{"https://a.example.com"}, http.MethodGet, "https://evil.example.com", "", http.StatusTeapot},
		{"preflight short circuits", []string{"*"}, http.MethodOptions, "https://a.example.com", "*", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := NewCORSMiddleware(config.CORSConfig{AllowedOrigins: tt.origins, MaxAge: 10 * time.Minute})
			req := httptest.NewRequest(tt.method, "/api/v1/appointments", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()

			mw.Handle(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if rec.Header().Get("Vary") != "Origin" {
				t.Errorf("missing Vary: Origin")
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Max-Age") != "600" {
				t.Errorf("Max-Age = %q", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}
