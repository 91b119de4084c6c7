package middleware

import (
	"net/http"
	"slices"
	"strconv"

	"medical-scheduling/config"
)

const (
	corsAllowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, Idempotency-Key"
)

type CORSMiddleware struct {
	origins []string
	maxAge  string
}

// NewCORSMiddleware allows any origin when the list is empty or contains "*".
func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		origins: cfg.AllowedOrigins,
		maxAge:  strconv.Itoa(int(cfg.MaxAge.Seconds())),
	}
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	if len(m.origins) == 0 || slices.Contains(m.origins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(m.origins, origin) {
		return origin
	}
	return ""
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		header := w.Header()
		header.Add("Vary", "Origin")

		if allowed := m.allowOrigin(req.Header.Get("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			header.Set("Access-Control-Max-Age", m.maxAge)
		}

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}
