package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/logging"
	"github.com/robodoc-one/gateway/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext returns the authenticated user attached by requireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// requireAuth extracts the bearer token, resolves the user behind it with a
// fresh store lookup, and attaches the user to the request context. The
// response bodies mirror the legacy gateway's wording.
func requireAuth(deps Deps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "Access denied", "")
			return
		}

		user, err := deps.Auth.ResolveUser(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrUnknownUser) {
				writeFailure(w, http.StatusUnauthorized, "Invalid token", "")
				return
			}
			writeFailure(w, http.StatusUnauthorized, "Authentication failed", "")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// corsMiddleware applies the permissive policy the legacy gateway shipped:
// any origin, the methods the API serves, and the two headers clients send.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// requestLogger tags each request with an id and logs method, path, status,
// and duration. Bodies and tokens are never logged.
func requestLogger(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info(r.Context(), "request handled",
			"request_id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
