package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"authflow/internal/domain"
	"authflow/internal/observability/metrics"
	obsmw "authflow/internal/observability/middleware"
	"authflow/internal/service"

	"github.com/google/uuid"
)

type ctxUserKey struct{}

func contextWithUserID(ctx context.Context, id domain.UserID) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, id)
}

// UserIDFrom returns the user id set by RequireSession.
func UserIDFrom(ctx context.Context) (domain.UserID, bool) {
	id, ok := ctx.Value(ctxUserKey{}).(domain.UserID)
	return id, ok && id != uuid.Nil
}

// RequireSession rejects requests without a valid bearer session token.
func RequireSession(tokens service.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := metrics.ResultSuccess
			defer func() {
				metrics.AuthenticationAttempts.WithLabelValues("bearer", result).Inc()
			}()

			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(raw), "bearer ") {
				result = metrics.ResultFailure
				slog.WarnContext(r.Context(), "missing bearer token", obsmw.LogAttrs(r.Context())...)
				writeError(w, r, domain.ErrUnauthorized)
				return
			}
			tokStr := strings.TrimSpace(raw[len("Bearer "):])

			userID, err := tokens.Verify(r.Context(), tokStr)
			if err != nil {
				result = metrics.ResultFailure
				slog.WarnContext(r.Context(), "invalid bearer token",
					append([]any{"error", err}, obsmw.LogAttrs(r.Context())...)...)
				writeError(w, r, domain.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUserID(r.Context(), userID)))
		})
	}
}
