package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/threadline/threadline/internal/auth"
	"github.com/threadline/threadline/internal/model"
	"github.com/threadline/threadline/internal/repository"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// AuthConfig holds configuration for the admin auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
}

// AdminAuth returns a middleware that authenticates admin API requests.
// It extracts the admin key from the Authorization header, verifies it
// against the stored argon2 hash, and injects the auth context into the
// request.
func AdminAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			key := extractAdminKey(r)
			if key == "" {
				logAuthFailure(cfg.Logger, r, "missing_key")
				writeAuthError(w)
				return
			}

			parsed, err := auth.ParseAdminKey(key)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_format")
				writeAuthError(w)
				return
			}

			// Prefix lookup returns only unrevoked keys.
			keys, err := cfg.Repository.GetAdminKeysByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Verify against each candidate key (handles prefix collisions)
			var matchedKey *model.AdminKey
			for _, k := range keys {
				match, err := auth.VerifyKey(key, k.KeyHash)
				if err != nil {
					continue
				}
				if match {
					matchedKey = k
					break
				}
			}

			if matchedKey == nil {
				logAuthFailure(cfg.Logger, r, "invalid_key")
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				KeyID:     matchedKey.ID,
				KeyPrefix: matchedKey.KeyPrefix,
				KeyName:   matchedKey.Name,
			}

			// Update last_used_at off the request path.
			go func(id string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = cfg.Repository.UpdateAdminKeyLastUsed(ctx, id)
			}(matchedKey.ID)

			cfg.Logger.Info("authentication successful",
				slog.String("key_id", authCtx.KeyID),
				slog.String("key_prefix", authCtx.KeyPrefix),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// extractAdminKey extracts the admin key from the request.
// Supports both "Authorization: Bearer <key>" and "X-Admin-Key: <key>" headers.
func extractAdminKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return r.Header.Get("X-Admin-Key")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing admin key"}}`))
}
