package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"numtree-backend/application/ports"
	"numtree-backend/pkg/auth"
	pkgerrors "numtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// TokenCookie is the cookie that carries the session token
const TokenCookie = "jwt"

// Authentication failure messages
const (
	msgNotLoggedIn  = "You are not logged in! Please log in to get access."
	msgInvalidToken = "Invalid token. Please log in again!"
	msgExpiredToken = "Your token has expired! Please log in again."
	msgUserGone     = "User belonging to this token no longer exists."
	msgNoPermission = "You do not have permission to perform this action"
	msgAuthBackend  = "Unable to verify authentication"
)

// TokenValidator validates session tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate requires a valid token from the Authorization header or the
// jwt cookie whose user still exists. The stored user, not the token, supplies
// the role placed in the request context.
func Authenticate(validator TokenValidator, users ports.UserRepository, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError(msgNotLoggedIn))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Debug("Invalid token",
					zap.Error(err),
					zap.String("ip", clientIP(r)),
					zap.String("path", r.URL.Path),
				)
				msg := msgInvalidToken
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = msgExpiredToken
				}
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError(msg))
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if pkgerrors.IsNotFound(err) {
					errs.Handle(w, r, pkgerrors.NewUnauthorizedError(msgUserGone))
					return
				}
				errs.Handle(w, r, pkgerrors.NewUnavailableError("authentication").WithCause(err).WithDetails(
					map[string]interface{}{"reason": msgAuthBackend},
				))
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role.String(),
			})

			logger.Debug("Request authenticated",
				zap.Int64("user_id", user.ID),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates middleware that requires one of roles. It must run
// after Authenticate.
func RequireRole(errs *pkgerrors.ErrorHandler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				errs.Handle(w, r, pkgerrors.NewUnauthorizedError(msgNotLoggedIn))
				return
			}

			for _, role := range roles {
				if user.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errs.Handle(w, r, pkgerrors.NewForbiddenError(msgNoPermission))
		})
	}
}

// RateLimit rejects clients over the limiter's budget with 429. Limiter
// failures let the request through.
func RateLimit(limiter *auth.IPRateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limiter.Limit() <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Warn("Rate limiter error", zap.Error(err), zap.String("ip", ip))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				errs.Handle(w, r, pkgerrors.NewRateLimitError(limiter.Limit(), "minute"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads a Bearer token, falling back to the jwt cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// clientIP uses RemoteAddr, which chi's RealIP middleware has already
// rewritten from X-Forwarded-For / X-Real-IP
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
