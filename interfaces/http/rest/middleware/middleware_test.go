package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"numtree-backend/application/ports/mocks"
	"numtree-backend/domain/core/entities"
	"numtree-backend/pkg/auth"
	pkgerrors "numtree-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubValidator struct {
	claims *auth.Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*auth.Claims, error) { return s.claims, s.err }

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (brokenLimiter) Reset(context.Context, string) error { return nil }

func okHandler(w http.ResponseWriter, r *http.Request) {
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		w.Header().Set("X-User", user.Username)
		w.Header().Set("X-Role", user.Role)
	}
	w.WriteHeader(http.StatusNoContent)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body pkgerrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestAuthenticate(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	user, err := entities.NewUser("alice", "alice@example.com", "hash")
	require.NoError(t, err)
	user.ID = 7
	user.Register()

	tests := []struct {
		name      string
		validator stubValidator
		setup     func(*mocks.MockUserRepository)
		header    string
		status    int
		message   string
	}{
		{
			name:    "missing token",
			status:  http.StatusUnauthorized,
			message: msgNotLoggedIn,
		},
		{
			name:      "expired token",
			validator: stubValidator{err: auth.ErrExpiredToken},
			header:    "Bearer old",
			status:    http.StatusUnauthorized,
			message:   msgExpiredToken,
		},
		{
			name:      "bad signature",
			validator: stubValidator{err: auth.ErrInvalidSignature},
			header:    "Bearer forged",
			status:    http.StatusUnauthorized,
			message:   msgInvalidToken,
		},
		{
			name:      "deleted user",
			validator: stubValidator{claims: &auth.Claims{UserID: 7}},
			setup: func(m *mocks.MockUserRepository) {
				m.On("GetByID", mock.Anything, int64(7)).Return(nil, pkgerrors.UserNotFound())
			},
			header:  "Bearer good",
			status:  http.StatusUnauthorized,
			message: msgUserGone,
		},
		{
			name:      "storage failure",
			validator: stubValidator{claims: &auth.Claims{UserID: 7}},
			setup: func(m *mocks.MockUserRepository) {
				m.On("GetByID", mock.Anything, int64(7)).Return(nil, errors.New("disk"))
			},
			header: "Bearer good",
			status: http.StatusServiceUnavailable,
		},
		{
			name:      "valid",
			validator: stubValidator{claims: &auth.Claims{UserID: 7}},
			setup: func(m *mocks.MockUserRepository) {
				m.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
			},
			header: "bearer good",
			status: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepository)
			if tt.setup != nil {
				tt.setup(users)
			}
			h := Authenticate(tt.validator, users, errs, zap.NewNop())(http.HandlerFunc(okHandler))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorMessage(t, rec))
			}
			if tt.status == http.StatusNoContent {
				assert.Equal(t, "alice", rec.Header().Get("X-User"))
				assert.Equal(t, "REGISTERED", rec.Header().Get("X-Role"))
			}
			users.AssertExpectations(t)
		})
	}
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractToken(req))

	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", extractToken(req))

	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", extractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "from-cookie", extractToken(req))
}

func TestRequireRole(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)
	h := RequireRole(errs, "REGISTERED")(http.HandlerFunc(okHandler))

	for role, status := range map[string]int{
		"REGISTERED":   http.StatusNoContent,
		"UNREGISTERED": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/trees", nil)
		req = req.WithContext(auth.SetUserInContext(req.Context(), &auth.UserContext{UserID: 1, Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/trees", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	errs := pkgerrors.NewErrorHandler(zap.NewNop(), false)

	t.Run("blocks over budget", func(t *testing.T) {
		h := RateLimit(auth.NewIPRateLimiter(1), errs, zap.NewNop())(http.HandlerFunc(okHandler))
		codes := make([]int, 0, 2)
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/trees", nil)
			req.RemoteAddr = "10.0.0.1:5000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := auth.NewIPRateLimiterWith(brokenLimiter{}, 1)
		h := RateLimit(limiter, errs, zap.NewNop())(http.HandlerFunc(okHandler))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trees", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		h := RateLimit(nil, errs, zap.NewNop())(http.HandlerFunc(okHandler))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trees", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type requestLog struct{ requests []recordedRequest }

func (l *requestLog) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	l.requests = append(l.requests, recordedRequest{method, route, status})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	log := &requestLog{}
	r := chi.NewRouter()
	r.Use(Metrics(log))
	r.Get("/api/trees/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	for _, path := range []string{"/api/trees/1", "/api/trees/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []recordedRequest{
		{http.MethodGet, "/api/trees/{id}", http.StatusOK},
		{http.MethodGet, "/api/trees/{id}", http.StatusOK},
		{http.MethodGet, "unmatched", http.StatusNotFound},
	}, log.requests)
}
