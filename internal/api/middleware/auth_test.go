package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rrens/collabhub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(userID))
	})
}

func TestAuthenticate(t *testing.T) {
	manager := security.NewJWTManager("test-secret-key-with-32-chars!!", time.Minute)
	auth := NewAuthMiddleware(manager)
	userID := primitive.NewObjectID().Hex()
	token, err := manager.GenerateAccessToken(userID, "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name    string
		upgrade bool
		header  string
		query   string
		want    int
	}{
		{"bearer header", false, "Bearer " + token, "", http.StatusOK},
		{"lowercase scheme", false, "bearer " + token, "", http.StatusOK},
		{"missing header", false, "", "", http.StatusUnauthorized},
		{"wrong scheme", false, "Basic " + token, "", http.StatusUnauthorized},
		{"garbage token", false, "Bearer nope", "", http.StatusUnauthorized},
		{"query token ignored on REST", false, "", token, http.StatusUnauthorized},
		{"query token on upgrade", true, "", token, http.StatusOK},
		{"header on upgrade", true, "Bearer " + token, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			mw := auth.Authenticate
			if tt.upgrade {
				mw = auth.AuthenticateUpgrade
			}

			rec := httptest.NewRecorder()
			mw(echoUser(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID, rec.Body.String())
			}
		})
	}
}

type fakeLimiter struct {
	allowed   bool
	remaining int
	err       error
	keys      []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.remaining, time.Unix(1700000000, 0), f.err
}

func (f *fakeLimiter) Limit() int { return 10 }

func TestRateLimit(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	serve := func(limiter *fakeLimiter, withUser bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if withUser {
			req = req.WithContext(WithUserID(req.Context(), userID))
		}
		rec := httptest.NewRecorder()
		NewRateLimitMiddleware(limiter).Limit(ok).ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed sets headers", func(t *testing.T) {
		limiter := &fakeLimiter{allowed: true, remaining: 12}
		rec := serve(limiter, true)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "12", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1700000000", rec.Header().Get("X-RateLimit-Reset"))
		assert.Equal(t, []string{userID}, limiter.keys)
	})

	t.Run("exceeded", func(t *testing.T) {
		rec := serve(&fakeLimiter{allowed: false}, true)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		rec := serve(&fakeLimiter{err: errors.New("redis down")}, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("requires user", func(t *testing.T) {
		rec := serve(&fakeLimiter{allowed: true}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
