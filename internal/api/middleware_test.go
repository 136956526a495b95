// internal/api/middleware_test.go
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"advisor-ai/internal/common/auth"
	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/logger"
	"advisor-ai/internal/models"
	"advisor-ai/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// ==========================
// Helpers
// ==========================

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "advisor-ai", Version: "test"},
		Server: config.ServerConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			Session: config.SessionConfig{
				CookieName: "advisorai_session",
				TTL:        86400000,
			},
		},
		Auth: config.AuthConfig{
			Supabase: config.SupabaseConfig{JWTSecret: testJWTSecret},
		},
	}
}

func newTestDeps(t *testing.T) Dependencies {
	t.Helper()
	verifier, err := auth.NewVerifier(testConfig().Auth.Supabase)
	require.NoError(t, err)

	return Dependencies{
		Config:   testConfig(),
		Logger:   logger.NewTestLogger(t),
		Sessions: session.NewMemoryStore(time.Hour),
		Verifier: verifier,
	}
}

func bearerToken(t *testing.T, advisorID string) string {
	t.Helper()
	verifier, err := auth.NewVerifier(testConfig().Auth.Supabase)
	require.NoError(t, err)
	token, err := verifier.Sign(models.Advisor{ID: advisorID, Email: advisorID + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func perform(r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// ==========================
// Rate limiter
// ==========================

func TestRateLimiter_BlocksRequestOverLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	deps := newTestDeps(t)
	deps.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	deps.Config.Server.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 100, Window: 900000}
	router := NewRouter(deps)

	for i := 1; i <= 100; i++ {
		w := perform(router, http.MethodGet, "/api/auth-status", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := perform(router, http.MethodGet, "/api/auth-status", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "Too many requests, please try again later.", decodeBody(t, w)["error"])
}

func TestRateLimiter_DoesNotLimitHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	deps := newTestDeps(t)
	deps.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	deps.Config.Server.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: 900000}
	router := NewRouter(deps)

	for i := 0; i < 3; i++ {
		w := perform(router, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_NewWindowResetsCount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(client, config.RateLimitConfig{Requests: 2, Window: 60000}, logger.NewTestLogger(t))

	now := time.Now().Truncate(time.Minute)
	limiter.now = func() time.Time { return now }

	ctx := t.Context()
	for i := 0; i < 2; i++ {
		ok, _, _, err := limiter.allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, remaining, _, err := limiter.allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, _, err = limiter.allow(ctx, "192.0.2.2")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own count")

	keys := mr.Keys()
	require.Len(t, keys, 2)
	for _, key := range keys {
		ttl := mr.TTL(key)
		assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl %s on %s", ttl, key)
	}

	now = now.Add(time.Minute)
	ok, remaining, _, err = limiter.allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
}

func TestRateLimiter_FailsOpenWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	deps := newTestDeps(t)
	deps.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	deps.Config.Server.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: 900000}
	router := NewRouter(deps)
	mr.Close()

	for i := 0; i < 3; i++ {
		w := perform(router, http.MethodGet, "/api/auth-status", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

// ==========================
// Advisor auth
// ==========================

func TestRequireAdvisor(t *testing.T) {
	clientSvc := new(MockClientService)
	deps := newTestDeps(t)
	deps.Clients = clientSvc
	router := NewRouter(deps)

	t.Run("missing token", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/api/clients", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authenticated", decodeBody(t, w)["error"])
	})

	t.Run("bad signature", func(t *testing.T) {
		w := perform(router, http.MethodGet, "/api/clients", nil, map[string]string{
			"Authorization": "Bearer " + strings.Repeat("x", 20),
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authentication failed", decodeBody(t, w)["error"])
	})

	clientSvc.AssertNotCalled(t, "Search")
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	router := NewRouter(newTestDeps(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimiter_ClockBehindRedisKeepsCount(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(client, config.RateLimitConfig{Requests: 2, Window: 60000}, logger.NewTestLogger(t))

	stale := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return stale }

	ctx := t.Context()
	allowed := make([]bool, 0, 3)
	for i := 0; i < 3; i++ {
		ok, _, _, err := limiter.allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		allowed = append(allowed, ok)
	}

	assert.Equal(t, []bool{true, true, false}, allowed)
	assert.Len(t, mr.Keys(), 1)
}
