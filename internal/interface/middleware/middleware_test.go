package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/memory"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/ratelimit"
)

func init() { gin.SetMode(gin.TestMode) }

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func guardedEngine(jm *helpers.JWTManager, deny repository.SessionDenylist) *gin.Engine {
	logger, _ := test.NewNullLogger()
	r := gin.New()
	r.GET("/me", SessionGuard(jm, deny, logger), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionGuard(t *testing.T) {
	jm := helpers.NewJWTManager("secret", time.Hour)
	r := guardedEngine(jm, nil)
	token, _, err := jm.Issue("user-1")
	require.NoError(t, err)

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	for name, header := range map[string]string{"missing": "", "no scheme": token, "basic": "Basic abc", "empty bearer": "Bearer "} {
		t.Run(name, func(t *testing.T) {
			w := get(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "no token, access denied", message(t, w))
		})
	}

	other := helpers.NewJWTManager("other-secret", time.Hour)
	forged, _, _ := other.Issue("user-1")
	expiredMgr := helpers.NewJWTManager("secret", time.Hour)
	expiredMgr.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, _ := expiredMgr.Issue("user-1")

	for name, tok := range map[string]string{"tampered": token + "x", "wrong key": forged, "expired": expired, "garbage": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			w := get(r, "Bearer "+tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "invalid token", message(t, w))
		})
	}
}

func TestSessionGuard_Denylist(t *testing.T) {
	jm := helpers.NewJWTManager("secret", time.Hour)
	deny := memory.NewDenylist(0)
	r := guardedEngine(jm, deny)

	token, exp, _ := jm.Issue("user-1")
	require.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)

	claims, err := jm.Verify(token)
	require.NoError(t, err)
	require.NoError(t, deny.Revoke(context.Background(), claims.ID, "user-1", exp))

	w := get(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid token", message(t, w))

	fresh, _, _ := jm.Issue("user-1")
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+fresh).Code)
}

type brokenDenylist struct{}

func (brokenDenylist) Revoke(context.Context, string, string, time.Time) error { return nil }
func (brokenDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestSessionGuard_DenylistErrorFailsClosed(t *testing.T) {
	jm := helpers.NewJWTManager("secret", time.Hour)
	token, _, _ := jm.Issue("user-1")
	assert.Equal(t, http.StatusUnauthorized, get(guardedEngine(jm, brokenDenylist{}), "Bearer "+token).Code)
}

func TestClaimsHelper(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := Claims(c)
	assert.False(t, ok)

	c.Set(CtxClaimsKey, &helpers.Claims{UserID: "u", RegisteredClaims: jwt.RegisteredClaims{ID: "j"}})
	claims, ok := Claims(c)
	require.True(t, ok)
	assert.Equal(t, "j", claims.ID)
}

func limitedEngine(store ratelimit.Store, rule Rule, allow AllowFunc) *gin.Engine {
	r := gin.New()
	r.Use(RealIP(true))
	limit := RateLimit(store, rule, KeyByIP(), allow, nil)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/login", limit, ok)
	r.POST("/register", limit, ok)
	return r
}

func post(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_SharedCounterAcrossRoutes(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	defer store.Close()
	msg := "Too many authentication attempts from this IP, please try again after 15 minutes"
	r := limitedEngine(store, Rule{Name: "auth", Max: 10, Window: 15 * time.Minute, Message: msg}, nil)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login", "203.0.113.7").Code)
		assert.Equal(t, http.StatusOK, post(r, "/register", "203.0.113.7").Code)
	}
	w := post(r, "/login", "203.0.113.7")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, msg, message(t, w))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "900", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, post(r, "/login", "198.51.100.1").Code, "other IPs unaffected")
}

func TestRateLimit_Headers(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	defer store.Close()
	r := limitedEngine(store, Rule{Name: "forgot", Max: 5, Window: 15 * time.Minute}, nil)

	w := post(r, "/login", "203.0.113.8")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "900", w.Header().Get("X-RateLimit-Reset"))
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := limitedEngine(failingStore{}, Rule{Name: "auth", Max: 1, Window: time.Minute}, nil)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login", "203.0.113.9").Code)
	}
}

func TestRateLimit_AllowPrivateIP(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	defer store.Close()
	r := limitedEngine(store, Rule{Name: "auth", Max: 1, Window: time.Minute}, AllowPrivateIP())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/login", "10.0.0.5").Code)
	}
	assert.Equal(t, http.StatusOK, post(r, "/login", "203.0.113.10").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/login", "203.0.113.10").Code)
}

func TestKeyFuncs(t *testing.T) {
	r := gin.New()
	r.Use(RealIP(true))
	r.GET("/items/:id", func(c *gin.Context) {
		anon := KeyByUserID()(c)
		c.Set(CtxUserIDKey, "u-1")
		c.JSON(http.StatusOK, gin.H{
			"ip":   KeyByIP()(c),
			"path": KeyByIPAndPath()(c),
			"anon": anon,
			"user": KeyByUserID()(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.4")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var keys map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &keys))
	assert.Equal(t, "ip:203.0.113.4", keys["ip"])
	assert.Equal(t, "path:/items/:id:ip:203.0.113.4", keys["path"])
	assert.Equal(t, "user:anon:ip:203.0.113.4", keys["anon"])
	assert.Equal(t, "user:u-1", keys["user"])
}

func TestRealIP_IgnoresHeadersUnlessTrusted(t *testing.T) {
	for _, trust := range []bool{true, false} {
		r := gin.New()
		r.Use(RealIP(trust))
		r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if trust {
			assert.Equal(t, "203.0.113.5", w.Body.String())
		} else {
			assert.NotEqual(t, "203.0.113.5", w.Body.String())
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, given)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, given, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRequestLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestIDMiddleware(), RequestLog(logger))
	r.PUT("/api/auth/reset-password/:token", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/auth/reset-password/secret-token", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusBadRequest, entry.Data["status"])
	assert.Equal(t, "/api/auth/reset-password/:token", entry.Data["route"])
	assert.NotEmpty(t, entry.Data["request_id"])
}
