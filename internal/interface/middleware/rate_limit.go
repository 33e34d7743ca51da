package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/pkg/ratelimit"
	"github.com/oksasatya/go-task-tracker/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route path
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "user:anon:ip:" + ipFromCtx(c)
		}
		return "user:" + uid
	}
}

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// Rule is a named fixed-window budget. Routes sharing a Rule name share counters.
type Rule struct {
	Name    string
	Max     int
	Window  time.Duration
	Message string
}

// RateLimit with:
// - pluggable counter store (memory or redis)
// - standard headers (limit/remaining/reset)
// - optional allowlist bypass, OPTIONS skipped
// Store errors fail open.
func RateLimit(store ratelimit.Store, rule Rule, keyFn KeyFunc, allow AllowFunc, logger logrus.FieldLogger) gin.HandlerFunc {
	if store == nil || rule.Max <= 0 || rule.Window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	msg := rule.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := "rl:" + rule.Name + ":" + keyFn(c)
		count, ttl, err := store.Hit(c.Request.Context(), key, rule.Window)
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("key", key).Warn("rate limit store unavailable, allowing request")
			}
			c.Next()
			return
		}

		resetSec := int((ttl + time.Second - 1) / time.Second)
		remaining := rule.Max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		// https://datatracker.ietf.org/doc/html/rfc6585#section-4
		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if int(count) > rule.Max {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, msg)
			return
		}
		c.Next()
	}
}
