package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the client IP into Gin context (key: "real_ip").
// Proxy headers are only honored when trustProxy is set, otherwise any client
// could pick its own rate-limit bucket. Priority when trusted:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) fallback to c.ClientIP()
// Untrusted mode uses the socket peer address.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.RemoteIP()
		if trustProxy {
			ip = headerIP(c)
			if ip == "" {
				ip = c.ClientIP()
			}
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func headerIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
