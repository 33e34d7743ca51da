package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxClaimsKey = "claims"

	msgNoToken      = "no token, access denied"
	msgInvalidToken = "invalid token"
)

// TokenVerifier checks a session token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*helpers.Claims, error)
}

// SessionGuard requires a valid bearer token. On success it sets userID and claims
// in the Gin context. Every verification failure gets the same 401 message.
// denylist may be nil; when set, a revoked or uncheckable jti is rejected.
func SessionGuard(tokens TokenVerifier, denylist repository.SessionDenylist, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, msgNoToken)
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil || claims.UserID == "" {
			response.Abort(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("session denylist lookup failed")
			}
			if err != nil || revoked {
				response.Abort(c, http.StatusUnauthorized, msgInvalidToken)
				return
			}
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserID returns the authenticated user id set by SessionGuard.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// Claims returns the verified token claims set by SessionGuard.
func Claims(c *gin.Context) (*helpers.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.Claims)
	return claims, ok
}
