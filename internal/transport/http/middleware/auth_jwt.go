package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/core/auth"
	resp "sweetshop/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT 鉴权：必须是 "Bearer <token>"；requireRole 非空时再做角色校验
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "authorization token missing")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, http.StatusForbidden, "access denied")
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}
