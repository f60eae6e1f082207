package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/i18n"
	"github.com/accountd/accountd/internal/server/auth"
)

const (
	localeKey = "locale"
	claimsKey = "claims"
)

// localeMiddleware resolves the request locale from Accept-Language once,
// before any handler can fail.
func localeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(localeKey, i18n.MatchLocale(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func localeFrom(c *gin.Context) string {
	if locale, ok := c.Get(localeKey); ok {
		return locale.(string)
	}
	return i18n.DefaultLocale
}

// authMiddleware decodes the bearer access token into claims and rejects
// with 401 when it is missing, malformed or expired.
func authMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(c, common.NewAuthenticationError("auth.errors.missing_token"))
			return
		}

		claims, err := auth.ParseToken(token, secret)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// staleAuthMiddleware is authMiddleware for the refresh and logout routes:
// the signature must check out but the access token may already be expired,
// otherwise a client could never refresh it.
func staleAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(c, common.NewAuthenticationError("auth.errors.missing_token"))
			return
		}

		claims, err := auth.ParseTokenAllowExpired(token, secret)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		return v.(*auth.Claims)
	}
	return nil
}

// requireRole rejects with 403 when the decoded claims lack the role. It
// must run after authMiddleware.
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || !claims.HasRole(role) {
			writeError(c, common.NewAuthorizationError("auth.errors.insufficient_role"))
			return
		}
		c.Next()
	}
}
