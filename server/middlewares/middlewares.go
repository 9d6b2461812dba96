package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgportal/tgportal/auth"
)

const (
	// AdminKey is the gin context key holding the authenticated
	// *model.AdminInfo.
	AdminKey = "admin"
	// TokenKey is the gin context key holding the raw session token, needed
	// by logout/refresh/change-password handlers.
	TokenKey = "token"
)

// SessionAuth validates the bearer session token on every admin request and
// injects the admin's public identity into the gin context. Missing and
// expired tokens get the same response.
func SessionAuth(sessions *auth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": "session_invalid",
				"msg":  "missing session token",
			})
			c.Abort()
			return
		}

		info, err := sessions.Validate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": "session_invalid",
				"msg":  auth.ErrSessionInvalid.Error(),
			})
			c.Abort()
			return
		}

		c.Set(AdminKey, info)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the "token" query parameter for clients that cannot set headers.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
