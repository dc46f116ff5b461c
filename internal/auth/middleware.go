package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
)

const userContextKey = "user"

func Middleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			user, err := provider.Identify(c.Request.Context(), token)
			if err == nil {
				c.Set(userContextKey, user)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
}

// UserFrom returns the authenticated user set by Middleware, or nil when the
// request slipped past authentication (misconfigured route).
func UserFrom(c *gin.Context) *internal.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*internal.User)
	return user
}
