package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudonauts/storefront/pkg/global"
	"github.com/cloudonauts/storefront/pkg/session"
)

// RequireAuth rejects requests that have no authenticated session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.Current(c).Current(); !ok {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("Please login to continue", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
