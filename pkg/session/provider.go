package session

import "github.com/gin-gonic/gin"

const contextKey = "storefront.session"

// Middleware installs the manager as the request's session provider.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKey, m)
		c.Next()
	}
}

// Current returns the request's session manager. Calling it on a request
// that never passed through Middleware is a programming error and panics.
func Current(c *gin.Context) *Manager {
	value, ok := c.Get(contextKey)
	if !ok {
		panic("session: Current called outside an active session provider")
	}
	return value.(*Manager)
}
