package utils

import "github.com/gin-gonic/gin"

// CurrentUserID returns the user id the auth middleware placed on the
// request context. 0 means the caller is anonymous (public endpoints behind
// OptionalAuth see this for untokened requests).
func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get("userId")
	switch id := v.(type) {
	case uint:
		return id
	case int:
		return uint(id)
	case int64:
		return uint(id)
	case float64:
		// JWT claims decode numbers as float64.
		return uint(id)
	default:
		return 0
	}
}

// CurrentRole returns the role claim set by the auth middleware, or "" for
// anonymous callers.
func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
