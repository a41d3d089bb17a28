package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-book/internal/service"
)

// RateLimitMiddleware limita por usuario autenticado; debe ir despues de JWTAuthMiddleware.
func RateLimitMiddleware(scope string, limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.ClientIP()
		if user, ok := GetCaller(c); ok {
			key = user.ID
		}
		if !limiter.Allow(scope + ":" + key) {
			abortWithDetail(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}
