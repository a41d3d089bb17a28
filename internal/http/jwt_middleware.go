package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contact-book/internal/domain"
)

const callerKey = "auth_caller"

// Authenticator resuelve el usuario a partir del access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (domain.User, error)
}

// JWTAuthMiddleware valida el bearer token y guarda el usuario llamante en el contexto.
func JWTAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			abortWithDetail(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(callerKey, user)
		c.Next()
	}
}

// GetCaller obtiene el usuario autenticado desde el contexto.
func GetCaller(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(callerKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func mustCaller(c *gin.Context) (domain.User, bool) {
	user, ok := GetCaller(c)
	if !ok {
		abortWithDetail(c, http.StatusUnauthorized, "Not authenticated")
	}
	return user, ok
}
