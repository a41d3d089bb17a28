package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"contact-book/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	contactH *ContactHandler,
	healthH *HealthHandler,
	authn Authenticator,
	profileLimiter service.RateLimiter,
) *gin.Engine {
	configureValidator()
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(), jsonContentTypeMiddleware())

	r.GET("/healthz", healthH.Healthz)

	requireAuth := JWTAuthMiddleware(authn)

	auth := r.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/login", authH.Login)
	auth.GET("/verify-email/:token", authH.VerifyEmail)
	auth.GET("/me", requireAuth, RateLimitMiddleware("profile", profileLimiter), authH.Me)
	auth.POST("/avatar", requireAuth, authH.UpdateAvatar)

	contacts := r.Group("/api/contacts", requireAuth)
	contacts.POST("/", contactH.Create)
	contacts.GET("/", contactH.List)
	contacts.GET("/search", contactH.Search)
	contacts.GET("/search/", contactH.Search)
	contacts.GET("/birthdays/upcoming", contactH.UpcomingBirthdays)
	contacts.GET("/:id", contactH.Get)
	contacts.PUT("/:id", contactH.Update)
	contacts.DELETE("/:id", contactH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware acepta cualquier origen, metodo y header, con credenciales.
// El origen se refleja tal cual.
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: func(string) bool { return true },
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"*", "Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	})
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
