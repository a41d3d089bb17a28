package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contact-book/internal/config"
	"contact-book/internal/db"
	"contact-book/internal/email"
	apihttp "contact-book/internal/http"
	"contact-book/internal/queue"
	"contact-book/internal/repository"
	"contact-book/internal/service"
	"contact-book/internal/storage"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	profileWindow := time.Duration(cfg.ProfileRateWindowSeconds) * time.Second
	profileLimiter := service.NewMemoryRateLimiter(profileWindow, cfg.ProfileRateLimit)
	healthChecks := map[string]apihttp.HealthCheck{
		"database": func(ctx context.Context) error { return db.Ping(ctx, pool) },
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			profileLimiter = service.NewRedisRateLimiter(redisClient, "ratelimit:", profileWindow, cfg.ProfileRateLimit)
		}
		cancel()
		healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var dispatcher service.VerificationDispatcher
	inline := queue.NewInlineDispatcher(emailSender, logger)
	if cfg.UseAsynq() {
		client := queue.NewClient(cfg)
		defer client.Close()
		dispatcher = queue.NewAsynqDispatcher(client, logger)
		logger.Info("verification emails dispatched via asynq")
	} else {
		dispatcher = inline
	}

	var avatarStore service.AvatarStore = storage.NewDisabledAvatarStore()
	if s3Store, err := storage.NewS3AvatarStore(ctx, cfg); err != nil {
		logger.Warn("avatar storage disabled", zap.Error(err))
	} else {
		avatarStore = s3Store
	}

	jwtSvc := service.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.EmailTokenTTLMinutes)*time.Minute,
	)
	authSvc := service.NewAuthService(logger, userRepo, service.NewBcryptHasher(0), jwtSvc, dispatcher, avatarStore, cfg.VerifyEmailBaseURL)
	contactSvc := service.NewContactService(logger, contactRepo)

	router := apihttp.NewRouter(
		logger,
		apihttp.NewAuthHandler(logger, authSvc, cfg.AvatarMaxBytes),
		apihttp.NewContactHandler(logger, contactSvc),
		apihttp.NewHealthHandler(logger, healthChecks),
		authSvc,
		profileLimiter,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	inline.Wait()
}
