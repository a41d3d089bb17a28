package main

import (
	"log"

	"contact-book/internal/config"
	"contact-book/internal/email"
	"contact-book/internal/queue"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// worker consume las tareas email:verify encoladas por la API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required for the worker")
	}

	sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
	if err != nil {
		logger.Fatal("smtp sender init failed", zap.Error(err))
	}

	srv := queue.NewServer(cfg, logger)
	logger.Info("starting worker", zap.String("redis", cfg.RedisAddr), zap.Int("concurrency", cfg.WorkerConcurrency))
	// Run bloquea hasta SIGTERM/SIGINT y hace shutdown ordenado.
	if err := srv.Run(queue.NewServeMux(sender, logger)); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
