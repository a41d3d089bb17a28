package queue

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"contact-book/internal/config"
	"contact-book/internal/email"
)

const maxRetryDelay = 5 * time.Minute

func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func NewClient(cfg *config.Config) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

// NewServer arma el servidor asynq del worker con backoff exponencial acotado.
func NewServer(cfg *config.Config, logger *zap.Logger) *asynq.Server {
	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency:    concurrency,
		Logger:         logger.Sugar(),
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
}

func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 8 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<uint(n)) * time.Second
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func NewServeMux(sender email.Sender, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeVerificationEmail, NewVerificationEmailHandler(sender, logger))
	return mux
}
