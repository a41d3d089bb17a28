package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret            string `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	EmailTokenTTLMinutes int    `env:"EMAIL_TOKEN_TTL_MINUTES" envDefault:"60"`
	VerifyEmailBaseURL   string `env:"VERIFY_EMAIL_BASE_URL" envDefault:"http://127.0.0.1:8080/auth/verify-email"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// EmailQueue elige el despacho de correos: "asynq" (requiere Redis) o "inline".
	EmailQueue        string `env:"EMAIL_QUEUE" envDefault:"asynq"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"5"`

	ProfileRateLimit         int `env:"PROFILE_RATE_LIMIT" envDefault:"5"`
	ProfileRateWindowSeconds int `env:"PROFILE_RATE_WINDOW_SECONDS" envDefault:"60"`

	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	AvatarMaxBytes  int64  `env:"AVATAR_MAX_BYTES" envDefault:"5242880"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UseAsynq indica si los correos de verificacion van por la cola de Redis.
func (c *Config) UseAsynq() bool {
	return c.EmailQueue == "asynq" && c.RedisAddr != ""
}
