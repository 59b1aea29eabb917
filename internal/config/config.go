package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	DB          DatabaseConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
	Storage     StorageConfig
	Minio       MinioConfig
	AWS         AWSConfig
	RabbitMQ    RabbitMQConfig
	Termo       TermoConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type AuthConfig struct {
	JWT_SECRET string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type MailConfig struct {
	// sendgrid or smtp
	DRIVER     string
	SEND_GRID  SendGridConfig
	SMTP       SMTPConfig
	FROM_EMAIL string
}

type SMTPConfig struct {
	HOST     string
	PORT     int
	USERNAME string
	PASSWORD string
}

type SendGridConfig struct {
	API_KEY string
}

const (
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"
)

type StorageConfig struct {
	// minio, s3 or memory
	DRIVER string
	BUCKET string
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	USE_SSL    bool
}

type AWSConfig struct {
	REGION     string
	ACCESS_KEY string
	SECRET_KEY string
	// Optional, for S3 compatible endpoints such as LocalStack
	ENDPOINT   string
}

type RabbitMQConfig struct {
	HOST     string
	PORT     int
	USERNAME string
	PASSWORD string
	VHOST    string
}

func (r RabbitMQConfig) GetConnectionString() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(r.USERNAME, r.PASSWORD),
		Host:   net.JoinHostPort(r.HOST, strconv.Itoa(r.PORT)),
		Path:   "/" + strings.TrimPrefix(r.VHOST, "/"),
	}
	return u.String()
}

const (
	NotifyDriverMail  = "mail"
	NotifyDriverQueue = "queue"
)

type TermoConfig struct {
	InstitutionName string
	FrontendURL     string
	PresignTTL      time.Duration

	// mail sends reminders inline, queue publishes them to RabbitMQ for cmd/mail_consumer
	NotifyDriver string

	// cron schedule of cmd/reconciler, e.g. "@every 5m" or "*/10 * * * *"
	ReconcileSchedule  string
	ReconcileBatchSize int
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	rateLimiteTimeFrame, err := time.ParseDuration(env.GetString("RATE_LIMIT_TIME_FRAME", "1m"))
	if err != nil {
		rateLimiteTimeFrame = 60 * time.Second
	}

	presignTTL, err := time.ParseDuration(env.GetString("TERMO_PRESIGN_TTL", "24h"))
	if err != nil {
		presignTTL = 24 * time.Hour
	}

	return Config{
		Port: env.GetString("PORT", "8080"),
		ENV:  env.GetString("ENV", "development"),
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "database_name"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame: env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:            rateLimiteTimeFrame,
			Enabled:              env.GetBool("RATE_LIMIT_ENABLED", true),
		},
		Mail: MailConfig{
			DRIVER:     strings.ToLower(env.GetString("MAIL_DRIVER", "sendgrid")),
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			SMTP: SMTPConfig{
				HOST:     env.GetString("MAIL_SMTP_HOST", "smtp.gmail.com"),
				PORT:     env.GetInt("MAIL_SMTP_PORT", 587),
				USERNAME: env.GetString("MAIL_SMTP_USERNAME", ""),
				PASSWORD: env.GetString("MAIL_SMTP_PASSWORD", ""),
			},
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			DRIVER: strings.ToLower(env.GetString("STORAGE_DRIVER", StorageDriverMinio)),
			BUCKET: env.GetString("STORAGE_BUCKET", "monitoria"),
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		AWS: AWSConfig{
			REGION:     env.GetString("AWS_REGION", "us-east-1"),
			ACCESS_KEY: env.GetString("AWS_ACCESS_KEY_ID", ""),
			SECRET_KEY: env.GetString("AWS_SECRET_ACCESS_KEY", ""),
			ENDPOINT:   env.GetString("AWS_S3_ENDPOINT", ""),
		},
		RabbitMQ: RabbitMQConfig{
			HOST:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			PORT:     env.GetInt("RABBITMQ_PORT", 5672),
			USERNAME: env.GetString("RABBITMQ_USERNAME", "guest"),
			PASSWORD: env.GetString("RABBITMQ_PASSWORD", "guest"),
			VHOST:    env.GetString("RABBITMQ_VHOST", ""),
		},
		Termo: TermoConfig{
			InstitutionName:    env.GetString("TERMO_INSTITUTION_NAME", "Universidade Federal"),
			FrontendURL:        env.GetString("FRONTEND_URL", "http://localhost:3000"),
			PresignTTL:         presignTTL,
			NotifyDriver:       strings.ToLower(env.GetString("NOTIFY_DRIVER", NotifyDriverMail)),
			ReconcileSchedule:  env.GetString("TERMO_RECONCILE_SCHEDULE", "@every 5m"),
			ReconcileBatchSize: env.GetInt("TERMO_RECONCILE_BATCH_SIZE", 50),
		},
	}
}
