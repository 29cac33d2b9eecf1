package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Signup     SignupConfig
	Accrual    AccrualConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
	Metrics    MetricsConfig
	MQ         MQConfig
	Storage    StorageConfig
}

type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// SignupConfig toggles which optional signup fields are mandatory.
type SignupConfig struct {
	RequireReferral bool
	RequireEmail    bool
}

type AccrualConfig struct {
	Enabled  bool
	Schedule string
	Timezone string
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type MetricsConfig struct {
	Enabled bool
}

// MQConfig selects the broker used for wallet events.
// Backend is one of "none", "rabbitmq" or "pubsub".
type MQConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// StorageConfig selects where exported reports are written.
// Backend is one of "none", "minio" or "gcs".
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "dailyyield"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "dailyyield_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Server: ServerConfig{
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: dbConfig,
		Auth: AuthConfig{
			JWTSecret: strings.TrimSpace(getEnv("JWT_SECRET", "")),
			TokenTTL:  getEnvDuration("JWT_TTL", time.Hour),
		},
		Signup: SignupConfig{
			RequireReferral: getEnvBool("SIGNUP_REQUIRE_REFERRAL", true),
			RequireEmail:    getEnvBool("SIGNUP_REQUIRE_EMAIL", true),
		},
		Accrual: AccrualConfig{
			Enabled:  getEnvBool("ACCRUAL_ENABLED", true),
			Schedule: getEnv("ACCRUAL_SCHEDULE", "@daily"),
			Timezone: getEnv("ACCRUAL_TIMEZONE", "UTC"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 5),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		MQ: MQConfig{
			Backend: strings.ToLower(getEnv("MQ_BACKEND", "none")),
			Channel: getEnv("MQ_CHANNEL", "wallet-events"),
			RabbitMQ: RabbitMQConfig{
				URL:             getEnv("RABBITMQ_URL", ""),
				QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
				QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
				PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 10),
			},
			PubSub: PubSubConfig{
				ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
				CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
				SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			},
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "dailyyield-reports"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
