package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":5001"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN and JWTSecret have no defaults: credentials never live in source.
	PGDSN string `envconfig:"PG_DSN" required:"true"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"gatekeep"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	LoginRateLimit int `envconfig:"LOGIN_RATE_LIMIT" default:"10"`

	Brand BrandConfig

	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"disk"`
	UploadDir      string `envconfig:"UPLOAD_DIR" default:"uploads"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint     string `envconfig:"S3_ENDPOINT"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`

	SMSGatewayURL   string `envconfig:"SMS_GATEWAY_URL"`
	SMSGatewayToken string `envconfig:"SMS_GATEWAY_TOKEN"`
	SMSSenderID     string `envconfig:"SMS_SENDER_ID"`
}

// BrandConfig parameterises the product a deployment serves (e.g. "Drowsy" or "CarApp").
type BrandConfig struct {
	Name             string `envconfig:"BRAND_NAME" default:"CarApp"`
	CredentialPrefix string `envconfig:"CREDENTIAL_PREFIX" default:"Car"`
	DocumentUploads  bool   `envconfig:"DOCUMENT_UPLOADS" default:"false"`
	DocumentField    string `envconfig:"DOCUMENT_FIELD" default:"aadhaarImage"`
	DocumentMaxBytes int64  `envconfig:"DOCUMENT_MAX_BYTES" default:"10485760"`
}

// LoadConfig reads configuration from environment variables. A .env file in the
// working directory, when present, is loaded first without overriding the real environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt secret must be provided")
	}
	if strings.TrimSpace(c.PGDSN) == "" {
		return errors.New("postgres dsn must be provided")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	switch c.StorageBackend {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("s3 bucket must be provided for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
