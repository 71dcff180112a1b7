package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AfricaTalkingConfig struct {
	Username string `yaml:"username"`
	APIKey   string `yaml:"api_key"`
	SMSURL   string `yaml:"sms_url"`
	SenderID string `yaml:"sender_id"`
}

type EmailConfig struct {
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`
	AWSRegion          string `yaml:"aws_region"`
	SenderEmail        string `yaml:"sender_email"`
}

type HTTPConfig struct {
	Addr          string `yaml:"addr"`
	SessionSecret string `yaml:"session_secret"`
	UploadDir     string `yaml:"upload_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Port     string `yaml:"port"`
	TimeZone string `yaml:"timezone"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.TimeZone,
	)
}

type AuthConfig struct {
	OIDCIssuer       string        `yaml:"oidc_issuer"`
	OIDCClientID     string        `yaml:"oidc_client_id"`
	OIDCClientSecret string        `yaml:"oidc_client_secret"`
	OIDCRedirectURL  string        `yaml:"oidc_redirect_url"`
	StaffJWTSecret   string        `yaml:"staff_jwt_secret"`
	StaffTokenTTL    time.Duration `yaml:"staff_token_ttl"`
	AdminEmail       string        `yaml:"admin_email"`
	AdminPassword    string        `yaml:"admin_password"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the full runtime configuration. Values come from the YAML
// file named by CONFIG_FILE (if any) and are then overridden by env vars.
type AppConfig struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Email         EmailConfig         `yaml:"email"`
	AfricaTalking AfricaTalkingConfig `yaml:"africastalking"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Log           LogConfig           `yaml:"log"`
}

func Load() (AppConfig, error) {
	var cfg AppConfig

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.HTTP.Addr = getEnvOrDefault("HTTP_ADDR", orDefault(cfg.HTTP.Addr, ":8080"))
	cfg.HTTP.SessionSecret = getEnvOrDefault("SESSION_SECRET", cfg.HTTP.SessionSecret)
	cfg.HTTP.UploadDir = getEnvOrDefault("UPLOAD_DIR", orDefault(cfg.HTTP.UploadDir, "uploads"))
	cfg.HTTP.PublicBaseURL = getEnvOrDefault("PUBLIC_BASE_URL", cfg.HTTP.PublicBaseURL)

	cfg.Database.Host = getEnvOrDefault("POSTGRES_HOST", orDefault(cfg.Database.Host, "localhost"))
	cfg.Database.User = getEnvOrDefault("POSTGRES_USER", orDefault(cfg.Database.User, "test"))
	cfg.Database.Password = getEnvOrDefault("POSTGRES_PASSWORD", orDefault(cfg.Database.Password, "test"))
	cfg.Database.Name = getEnvOrDefault("POSTGRES_DB", orDefault(cfg.Database.Name, "test"))
	cfg.Database.Port = getEnvOrDefault("DB_PORT", orDefault(cfg.Database.Port, "5432"))
	cfg.Database.TimeZone = getEnvOrDefault("DB_TIMEZONE", orDefault(cfg.Database.TimeZone, "UTC"))

	cfg.Auth.OIDCIssuer = getEnvOrDefault("OIDC_ISSUER", cfg.Auth.OIDCIssuer)
	cfg.Auth.OIDCClientID = getEnvOrDefault("OIDC_CLIENT_ID", cfg.Auth.OIDCClientID)
	cfg.Auth.OIDCClientSecret = getEnvOrDefault("OIDC_CLIENT_SECRET", cfg.Auth.OIDCClientSecret)
	cfg.Auth.OIDCRedirectURL = getEnvOrDefault("OIDC_REDIRECT_URL", cfg.Auth.OIDCRedirectURL)
	cfg.Auth.StaffJWTSecret = getEnvOrDefault("STAFF_JWT_SECRET", cfg.Auth.StaffJWTSecret)
	cfg.Auth.AdminEmail = getEnvOrDefault("ADMIN_EMAIL", cfg.Auth.AdminEmail)
	cfg.Auth.AdminPassword = getEnvOrDefault("ADMIN_PASSWORD", cfg.Auth.AdminPassword)

	if cfg.Auth.StaffTokenTTL == 0 {
		cfg.Auth.StaffTokenTTL = 12 * time.Hour
	}
	if raw, ok := os.LookupEnv("STAFF_TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return AppConfig{}, fmt.Errorf("invalid STAFF_TOKEN_TTL %q: %w", raw, err)
		}
		cfg.Auth.StaffTokenTTL = ttl
	}

	email := LoadEmailConfig()
	cfg.Email.AWSAccessKeyID = orDefault(email.AWSAccessKeyID, cfg.Email.AWSAccessKeyID)
	cfg.Email.AWSSecretAccessKey = orDefault(email.AWSSecretAccessKey, cfg.Email.AWSSecretAccessKey)
	cfg.Email.SenderEmail = orDefault(email.SenderEmail, cfg.Email.SenderEmail)
	cfg.Email.AWSRegion = getEnvOrDefault("AWS_REGION", orDefault(cfg.Email.AWSRegion, email.AWSRegion))

	sms := LoadAfricaTalkingConfig()
	cfg.AfricaTalking.Username = orDefault(sms.Username, cfg.AfricaTalking.Username)
	cfg.AfricaTalking.APIKey = orDefault(sms.APIKey, cfg.AfricaTalking.APIKey)
	cfg.AfricaTalking.SMSURL = getEnvOrDefault("AT_SMS_URL", orDefault(cfg.AfricaTalking.SMSURL, sms.SMSURL))
	cfg.AfricaTalking.SenderID = getEnvOrDefault("AT_SENDER_ID", orDefault(cfg.AfricaTalking.SenderID, sms.SenderID))

	cfg.RabbitMQ.URL = getEnvOrDefault("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.Exchange = getEnvOrDefault("RABBITMQ_EXCHANGE", orDefault(cfg.RabbitMQ.Exchange, "restaurant.events"))

	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", orDefault(cfg.Log.Level, "info"))

	// Both secrets sign credentials and have no default.
	if cfg.Auth.StaffJWTSecret == "" {
		return AppConfig{}, errors.New("STAFF_JWT_SECRET must be set")
	}
	if cfg.HTTP.SessionSecret == "" {
		return AppConfig{}, errors.New("SESSION_SECRET must be set")
	}

	return cfg, nil
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),                                            // Default sandbox sender ID
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
