package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// NotifierMode selects how verification and reset links leave the
// service.
type NotifierMode string

const (
	NotifierSMTP   NotifierMode = "smtp"
	NotifierRabbit NotifierMode = "rabbit"
	NotifierLog    NotifierMode = "log"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration
	BcryptCost     int

	// Infrastructure
	DBAddr    string
	RedisAddr string
	RedisDB   int
	RedisPass string

	// Notifier
	Notifier  NotifierMode
	RabbitURL string
	SMTP      SMTPConfig

	// Object storage for exported admin reports
	S3 S3Config

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// One-time token flows (email verify / password reset)
	VerifyEmailBaseURL    string
	PasswordResetBaseURL  string
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Insecure bool
}

type S3Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first, without overriding variables
// already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "authd")

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}

	// optional with defaults
	ttl, err := getDuration("ACCESS_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = ttl

	cost, err := getInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}
	cfg.BcryptCost = cost

	// Redis is optional: without it, one-time tokens live in process
	// memory and rate limiting is disabled. Fine for dev, not for prod.
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPass = os.Getenv("REDIS_PASSWORD")
	rdb, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = rdb
	if cfg.Env == "prod" && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("missing required env var: REDIS_ADDR (required in prod)")
	}

	// Link bases: the sent link is base + token, so the base must end
	// with a path separator or a token= query fragment.
	cfg.VerifyEmailBaseURL = getEnv("VERIFY_EMAIL_BASE_URL", "http://localhost:8080/api/v1/auth/verify-email/")
	cfg.PasswordResetBaseURL = getEnv("PASSWORD_RESET_BASE_URL", "http://localhost:3000/reset-password/")
	for name, u := range map[string]string{
		"VERIFY_EMAIL_BASE_URL":   cfg.VerifyEmailBaseURL,
		"PASSWORD_RESET_BASE_URL": cfg.PasswordResetBaseURL,
	} {
		if !strings.HasSuffix(u, "/") && !strings.Contains(u, "token=") {
			return nil, fmt.Errorf("%s must end with `/` or contain `token=`", name)
		}
	}

	vet, err := getDuration("VERIFY_EMAIL_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.VerifyEmailTokenTTL = vet

	prt, err := getDuration("PASSWORD_RESET_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PasswordResetTokenTTL = prt

	if err := loadNotifier(cfg); err != nil {
		return nil, err
	}

	cfg.S3 = S3Config{
		Region:       getEnv("S3_REGION", "us-east-1"),
		AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		SecretKey:    os.Getenv("S3_SECRET_KEY"),
		Bucket:       os.Getenv("S3_BUCKET"),
		BaseEndpoint: os.Getenv("S3_ENDPOINT"),
	}

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func loadNotifier(cfg *Config) error {
	mode := NotifierMode(getEnv("NOTIFIER", string(NotifierLog)))
	switch mode {
	case NotifierLog:
	case NotifierRabbit:
		cfg.RabbitURL = os.Getenv("RABBIT_URL")
		if cfg.RabbitURL == "" {
			return fmt.Errorf("NOTIFIER=rabbit requires RABBIT_URL")
		}
	case NotifierSMTP:
		port, err := getInt("SMTP_PORT", 587)
		if err != nil {
			return err
		}
		cfg.SMTP = SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     port,
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			Insecure: getEnv("SMTP_INSECURE", "false") == "true",
		}
		if cfg.SMTP.Host == "" || cfg.SMTP.From == "" {
			return fmt.Errorf("NOTIFIER=smtp requires SMTP_HOST and SMTP_FROM")
		}
	default:
		return fmt.Errorf("unknown NOTIFIER mode: %q", mode)
	}
	cfg.Notifier = mode
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
