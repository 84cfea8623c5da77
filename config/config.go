package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Schedule ScheduleConfig
	Email    EmailConfig
	Analysis AnalysisConfig
	AWS      AWSConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// ScheduleConfig holds the notification cadence. All cron expressions are
// evaluated in Timezone, which is also the timezone all week math uses.
type ScheduleConfig struct {
	Timezone     string
	PromptCron   string
	ReminderCron string
}

// EmailConfig holds outbound mail settings. Mode selects the sender: "smtp"
// uses the SMTP fields, "api" posts to the HTTP provider with an OAuth
// bearer token obtained from TokenURL.
type EmailConfig struct {
	Mode         string
	FromAddress  string
	FromName     string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	APIBaseURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// AnalysisConfig holds the chat-completions analysis backend settings.
// An empty BaseURL disables the remote backend entirely.
type AnalysisConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutSec int
}

// AWSConfig holds AWS credentials and the report archive bucket. An empty
// Region disables report archival.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	ReportsBucket   string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	FormURL              string   // submission form URL substituted into emails
	AllowedSignupDomains []string // domains permitted to create a workspace
	AdminKeyHash         string   // bcrypt hash of the super-admin API key
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "teampulse"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Schedule: ScheduleConfig{
			Timezone:     getEnv("SCHEDULE_TZ", "America/New_York"),
			PromptCron:   getEnv("PROMPT_CRON", "0 9 * * MON"),
			ReminderCron: getEnv("REMINDER_CRON", "0 14 * * THU"),
		},
		Email: EmailConfig{
			Mode:         getEnv("EMAIL_MODE", "smtp"),
			FromAddress:  getEnv("EMAIL_FROM_ADDRESS", "noreply@example.com"),
			FromName:     getEnv("EMAIL_FROM_NAME", "TeamPulse"),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPass:     getEnv("SMTP_PASS", ""),
			APIBaseURL:   getEnv("EMAIL_API_BASE_URL", ""),
			TokenURL:     getEnv("EMAIL_TOKEN_URL", ""),
			ClientID:     getEnv("EMAIL_CLIENT_ID", ""),
			ClientSecret: getEnv("EMAIL_CLIENT_SECRET", ""),
		},
		Analysis: AnalysisConfig{
			BaseURL:    getEnv("ANALYSIS_BASE_URL", ""),
			APIKey:     getEnv("ANALYSIS_API_KEY", ""),
			Model:      getEnv("ANALYSIS_MODEL", "gpt-4o-mini"),
			TimeoutSec: getEnvInt("ANALYSIS_TIMEOUT_SEC", 60),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ReportsBucket:   getEnv("AWS_S3_REPORTS_BUCKET", "teampulse-reports"),
		},
		App: AppConfig{
			FormURL:              getEnv("SUBMISSION_FORM_URL", "http://localhost:3000/checkin"),
			AllowedSignupDomains: splitTrim(getEnv("ALLOWED_SIGNUP_DOMAINS", ""), ","),
			AdminKeyHash:         getEnv("ADMIN_KEY_HASH", ""),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
