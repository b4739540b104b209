package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	WhatsApp WhatsAppConfig
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	Billing  BillingConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// WhatsAppConfig holds the WhatsApp messaging provider configuration
type WhatsAppConfig struct {
	APIURL string
	APIKey string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type StripeConfig struct {
	SecretKey string
}

// BillingConfig holds billing engine tunables
type BillingConfig struct {
	Currency         string
	RenewalReminders bool
	GatewayTimeout   time.Duration
	NotifyTimeout    time.Duration
}

// CronConfig holds the periodic trigger schedules (cron expressions)
type CronConfig struct {
	DailySweepSchedule string
	AdvancerSchedule   string
	OverdueSchedule    string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "duetap"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
		FromName: getEnv("SMTP_FROM_NAME", "Due-Tap"),
	}

	config.WhatsApp = WhatsAppConfig{
		APIURL: getEnv("WHATSAPP_API_URL", ""),
		APIKey: getEnv("WHATSAPP_API_KEY", ""),
	}

	config.Razorpay = RazorpayConfig{
		KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
	}

	config.Stripe = StripeConfig{
		SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
	}

	gatewayTimeout, err := time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATEWAY_TIMEOUT: %w", err)
	}
	notifyTimeout, err := time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT: %w", err)
	}

	config.Billing = BillingConfig{
		Currency:         getEnv("BILLING_CURRENCY", "INR"),
		RenewalReminders: getEnvBool("BILLING_RENEWAL_REMINDERS", true),
		GatewayTimeout:   gatewayTimeout,
		NotifyTimeout:    notifyTimeout,
	}

	config.Cron = CronConfig{
		DailySweepSchedule: getEnv("CRON_DAILY_SWEEP", "0 8 * * *"),
		AdvancerSchedule:   getEnv("CRON_CYCLE_ADVANCER", "@every 30m"),
		OverdueSchedule:    getEnv("CRON_MARK_OVERDUE", "@every 1h"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
