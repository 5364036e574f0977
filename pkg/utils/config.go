package utils

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Payment  PaymentConfig
	Email    EmailConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	SiteURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AMQPConfig struct {
	URL string
}

type PaymentConfig struct {
	SecretKey        string
	WebhookSecret    string
	Currency         string
	LinkTTLHours     int
	LockTTLSeconds   int
	WebhookBodyLimit int64
}

type EmailConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	FinanceEmail string
}

type AuthConfig struct {
	SessionTTLHours int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "booking-platform")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SITE_URL", "http://localhost:3000")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PAYMENT_CURRENCY", "eur")
	viper.SetDefault("PAYMENT_LINK_TTL_HOURS", 48)
	viper.SetDefault("BOOKING_LOCK_TTL_SECONDS", 10)
	viper.SetDefault("WEBHOOK_BODY_LIMIT", 1<<20)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SESSION_TTL_HOURS", 24)

	// .env is optional, the environment wins anyway
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
			SiteURL: viper.GetString("SITE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		AMQP: AMQPConfig{
			URL: viper.GetString("AMQP_URL"),
		},
		Payment: PaymentConfig{
			SecretKey:        viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret:    viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:         viper.GetString("PAYMENT_CURRENCY"),
			LinkTTLHours:     viper.GetInt("PAYMENT_LINK_TTL_HOURS"),
			LockTTLSeconds:   viper.GetInt("BOOKING_LOCK_TTL_SECONDS"),
			WebhookBodyLimit: viper.GetInt64("WEBHOOK_BODY_LIMIT"),
		},
		Email: EmailConfig{
			Host:         viper.GetString("SMTP_HOST"),
			Port:         viper.GetInt("SMTP_PORT"),
			User:         viper.GetString("SMTP_USER"),
			Password:     viper.GetString("SMTP_PASS"),
			From:         viper.GetString("EMAIL_FROM"),
			FinanceEmail: viper.GetString("FINANCE_EMAIL"),
		},
		Auth: AuthConfig{
			SessionTTLHours: viper.GetInt("SESSION_TTL_HOURS"),
		},
	}

	return config, nil
}
