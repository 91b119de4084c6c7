package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Reminder     ReminderConfig
	Booking      BookingConfig
	Search       SearchConfig
	Notification NotificationConfig
	CORS         CORSConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
	Debug        bool
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
	// Leeway tolerates clock skew against the identity provider
	Leeway time.Duration
}

// ReminderConfig drives the periodic reminder job. Each run scans
// [now+Lead, now+Lead+Window) and runs every Interval.
type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
	Lead     time.Duration
	Window   time.Duration
}

type BookingConfig struct {
	DefaultDurationMinutes int
	TelemedicineBaseURL    string
	IdempotencyTTL         time.Duration
}

type SearchConfig struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
}

type NotificationConfig struct {
	Stream    string
	MaxLength int64
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_ISSUER", "identity")
	v.SetDefault("JWT_LEEWAY", "30s")

	v.SetDefault("REMINDER_ENABLED", true)
	v.SetDefault("REMINDER_INTERVAL", "1h")
	v.SetDefault("REMINDER_LEAD", "24h")
	v.SetDefault("REMINDER_WINDOW", "1h")

	v.SetDefault("DEFAULT_DURATION_MINUTES", 30)
	v.SetDefault("TELEMEDICINE_BASE_URL", "https://telemed.example.com/session")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")

	v.SetDefault("SEARCH_DEFAULT_RADIUS_KM", 25)
	v.SetDefault("SEARCH_MAX_RADIUS_KM", 500)

	v.SetDefault("NOTIFICATION_STREAM", "notifications")
	v.SetDefault("NOTIFICATION_STREAM_MAXLEN", 100000)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CORS_MAX_AGE", "10m")
}

// LoadConfig reads .env when present and lets the environment override it.
func LoadConfig() (*Config, error) {
	return Load(".env")
}

func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			Debug:        v.GetBool("DB_DEBUG"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetString("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			DialTimeout:  durationOr(v, "REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationOr(v, "REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationOr(v, "REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			Issuer:       v.GetString("JWT_ISSUER"),
			AccessExpiry: durationOr(v, "JWT_ACCESS_EXPIRY", 15*time.Minute),
			Leeway:       durationOr(v, "JWT_LEEWAY", 30*time.Second),
		},
		Reminder: ReminderConfig{
			Enabled:  v.GetBool("REMINDER_ENABLED"),
			Interval: durationOr(v, "REMINDER_INTERVAL", time.Hour),
			Lead:     durationOr(v, "REMINDER_LEAD", 24*time.Hour),
			Window:   durationOr(v, "REMINDER_WINDOW", time.Hour),
		},
		Booking: BookingConfig{
			DefaultDurationMinutes: v.GetInt("DEFAULT_DURATION_MINUTES"),
			TelemedicineBaseURL:    v.GetString("TELEMEDICINE_BASE_URL"),
			IdempotencyTTL:         durationOr(v, "IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Search: SearchConfig{
			DefaultRadiusKm: v.GetFloat64("SEARCH_DEFAULT_RADIUS_KM"),
			MaxRadiusKm:     v.GetFloat64("SEARCH_MAX_RADIUS_KM"),
		},
		Notification: NotificationConfig{
			Stream:    v.GetString("NOTIFICATION_STREAM"),
			MaxLength: v.GetInt64("NOTIFICATION_STREAM_MAXLEN"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			MaxAge:         durationOr(v, "CORS_MAX_AGE", 10*time.Minute),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if config.Booking.DefaultDurationMinutes <= 0 {
		config.Booking.DefaultDurationMinutes = 30
	}

	return config, nil
}

// splitList parses a comma separated value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
