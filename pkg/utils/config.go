package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Schedule ScheduleConfig
	Sweeper  SweeperConfig
	RabbitMQ RabbitMQConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// ScheduleConfig holds the gym's wall-clock rules for classes.
type ScheduleConfig struct {
	Timezone             string
	ClassDuration        time.Duration
	CheckInGrace         time.Duration
	BookingOpensBefore   time.Duration
	BookingClosesBefore  time.Duration
	EnforceBookingWindow bool
}

type SweeperConfig struct {
	Enabled    bool
	Spec       string
	BatchSize  int
	RunTimeout time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type MetricsConfig struct {
	Enabled bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "gym-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("SCHEDULE_TZ", "Local")
	viper.SetDefault("SCHEDULE_CLASS_DURATION", "60m")
	viper.SetDefault("SCHEDULE_CHECKIN_GRACE", "15m")
	viper.SetDefault("SCHEDULE_BOOKING_OPENS_BEFORE", "12h")
	viper.SetDefault("SCHEDULE_BOOKING_CLOSES_BEFORE", "15m")
	viper.SetDefault("SCHEDULE_ENFORCE_BOOKING_WINDOW", true)
	viper.SetDefault("SWEEPER_ENABLED", true)
	viper.SetDefault("SWEEPER_SPEC", "@every 15m")
	viper.SetDefault("SWEEPER_BATCH_SIZE", 500)
	viper.SetDefault("SWEEPER_RUN_TIMEOUT", "2m")
	viper.SetDefault("RABBITMQ_EXCHANGE", "gym")
	viper.SetDefault("METRICS_ENABLED", true)

	// .env is optional, container deployments pass everything through the environment
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Port:            viper.GetString("PORT"),
			Debug:           viper.GetBool("DEBUG"),
			LogPath:         viper.GetString("LOG_PATH"),
			ShutdownTimeout: viper.GetDuration("SHUTDOWN_TIMEOUT"),
			CORSOrigins:     splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Schedule: ScheduleConfig{
			Timezone:             viper.GetString("SCHEDULE_TZ"),
			ClassDuration:        viper.GetDuration("SCHEDULE_CLASS_DURATION"),
			CheckInGrace:         viper.GetDuration("SCHEDULE_CHECKIN_GRACE"),
			BookingOpensBefore:   viper.GetDuration("SCHEDULE_BOOKING_OPENS_BEFORE"),
			BookingClosesBefore:  viper.GetDuration("SCHEDULE_BOOKING_CLOSES_BEFORE"),
			EnforceBookingWindow: viper.GetBool("SCHEDULE_ENFORCE_BOOKING_WINDOW"),
		},
		Sweeper: SweeperConfig{
			Enabled:    viper.GetBool("SWEEPER_ENABLED"),
			Spec:       viper.GetString("SWEEPER_SPEC"),
			BatchSize:  viper.GetInt("SWEEPER_BATCH_SIZE"),
			RunTimeout: viper.GetDuration("SWEEPER_RUN_TIMEOUT"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("RABBITMQ_EXCHANGE"),
		},
		Metrics: MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

// splitList parses a comma separated env value
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
