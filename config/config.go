package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds every startup setting. Loaded once; not reloaded live.
type Config struct {
	Port        string
	Environment string
	JWTSecret   string

	// bcrypt hash of the admin console password
	AdminPasswordHash string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	PriceAPIURL string

	EmailServer    string
	EmailPort      int
	EmailUsername  string
	EmailPassword  string
	EmailSSL       bool
	EmailFrom      string
	EmailRecipient string

	EnableBollinger bool
	EnableMACD      bool
	EnableVolume    bool

	BandPeriod           int
	VolumeAlertThreshold float64
	MarketCapMin         float64
	MarketCapMax         float64
	PriceMin             float64
	PriceMax             float64

	// RunHour schedules one daily run at that hour; PriceCheckMinutes
	// schedules a fixed interval instead. RunHour wins when both are set.
	RunHour             int
	PriceCheckMinutes   int
	SilenceDays         int
	HistoryLookbackDays int

	// collected while parsing typed settings
	parseErrors []string
}

// Load reads the .env file if present and builds the configuration
// from environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "stockwatch"),
		SQLitePath: getEnv("SQLITE_PATH", "data/stockwatch.db"),

		PriceAPIURL: getEnv("PRICE_API_URL", ""),

		EmailServer:    getEnv("EMAIL_SERVER", ""),
		EmailUsername:  getEnv("EMAIL_USERNAME", ""),
		EmailPassword:  getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailRecipient: getEnv("EMAIL_RECIPIENT", ""),
	}

	cfg.EmailPort = cfg.getEnvInt("EMAIL_PORT", 0)
	cfg.EmailSSL = cfg.getEnvBool("EMAIL_SSL", true)

	cfg.EnableBollinger = cfg.getEnvBool("ENABLE_BOLLINGER", true)
	cfg.EnableMACD = cfg.getEnvBool("ENABLE_MACD", true)
	cfg.EnableVolume = cfg.getEnvBool("ENABLE_VOLUME", true)

	cfg.BandPeriod = cfg.getEnvInt("BAND_PERIOD", 0)
	cfg.VolumeAlertThreshold = cfg.getEnvFloat("VOLUME_ALERT_THRESHOLD", 0)
	cfg.MarketCapMin = cfg.getEnvFloat("MARKET_CAP_MIN", 0)
	cfg.MarketCapMax = cfg.getEnvFloat("MARKET_CAP_MAX", 0)
	cfg.PriceMin = cfg.getEnvFloat("PRICE_MIN", 0)
	cfg.PriceMax = cfg.getEnvFloat("PRICE_MAX", 0)

	cfg.RunHour = cfg.getEnvInt("RUN_HOUR", -1)
	cfg.PriceCheckMinutes = cfg.getEnvInt("PRICE_CHECK_MINUTES", 0)
	cfg.SilenceDays = cfg.getEnvInt("SILENCE_DAYS", 0)
	cfg.HistoryLookbackDays = cfg.getEnvInt("HISTORY_LOOKBACK_DAYS", 150)

	return cfg
}

// Validate checks every required setting and returns the full list of
// violations rather than stopping at the first one.
func (c *Config) Validate() []string {
	errs := append([]string{}, c.parseErrors...)

	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			errs = append(errs, "The DB_PASSWORD configuration setting is not set.")
		}
		if c.DBName == "" {
			errs = append(errs, "The DB_NAME configuration setting is not set.")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, "The SQLITE_PATH configuration setting is not set.")
		}
	default:
		errs = append(errs, fmt.Sprintf("The DB_DRIVER configuration setting %q is not supported (postgres or sqlite).", c.DBDriver))
	}

	if c.PriceAPIURL == "" {
		errs = append(errs, "The PRICE_API_URL configuration setting is not set.")
	}
	if c.EmailServer == "" {
		errs = append(errs, "The EMAIL_SERVER configuration setting is not set.")
	}
	if c.EmailPort == 0 {
		errs = append(errs, "The EMAIL_PORT configuration setting is not set.")
	}
	if c.EmailFrom == "" {
		errs = append(errs, "The EMAIL_FROM configuration setting is not set.")
	}
	if c.EmailRecipient == "" {
		errs = append(errs, "The EMAIL_RECIPIENT configuration setting is not set.")
	}
	if c.JWTSecret == "" {
		errs = append(errs, "The JWT_SECRET configuration setting is not set.")
	}
	if c.AdminPasswordHash == "" {
		errs = append(errs, "The ADMIN_PASSWORD_HASH configuration setting is not set.")
	}
	if c.BandPeriod <= 0 {
		errs = append(errs, "The BAND_PERIOD configuration setting is not set.")
	}
	if c.VolumeAlertThreshold <= 0 {
		errs = append(errs, "The VOLUME_ALERT_THRESHOLD configuration setting is not set.")
	}
	if c.SilenceDays <= 0 {
		errs = append(errs, "The SILENCE_DAYS configuration setting is not set.")
	}
	if c.RunHour < 0 && c.PriceCheckMinutes <= 0 {
		errs = append(errs, "Either the RUN_HOUR or the PRICE_CHECK_MINUTES configuration setting must be set.")
	}
	if c.RunHour > 23 {
		errs = append(errs, "The RUN_HOUR configuration setting must be between 0 and 23.")
	}

	return errs
}

// InitDB opens the configured database and verifies the connection.
func (c *Config) InitDB() (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=prefer",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(c.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}

	logLevel := logger.Info
	if c.Environment == "production" {
		logLevel = logger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("The %s configuration setting %q is not a valid integer.", key, value))
		return fallback
	}
	return parsed
}

func (c *Config) getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("The %s configuration setting %q is not a valid number.", key, value))
		return fallback
	}
	return parsed
}

func (c *Config) getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("The %s configuration setting %q is not a valid boolean.", key, value))
		return fallback
	}
	return parsed
}
