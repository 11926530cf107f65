package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Booking                   BookingConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// BookingConfig holds the capacity limits for the appointment engine.
// These come from the environment rather than being compiled in, so tests
// can run with smaller limits.
type BookingConfig struct {
	DailyFileLimit         int // max files committed to a single calendar day
	MaxFilesPerAppointment int // request cap for the non-splitting creation path
	PlanningHorizonDays    int // how far forward the planner may search
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "school_portal"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	dailyFileLimit, err := strconv.Atoi(getEnv("DAILY_FILE_LIMIT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_FILE_LIMIT: %w", err)
	}

	maxFilesPerAppointment, err := strconv.Atoi(getEnv("MAX_FILES_PER_APPOINTMENT", "200"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_FILES_PER_APPOINTMENT: %w", err)
	}

	planningHorizonDays, err := strconv.Atoi(getEnv("PLANNING_HORIZON_DAYS", "365"))
	if err != nil {
		return nil, fmt.Errorf("invalid PLANNING_HORIZON_DAYS: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:         dbConfig,
		Booking: BookingConfig{
			DailyFileLimit:         dailyFileLimit,
			MaxFilesPerAppointment: maxFilesPerAppointment,
			PlanningHorizonDays:    planningHorizonDays,
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
