package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT validation (tokens are issued by the external identity provider)
	JWTSecret string

	// Payroll import (machine auth for the weekly payroll export job)
	PayrollImportAPIKey string

	// Labor forecast
	StandardHoursPerWeek  float64
	ForecastLookbackWeeks int
	ForecastWeeksAhead    int
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "costtrak"),
		DBPassword: getEnv("DB_PASSWORD", "costtrak"),
		DBName:     getEnv("DB_NAME", "costtrak"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Payroll import
		PayrollImportAPIKey: getEnv("PAYROLL_IMPORT_API_KEY", ""),

		// Labor forecast
		StandardHoursPerWeek:  getEnvFloat("STANDARD_HOURS_PER_WEEK", 40),
		ForecastLookbackWeeks: getEnvInt("FORECAST_LOOKBACK_WEEKS", 8),
		ForecastWeeksAhead:    getEnvInt("FORECAST_WEEKS_AHEAD", 12),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves a positive integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
			return defaultValue
		}
		return n
	}
	return defaultValue
}

// getEnvFloat retrieves a positive float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, value, defaultValue)
			return defaultValue
		}
		return f
	}
	return defaultValue
}
