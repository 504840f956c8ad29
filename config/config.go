package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL   string
	Port          string
	GoEnv         string
	Auth0Domain   string
	Auth0Audience string
	LogLevel      string

	// Transactional email (EmailJS-compatible REST endpoint)
	EmailAPIBaseURL         string
	EmailServiceID          string
	EmailPublicKey          string
	EmailOfferTemplateID    string
	EmailReminderTemplateID string
	EmailAdminAlertTemplate string

	// Geocoding / city lookup
	GeocodeBaseURL string
	CitiesBaseURL  string

	SiteBaseURL    string
	BitPaymentLink string
}

var currentConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In production, environment variables are set directly
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		Port:          getEnv("PORT", "8080"),
		GoEnv:         getEnv("GO_ENV", "development"),
		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		EmailAPIBaseURL:         getEnv("EMAIL_API_BASE_URL", "https://api.emailjs.com/api/v1.0"),
		EmailServiceID:          getEnv("EMAIL_SERVICE_ID", ""),
		EmailPublicKey:          getEnv("EMAIL_PUBLIC_KEY", ""),
		EmailOfferTemplateID:    getEnv("EMAIL_OFFER_TEMPLATE_ID", ""),
		EmailReminderTemplateID: getEnv("EMAIL_REMINDER_TEMPLATE_ID", "order_reminder_template"),
		EmailAdminAlertTemplate: getEnv("EMAIL_ADMIN_ALERT_TEMPLATE_ID", ""),

		GeocodeBaseURL: getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"),
		CitiesBaseURL:  getEnv("CITIES_BASE_URL", "https://data.gov.il"),

		SiteBaseURL:    getEnv("SITE_BASE_URL", "https://maniv-pc.github.io"),
		BitPaymentLink: getEnv("BIT_PAYMENT_LINK", ""),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	currentConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && !c.IsTest() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// GetConfig returns the currently loaded configuration
func GetConfig() *Config {
	return currentConfig
}

// SetConfig replaces the current configuration (primarily for testing)
func SetConfig(c *Config) {
	currentConfig = c
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
