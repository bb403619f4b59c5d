package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port            string
	DatabasePath    string // Path to the local SQLite database file
	Version         string
	LogLevel        string
	IMAPServer      string
	IMAPPort        string
	SMTPServer      string
	SMTPPort        string
	EmailUser       string // Mailbox account (EMAIL_USER)
	EmailPass       string // Mailbox app password (EMAIL_PASS)
	OpenAIKey       string // Optional; empty key means keyword fallback only
	OpenAITimeout   int    // OpenAI API timeout in seconds
	FetchLimit      int    // Max messages retrieved per sync
	FetchDaysBack   int    // IMAP SINCE window in days
	SupportKeywords []string
}

// defaultSupportKeywords filters the inbox down to support traffic.
// Setting SUPPORT_KEYWORDS to an empty value disables the filter.
var defaultSupportKeywords = []string{"support", "query", "request", "help", "issue", "problem"}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "emails.db"),
		Version:         getEnv("VERSION", "1.0.0"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		IMAPServer:      getEnv("IMAP_SERVER", "imap.gmail.com"),
		IMAPPort:        getEnv("IMAP_PORT", "993"),
		SMTPServer:      getEnv("SMTP_SERVER", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		EmailUser:       os.Getenv("EMAIL_USER"),
		EmailPass:       os.Getenv("EMAIL_PASS"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAITimeout:   getEnvInt("OPENAI_TIMEOUT", 30),
		FetchLimit:      getEnvInt("FETCH_LIMIT", 50),
		FetchDaysBack:   getEnvInt("FETCH_DAYS_BACK", 1),
		SupportKeywords: getEnvList("SUPPORT_KEYWORDS", defaultSupportKeywords),
	}

	return config
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList gets a comma-separated environment variable with a default fallback
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, strings.ToLower(trimmed))
		}
	}
	return items
}

// HasMailboxCredentials reports whether IMAP/SMTP credentials are configured
func (c *Config) HasMailboxCredentials() bool {
	return c.EmailUser != "" && c.EmailPass != ""
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	// Configure zerolog to output JSON without newlines
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Create logger with JSON output to stdout
	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "mailtriage").
		Str("version", c.Version).
		Logger()

	// Set log level based on configuration
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
