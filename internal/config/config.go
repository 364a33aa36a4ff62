package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string

	// Calendar provider mode: "gateway" talks to the calendar gateway REST
	// service, "google" talks to the Google Calendar API directly.
	CalendarProvider      string
	CalendarGatewayURL    string
	CalendarGatewayToken  string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleOAuthRedirect   string
	GoogleTokenFile       string
	ConsentWindowDisabled bool

	CalendarPollInterval time.Duration
	CalendarCloseGrace   time.Duration
	CalendarFlowTimeout  time.Duration

	// SendGrid email notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	NotifyEmail       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		CalendarProvider:      strings.ToLower(strings.TrimSpace(getEnv("CALENDAR_PROVIDER", "gateway"))),
		CalendarGatewayURL:    getEnv("CALENDAR_GATEWAY_URL", ""),
		CalendarGatewayToken:  getEnv("CALENDAR_GATEWAY_TOKEN", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleOAuthRedirect:   getEnv("GOOGLE_OAUTH_REDIRECT", ""),
		GoogleTokenFile:       getEnv("GOOGLE_TOKEN_FILE", ".data/google_token.json"),
		ConsentWindowDisabled: getEnvAsBool("CONSENT_WINDOW_DISABLED", false),

		CalendarPollInterval: getEnvAsDuration("CALENDAR_POLL_INTERVAL", 500*time.Millisecond),
		CalendarCloseGrace:   getEnvAsDuration("CALENDAR_CLOSE_GRACE", 2*time.Second),
		CalendarFlowTimeout:  getEnvAsDuration("CALENDAR_FLOW_TIMEOUT", 5*time.Minute),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Lavenius"),
		NotifyEmail:       getEnv("NOTIFY_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
