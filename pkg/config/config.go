package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

type Config struct {
	ServerHost string
	ServerPort string
	LogLevel   string

	AssistantProvider string
	AnthropicAPIKey   string
	OpenAIKey         string
	AssistantModel    string
	GatewayTimeout    time.Duration
	GatewayMaxRetries int

	RecordsURL        string
	RecordsAnonKey    string
	RecordsServiceKey string
	SessionTTL        time.Duration

	OTelEnabled  bool
	OTelEndpoint string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	return &Config{
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		AssistantProvider: strings.ToLower(getEnv("ASSISTANT_PROVIDER", ProviderAnthropic)),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIKey:         getEnv("OPENAI_KEY", ""),
		AssistantModel:    getEnv("ASSISTANT_MODEL", ""),
		GatewayTimeout:    getDuration("GATEWAY_TIMEOUT", 30*time.Second),
		GatewayMaxRetries: getNonNegativeInt("GATEWAY_MAX_RETRIES", 2),

		RecordsURL:        getEnv("RECORDS_URL", ""),
		RecordsAnonKey:    getEnv("RECORDS_ANON_KEY", ""),
		RecordsServiceKey: getEnv("RECORDS_SERVICE_KEY", ""),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),

		OTelEnabled:  getBool("OTEL_ENABLED", false),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// IsUnset reports whether a credential is missing or still carries a
// template placeholder value.
func IsUnset(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || strings.Contains(value, "placeholder")
}

// RecordsDemo reports whether the whole application should run against
// synthetic data instead of the records database.
func (c *Config) RecordsDemo() bool {
	return IsUnset(c.RecordsURL) || IsUnset(c.RecordsAnonKey)
}

// AssistantKey returns the credential of the configured assistant provider.
func (c *Config) AssistantKey() string {
	if c.AssistantProvider == ProviderOpenAI {
		return c.OpenAIKey
	}
	return c.AnthropicAPIKey
}

func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid duration %q for %s, using %s", value, key, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("Invalid integer %q for %s, using %d", value, key, defaultValue)
		return defaultValue
	}
	return n
}

func getNonNegativeInt(key string, defaultValue int) int {
	n := getInt(key, defaultValue)
	if n < 0 {
		logrus.Warnf("Negative value %d for %s, using %d", n, key, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logrus.Warnf("Invalid boolean %q for %s, using %t", value, key, defaultValue)
		return defaultValue
	}
	return b
}
