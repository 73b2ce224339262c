package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Server holds configuration for the API process.
type Server struct {
	Environment string
	Port        string
	DatabaseURL string

	BcryptCost int

	AMQPURL         string
	AuditExchange   string
	AuditRoutingKey string

	MonitorURL   string
	OTLPEndpoint string
	Debug        bool
}

// Monitor holds configuration for the monitor process.
type Monitor struct {
	Port     string
	LogFile  string
	Capacity int
}

// LoadServer reads the API configuration from the environment.
func LoadServer() Server {
	return Server{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8082"),
		DatabaseURL: databaseURL(),

		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		AMQPURL:         os.Getenv("AMQP_URL"),
		AuditExchange:   getEnv("AUDIT_EXCHANGE", "messenger.audit"),
		AuditRoutingKey: getEnv("AUDIT_ROUTING_KEY", "audit.messenger"),

		MonitorURL:   os.Getenv("MONITOR_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Debug:        getEnvBool("DEBUG", false),
	}
}

// LoadMonitor reads the monitor configuration from the environment.
func LoadMonitor() Monitor {
	return Monitor{
		Port:     getEnv("MONITOR_PORT", "3001"),
		LogFile:  getEnv("MONITOR_FILE", "monitor_log.json"),
		Capacity: getEnvInt("MONITOR_CAPACITY", 1000),
	}
}

func databaseURL() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}

	u := url.URL{
		Scheme: "postgres",
		User: url.UserPassword(
			getEnv("POSTGRES_USER", "messenger"),
			getEnv("POSTGRES_PASSWORD", "password"),
		),
		Host:     fmt.Sprintf("%s:%s", getEnv("POSTGRES_HOST", "localhost"), getEnv("POSTGRES_PORT", "5432")),
		Path:     getEnv("POSTGRES_DB", "messenger"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
