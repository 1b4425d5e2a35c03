package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	CACertPath   string
	ClientCert   string
	ClientKey    string

	// HTTP API
	HTTPPort string

	// Application
	LogLevel        string
	SnapshotWorkers int
	Timeout         time.Duration
}

// Load reads configuration from the environment (optionally seeded by a
// .env file) and validates everything the bridge cannot run without.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	workers, _ := strconv.Atoi(getEnv("SNAPSHOT_WORKERS", "4"))
	timeoutSec, _ := strconv.Atoi(getEnv("TIMEOUT_SECONDS", "30"))

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "orchard"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		MQTTBroker:   getEnv("MQTT_BROKER", "ssl://localhost:8883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "orchard-bridge"),
		MQTTTopic:    getEnv("MQTT_TOPIC", "application/+/device/+/event/up"),
		CACertPath:   getEnv("CA_CERT_PATH", "certs/ca.pem"),
		ClientCert:   getEnv("CLIENT_CERT_PATH", "certs/client.pem"),
		ClientKey:    getEnv("CLIENT_KEY_PATH", "certs/client-key.pem"),

		HTTPPort: getEnv("HTTP_PORT", "8080"),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SnapshotWorkers: workers,
		Timeout:         time.Duration(timeoutSec) * time.Second,
	}

	if cfg.MQTTTopic == "" {
		return nil, fmt.Errorf("MQTT_TOPIC must not be empty")
	}
	if err := cfg.validateCertFiles(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateCertFiles fails fast when any mutual-TLS file is missing. The
// broker requires client certificates, so starting without them would only
// produce an endless reconnect loop.
func (c *Config) validateCertFiles() error {
	files := map[string]string{
		"CA certificate":     c.CACertPath,
		"client certificate": c.ClientCert,
		"client key":         c.ClientKey,
	}
	for name, path := range files {
		if path == "" {
			return fmt.Errorf("%s path is not configured", name)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s not found at %s: %w", name, path, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
