// Package config handles environment configuration and loading of the
// per-API mapping file.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds all settings read from the environment (populated from the
// .env file in main).
type Config struct {
	APIBaseURL    string
	APIKey        string
	APIToken      string
	MongoURI      string
	MongoDB       string
	ConnectorName string
	PageSize      int

	// Checkpoint store backends.
	RedisURL      string
	SQLConnString string
}

// LoadConfig loads application settings from environment variables.
// API_BASE_URL is the only hard requirement; everything else has the
// defaults the connector template documents.
func LoadConfig() (*Config, error) {
	baseURL := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if baseURL == "" {
		return nil, errors.New("API_BASE_URL environment variable not set")
	}

	pageSize := 100
	if raw := os.Getenv("PAGE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, errors.New("PAGE_SIZE must be a positive integer")
		}
		pageSize = n
	}

	return &Config{
		APIBaseURL:    baseURL,
		APIKey:        os.Getenv("API_KEY"),
		APIToken:      os.Getenv("API_TOKEN"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "ssn_connectors"),
		ConnectorName: getenv("CONNECTOR_NAME", "connector"),
		PageSize:      pageSize,
		RedisURL:      os.Getenv("REDIS_URL"),
		SQLConnString: os.Getenv("SQL_CONNECTION_STRING"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
