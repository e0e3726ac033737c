package config

import (
	"os"
	"strconv"
)

// AccountSeed describes one roster account before password hashing.
type AccountSeed struct {
	ID          string
	Username    string
	DisplayName string
	Password    string
	Salt        string
}

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	Production   bool
	TMDBAPIKey   string
	AccountSeeds []AccountSeed
}

// Load loads configuration from environment variables or sets defaults.
// The account roster is fixed; only per-account passwords and salts can be
// overridden through the environment.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./lore.db"),
		Production:   os.Getenv("APP_ENV") == "production",
		TMDBAPIKey:   getEnv("TMDB_API_KEY", ""),
		AccountSeeds: []AccountSeed{
			{
				ID:          "flams1",
				Username:    "flams",
				DisplayName: "flams",
				Password:    getEnv("AUTH_ACCOUNT_ARCHIVIST_PASSWORD", "1234"),
				Salt:        getEnv("AUTH_ACCOUNT_ARCHIVIST_SALT", "2e3d8b4fa3a84620"),
			},
			{
				ID:          "germanopoli1",
				Username:    "germanopoli",
				DisplayName: "germanopoli",
				Password:    getEnv("AUTH_ACCOUNT_CHRONICLE_PASSWORD", "1234"),
				Salt:        getEnv("AUTH_ACCOUNT_CHRONICLE_SALT", "ab90c12d77894f0e"),
			},
			{
				ID:          "random1",
				Username:    "random",
				DisplayName: "random",
				Password:    getEnv("AUTH_ACCOUNT_SCRIBE_PASSWORD", "1234"),
				Salt:        getEnv("AUTH_ACCOUNT_SCRIBE_SALT", "6f2d3c4b5a6e7d8c"),
			},
		},
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
