package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Movie metadata catalog (TMDB-compatible)
	CatalogAPIURL string
	CatalogAPIKey string

	// Cinema showtimes feed (XML)
	ShowtimesFeedURL string

	// Shared policy for both upstream providers: bounded timeout, one retry.
	ProviderTimeout time.Duration

	// Showtimes response cache
	CacheDir string
	CacheTTL time.Duration

	// Admin
	AdminEmails string
	AdminToken  string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "cinetalk_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		CatalogAPIURL: getEnv("CATALOG_API_URL", "https://api.themoviedb.org/3"),
		CatalogAPIKey: getEnv("CATALOG_API_KEY", ""),

		ShowtimesFeedURL: getEnv("SHOWTIMES_FEED_URL", ""),

		ProviderTimeout: parseDuration(getEnv("PROVIDER_TIMEOUT", "10s"), 10*time.Second),

		CacheDir: getEnv("CACHE_DIR", "cache"),
		CacheTTL: parseDuration(getEnv("CACHE_TTL", "30m"), 30*time.Minute),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
