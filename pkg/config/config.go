package config

import (
	"os"
	"strconv"
	"strings"
)

// Storage drivers
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port                    string
	Env                     string
	StorageDriver           string
	MongoURI                string
	MongoDatabase           string
	PostgresURL             string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	JWTSecret               string
	FirebaseCredentialsPath string
	ResyncSchedule          string
	ResyncMode              string
	LogLevel                string
	LogFormat               string
	LogFile                 string
	CORSOrigins             []string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		StorageDriver:           getEnv("STORAGE_DRIVER", StorageMongo),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "campusboard"),
		PostgresURL:             getEnv("POSTGRES_URL", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		ResyncSchedule:          getEnv("RESYNC_SCHEDULE", ""),
		ResyncMode:              getEnv("RESYNC_MODE", "active"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "json"),
		LogFile:                 getEnv("LOG_FILE", ""),
		CORSOrigins:             splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
