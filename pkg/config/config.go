package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MetricsPort             string
	StorageBackend          string // "local" or "gcs"
	LocalStoragePath        string
	PublicBaseURL           string
	GCSBucket               string
	RedisAddr               string
	JWTSecret               string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		StorageBackend:          getEnv("STORAGE_BACKEND", "local"),
		LocalStoragePath:        getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		PublicBaseURL:           getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		GCSBucket:               getEnv("GCS_BUCKET", ""),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
