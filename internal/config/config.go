package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed by value to constructors.
type Config struct {
	Addr       string
	CORSOrigin string
	LogLevel   string
	LogPretty  bool

	// Language model (OpenAI-compatible endpoint)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	// Vector search service
	VectorServiceURL string
	VectorTimeout    time.Duration

	// Reference library
	DatabaseURL    string
	MigrationsDir  string
	MeiliURL       string
	MeiliMasterKey string

	// Selection records
	RedisURL     string
	SelectionTTL time.Duration

	// Files
	TemplatesDir string
	UploadsDir   string
	ArchiveDir   string

	// Upload blobs in MinIO (UploadsDir is used when MinIOEndpoint is empty)
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	WorkspaceCapacity int
	MaxVersions       int
}

func Load() Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	return Config{
		Addr:       getenv("API_ADDR", ":3000"),
		CORSOrigin: getenv("CORS_ORIGIN", "*"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogPretty:  getenvBool("LOG_PRETTY", false),

		LLMAPIKey:  getenv("LLM_API_KEY", os.Getenv("GEMINI_API_KEY")),
		LLMBaseURL: getenv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:   getenv("LLM_MODEL", "gemini-2.0-flash"),
		LLMTimeout: getenvDuration("LLM_TIMEOUT_SECONDS", 120),

		VectorServiceURL: getenv("FLASK_SERVICE_URL", "http://localhost:5000"),
		VectorTimeout:    getenvDuration("FLASK_TIMEOUT_SECONDS", 30),

		DatabaseURL:    getenv("DATABASE_URL", ""),
		MigrationsDir:  getenv("MIGRATIONS_DIR", "./db/migrations"),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),

		RedisURL:     getenv("REDIS_URL", ""),
		SelectionTTL: getenvDuration("SELECTION_TTL_SECONDS", 1800),

		TemplatesDir: getenv("TEMPLATES_DIR", "./templates"),
		UploadsDir:   getenv("UPLOADS_DIR", "./data/uploads"),
		ArchiveDir:   getenv("ARCHIVE_DIR", "./data/archive"),

		MinIOEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getenv("MINIO_BUCKET", "docgen-uploads"),
		MinIOUseSSL:    getenvBool("MINIO_USE_SSL", false),

		WorkspaceCapacity: getenvInt("WORKSPACE_CAPACITY", 256),
		MaxVersions:       getenvInt("MAX_VERSIONS", 100),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getenvDuration reads a whole number of seconds.
func getenvDuration(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getenvInt(key, fallbackSeconds)) * time.Second
}
