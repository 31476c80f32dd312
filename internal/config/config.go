package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Worker     WorkerConfig
	Extraction ExtractionConfig
	Redis      RedisConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type StorageConfig struct {
	UploadPath      string
	MaxResumeSize   int64
	MaxDocumentSize int64
}

type WorkerConfig struct {
	Concurrency       int
	QueueSize         int
	PollInterval      time.Duration
	ExtractionTimeout time.Duration
	WatchdogCeiling   time.Duration
	WatchdogInterval  time.Duration
}

type ExtractionConfig struct {
	MinTextLength int
}

type RedisConfig struct {
	URL             string
	UploadRateLimit int
	UploadWindow    time.Duration
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverPostgres),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "traqcheck"),
		},
		Storage: StorageConfig{
			UploadPath:      getEnv("UPLOAD_PATH", "./uploads"),
			MaxResumeSize:   getEnvAsInt64("MAX_RESUME_SIZE", 16777216),
			MaxDocumentSize: getEnvAsInt64("MAX_DOCUMENT_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:         getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			PollInterval:      getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", "60s"),
			WatchdogCeiling:   getEnvAsDuration("WATCHDOG_CEILING", "5m"),
			WatchdogInterval:  getEnvAsDuration("WATCHDOG_INTERVAL", "30s"),
		},
		Extraction: ExtractionConfig{
			MinTextLength: getEnvAsInt("MIN_TEXT_LENGTH", 50),
		},
		Redis: RedisConfig{
			URL:             getEnv("REDIS_URL", ""),
			UploadRateLimit: getEnvAsInt("UPLOAD_RATE_LIMIT", 30),
			UploadWindow:    getEnvAsDuration("UPLOAD_RATE_WINDOW", "1m"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// MaxUploadSize is the largest request body the API must accept.
func (c *Config) MaxUploadSize() int64 {
	size := c.Storage.MaxResumeSize
	if docs := 2 * c.Storage.MaxDocumentSize; docs > size {
		size = docs
	}
	// multipart framing
	return size + 1<<20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
