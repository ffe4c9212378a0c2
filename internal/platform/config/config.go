package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string `env:"API_PORT" envDefault:"8080"`
	JWTKey  string `env:"JWT_SECRET" envDefault:"defaultsecret"`
	JWTExp  time.Duration

	JWTExpirationHours int `env:"JWT_EXPIRATION_HOURS" envDefault:"72"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"pgx"`
	DBDSN      string `env:"DB_DSN"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"user"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DBName     string `env:"DB_NAME" envDefault:"pyventure"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"pyventure.db"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	BackendBaseURL string        `env:"BACKEND_BASE_URL" envDefault:"http://127.0.0.1:8000/api"`
	LLMBaseURL     string        `env:"LLM_BASE_URL" envDefault:"http://localhost:11434/api"`
	LLMModel       string        `env:"LLM_MODEL" envDefault:"qwen2.5-coder:7b"`
	SandboxBaseURL string        `env:"SANDBOX_BASE_URL" envDefault:"https://emkc.org/api/v2/piston"`
	SandboxLang    string        `env:"SANDBOX_LANGUAGE" envDefault:"python"`
	SandboxVersion string        `env:"SANDBOX_VERSION" envDefault:"3.10.0"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	LLMTimeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	ContentCacheTTL   time.Duration `env:"CONTENT_CACHE_TTL" envDefault:"6h"`
	PrewarmQueueName  string        `env:"PREWARM_QUEUE_NAME" envDefault:"content_prewarm_queue"`
	ContentLockTTL    time.Duration `env:"CONTENT_LOCK_TTL" envDefault:"5m"`
	TopicsFile        string        `env:"TOPICS_FILE"`
	MapsDir           string        `env:"MAPS_DIR" envDefault:"assets/tilemaps"`
	DefaultDifficulty string        `env:"DEFAULT_DIFFICULTY" envDefault:"beginner"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.JWTExp = time.Duration(cfg.JWTExpirationHours) * time.Hour
	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}
