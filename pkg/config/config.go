package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverFile     = "file"
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Pipeline modes
const (
	PipelineModeBackend = "backend"
	PipelineModeNative  = "native"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
	Assembly AssemblyAIConfig
	Groq     GroqConfig
	Auth     AuthConfig
	Log      LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	MaxUploadBytes  int64    `envconfig:"MAX_UPLOAD_BYTES" default:"524288000"`
}

// StoreConfig selects where the workspace snapshot lives
type StoreConfig struct {
	Driver     string `envconfig:"STORE_DRIVER" default:"file"`
	Key        string `envconfig:"STORE_KEY" default:"reskiling_ai_workspace_state"`
	FilePath   string `envconfig:"STORE_FILE_PATH" default:"data/workspace.json"`
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"data/workspace.db"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"script_workspace"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"2"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"script-workspace"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"STORAGE_PUBLIC_URL"`
	URLExpiry       time.Duration `envconfig:"STORAGE_URL_EXPIRY" default:"168h"`
}

// PipelineConfig selects and tunes the transcription / generation / speech collaborators
type PipelineConfig struct {
	Mode             string        `envconfig:"PIPELINE_MODE" default:"backend"`
	BackendURL       string        `envconfig:"BACKEND_API_URL" default:"http://localhost:5000"`
	RequestTimeout   time.Duration `envconfig:"PIPELINE_REQUEST_TIMEOUT" default:"10m"`
	SynthesisTimeout time.Duration `envconfig:"SYNTHESIS_JOB_TIMEOUT" default:"5m"`
	BatchConcurrency int           `envconfig:"BATCH_CONCURRENCY" default:"4"`
}

// AssemblyAIConfig holds AssemblyAI configuration
type AssemblyAIConfig struct {
	APIKey       string `envconfig:"ASSEMBLYAI_API_KEY"`
	LanguageCode string `envconfig:"ASSEMBLYAI_LANGUAGE_CODE" default:"ja"`
}

// GroqConfig holds Groq configuration
type GroqConfig struct {
	APIKey    string `envconfig:"GROQ_API_KEY"`
	BaseURL   string `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model     string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	TTSModel  string `envconfig:"GROQ_TTS_MODEL" default:"playai-tts"`
	TTSVoice  string `envconfig:"GROQ_TTS_VOICE" default:"Fritz-PlayAI"`
	MaxTokens int    `envconfig:"GROQ_MAX_TOKENS" default:"8000"`
}

// AuthConfig holds bearer token configuration. Auth is disabled when TokenSecret is empty.
type AuthConfig struct {
	TokenSecret string        `envconfig:"AUTH_TOKEN_SECRET"`
	Issuer      string        `envconfig:"AUTH_ISSUER" default:"script-workspace"`
	TokenTTL    time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv fills every section from the process environment without validating.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	sections := []struct {
		name string
		spec interface{}
	}{
		{"server", &cfg.Server},
		{"store", &cfg.Store},
		{"database", &cfg.Database},
		{"redis", &cfg.Redis},
		{"storage", &cfg.Storage},
		{"pipeline", &cfg.Pipeline},
		{"assemblyai", &cfg.Assembly},
		{"groq", &cfg.Groq},
		{"auth", &cfg.Auth},
		{"log", &cfg.Log},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverFile, StoreDriverSQLite, StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, file, sqlite, postgres, redis (got %q)", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		return fmt.Errorf("STORE_KEY is required")
	}

	switch c.Pipeline.Mode {
	case PipelineModeBackend:
		if c.Pipeline.BackendURL == "" {
			return fmt.Errorf("BACKEND_API_URL is required when PIPELINE_MODE=backend")
		}
	case PipelineModeNative:
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when PIPELINE_MODE=native")
		}
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when PIPELINE_MODE=native")
		}
		if c.Storage.Endpoint == "" || c.Storage.BucketName == "" {
			return fmt.Errorf("STORAGE_ENDPOINT and STORAGE_BUCKET are required when PIPELINE_MODE=native")
		}
	default:
		return fmt.Errorf("PIPELINE_MODE must be backend or native (got %q)", c.Pipeline.Mode)
	}

	if c.Pipeline.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1")
	}
	if c.Pipeline.SynthesisTimeout <= 0 {
		return fmt.Errorf("SYNTHESIS_JOB_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// AuthEnabled reports whether bearer tokens are required on the API
func (c *Config) AuthEnabled() bool {
	return c.Auth.TokenSecret != ""
}

// GetServerAddr returns the listen address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
