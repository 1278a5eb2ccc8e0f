package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	MongoDB   MongoDBConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Socket    SocketConfig
	// Secret is the shared secret mixed into socket tokens.
	Secret string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the namespace backend: memory, fs, mongo or minio.
type StorageConfig struct {
	Backend string
	DataDir string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string

	// AllowInsecure accepts unsigned tokens when no other verifier is configured.
	AllowInsecure bool
}

type JWTConfig struct {
	Secret string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type SocketConfig struct {
	TokenTTL time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")
	return fromViper(viper.GetViper()), nil
}

func fromViper(v *viper.Viper) *Config {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5002")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("STORAGE_BACKEND", "fs")
	v.SetDefault("STORAGE_DATA_DIR", "data")
	v.SetDefault("MONGODB_DATABASE", "mindmap")
	v.SetDefault("MONGODB_COLLECTION", "mindmaps")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MINIO_BUCKET", "mindmap")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("SOCKET_TOKEN_TTL", 300)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			DataDir: v.GetString("STORAGE_DATA_DIR"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),

			AllowInsecure: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Socket: SocketConfig{
			TokenTTL: time.Duration(v.GetInt("SOCKET_TOKEN_TTL")) * time.Second,
		},
		Secret: v.GetString("SECRET"),
	}
	if cfg.Secret == "" {
		cfg.Secret = cfg.JWT.Secret
	}

	// Basic validation
	if cfg.Secret == "" {
		logger.Warnf("SECRET is not set; socket tokens cannot be issued until it is configured")
	}
	if cfg.Storage.Backend == "mongo" && cfg.MongoDB.URI == "" {
		logger.Warnf("STORAGE_BACKEND=mongo but MONGODB_URI is empty")
	}

	return cfg
}
