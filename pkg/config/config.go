package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Import policies.
const (
	ImportLenient = "lenient"
	ImportStrict  = "strict"
)

// ID strategies.
const (
	IDSequence = "sequence"
	IDUUID     = "uuid"
)

// Mail drivers.
const (
	MailLog      = "log"
	MailSendgrid = "sendgrid"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Auth       AuthConfig
	CORS       CORSConfig
	Log        LogConfig
	Cache      CacheConfig
	Storage    StorageConfig
	Import     ImportConfig
	Generation GenerationConfig
	Mail       MailConfig
	Messages   MessagesConfig
	Exports    ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// AuthConfig holds the single administrator credential set.
type AuthConfig struct {
	Enabled           bool
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	AdminName         string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs Redis backed caching of analytics and dashboard payloads.
type CacheConfig struct {
	Enabled      bool
	AnalyticsTTL time.Duration
	DashboardTTL time.Duration
}

// StorageConfig selects where collections live.
type StorageConfig struct {
	Driver string
	Seed   bool
}

// ImportConfig tunes bulk import behaviour.
type ImportConfig struct {
	Policy      string
	IDStrategy  string
	MaxFileSize int64
}

// GenerationConfig configures the generative text client used for invoice descriptions.
type GenerationConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	Skip     bool
	Fallback bool
}

// MailConfig selects the outbound mail transport.
type MailConfig struct {
	Driver         string
	SendgridAPIKey string
	FromName       string
	FromEmail      string
}

// MessagesConfig tunes the message delivery queue.
type MessagesConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
}

// ExportsConfig configures asynchronous export generation.
type ExportsConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.Auth = AuthConfig{
		Enabled:           v.GetBool("AUTH_ENABLED"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		AdminName:         v.GetString("ADMIN_NAME"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:      v.GetBool("ENABLE_CACHE"),
		AnalyticsTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
		DashboardTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Storage = StorageConfig{
		Driver: oneOf(v.GetString("STORAGE_DRIVER"), StorageMemory, StorageMemory, StoragePostgres),
		Seed:   v.GetBool("SEED_DATA"),
	}

	maxUpload := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 5 * 1024 * 1024
	}
	cfg.Import = ImportConfig{
		Policy:      oneOf(v.GetString("IMPORT_POLICY"), ImportLenient, ImportLenient, ImportStrict),
		IDStrategy:  oneOf(v.GetString("ID_STRATEGY"), IDSequence, IDSequence, IDUUID),
		MaxFileSize: maxUpload,
	}

	cfg.Generation = GenerationConfig{
		APIKey:   v.GetString("GENAI_API_KEY"),
		Model:    v.GetString("GENAI_MODEL"),
		BaseURL:  v.GetString("GENAI_BASE_URL"),
		Timeout:  parseDuration(v.GetString("GENAI_TIMEOUT"), 20*time.Second),
		Skip:     v.GetBool("GENAI_SKIP"),
		Fallback: v.GetBool("INVOICE_AI_FALLBACK"),
	}

	cfg.Mail = MailConfig{
		Driver:         oneOf(v.GetString("MAIL_DRIVER"), MailLog, MailLog, MailSendgrid),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("MAIL_FROM_NAME"),
		FromEmail:      v.GetString("MAIL_FROM_EMAIL"),
	}

	cfg.Messages = MessagesConfig{
		WorkerConcurrency: v.GetInt("MESSAGES_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("MESSAGES_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("MESSAGES_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "educentral")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "educentral-admin-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("AUTH_ENABLED", true)
	v.SetDefault("ADMIN_EMAIL", "admin@educentral.com")
	v.SetDefault("ADMIN_PASSWORD", "password")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_NAME", "Admin")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("SEED_DATA", true)

	v.SetDefault("IMPORT_POLICY", ImportLenient)
	v.SetDefault("ID_STRATEGY", IDSequence)
	v.SetDefault("IMPORT_MAX_FILE_SIZE", 5*1024*1024)

	v.SetDefault("GENAI_API_KEY", "")
	v.SetDefault("GENAI_MODEL", "gemini-2.0-flash")
	v.SetDefault("GENAI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("GENAI_TIMEOUT", "20s")
	v.SetDefault("GENAI_SKIP", false)
	v.SetDefault("INVOICE_AI_FALLBACK", true)

	v.SetDefault("MAIL_DRIVER", MailLog)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "EduCentral")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@educentral.com")

	v.SetDefault("MESSAGES_WORKER_CONCURRENCY", 2)
	v.SetDefault("MESSAGES_WORKER_RETRIES", 3)
	v.SetDefault("MESSAGES_RETRY_DELAY", "5s")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// oneOf lowercases raw and returns it when allowed, otherwise fallback.
func oneOf(raw, fallback string, allowed ...string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return fallback
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
