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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database       DatabaseConfig
	MirrorDatabase DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	CORS           CORSConfig
	Log            LogConfig
	Suspension     SuspensionConfig
	AutoRevival    AutoRevivalConfig
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
}

// Enabled reports whether a host has been configured for the database.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

type RedisConfig struct {
	Enabled  bool
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SuspensionConfig tunes the apply/revive pipeline.
type SuspensionConfig struct {
	DefaultRevivalDays int
	NPDPatchDays       int
	PolicyFile         string
	LockTTL            time.Duration
	ReasonCacheTTL     time.Duration
}

// AutoRevivalConfig controls the scheduled expiry sweep and the payment worker.
type AutoRevivalConfig struct {
	Enabled        bool
	CronSpec       string
	PaymentWorkers int
	PaymentBuffer  int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
	}

	cfg.MirrorDatabase = DatabaseConfig{
		Host:         v.GetString("MIRROR_DB_HOST"),
		Port:         v.GetInt("MIRROR_DB_PORT"),
		User:         v.GetString("MIRROR_DB_USER"),
		Password:     v.GetString("MIRROR_DB_PASSWORD"),
		Name:         v.GetString("MIRROR_DB_NAME"),
		SSLMode:      v.GetString("MIRROR_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("MIRROR_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("MIRROR_DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Suspension = SuspensionConfig{
		DefaultRevivalDays: positiveInt(v.GetInt("SUSPENSION_DEFAULT_REVIVAL_DAYS"), 30),
		NPDPatchDays:       positiveInt(v.GetInt("SUSPENSION_NPD_PATCH_DAYS"), 2),
		PolicyFile:         strings.TrimSpace(v.GetString("SUSPENSION_POLICY_FILE")),
		LockTTL:            parseDuration(v.GetString("SUSPENSION_LOCK_TTL"), 30*time.Second),
		ReasonCacheTTL:     parseDuration(v.GetString("SUSPENSION_REASON_CACHE_TTL"), 10*time.Minute),
	}

	cfg.AutoRevival = AutoRevivalConfig{
		Enabled:        v.GetBool("ENABLE_AUTO_REVIVAL"),
		CronSpec:       v.GetString("AUTO_REVIVAL_CRON"),
		PaymentWorkers: positiveInt(v.GetInt("AUTO_REVIVAL_PAYMENT_WORKERS"), 1),
		PaymentBuffer:  positiveInt(v.GetInt("AUTO_REVIVAL_PAYMENT_BUFFER"), 64),
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
	v.SetDefault("DB_NAME", "ocms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("MIRROR_DB_HOST", "")
	v.SetDefault("MIRROR_DB_PORT", 5432)
	v.SetDefault("MIRROR_DB_USER", "postgres")
	v.SetDefault("MIRROR_DB_PASSWORD", "postgres")
	v.SetDefault("MIRROR_DB_NAME", "eocms")
	v.SetDefault("MIRROR_DB_SSL_MODE", "disable")
	v.SetDefault("MIRROR_DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("MIRROR_DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "notice-suspension-api")
	v.SetDefault("JWT_EXPIRATION", "1h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SUSPENSION_DEFAULT_REVIVAL_DAYS", 30)
	v.SetDefault("SUSPENSION_NPD_PATCH_DAYS", 2)
	v.SetDefault("SUSPENSION_POLICY_FILE", "")
	v.SetDefault("SUSPENSION_LOCK_TTL", "30s")
	v.SetDefault("SUSPENSION_REASON_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_AUTO_REVIVAL", true)
	v.SetDefault("AUTO_REVIVAL_CRON", "0 */15 * * * *")
	v.SetDefault("AUTO_REVIVAL_PAYMENT_WORKERS", 2)
	v.SetDefault("AUTO_REVIVAL_PAYMENT_BUFFER", 64)
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

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
