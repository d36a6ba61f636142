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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	GridCache GridCacheConfig
	Scheduler SchedulerConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig bounds how often a client may run speculative availability checks.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// GridCacheConfig governs caching of the weekly schedule grid.
type GridCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SchedulerConfig holds the policy knobs of the conflict and suggestion engine.
type SchedulerConfig struct {
	DefaultHorizonWeeks    int
	TimeSlots              []string
	DateStepDays           int
	MaxLookaheadWeeks      int
	MaxAlternatives        int
	MakeupHorizonDays      int
	MakeupPatternDaysOnly  bool
	DefaultDurationMinutes int
	TransactionLockTimeout time.Duration
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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("ENABLE_RATE_LIMIT"),
		RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
		Burst:   v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.GridCache = GridCacheConfig{
		Enabled: v.GetBool("ENABLE_GRID_CACHE"),
		TTL:     parseDuration(v.GetString("GRID_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Scheduler = SchedulerConfig{
		DefaultHorizonWeeks:    v.GetInt("SCHEDULER_DEFAULT_HORIZON_WEEKS"),
		TimeSlots:              splitAndTrim(v.GetString("SCHEDULER_TIME_SLOTS")),
		DateStepDays:           v.GetInt("SCHEDULER_DATE_STEP_DAYS"),
		MaxLookaheadWeeks:      v.GetInt("SCHEDULER_MAX_LOOKAHEAD_WEEKS"),
		MaxAlternatives:        v.GetInt("SCHEDULER_MAX_ALTERNATIVES"),
		MakeupHorizonDays:      v.GetInt("SCHEDULER_MAKEUP_HORIZON_DAYS"),
		MakeupPatternDaysOnly:  v.GetBool("SCHEDULER_MAKEUP_PATTERN_DAYS_ONLY"),
		DefaultDurationMinutes: v.GetInt("SCHEDULER_DEFAULT_DURATION_MINUTES"),
		TransactionLockTimeout: parseDuration(v.GetString("SCHEDULER_LOCK_TIMEOUT"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "training_center")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_RATE_LIMIT", true)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ENABLE_GRID_CACHE", false)
	v.SetDefault("GRID_CACHE_TTL", "5m")

	v.SetDefault("SCHEDULER_DEFAULT_HORIZON_WEEKS", 12)
	v.SetDefault("SCHEDULER_TIME_SLOTS", "08:00,10:00,13:30,15:30,18:00,20:00")
	v.SetDefault("SCHEDULER_DATE_STEP_DAYS", 7)
	v.SetDefault("SCHEDULER_MAX_LOOKAHEAD_WEEKS", 4)
	v.SetDefault("SCHEDULER_MAX_ALTERNATIVES", 5)
	v.SetDefault("SCHEDULER_MAKEUP_HORIZON_DAYS", 14)
	v.SetDefault("SCHEDULER_MAKEUP_PATTERN_DAYS_ONLY", true)
	v.SetDefault("SCHEDULER_DEFAULT_DURATION_MINUTES", 120)
	v.SetDefault("SCHEDULER_LOCK_TIMEOUT", "5s")
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
