package config

import (
	"errors"
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

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Cache    CacheConfig
	Exports  ExportsConfig
	Jobs     JobsConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig governs the automatic lesson-placement engine.
type PlannerConfig struct {
	// FirstSchoolWeek is the ISO week number containing the school-year start
	// (first week of September). Logical week 1 maps onto it.
	FirstSchoolWeek int
	// StartYear is the calendar year the school year begins in.
	StartYear int
	// LessonHours is the instructional duration of one standard time slot,
	// used to translate course hour quotas into lesson counts.
	LessonHours float64
	// CoursesPerSlot caps how many distinct courses are attempted per slot.
	CoursesPerSlot int
	// ProposalTTL bounds how long a dry-run proposal stays acceptable.
	ProposalTTL time.Duration
	// AvailabilityOverride lets a covering no-reason "available" record
	// override an otherwise absolute no-reason "unavailable" record.
	AvailabilityOverride bool
	// Holidays lists fixed yearly MM-DD dates excluded from placement.
	Holidays []string
}

// CacheConfig tunes the Redis-backed read caches.
type CacheConfig struct {
	Enabled       bool
	PopulationTTL time.Duration
}

// ExportsConfig toggles planning export endpoints.
type ExportsConfig struct {
	Enabled bool
}

// JobsConfig tunes the background planning queue. Workers stays at 1 so bulk
// generation runs are serialized against the shared teacher/room pool.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
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
		if !errors.As(err, &notFound) {
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		FirstSchoolWeek:      v.GetInt("PLANNER_FIRST_SCHOOL_WEEK"),
		StartYear:            v.GetInt("PLANNER_START_YEAR"),
		LessonHours:          v.GetFloat64("PLANNER_LESSON_HOURS"),
		CoursesPerSlot:       v.GetInt("PLANNER_COURSES_PER_SLOT"),
		ProposalTTL:          parseDuration(v.GetString("PLANNER_PROPOSAL_TTL"), 30*time.Minute),
		AvailabilityOverride: v.GetBool("PLANNER_AVAILABILITY_OVERRIDE"),
		Holidays:             splitAndTrim(v.GetString("PLANNER_HOLIDAYS")),
	}

	cfg.Cache = CacheConfig{
		Enabled:       v.GetBool("ENABLE_CACHE"),
		PopulationTTL: parseDuration(v.GetString("CACHE_POPULATION_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), time.Second),
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
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_FIRST_SCHOOL_WEEK", 36)
	v.SetDefault("PLANNER_START_YEAR", 2024)
	v.SetDefault("PLANNER_LESSON_HOURS", 3.5)
	v.SetDefault("PLANNER_COURSES_PER_SLOT", 2)
	v.SetDefault("PLANNER_PROPOSAL_TTL", "30m")
	v.SetDefault("PLANNER_AVAILABILITY_OVERRIDE", false)
	v.SetDefault("PLANNER_HOLIDAYS", "01-01,04-01,05-01,05-08,05-30,07-14,08-15,11-01,11-11,12-25")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_POPULATION_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_BUFFER_SIZE", 16)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
	v.SetDefault("JOBS_RETRY_DELAY", "1s")
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
