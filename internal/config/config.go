package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Notify   NotifyConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	MigrateOnStart    bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BcryptCost         int

	// Lockout policy
	MaxFailedAttempts int
	LockoutDuration   time.Duration

	// Response padding for credential endpoints
	TimingDelayBase   time.Duration
	TimingDelayRandom time.Duration

	RevokeSessionsOnPasswordChange bool
	LoginRateLimitPerMinute        int
}

// NotifyConfig configures lockout notification email. An empty FromAddress
// disables notifications.
type NotifyConfig struct {
	AWSRegion   string
	FromAddress string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	db, err := LoadDatabase()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: *db,
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:                      jwtSecret,
			AccessTokenExpiry:              getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry:             getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
			BcryptCost:                     getEnvAsInt("BCRYPT_COST", 12),
			MaxFailedAttempts:              getEnvAsInt("AUTH_MAX_FAILED_ATTEMPTS", 5),
			LockoutDuration:                getEnvAsDuration("AUTH_LOCKOUT_DURATION", 30*time.Minute),
			TimingDelayBase:                time.Duration(getEnvAsInt("AUTH_TIMING_DELAY_BASE_MS", 100)) * time.Millisecond,
			TimingDelayRandom:              time.Duration(getEnvAsInt("AUTH_TIMING_DELAY_RANDOM_MS", 50)) * time.Millisecond,
			RevokeSessionsOnPasswordChange: getEnvAsBool("AUTH_REVOKE_SESSIONS_ON_PASSWORD_CHANGE", false),
			LoginRateLimitPerMinute:        getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		},
		Notify: NotifyConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("NOTIFY_FROM_ADDRESS", ""),
		},
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}
	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. The admin CLI uses it so
// that it does not need a JWT secret.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	cfg := &DatabaseConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvAsInt("DB_PORT", 5432),
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", ""),
		Name:              getEnv("DB_NAME", "bizadmin"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
		HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		MigrateOnStart:    getEnvAsBool("DB_MIGRATE_ON_START", false),
	}

	if cfg.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	return cfg, nil
}

func (a *AuthConfig) validate() error {
	if a.MaxFailedAttempts < 1 {
		return fmt.Errorf("AUTH_MAX_FAILED_ATTEMPTS must be at least 1 (got %d)", a.MaxFailedAttempts)
	}
	if a.LockoutDuration <= 0 {
		return fmt.Errorf("AUTH_LOCKOUT_DURATION must be positive")
	}
	if a.AccessTokenExpiry <= 0 || a.RefreshTokenExpiry <= 0 {
		return fmt.Errorf("token expiry durations must be positive")
	}
	if a.RefreshTokenExpiry <= a.AccessTokenExpiry {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRY must be longer than ACCESS_TOKEN_EXPIRY")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}
	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak || strings.Repeat(weak, len(secretLower)/max(len(weak), 1)) == secretLower {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return []string{}
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return getEnvAsList("ALLOWED_ORIGINS")
	}

	if origins := getEnvAsList("ALLOWED_ORIGINS"); len(origins) > 0 {
		return origins
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
