package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

type AppConfig struct {
	Port        string
	ServiceName string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MigrationsPath  string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DependencyConfig describes one remote dependency: where it lives and how
// its calls are gated.
type DependencyConfig struct {
	BaseURL    string
	Resilience resilience.PolicyConfig
}

// Local reports whether the dependency is served from the service's own
// store instead of a remote endpoint. Set <PREFIX>_URL=local for entities
// that have not been split into their own service yet.
func (d DependencyConfig) Local() bool {
	return d.BaseURL == "local"
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig

	UserService     DependencyConfig
	ProductService  DependencyConfig
	PaymentService  DependencyConfig
	ShipmentService DependencyConfig
}

// Load reads configuration from the environment, optionally preloading a
// .env file. Database coordinates and dependency URLs are required;
// resilience settings default per dependency and can be overridden with
// <PREFIX>_TIMEOUT_MS, <PREFIX>_MAX_ATTEMPTS, <PREFIX>_RATE_LIMIT_RPS,
// <PREFIX>_BREAKER_WINDOW, <PREFIX>_BREAKER_THRESHOLD and
// <PREFIX>_BREAKER_COOLDOWN_MS.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.ServiceName = getEnv("SERVICE_NAME", "order-service")

	for _, required := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		if os.Getenv(required) == "" {
			return nil, fmt.Errorf("%s is required", required)
		}
	}
	cfg.Postgres = PostgresConfig{
		Host:            os.Getenv("DB_HOST"),
		Port:            os.Getenv("DB_PORT"),
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "migrations"),
		MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
		MinConns:        int32(getEnvInt("DB_MIN_CONNS", 2)),
		MaxConnLifetime: getEnvDurationMS("DB_MAX_CONN_LIFETIME_MS", 30*time.Minute),
	}

	var err error
	if cfg.UserService, err = loadDependency("USER_SERVICE"); err != nil {
		return nil, err
	}
	if cfg.ProductService, err = loadDependency("PRODUCT_SERVICE"); err != nil {
		return nil, err
	}
	if cfg.PaymentService, err = loadDependency("PAYMENT_SERVICE"); err != nil {
		return nil, err
	}
	if cfg.ShipmentService, err = loadDependency("SHIPMENT_SERVICE"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadDependency(prefix string) (DependencyConfig, error) {
	baseURL := os.Getenv(prefix + "_URL")
	if baseURL == "" {
		return DependencyConfig{}, fmt.Errorf("%s_URL is required", prefix)
	}
	return DependencyConfig{
		BaseURL: baseURL,
		Resilience: resilience.PolicyConfig{
			Breaker: resilience.BreakerConfig{
				Window:           getEnvInt(prefix+"_BREAKER_WINDOW", 10),
				FailureThreshold: getEnvFloat(prefix+"_BREAKER_THRESHOLD", 0.5),
				Cooldown:         getEnvDurationMS(prefix+"_BREAKER_COOLDOWN_MS", 5*time.Second),
			},
			Backoff: resilience.Backoff{
				Initial: getEnvDurationMS(prefix+"_RETRY_BACKOFF_MS", 100*time.Millisecond),
				Max:     getEnvDurationMS(prefix+"_RETRY_BACKOFF_MAX_MS", time.Second),
				Factor:  2,
			},
			Timeout:        getEnvDurationMS(prefix+"_TIMEOUT_MS", 2*time.Second),
			MaxAttempts:    getEnvInt(prefix+"_MAX_ATTEMPTS", 3),
			RateLimitRPS:   getEnvFloat(prefix+"_RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvInt(prefix+"_RATE_LIMIT_BURST", 0),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDurationMS(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
