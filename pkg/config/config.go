package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the storefront. Values the checkout flow
// depends on (failure rate, stage delays, fees) are configuration on purpose:
// the simulation constants are product decisions, not code.
type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	// Backing stores. CartBackend selects the cart repository: "memory",
	// "redis" or "mongo".
	CartBackend string
	RedisAddr   string
	MongoURI    string
	MongoDB     string

	// Catalog sqlite database and its migrations.
	CatalogDBPath  string
	MigrationsPath string

	// Cart behaviour.
	MaxQuantity     int
	DrawerAutoClose time.Duration

	// Checkout behaviour.
	DeliveryFee           float64
	ConfirmationAutoClose time.Duration

	// Payment simulation.
	FailureRate float64
	StageDelays []time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SessionIdleTTL  time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		CartBackend: getEnv("CART_BACKEND", "memory"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "storefront"),

		CatalogDBPath:  getEnv("CATALOG_DB_PATH", "catalog.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		MaxQuantity:     getEnvInt("CART_MAX_QUANTITY", 99),
		DrawerAutoClose: getEnvDuration("CART_DRAWER_AUTOCLOSE", 3*time.Second),

		DeliveryFee:           getEnvFloat("CHECKOUT_DELIVERY_FEE", 5.99),
		ConfirmationAutoClose: getEnvDuration("CHECKOUT_CONFIRM_AUTOCLOSE", 5*time.Second),

		FailureRate: getEnvFloat("PAYMENT_FAILURE_RATE", 0.1),
		StageDelays: []time.Duration{
			getEnvDuration("PAYMENT_STAGE_VALIDATE", time.Second),
			getEnvDuration("PAYMENT_STAGE_PROCESS", 2*time.Second),
			getEnvDuration("PAYMENT_STAGE_CONFIRM", time.Second),
			getEnvDuration("PAYMENT_STAGE_FINALIZE", time.Second),
		},

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SessionIdleTTL:  getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
	}
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
