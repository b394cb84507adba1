package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers selectable with STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// defaultRatePrefix prefixes per-method seed rates, e.g. DEFAULT_RATE_CASH_ARS.
const defaultRatePrefix = "DEFAULT_RATE_"

// seedMethods are the payment method codes a default rate can be configured for.
var seedMethods = []string{
	"cash_ars", "cash_usd", "wire_ars", "wire_usd", "wire_usdt", "broker_usd_to_ars", "broker_ars_to_usd",
}

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	StorageDriver      string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	RequestTimeout     time.Duration
	ReleaseTimeout     time.Duration
	DebtDueDays        int
	RateLimit          string
	CORSAllowedOrigins []string

	// Rate cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateCacheTTL  time.Duration

	// Event publishing
	KafkaBrokers         []string
	KafkaSettlementTopic string

	// MemoryInventoryItems seeds the in-process inventory when StorageDriver is memory.
	MemoryInventoryItems []string

	// DefaultRates keyed by payment method code, used only by SeedDefaultRates.
	DefaultRates map[string]decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("RELEASE_TIMEOUT", "5s")
	v.SetDefault("DEBT_DUE_DAYS", 30)
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_CACHE_TTL", "5m")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_SETTLEMENT_TOPIC", "settlement-events")
	v.SetDefault("MEMORY_INVENTORY_ITEMS", "")
	for _, method := range seedMethods {
		v.SetDefault(defaultRatePrefix+strings.ToUpper(method), "")
	}

	v.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageDriver = strings.ToLower(v.GetString("STORAGE_DRIVER"))
	if cfg.StorageDriver != StorageDriverPostgres && cfg.StorageDriver != StorageDriverMemory {
		log.Printf("Warning: unknown STORAGE_DRIVER %q. Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.StorageDriver == StorageDriverPostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RequestTimeout = parseDuration(v, "REQUEST_TIMEOUT", 10*time.Second)
	cfg.ReleaseTimeout = parseDuration(v, "RELEASE_TIMEOUT", 5*time.Second)
	cfg.RateCacheTTL = parseDuration(v, "RATE_CACHE_TTL", 5*time.Minute)

	cfg.DebtDueDays = v.GetInt("DEBT_DUE_DAYS")
	if cfg.DebtDueDays <= 0 {
		log.Printf("Warning: invalid DEBT_DUE_DAYS (%d). Defaulting to 30.\n", cfg.DebtDueDays)
		cfg.DebtDueDays = 30
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RedisAddr = v.GetString("REDIS_ADDR")
	cfg.RedisPassword = v.GetString("REDIS_PASSWORD")
	cfg.RedisDB = v.GetInt("REDIS_DB")
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.KafkaSettlementTopic = v.GetString("KAFKA_SETTLEMENT_TOPIC")
	cfg.MemoryInventoryItems = splitList(v.GetString("MEMORY_INVENTORY_ITEMS"))

	cfg.DefaultRates = make(map[string]decimal.Decimal)
	for _, method := range seedMethods {
		key := defaultRatePrefix + strings.ToUpper(method)
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			log.Printf("Warning: ignoring invalid %s ('%s').\n", key, raw)
			continue
		}
		cfg.DefaultRates[method] = rate
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
