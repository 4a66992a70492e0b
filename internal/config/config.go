package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string
	JWTSecret   string

	RBACModelPath string

	Approval ApprovalConfig

	OutboxPollInterval time.Duration
	IdempotencyTTL     time.Duration
}

// ApprovalConfig tunes the approval engine.
type ApprovalConfig struct {
	ChainsEnabled bool
	BulkMaxItems  int
	ChainCacheTTL time.Duration

	// Bulk endpoints allow BulkRatePerMinute calls per employee with BulkBurst headroom.
	BulkRatePerMinute int
	BulkBurst         int

	// A leave window is critical when at least ConflictCriticalCount teammates
	// are away, or when the absent share of the team reaches ConflictCriticalRatio.
	ConflictCriticalCount int
	ConflictCriticalRatio decimal.Decimal
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := time.ParseDuration(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// DefaultApproval is used by Load and by tests that build services directly.
func DefaultApproval() ApprovalConfig {
	return ApprovalConfig{
		ChainsEnabled:         true,
		BulkMaxItems:          100,
		ChainCacheTTL:         10 * time.Minute,
		BulkRatePerMinute:     30,
		BulkBurst:             5,
		ConflictCriticalCount: 3,
		ConflictCriticalRatio: decimal.RequireFromString("0.5"),
	}
}

// Load reads the environment; call godotenv.Load() first to honour a .env file.
func Load() *Config {
	approval := DefaultApproval()
	approval.ChainsEnabled = getbool("APPROVAL_CHAINS_ENABLED", approval.ChainsEnabled)
	approval.BulkMaxItems = getint("BULK_MAX_ITEMS", approval.BulkMaxItems)
	approval.ChainCacheTTL = getduration("CHAIN_CACHE_TTL", approval.ChainCacheTTL)
	approval.BulkRatePerMinute = getint("BULK_RATE_PER_MINUTE", approval.BulkRatePerMinute)
	approval.BulkBurst = getint("BULK_BURST", approval.BulkBurst)
	approval.ConflictCriticalCount = getint("CONFLICT_CRITICAL_COUNT", approval.ConflictCriticalCount)
	if v := os.Getenv("CONFLICT_CRITICAL_RATIO"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			approval.ConflictCriticalRatio = d
		}
	}

	return &Config{
		Port:       getenv("PORT", "3000"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "workforce"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		RBACModelPath: os.Getenv("RBAC_MODEL_PATH"),

		Approval: approval,

		OutboxPollInterval: getduration("OUTBOX_POLL_INTERVAL", 3*time.Second),
		IdempotencyTTL:     getduration("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

func (c *Config) Validate() error {
	if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
		return errors.New("missing database config (DB_HOST/DB_USER/DB_NAME)")
	}
	if _, err := net.LookupPort("tcp", c.DBPort); err != nil {
		return fmt.Errorf("invalid DB_PORT %q: %w", c.DBPort, err)
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	if c.Approval.BulkMaxItems <= 0 {
		return fmt.Errorf("BULK_MAX_ITEMS must be positive, got %d", c.Approval.BulkMaxItems)
	}
	if c.Approval.BulkRatePerMinute <= 0 || c.Approval.BulkBurst <= 0 {
		return fmt.Errorf("BULK_RATE_PER_MINUTE and BULK_BURST must be positive")
	}
	if c.Approval.ConflictCriticalCount < 1 {
		return fmt.Errorf("CONFLICT_CRITICAL_COUNT must be at least 1, got %d", c.Approval.ConflictCriticalCount)
	}
	if !c.Approval.ConflictCriticalRatio.IsPositive() || c.Approval.ConflictCriticalRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("CONFLICT_CRITICAL_RATIO must be in (0, 1], got %s", c.Approval.ConflictCriticalRatio)
	}
	return nil
}
