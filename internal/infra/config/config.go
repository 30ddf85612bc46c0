package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"propertyhub/internal/domain/shared/money"
)

const (
	SourceREST     = "rest"
	SourceMongo    = "mongo"
	SourcePostgres = "postgres"
	SourceMemory   = "memory"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env      string
	HTTPAddr string

	BookingSource     string
	BookingAPIURL     string
	BookingAPITimeout time.Duration
	BookingAPIToken   string

	MongoURI string
	MongoDB  string
	PGDSN    string

	KafkaBrokers       []string
	KafkaTopicPrefix   string
	KafkaGroupID       string
	OutboxPollInterval time.Duration
	OutboxBacklogLimit int
	RetryBackoff       []time.Duration
	IdempotencyTTL     time.Duration

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	JWTSecret string
	JWTIssuer string

	HorizonDays        int
	SnapshotTTL        time.Duration
	PlatformTaxPercent decimal.Decimal
	Currency           money.Currency
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then parses
// configuration from the environment. Variables already set win over the file.
func Load() (Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		BookingSource:    strings.ToLower(getEnv("BOOKING_SOURCE", SourceMemory)),
		BookingAPIURL:    strings.TrimRight(os.Getenv("BOOKING_API_URL"), "/"),
		BookingAPIToken:  os.Getenv("BOOKING_API_TOKEN"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "propertyhub"),
		PGDSN:            os.Getenv("PG_DSN"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "propertyhub-availability"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:      getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:         getEnv("S3_BUCKET", "propertyhub-receipts"),
		JWTSecret:        os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:        getEnv("AUTH_JWT_ISSUER", ""),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.BookingAPITimeout, err = parseDurationEnv("BOOKING_API_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.OutboxBacklogLimit, err = parseIntEnv("OUTBOX_BACKLOG_LIMIT", 1000); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SnapshotTTL, err = parseDurationEnv("SNAPSHOT_TTL", time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RetryBackoff, err = parseDurationListEnv("RETRY_BACKOFF", "1s,5s,30s"); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.HorizonDays, err = parseIntEnv("HORIZON_DAYS", 90); err != nil {
		return Config{}, err
	}
	if cfg.PlatformTaxPercent, err = parseDecimalEnv("PLATFORM_TAX_PERCENT", "18"); err != nil {
		return Config{}, err
	}
	digits, err := parseIntEnv("CURRENCY_MINOR_DIGITS", 2)
	if err != nil {
		return Config{}, err
	}
	if cfg.Currency, err = money.NewCurrency(getEnv("CURRENCY", "INR"), int32(digits)); err != nil {
		return Config{}, fmt.Errorf("invalid CURRENCY/CURRENCY_MINOR_DIGITS: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.BookingSource {
	case SourceREST:
		if c.BookingAPIURL == "" {
			return fmt.Errorf("BOOKING_API_URL is required when BOOKING_SOURCE=%s", SourceREST)
		}
	case SourceMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when BOOKING_SOURCE=%s", SourceMongo)
		}
	case SourcePostgres:
		if c.PGDSN == "" {
			return fmt.Errorf("PG_DSN is required when BOOKING_SOURCE=%s", SourcePostgres)
		}
	case SourceMemory:
	default:
		return fmt.Errorf("invalid BOOKING_SOURCE %q", c.BookingSource)
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("HORIZON_DAYS must be positive")
	}
	if c.PlatformTaxPercent.IsNegative() {
		return fmt.Errorf("PLATFORM_TAX_PERCENT must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseDurationListEnv(key, def string) ([]time.Duration, error) {
	var out []time.Duration
	for _, raw := range strings.Split(getEnv(key, def), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %q: %w", key, raw, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}

func parseIntEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s integer %q: %w", key, raw, err)
	}
	return v, nil
}

func parseDecimalEnv(key, def string) (decimal.Decimal, error) {
	raw := getEnv(key, def)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s decimal %q: %w", key, raw, err)
	}
	return d, nil
}
