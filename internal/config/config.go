package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"printsociety/internal/model"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Redis    RedisConfig
	S3       S3Config
	Kafka    KafkaConfig
	Promo    PromoConfig
	Shop     ShopConfig
	Outbox   OutboxConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host           string `envconfig:"HOST" default:"localhost"`
	Port           int    `envconfig:"PORT" default:"5432"`
	User           string `envconfig:"USER" default:"postgres"`
	Password       string `envconfig:"PASSWORD"`
	Database       string `envconfig:"NAME" default:"printsociety"`
	MaxConnections int    `envconfig:"MAX_CONNECTIONS" default:"25"`
	MinConnections int    `envconfig:"MIN_CONNECTIONS" default:"5"`

	// Zero keeps the pgxpool default.
	MaxConnLifetime   time.Duration `envconfig:"MAX_CONN_LIFETIME" default:"5m"`
	MaxConnIdleTime   time.Duration `envconfig:"MAX_CONN_IDLE_TIME" default:"30m"`
	HealthCheckPeriod time.Duration `envconfig:"HEALTH_CHECK_PERIOD" default:"1m"`
	ApplicationName   string        `envconfig:"APPLICATION_NAME" default:"printsociety"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"` // "json" or "console"
	App    string `envconfig:"APP" default:"printsociety"`
}

// AuthConfig holds the storefront and back office API keys.
type AuthConfig struct {
	APIKey      string `envconfig:"API_KEY"`
	AdminAPIKey string `envconfig:"ADMIN_API_KEY"`
}

// RedisConfig holds the cart session store configuration.
type RedisConfig struct {
	Addr     string        `envconfig:"ADDR" default:"localhost:6379"`
	Password string        `envconfig:"PASSWORD"`
	DB       int           `envconfig:"DB" default:"0"`
	CartTTL  time.Duration `envconfig:"CART_TTL" default:"168h"`
}

// S3Config holds AWS S3 configuration for artwork uploads and promo catalog files.
type S3Config struct {
	Enabled       bool   `envconfig:"ENABLED" default:"false"`
	Region        string `envconfig:"REGION" default:"us-east-1"`
	Endpoint      string `envconfig:"ENDPOINT"` // optional, for S3-compatible stores
	ArtworkBucket string `envconfig:"ARTWORK_BUCKET"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`
	PromoBucket   string `envconfig:"PROMO_BUCKET"`
	PromoPrefix   string `envconfig:"PROMO_PREFIX" default:"promos/"` // Path prefix within bucket
}

// KafkaConfig holds the notification topic configuration.
type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"TOPIC" default:"storefront-notifications"`
}

// PromoConfig lists the promo catalog sources, loaded in order.
type PromoConfig struct {
	FilePaths []string `envconfig:"FILE_PATHS" default:"data/promos/promos_base.gz"`
}

// ShopConfig holds business settings.
type ShopConfig struct {
	SetupFee        decimal.Decimal `envconfig:"SETUP_FEE" default:"25.00"`
	ReviewWindow    time.Duration   `envconfig:"PROOF_REVIEW_WINDOW" default:"72h"`
	MaxRevisions    int             `envconfig:"MAX_REVISIONS" default:"3"`
	MaxArtworkMB    int             `envconfig:"MAX_ARTWORK_MB" default:"25"`
	ProofBaseURL    string          `envconfig:"PROOF_BASE_URL" default:"http://localhost:3000/proofs/"`
	ShippingOptions []string        `envconfig:"SHIPPING_OPTIONS" default:"standard:Standard:5.99:5,express:Express:14.99:2"` // id:name:cost:days
}

// OutboxConfig tunes the notification relay.
type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	BatchSize    int           `envconfig:"BATCH_SIZE" default:"100"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		prefix string
		spec   any
	}{
		{"SERVER", &cfg.Server},
		{"DB", &cfg.Database},
		{"LOG", &cfg.Logger},
		{"", &cfg.Auth},
		{"REDIS", &cfg.Redis},
		{"S3", &cfg.S3},
		{"KAFKA", &cfg.Kafka},
		{"PROMO", &cfg.Promo},
		{"SHOP", &cfg.Shop},
		{"OUTBOX", &cfg.Outbox},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.spec); err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Database.MaxConnLifetime < 0 || c.Database.MaxConnIdleTime < 0 || c.Database.HealthCheckPeriod < 0 {
		return fmt.Errorf("database connection durations cannot be negative")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Auth.AdminAPIKey == "" {
		return fmt.Errorf("admin API key is required")
	}

	if c.Auth.AdminAPIKey == c.Auth.APIKey {
		return fmt.Errorf("admin API key must differ from the API key")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.S3.Enabled {
		if c.S3.ArtworkBucket == "" {
			return fmt.Errorf("S3 artwork bucket is required when S3 is enabled")
		}
		if c.S3.PublicBaseURL == "" {
			return fmt.Errorf("S3 public base URL is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "" {
		return fmt.Errorf("kafka brokers and topic are required")
	}

	if len(c.Promo.FilePaths) == 0 {
		return fmt.Errorf("at least one promo catalog path is required")
	}

	if c.Shop.SetupFee.IsNegative() {
		return fmt.Errorf("setup fee cannot be negative: %s", c.Shop.SetupFee)
	}

	if c.Shop.ReviewWindow <= 0 {
		return fmt.Errorf("proof review window must be positive")
	}

	if c.Shop.MaxRevisions < 0 {
		return fmt.Errorf("max revisions cannot be negative")
	}

	if c.Shop.MaxArtworkMB < 1 {
		return fmt.Errorf("max artwork size must be at least 1 MB")
	}

	if _, err := c.Shop.Shipping(); err != nil {
		return err
	}

	if c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox poll interval must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxArtworkBytes is the upload size limit in bytes.
func (c *ShopConfig) MaxArtworkBytes() int64 {
	return int64(c.MaxArtworkMB) << 20
}

// Shipping parses ShippingOptions. Each entry is id:name:cost:days.
func (c *ShopConfig) Shipping() ([]model.ShippingOption, error) {
	if len(c.ShippingOptions) == 0 {
		return nil, fmt.Errorf("at least one shipping option is required")
	}

	options := make([]model.ShippingOption, 0, len(c.ShippingOptions))
	seen := make(map[string]bool, len(c.ShippingOptions))
	for _, entry := range c.ShippingOptions {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 4 || parts[0] == "" {
			return nil, fmt.Errorf("invalid shipping option %q (want id:name:cost:days)", entry)
		}
		cost, err := decimal.NewFromString(parts[2])
		if err != nil || cost.IsNegative() {
			return nil, fmt.Errorf("invalid cost in shipping option %q", entry)
		}
		days, err := strconv.Atoi(parts[3])
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid days in shipping option %q", entry)
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("duplicate shipping option %q", parts[0])
		}
		seen[parts[0]] = true

		options = append(options, model.ShippingOption{ID: parts[0], Name: parts[1], Cost: cost, EstimatedDays: days})
	}
	return options, nil
}
