package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `env:",prefix=SERVER_"`

	// Database configuration
	Database DatabaseConfig `env:",prefix=DB_"`

	// Redis holds cart sessions
	Redis RedisConfig `env:",prefix=REDIS_"`

	// Kafka receives checkout orders
	Kafka KafkaConfig `env:",prefix=KAFKA_"`

	// Coupon issuance policy
	Coupon CouponConfig `env:",prefix=COUPON_"`

	// Cart policy
	Cart CartConfig `env:",prefix=CART_"`

	// Application configuration
	App AppConfig `env:",prefix=APP_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `env:"PORT,default=8080"`
	Host         string `env:"HOST,default=0.0.0.0"`
	ReadTimeout  int    `env:"READ_TIMEOUT,default=30"`  // seconds
	WriteTimeout int    `env:"WRITE_TIMEOUT,default=30"` // seconds
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=namidia"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=25"`
	MinConns int    `env:"MIN_CONNS,default=5"`
	Migrate  bool   `env:"MIGRATE,default=true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB,default=0"`
	PoolSize int    `env:"POOL_SIZE,default=50"`
}

// KafkaConfig holds the checkout producer configuration. With no brokers
// the orders are only logged.
type KafkaConfig struct {
	Brokers       []string `env:"BROKERS"`
	CheckoutTopic string   `env:"CHECKOUT_TOPIC,default=namidia.checkout.orders"`
}

// CouponConfig controls how presence coupons are minted
type CouponConfig struct {
	Prefix          string `env:"PREFIX,default=NAMIDIA"`
	SuffixLength    int    `env:"SUFFIX_LENGTH,default=6"`
	MaxAttempts     int    `env:"MAX_ATTEMPTS,default=5"`
	DiscountPercent int    `env:"DISCOUNT_PERCENT,default=10"`
}

// CartConfig holds cart persistence and pricing policy
type CartConfig struct {
	DeliveryFee string        `env:"DELIVERY_FEE,default=0"`
	KeyPrefix   string        `env:"KEY_PREFIX,default=namidia:cart:"`
	TTL         time.Duration `env:"TTL,default=720h"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	Debug       bool   `env:"DEBUG,default=false"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith loads configuration from the given lookuper
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Coupon.MaxAttempts < 1 {
		return fmt.Errorf("COUPON_MAX_ATTEMPTS must be at least 1, got %d", c.Coupon.MaxAttempts)
	}
	if c.Coupon.SuffixLength < 4 {
		return fmt.Errorf("COUPON_SUFFIX_LENGTH must be at least 4, got %d", c.Coupon.SuffixLength)
	}
	if c.Coupon.DiscountPercent < 0 || c.Coupon.DiscountPercent > 100 {
		return fmt.Errorf("COUPON_DISCOUNT_PERCENT out of range: %d", c.Coupon.DiscountPercent)
	}
	if _, err := c.Cart.DeliveryFeeAmount(); err != nil {
		return err
	}
	return nil
}

// GetDatabaseURL returns the PostgreSQL connection URL
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetRedisAddr returns the Redis address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// DeliveryFeeAmount parses the configured delivery fee
func (c *CartConfig) DeliveryFeeAmount() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(c.DeliveryFee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid CART_DELIVERY_FEE %q: %w", c.DeliveryFee, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("CART_DELIVERY_FEE cannot be negative: %s", c.DeliveryFee)
	}
	return fee, nil
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
