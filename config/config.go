package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// ProcessingConfig tunes the request path of the transaction processor.
type ProcessingConfig struct {
	ReservationTTL          time.Duration `mapstructure:"reservation_ttl"`
	BaseBackoff             time.Duration `mapstructure:"base_backoff"`
	MaxRetries              int           `mapstructure:"max_retries"`
	IdempotencyWaitAttempts int           `mapstructure:"idempotency_wait_attempts"`
	IdempotencyWaitInterval time.Duration `mapstructure:"idempotency_wait_interval"`
}

// ReconcileConfig tunes the background warm-up and retry sweep.
type ReconcileConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	BatchSize   int           `mapstructure:"batch_size"`
	LockEnabled bool          `mapstructure:"lock_enabled"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
	FullResync  bool          `mapstructure:"full_resync"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TXS_.
// Nested keys use underscore: TXS_DATABASE_HOST, TXS_PROCESSING_MAX_RETRIES, etc.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags behaves like Load and additionally binds command line flags,
// which take precedence over env and file values when set.
func LoadWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TXS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("migrate"); f != nil {
			if err := v.BindPFlag("database.migrate", f); err != nil {
				return nil, fmt.Errorf("binding migrate flag: %w", err)
			}
		}
		if f := flags.Lookup("port"); f != nil {
			if err := v.BindPFlag("server.port", f); err != nil {
				return nil, fmt.Errorf("binding port flag: %w", err)
			}
		}
	}

	// Config file is optional, env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "transactions")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("processing.reservation_ttl", "30s")
	v.SetDefault("processing.base_backoff", "5s")
	v.SetDefault("processing.max_retries", 3)
	v.SetDefault("processing.idempotency_wait_attempts", 5)
	v.SetDefault("processing.idempotency_wait_interval", "50ms")
	v.SetDefault("reconcile.interval", "30s")
	v.SetDefault("reconcile.batch_size", 100)
	v.SetDefault("reconcile.lock_enabled", true)
	v.SetDefault("reconcile.lock_ttl", "25s")
	v.SetDefault("reconcile.full_resync", false)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", "1m")
}

// Validate rejects settings the processor cannot run with.
func (c *Config) Validate() error {
	if c.Processing.MaxRetries < 1 {
		return fmt.Errorf("processing.max_retries must be >= 1, got %d", c.Processing.MaxRetries)
	}
	if c.Processing.BaseBackoff <= 0 {
		return fmt.Errorf("processing.base_backoff must be positive")
	}
	if c.Processing.ReservationTTL < time.Second {
		return fmt.Errorf("processing.reservation_ttl must be at least 1s")
	}
	if c.Reconcile.Interval <= 0 {
		return fmt.Errorf("reconcile.interval must be positive")
	}
	if c.Reconcile.LockEnabled && c.Reconcile.LockTTL <= 0 {
		return fmt.Errorf("reconcile.lock_ttl must be positive when locking is enabled")
	}
	return nil
}
