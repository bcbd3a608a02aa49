package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // development, production, test
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Mode            string `mapstructure:"mode"`             // debug, release, test
	ReadTimeout     int    `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // seconds
	ConnectTimeout  int    `mapstructure:"connect_timeout"`    // seconds
	SlowThreshold   int    `mapstructure:"slow_threshold"`     // milliseconds
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	Issuer     string `mapstructure:"issuer"`
	AdminEmail string `mapstructure:"admin_email"`
	TokenTTL   int    `mapstructure:"token_ttl"` // hours, for locally minted tokens
}

type ExecutorConfig struct {
	Mode         string `mapstructure:"mode"` // queue, webhook
	LocalWorkers int    `mapstructure:"local_workers"`
	CallbackURL  string `mapstructure:"callback_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds, webhook mode
}

type WebhookConfig struct {
	Dedup DedupConfig `mapstructure:"dedup"`
}

type DedupConfig struct {
	Enabled bool `mapstructure:"enabled"`
	TTL     int  `mapstructure:"ttl"` // seconds
}

type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

const (
	ExecutorModeQueue   = "queue"
	ExecutorModeWebhook = "webhook"
)

// Load reads config/<env>.yaml when present, then applies APP_* environment
// overrides (APP_DATABASE_URL for database.url). DATABASE_URL and ADMIN_EMAIL
// are honoured as well.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.Set("app.env", env)

	if configPath == "" {
		v.SetConfigName(env)
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database.url", "APP_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("auth.admin_email", "APP_AUTH_ADMIN_EMAIL", "ADMIN_EMAIL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "huntboard")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_idle_time", 20)
	v.SetDefault("database.connect_timeout", 10)
	v.SetDefault("database.slow_threshold", 200)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 100)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "huntboard")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.token_ttl", 24)

	v.SetDefault("executor.mode", ExecutorModeQueue)
	v.SetDefault("executor.local_workers", 0)
	v.SetDefault("executor.callback_url", "")
	v.SetDefault("executor.timeout", 10)

	v.SetDefault("webhook.dedup.enabled", false)
	v.SetDefault("webhook.dedup.ttl", 86400)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	switch c.Executor.Mode {
	case ExecutorModeQueue, ExecutorModeWebhook:
	default:
		return fmt.Errorf("executor.mode must be %q or %q, got %q", ExecutorModeQueue, ExecutorModeWebhook, c.Executor.Mode)
	}
	if c.Executor.LocalWorkers < 0 {
		return errors.New("executor.local_workers must not be negative")
	}
	if c.Executor.LocalWorkers > 0 && c.Executor.Mode != ExecutorModeQueue {
		return errors.New("executor.local_workers requires executor.mode=queue")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Executor.Mode == ExecutorModeQueue || c.Webhook.Dedup.Enabled
}

func (c *DatabaseConfig) IdleTimeout() time.Duration {
	return time.Duration(c.ConnMaxIdleTime) * time.Second
}

func (c *DatabaseConfig) Timeout() time.Duration {
	return time.Duration(c.ConnectTimeout) * time.Second
}

func (c *DatabaseConfig) SlowQuery() time.Duration {
	return time.Duration(c.SlowThreshold) * time.Millisecond
}

func (c *DedupConfig) Window() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
