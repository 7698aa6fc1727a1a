// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (c ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	JWTExpiration int    `mapstructure:"jwt_expiration"` // seconds
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type AppConfig struct {
	FrontendURL string `mapstructure:"frontend_url"`
	APIBaseURL  string `mapstructure:"api_base_url"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

// CORSOriginList splits the comma-separated origins setting.
func (c AppConfig) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	App      AppConfig      `mapstructure:"app"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from an optional yaml file and environment
// variables. Environment keys follow the flattened form, e.g. DATABASE_URL,
// REDIS_URL, AUTH_JWT_SECRET.
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional, env-only deployments are supported.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Legacy flat env names take precedence when set.
	bindLegacyEnv("database.url", "DATABASE_URL")
	bindLegacyEnv("redis.url", "REDIS_URL")
	bindLegacyEnv("auth.jwt_secret", "JWT_SECRET")
	bindLegacyEnv("auth.jwt_expiration", "JWT_EXPIRATION")
	bindLegacyEnv("server.host", "API_HOST")
	bindLegacyEnv("server.port", "API_PORT")
	bindLegacyEnv("app.frontend_url", "FRONTEND_URL")
	bindLegacyEnv("app.api_base_url", "API_BASE_URL")
	bindLegacyEnv("app.cors_origins", "CORS_ORIGINS")

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate ensures required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required (DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	return nil
}

func bindLegacyEnv(key, envName string) {
	_ = viper.BindEnv(key, envName)
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Redis defaults
	viper.SetDefault("redis.url", "redis://127.0.0.1:6379")

	// Auth defaults
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.jwt_expiration", 86400)
	viper.SetDefault("auth.bcrypt_cost", 12)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// App defaults
	viper.SetDefault("app.frontend_url", "http://localhost:3000")
	viper.SetDefault("app.api_base_url", "http://localhost:8080")
	viper.SetDefault("app.cors_origins", "")
}
