// Package agent implements the node-side daemon. It provisions Xray from
// the control plane's node definition, reports per-user traffic to the
// shared stream, and sends periodic heartbeats.
package agent

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"veil/internal/shared/errors"
)

// Config holds agent settings, all sourced from the environment.
type Config struct {
	APIURL     string
	NodeID     uint
	NodeSecret string
	RedisURL   string

	XrayAPIPort    int
	XrayConfigPath string

	TrafficReportInterval time.Duration
	HeartbeatInterval     time.Duration
	UserSyncInterval      time.Duration

	LogLevel  string
	LogFormat string
}

// LoadConfig reads the agent configuration from environment variables.
// API_URL, NODE_ID, and NODE_SECRET are required.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("REDIS_URL", "redis://localhost:6379")
	v.SetDefault("XRAY_API_PORT", 10085)
	v.SetDefault("XRAY_CONFIG_PATH", "/etc/xray/config.json")
	v.SetDefault("TRAFFIC_REPORT_INTERVAL", 30)
	v.SetDefault("HEARTBEAT_INTERVAL", 60)
	v.SetDefault("USER_SYNC_INTERVAL", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	cfg := &Config{
		APIURL:                strings.TrimRight(v.GetString("API_URL"), "/"),
		NodeID:                v.GetUint("NODE_ID"),
		NodeSecret:            v.GetString("NODE_SECRET"),
		RedisURL:              v.GetString("REDIS_URL"),
		XrayAPIPort:           v.GetInt("XRAY_API_PORT"),
		XrayConfigPath:        v.GetString("XRAY_CONFIG_PATH"),
		TrafficReportInterval: time.Duration(v.GetInt("TRAFFIC_REPORT_INTERVAL")) * time.Second,
		HeartbeatInterval:     time.Duration(v.GetInt("HEARTBEAT_INTERVAL")) * time.Second,
		UserSyncInterval:      time.Duration(v.GetInt("USER_SYNC_INTERVAL")) * time.Second,
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
	}

	if cfg.APIURL == "" {
		return nil, errors.NewValidationError("API_URL is required")
	}
	if cfg.NodeID == 0 {
		return nil, errors.NewValidationError("NODE_ID is required")
	}
	if cfg.NodeSecret == "" {
		return nil, errors.NewValidationError("NODE_SECRET is required")
	}

	return cfg, nil
}
