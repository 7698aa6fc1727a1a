package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"veil/internal/shared/logger"
)

// XrayManager generates the Xray configuration for this node and
// manages the local Xray service.
type XrayManager struct {
	configPath string
	apiPort    int
	logger     logger.Interface
}

func NewXrayManager(cfg *Config, log logger.Interface) *XrayManager {
	return &XrayManager{
		configPath: cfg.XrayConfigPath,
		apiPort:    cfg.XrayAPIPort,
		logger:     log.Named("xray"),
	}
}

// Apply writes the generated configuration to disk and restarts Xray so
// it takes effect.
func (m *XrayManager) Apply(ctx context.Context, cfg *NodeConfig, users []NodeUser) error {
	doc, err := m.Generate(cfg, users)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal xray config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write xray config: %w", err)
	}

	if err := m.Restart(ctx); err != nil {
		return err
	}

	m.logger.Infow("xray config applied",
		"path", m.configPath,
		"protocol", cfg.Protocol,
		"users", len(users),
	)
	return nil
}

// Restart restarts the Xray service.
func (m *XrayManager) Restart(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "systemctl", "restart", "xray").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to restart xray: %w: %s", err, string(out))
	}
	return nil
}

// Generate builds the full Xray configuration document. The stats API
// listens on the loopback interface only; per-user traffic counters are
// enabled so the reporter can poll them.
func (m *XrayManager) Generate(cfg *NodeConfig, users []NodeUser) (map[string]any, error) {
	inbound, err := m.buildInbound(cfg, users)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"log": map[string]any{
			"loglevel": "warning",
		},
		"api": map[string]any{
			"tag":      "api",
			"services": []string{"StatsService"},
		},
		"stats": map[string]any{},
		"policy": map[string]any{
			"levels": map[string]any{
				"0": map[string]any{
					"statsUserUplink":   true,
					"statsUserDownlink": true,
				},
			},
			"system": map[string]any{
				"statsInboundUplink":   true,
				"statsInboundDownlink": true,
			},
		},
		"inbounds": []any{
			map[string]any{
				"tag":      "api",
				"listen":   "127.0.0.1",
				"port":     m.apiPort,
				"protocol": "dokodemo-door",
				"settings": map[string]any{
					"address": "127.0.0.1",
				},
			},
			inbound,
		},
		"outbounds": []any{
			map[string]any{
				"tag":      "direct",
				"protocol": "freedom",
			},
		},
		"routing": map[string]any{
			"rules": []any{
				map[string]any{
					"type":        "field",
					"inboundTag":  []string{"api"},
					"outboundTag": "api",
				},
			},
		},
	}, nil
}

func (m *XrayManager) buildInbound(cfg *NodeConfig, users []NodeUser) (map[string]any, error) {
	switch cfg.Protocol {
	case "vless":
		return m.vlessInbound(cfg, users), nil
	case "vmess":
		return m.vmessInbound(cfg, users), nil
	case "trojan":
		return m.trojanInbound(cfg, users), nil
	case "shadowsocks":
		return m.shadowsocksInbound(cfg), nil
	case "hysteria2":
		return m.hysteria2Inbound(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported protocol %q", cfg.Protocol)
	}
}

func (m *XrayManager) vlessInbound(cfg *NodeConfig, users []NodeUser) map[string]any {
	flow := settingString(cfg.Config, "flow", "xtls-rprx-vision")

	clients := make([]any, 0, len(users))
	for _, u := range users {
		clients = append(clients, map[string]any{
			"id":    u.UUID,
			"email": u.Email,
			"flow":  flow,
		})
	}

	streamSettings := map[string]any{
		"network":  "tcp",
		"security": "reality",
	}
	if reality, ok := cfg.Config["reality"].(map[string]any); ok {
		streamSettings["realitySettings"] = map[string]any{
			"show":        reality["show"],
			"dest":        reality["dest"],
			"xver":        reality["xver"],
			"serverNames": reality["server_names"],
			"privateKey":  reality["private_key"],
			"shortIds":    reality["short_ids"],
		}
	}

	return map[string]any{
		"port":     cfg.Port,
		"protocol": "vless",
		"settings": map[string]any{
			"clients":    clients,
			"decryption": "none",
		},
		"streamSettings": streamSettings,
	}
}

func (m *XrayManager) vmessInbound(cfg *NodeConfig, users []NodeUser) map[string]any {
	alterID := settingInt(cfg.Config, "alter_id", 0)

	clients := make([]any, 0, len(users))
	for _, u := range users {
		clients = append(clients, map[string]any{
			"id":      u.UUID,
			"email":   u.Email,
			"alterId": alterID,
		})
	}

	return map[string]any{
		"port":     cfg.Port,
		"protocol": "vmess",
		"settings": map[string]any{
			"clients": clients,
		},
		"streamSettings": map[string]any{
			"network": "tcp",
		},
	}
}

func (m *XrayManager) trojanInbound(cfg *NodeConfig, users []NodeUser) map[string]any {
	sharedPassword := settingString(cfg.Config, "password", "")

	clients := make([]any, 0, len(users))
	for _, u := range users {
		password := sharedPassword
		if password == "" {
			password = u.UUID
		}
		clients = append(clients, map[string]any{
			"password": password,
			"email":    u.Email,
		})
	}

	return map[string]any{
		"port":     cfg.Port,
		"protocol": "trojan",
		"settings": map[string]any{
			"clients": clients,
		},
		"streamSettings": map[string]any{
			"network":  "tcp",
			"security": "tls",
		},
	}
}

func (m *XrayManager) shadowsocksInbound(cfg *NodeConfig) map[string]any {
	return map[string]any{
		"port":     cfg.Port,
		"protocol": "shadowsocks",
		"settings": map[string]any{
			"method":   settingString(cfg.Config, "cipher", "aes-256-gcm"),
			"password": settingString(cfg.Config, "password", ""),
			"network":  "tcp,udp",
		},
	}
}

func (m *XrayManager) hysteria2Inbound(cfg *NodeConfig) map[string]any {
	return map[string]any{
		"port":     cfg.Port,
		"protocol": "hysteria2",
		"settings": map[string]any{
			"password": settingString(cfg.Config, "password", ""),
			"obfs":     settingString(cfg.Config, "obfs", ""),
		},
	}
}

func settingString(config map[string]any, key, fallback string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func settingInt(config map[string]any, key string, fallback int) int {
	switch v := config[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
