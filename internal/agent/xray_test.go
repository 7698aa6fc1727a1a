package agent

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/shared/logger"
)

func testXrayManager() *XrayManager {
	cfg := &Config{XrayAPIPort: 10085, XrayConfigPath: "/tmp/xray-test.json"}
	log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewXrayManager(cfg, log)
}

func testUsers() []NodeUser {
	return []NodeUser{
		{UserID: 1, Email: "a@example.com", UUID: "uuid-a", TrafficQuota: 100},
		{UserID: 2, Email: "b@example.com", UUID: "uuid-b", TrafficQuota: 100},
	}
}

func inboundsOf(t *testing.T, doc map[string]any) []any {
	t.Helper()
	inbounds, ok := doc["inbounds"].([]any)
	require.True(t, ok)
	require.Len(t, inbounds, 2, "api inbound plus protocol inbound")
	return inbounds
}

func TestXrayManager_GenerateSkeleton(t *testing.T) {
	doc, err := testXrayManager().Generate(&NodeConfig{Protocol: "vmess", Port: 443}, testUsers())
	require.NoError(t, err)

	api := doc["api"].(map[string]any)
	assert.Equal(t, "api", api["tag"])
	assert.Equal(t, []string{"StatsService"}, api["services"])

	levels := doc["policy"].(map[string]any)["levels"].(map[string]any)
	level0 := levels["0"].(map[string]any)
	assert.Equal(t, true, level0["statsUserUplink"])
	assert.Equal(t, true, level0["statsUserDownlink"])

	apiInbound := inboundsOf(t, doc)[0].(map[string]any)
	assert.Equal(t, "dokodemo-door", apiInbound["protocol"])
	assert.Equal(t, "127.0.0.1", apiInbound["listen"])
	assert.Equal(t, 10085, apiInbound["port"])

	routing := doc["routing"].(map[string]any)
	rules := routing["rules"].([]any)
	require.Len(t, rules, 1)
	rule := rules[0].(map[string]any)
	assert.Equal(t, []string{"api"}, rule["inboundTag"])
	assert.Equal(t, "api", rule["outboundTag"])
}

func TestXrayManager_VlessInbound(t *testing.T) {
	cfg := &NodeConfig{
		Protocol: "vless",
		Port:     443,
		Config: map[string]any{
			"reality": map[string]any{
				"dest":         "www.example.com:443",
				"server_names": []any{"www.example.com"},
				"private_key":  "privkey",
				"short_ids":    []any{"abcd"},
			},
		},
	}

	doc, err := testXrayManager().Generate(cfg, testUsers())
	require.NoError(t, err)

	inbound := inboundsOf(t, doc)[1].(map[string]any)
	assert.Equal(t, "vless", inbound["protocol"])
	assert.Equal(t, 443, inbound["port"])

	settings := inbound["settings"].(map[string]any)
	assert.Equal(t, "none", settings["decryption"])
	clients := settings["clients"].([]any)
	require.Len(t, clients, 2)
	first := clients[0].(map[string]any)
	assert.Equal(t, "uuid-a", first["id"])
	assert.Equal(t, "a@example.com", first["email"])
	assert.Equal(t, "xtls-rprx-vision", first["flow"])

	streamSettings := inbound["streamSettings"].(map[string]any)
	assert.Equal(t, "reality", streamSettings["security"])
	reality := streamSettings["realitySettings"].(map[string]any)
	assert.Equal(t, "privkey", reality["privateKey"])
	assert.Equal(t, "www.example.com:443", reality["dest"])
}

func TestXrayManager_VmessInbound(t *testing.T) {
	cfg := &NodeConfig{Protocol: "vmess", Port: 8443, Config: map[string]any{"alter_id": float64(4)}}

	doc, err := testXrayManager().Generate(cfg, testUsers())
	require.NoError(t, err)

	inbound := inboundsOf(t, doc)[1].(map[string]any)
	assert.Equal(t, "vmess", inbound["protocol"])

	clients := inbound["settings"].(map[string]any)["clients"].([]any)
	first := clients[0].(map[string]any)
	assert.Equal(t, "uuid-a", first["id"])
	assert.Equal(t, 4, first["alterId"])
}

func TestXrayManager_TrojanInboundPasswordFallback(t *testing.T) {
	cfg := &NodeConfig{Protocol: "trojan", Port: 443}

	doc, err := testXrayManager().Generate(cfg, testUsers())
	require.NoError(t, err)

	inbound := inboundsOf(t, doc)[1].(map[string]any)
	clients := inbound["settings"].(map[string]any)["clients"].([]any)
	first := clients[0].(map[string]any)
	assert.Equal(t, "uuid-a", first["password"])

	streamSettings := inbound["streamSettings"].(map[string]any)
	assert.Equal(t, "tls", streamSettings["security"])
}

func TestXrayManager_ShadowsocksInbound(t *testing.T) {
	cfg := &NodeConfig{
		Protocol: "shadowsocks",
		Port:     8388,
		Config:   map[string]any{"cipher": "chacha20-ietf-poly1305", "password": "sspass"},
	}

	doc, err := testXrayManager().Generate(cfg, nil)
	require.NoError(t, err)

	inbound := inboundsOf(t, doc)[1].(map[string]any)
	settings := inbound["settings"].(map[string]any)
	assert.Equal(t, "chacha20-ietf-poly1305", settings["method"])
	assert.Equal(t, "sspass", settings["password"])
	assert.Equal(t, "tcp,udp", settings["network"])
}

func TestXrayManager_UnsupportedProtocol(t *testing.T) {
	_, err := testXrayManager().Generate(&NodeConfig{Protocol: "wireguard", Port: 51820}, nil)
	assert.Error(t, err)
}
