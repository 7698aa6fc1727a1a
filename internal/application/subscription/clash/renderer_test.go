package clash

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
	"veil/internal/shared/logger"
)

func testRenderer() *Renderer {
	return NewRenderer(logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func parseDocument(t *testing.T, content string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc))
	return doc
}

func proxies(t *testing.T, doc map[string]any) []any {
	t.Helper()
	list, ok := doc["proxies"].([]any)
	require.True(t, ok, "document has no proxies list")
	return list
}

func ssNode() *node.Node {
	return &node.Node{
		Name:     "hk-1",
		Host:     "hk1.example.com",
		Port:     8388,
		Protocol: node.ProtocolShadowsocks,
		Secret:   "ss-password",
	}
}

func TestRenderer_NoUsableNodes(t *testing.T) {
	content, err := testRenderer().Render(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyDocument, content)
}

func TestRenderer_UnsupportedProtocolSkipped(t *testing.T) {
	bad := &node.Node{Name: "weird", Host: "x", Port: 1, Protocol: node.Protocol("wireguard")}

	content, err := testRenderer().Render([]*node.Node{bad}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyDocument, content)

	content, err = testRenderer().Render([]*node.Node{bad, ssNode()}, nil, nil)
	require.NoError(t, err)
	doc := parseDocument(t, content)
	assert.Len(t, proxies(t, doc), 1)
}

func TestRenderer_ShadowsocksProxy(t *testing.T) {
	content, err := testRenderer().Render([]*node.Node{ssNode()}, nil, nil)
	require.NoError(t, err)

	doc := parseDocument(t, content)
	proxy := proxies(t, doc)[0].(map[string]any)
	assert.Equal(t, "hk-1", proxy["name"])
	assert.Equal(t, "ss", proxy["type"])
	assert.Equal(t, "hk1.example.com", proxy["server"])
	assert.Equal(t, 8388, proxy["port"])
	assert.Equal(t, "aes-256-gcm", proxy["cipher"])
	assert.Equal(t, "ss-password", proxy["password"])
	assert.Equal(t, true, proxy["udp"])
}

func TestRenderer_VMessProxy(t *testing.T) {
	n := &node.Node{
		Name:     "jp-1",
		Host:     "jp1.example.com",
		Port:     443,
		Protocol: node.ProtocolVMess,
		Secret:   "11111111-2222-3333-4444-555555555555",
	}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	assert.Equal(t, "vmess", proxy["type"])
	assert.Equal(t, n.Secret, proxy["uuid"])
	assert.Equal(t, 0, proxy["alterId"])
	assert.Equal(t, "auto", proxy["cipher"])
	assert.Equal(t, "tcp", proxy["network"])
}

func TestRenderer_TrojanProxy(t *testing.T) {
	n := &node.Node{
		Name:     "us-1",
		Host:     "us1.example.com",
		Port:     443,
		Protocol: node.ProtocolTrojan,
		Secret:   "trojan-pass",
		Config:   map[string]any{"sni": "cdn.example.com"},
	}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	assert.Equal(t, "trojan", proxy["type"])
	assert.Equal(t, "trojan-pass", proxy["password"])
	assert.Equal(t, "cdn.example.com", proxy["sni"])
	assert.Equal(t, false, proxy["skip-cert-verify"])
}

func TestRenderer_TrojanSNIDefaultsToHost(t *testing.T) {
	n := &node.Node{Name: "us-2", Host: "us2.example.com", Port: 443, Protocol: node.ProtocolTrojan, Secret: "p"}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	assert.Equal(t, "us2.example.com", proxy["sni"])
}

func TestRenderer_Hysteria2Proxy(t *testing.T) {
	n := &node.Node{
		Name:     "sg-1",
		Host:     "sg1.example.com",
		Port:     36712,
		Protocol: node.ProtocolHysteria2,
		Secret:   "h2-pass",
		Config:   map[string]any{"obfs": "salamander", "obfs-password": "obfs-secret"},
	}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	assert.Equal(t, "hysteria2", proxy["type"])
	assert.Equal(t, "h2-pass", proxy["password"])
	assert.Equal(t, "salamander", proxy["obfs"])
	assert.Equal(t, "obfs-secret", proxy["obfs-password"])
}

func TestRenderer_VLESSRealityOpts(t *testing.T) {
	n := &node.Node{
		Name:     "de-1",
		Host:     "de1.example.com",
		Port:     443,
		Protocol: node.ProtocolVLESS,
		Secret:   "66666666-7777-8888-9999-000000000000",
		Config: map[string]any{
			"flow":       "xtls-rprx-vision",
			"public-key": "pubkey123",
			"short-id":   "abcd",
		},
	}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	assert.Equal(t, "vless", proxy["type"])
	assert.Equal(t, "xtls-rprx-vision", proxy["flow"])
	assert.Equal(t, "chrome", proxy["client-fingerprint"])

	reality, ok := proxy["reality-opts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pubkey123", reality["public-key"])
	assert.Equal(t, "abcd", reality["short-id"])
}

func TestRenderer_VLESSWithoutRealityOmitsOpts(t *testing.T) {
	n := &node.Node{Name: "de-2", Host: "de2.example.com", Port: 443, Protocol: node.ProtocolVLESS, Secret: "uuid"}

	content, err := testRenderer().Render([]*node.Node{n}, nil, nil)
	require.NoError(t, err)

	proxy := proxies(t, parseDocument(t, content))[0].(map[string]any)
	_, present := proxy["reality-opts"]
	assert.False(t, present)
}

func TestRenderer_DefaultGroups(t *testing.T) {
	content, err := testRenderer().Render([]*node.Node{ssNode()}, nil, nil)
	require.NoError(t, err)

	doc := parseDocument(t, content)
	groups, ok := doc["proxy-groups"].([]any)
	require.True(t, ok)
	require.Len(t, groups, 2)

	selectGroup := groups[0].(map[string]any)
	assert.Equal(t, "Proxy", selectGroup["name"])
	assert.Equal(t, "select", selectGroup["type"])
	assert.Equal(t, []any{"Auto", "hk-1"}, selectGroup["proxies"])

	autoGroup := groups[1].(map[string]any)
	assert.Equal(t, "Auto", autoGroup["name"])
	assert.Equal(t, "url-test", autoGroup["type"])
	assert.Equal(t, defaultURLTestURL, autoGroup["url"])
	assert.Equal(t, defaultURLTestInterval, autoGroup["interval"])
}

func TestRenderer_ConfiguredGroups(t *testing.T) {
	groups := []*subscription.ClashProxyGroup{
		{Name: "Manual", Type: subscription.ProxyGroupSelect},
		{Name: "Fastest", Type: subscription.ProxyGroupURLTest, URL: "http://probe.example.com", Interval: 60},
	}

	content, err := testRenderer().Render([]*node.Node{ssNode()}, groups, nil)
	require.NoError(t, err)

	doc := parseDocument(t, content)
	rendered := doc["proxy-groups"].([]any)
	require.Len(t, rendered, 2)

	manual := rendered[0].(map[string]any)
	assert.Equal(t, "Manual", manual["name"])
	_, hasURL := manual["url"]
	assert.False(t, hasURL)

	fastest := rendered[1].(map[string]any)
	assert.Equal(t, "http://probe.example.com", fastest["url"])
	assert.Equal(t, 60, fastest["interval"])
}

func TestRenderer_Rules(t *testing.T) {
	rules := []*subscription.ClashRule{
		{RuleType: "DOMAIN-SUFFIX", Value: "example.com", Target: "Proxy"},
		{RuleType: "GEOIP", Value: "CN", Target: "DIRECT", NoResolve: true},
		{RuleType: "IP-CIDR", Value: "10.0.0.0/8", Target: "DIRECT", NoResolve: true},
	}

	content, err := testRenderer().Render([]*node.Node{ssNode()}, nil, rules)
	require.NoError(t, err)

	doc := parseDocument(t, content)
	rendered := doc["rules"].([]any)
	assert.Equal(t, []any{
		"DOMAIN-SUFFIX,example.com,Proxy",
		"GEOIP,CN,DIRECT,no-resolve",
		"IP-CIDR,10.0.0.0/8,DIRECT,no-resolve",
		"MATCH,Proxy",
	}, rendered)
}

func TestRenderer_TerminalRuleNotDuplicated(t *testing.T) {
	rules := []*subscription.ClashRule{
		{RuleType: "MATCH", Target: "Proxy"},
	}

	content, err := testRenderer().Render([]*node.Node{ssNode()}, nil, rules)
	require.NoError(t, err)

	doc := parseDocument(t, content)
	rendered := doc["rules"].([]any)
	assert.Equal(t, []any{"MATCH,Proxy"}, rendered)
}
