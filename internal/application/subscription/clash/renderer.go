// Package clash renders Clash YAML subscription documents from node and
// routing configuration.
package clash

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"veil/internal/domain/node"
	"veil/internal/domain/subscription"
	"veil/internal/shared/logger"
)

// EmptyDocument is served to users without a usable entitlement. Clients
// parse it as a valid but empty configuration.
const EmptyDocument = "proxies: []\nproxy-groups: []\nrules: []\n"

const (
	defaultURLTestURL      = "http://www.gstatic.com/generate_204"
	defaultURLTestInterval = 300
	terminalRule           = "MATCH,Proxy"
)

type document struct {
	Proxies     []any        `yaml:"proxies"`
	ProxyGroups []proxyGroup `yaml:"proxy-groups"`
	Rules       []string     `yaml:"rules"`
}

type proxyGroup struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Proxies  []string `yaml:"proxies"`
	URL      string   `yaml:"url,omitempty"`
	Interval int      `yaml:"interval,omitempty"`
}

type ssProxy struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Cipher   string `yaml:"cipher"`
	Password string `yaml:"password"`
	UDP      bool   `yaml:"udp"`
}

type vmessProxy struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Server  string `yaml:"server"`
	Port    int    `yaml:"port"`
	UUID    string `yaml:"uuid"`
	AlterID int    `yaml:"alterId"`
	Cipher  string `yaml:"cipher"`
	UDP     bool   `yaml:"udp"`
	Network string `yaml:"network"`
}

type trojanProxy struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Server         string `yaml:"server"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	UDP            bool   `yaml:"udp"`
	SNI            string `yaml:"sni"`
	SkipCertVerify bool   `yaml:"skip-cert-verify"`
}

type hysteria2Proxy struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Server         string `yaml:"server"`
	Port           int    `yaml:"port"`
	Password       string `yaml:"password"`
	Obfs           string `yaml:"obfs,omitempty"`
	ObfsPassword   string `yaml:"obfs-password,omitempty"`
	SNI            string `yaml:"sni"`
	SkipCertVerify bool   `yaml:"skip-cert-verify"`
}

type realityOpts struct {
	PublicKey string `yaml:"public-key"`
	ShortID   string `yaml:"short-id,omitempty"`
}

type vlessProxy struct {
	Name              string       `yaml:"name"`
	Type              string       `yaml:"type"`
	Server            string       `yaml:"server"`
	Port              int          `yaml:"port"`
	UUID              string       `yaml:"uuid"`
	Flow              string       `yaml:"flow,omitempty"`
	Network           string       `yaml:"network"`
	RealityOpts       *realityOpts `yaml:"reality-opts,omitempty"`
	ClientFingerprint string       `yaml:"client-fingerprint"`
}

// Renderer builds subscription documents.
type Renderer struct {
	logger logger.Interface
}

func NewRenderer(log logger.Interface) *Renderer {
	return &Renderer{logger: log.Named("clash_renderer")}
}

// Render produces a Clash YAML document for the given nodes. Nodes with an
// unsupported protocol are skipped with a warning. With no usable nodes the
// empty document is returned.
func (r *Renderer) Render(nodes []*node.Node, groups []*subscription.ClashProxyGroup, rules []*subscription.ClashRule) (string, error) {
	var proxies []any
	var names []string

	for _, n := range nodes {
		proxy, ok := r.buildProxy(n)
		if !ok {
			continue
		}
		proxies = append(proxies, proxy)
		names = append(names, n.Name)
	}

	if len(proxies) == 0 {
		return EmptyDocument, nil
	}

	doc := document{
		Proxies:     proxies,
		ProxyGroups: buildGroups(groups, names),
		Rules:       buildRules(rules),
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal clash document: %w", err)
	}
	return string(out), nil
}

func (r *Renderer) buildProxy(n *node.Node) (any, bool) {
	switch n.Protocol {
	case node.ProtocolShadowsocks:
		return ssProxy{
			Name:     n.Name,
			Type:     "ss",
			Server:   n.Host,
			Port:     n.Port,
			Cipher:   configString(n.Config, "cipher", "aes-256-gcm"),
			Password: configString(n.Config, "password", n.Secret),
			UDP:      configBool(n.Config, "udp", true),
		}, true

	case node.ProtocolVMess:
		return vmessProxy{
			Name:    n.Name,
			Type:    "vmess",
			Server:  n.Host,
			Port:    n.Port,
			UUID:    configString(n.Config, "uuid", n.Secret),
			AlterID: configInt(n.Config, "alterId", 0),
			Cipher:  configString(n.Config, "cipher", "auto"),
			UDP:     configBool(n.Config, "udp", true),
			Network: configString(n.Config, "network", "tcp"),
		}, true

	case node.ProtocolTrojan:
		return trojanProxy{
			Name:           n.Name,
			Type:           "trojan",
			Server:         n.Host,
			Port:           n.Port,
			Password:       configString(n.Config, "password", n.Secret),
			UDP:            configBool(n.Config, "udp", true),
			SNI:            configString(n.Config, "sni", n.Host),
			SkipCertVerify: configBool(n.Config, "skip-cert-verify", false),
		}, true

	case node.ProtocolHysteria2:
		return hysteria2Proxy{
			Name:           n.Name,
			Type:           "hysteria2",
			Server:         n.Host,
			Port:           n.Port,
			Password:       configString(n.Config, "password", n.Secret),
			Obfs:           configString(n.Config, "obfs", ""),
			ObfsPassword:   configString(n.Config, "obfs-password", ""),
			SNI:            configString(n.Config, "sni", n.Host),
			SkipCertVerify: configBool(n.Config, "skip-cert-verify", false),
		}, true

	case node.ProtocolVLESS:
		proxy := vlessProxy{
			Name:              n.Name,
			Type:              "vless",
			Server:            n.Host,
			Port:              n.Port,
			UUID:              configString(n.Config, "uuid", n.Secret),
			Flow:              configString(n.Config, "flow", ""),
			Network:           configString(n.Config, "network", "tcp"),
			ClientFingerprint: configString(n.Config, "client-fingerprint", "chrome"),
		}
		if pk := configString(n.Config, "public-key", ""); pk != "" {
			proxy.RealityOpts = &realityOpts{
				PublicKey: pk,
				ShortID:   configString(n.Config, "short-id", ""),
			}
		}
		return proxy, true

	default:
		r.logger.Warnw("skipping node with unsupported protocol",
			"node", n.Name,
			"protocol", string(n.Protocol),
		)
		return nil, false
	}
}

func buildGroups(groups []*subscription.ClashProxyGroup, names []string) []proxyGroup {
	if len(groups) == 0 {
		selectMembers := append([]string{"Auto"}, names...)
		return []proxyGroup{
			{Name: "Proxy", Type: "select", Proxies: selectMembers},
			{Name: "Auto", Type: "url-test", Proxies: names, URL: defaultURLTestURL, Interval: defaultURLTestInterval},
		}
	}

	result := make([]proxyGroup, 0, len(groups))
	for _, g := range groups {
		pg := proxyGroup{
			Name:    g.Name,
			Type:    string(g.Type),
			Proxies: names,
		}
		if g.Type == subscription.ProxyGroupURLTest {
			pg.URL = g.URL
			if pg.URL == "" {
				pg.URL = defaultURLTestURL
			}
			pg.Interval = g.Interval
			if pg.Interval == 0 {
				pg.Interval = defaultURLTestInterval
			}
		}
		result = append(result, pg)
	}
	return result
}

func buildRules(rules []*subscription.ClashRule) []string {
	result := make([]string, 0, len(rules)+1)
	for _, rule := range rules {
		var line string
		if rule.Value != "" {
			line = fmt.Sprintf("%s,%s,%s", rule.RuleType, rule.Value, rule.Target)
		} else {
			line = fmt.Sprintf("%s,%s", rule.RuleType, rule.Target)
		}
		if rule.NoResolve {
			line += ",no-resolve"
		}
		result = append(result, line)
	}

	if len(result) == 0 || result[len(result)-1] != terminalRule {
		result = append(result, terminalRule)
	}
	return result
}

func configString(cfg map[string]any, key, fallback string) string {
	if cfg != nil {
		if v, ok := cfg[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

func configBool(cfg map[string]any, key string, fallback bool) bool {
	if cfg != nil {
		if v, ok := cfg[key].(bool); ok {
			return v
		}
	}
	return fallback
}

func configInt(cfg map[string]any, key string, fallback int) int {
	if cfg != nil {
		switch v := cfg[key].(type) {
		case int:
			return v
		case float64:
			return int(v)
		}
	}
	return fallback
}
