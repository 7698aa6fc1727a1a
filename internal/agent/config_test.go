package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com/")
	t.Setenv("NODE_ID", "7")
	t.Setenv("NODE_SECRET", "secret123")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL, "trailing slash is trimmed")
	assert.Equal(t, uint(7), cfg.NodeID)
	assert.Equal(t, "secret123", cfg.NodeSecret)
	assert.Equal(t, 10085, cfg.XrayAPIPort)
	assert.Equal(t, "/etc/xray/config.json", cfg.XrayConfigPath)
	assert.Equal(t, 30*time.Second, cfg.TrafficReportInterval)
	assert.Equal(t, 60*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 60*time.Second, cfg.UserSyncInterval)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("API_URL", "https://api.example.com")
	t.Setenv("NODE_ID", "7")
	t.Setenv("NODE_SECRET", "secret123")
	t.Setenv("XRAY_API_PORT", "20000")
	t.Setenv("TRAFFIC_REPORT_INTERVAL", "10")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 20000, cfg.XrayAPIPort)
	assert.Equal(t, 10*time.Second, cfg.TrafficReportInterval)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing api url",
			env:  map[string]string{"NODE_ID": "7", "NODE_SECRET": "s"},
		},
		{
			name: "missing node id",
			env:  map[string]string{"API_URL": "https://api.example.com", "NODE_SECRET": "s"},
		},
		{
			name: "missing node secret",
			env:  map[string]string{"API_URL": "https://api.example.com", "NODE_ID": "7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("API_URL", "")
			t.Setenv("NODE_ID", "")
			t.Setenv("NODE_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
