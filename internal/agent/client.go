package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"veil/internal/shared/logger"
)

// NodeConfig is the node definition served to an agent, including the
// users it should provision.
type NodeConfig struct {
	NodeID   uint           `json:"node_id"`
	Name     string         `json:"name"`
	Host     string         `json:"host"`
	Port     int            `json:"port"`
	Protocol string         `json:"protocol"`
	Config   map[string]any `json:"config"`
	MaxUsers int            `json:"max_users"`
	Users    []NodeUser     `json:"users"`
}

// NodeUser is one provisionable account from the control plane.
type NodeUser struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	UUID         string `json:"uuid"`
	TrafficQuota int64  `json:"traffic_quota"`
	TrafficUsed  int64  `json:"traffic_used"`
}

// HeartbeatReport is the node state sent on each heartbeat.
type HeartbeatReport struct {
	Status            string
	ActiveConnections int
	CPUUsage          float64
	MemoryUsage       float64
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIClient talks to the control plane's node endpoints. Requests carry
// the node ID and secret as credentials.
type APIClient struct {
	baseURL string
	nodeID  uint
	secret  string
	client  *http.Client
	logger  logger.Interface
}

func NewAPIClient(cfg *Config, log logger.Interface) *APIClient {
	return &APIClient{
		baseURL: cfg.APIURL,
		nodeID:  cfg.NodeID,
		secret:  cfg.NodeSecret,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  log.Named("api_client"),
	}
}

// FetchConfig retrieves the node definition and current user set.
func (c *APIClient) FetchConfig(ctx context.Context) (*NodeConfig, error) {
	var cfg NodeConfig
	if err := c.get(ctx, "/api/node/config", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchUsers retrieves the current set of provisionable users.
func (c *APIClient) FetchUsers(ctx context.Context) ([]NodeUser, error) {
	var payload struct {
		Users []NodeUser `json:"users"`
	}
	if err := c.get(ctx, "/api/node/users", &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// SendHeartbeat reports node health to the control plane.
func (c *APIClient) SendHeartbeat(ctx context.Context, report HeartbeatReport) error {
	body := map[string]any{
		"node_id":            c.nodeID,
		"secret":             c.secret,
		"status":             report.Status,
		"active_connections": report.ActiveConnections,
		"cpu_usage":          report.CPUUsage,
		"memory_usage":       report.MemoryUsage,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal heartbeat: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/node/heartbeat", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build heartbeat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat rejected with status %d", resp.StatusCode)
	}
	return nil
}

func (c *APIClient) get(ctx context.Context, path string, out any) error {
	query := url.Values{}
	query.Set("node_id", strconv.FormatUint(uint64(c.nodeID), 10))
	query.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK || !envelope.Success {
		message := envelope.Message
		if envelope.Error != nil {
			message = envelope.Error.Message
		}
		return fmt.Errorf("request to %s rejected with status %d: %s", path, resp.StatusCode, message)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
