package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"veil/internal/infrastructure/stream"
	"veil/internal/shared/logger"
)

// TrafficPublisher appends usage samples to the shared traffic stream.
type TrafficPublisher interface {
	Publish(ctx context.Context, t stream.TrafficTuple) error
}

type xrayStat struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type xrayStatsResponse struct {
	Stat []xrayStat `json:"stat"`
}

// TrafficReporter polls the Xray stats API and publishes per-user usage
// deltas. Counters are reset on read so each sample is a delta.
type TrafficReporter struct {
	nodeID   uint
	apiPort  int
	interval time.Duration
	producer TrafficPublisher
	users    *userIndex
	client   *http.Client
	logger   logger.Interface
}

func NewTrafficReporter(cfg *Config, producer TrafficPublisher, users *userIndex, log logger.Interface) *TrafficReporter {
	return &TrafficReporter{
		nodeID:   cfg.NodeID,
		apiPort:  cfg.XrayAPIPort,
		interval: cfg.TrafficReportInterval,
		producer: producer,
		users:    users,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   log.Named("traffic_reporter"),
	}
}

// Run reports traffic on the configured interval until ctx is cancelled.
func (r *TrafficReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.report(ctx); err != nil {
				r.logger.Warnw("traffic report failed", "error", err)
			}
		}
	}
}

func (r *TrafficReporter) report(ctx context.Context) error {
	stats, err := queryXrayStats(ctx, r.client, r.apiPort, "user>>>", true)
	if err != nil {
		return err
	}

	type usage struct {
		upload   int64
		download int64
	}
	perUser := make(map[string]*usage)

	for _, stat := range stats.Stat {
		if stat.Value == 0 {
			continue
		}
		email, direction, ok := parseUserStatName(stat.Name)
		if !ok {
			continue
		}
		u := perUser[email]
		if u == nil {
			u = &usage{}
			perUser[email] = u
		}
		switch direction {
		case "uplink":
			u.upload += stat.Value
		case "downlink":
			u.download += stat.Value
		}
	}

	if len(perUser) == 0 {
		return nil
	}

	now := time.Now().Unix()
	published := 0
	for email, u := range perUser {
		userID, ok := r.users.IDByEmail(email)
		if !ok {
			r.logger.Warnw("traffic sample for unknown user", "email", email)
			continue
		}
		err := r.producer.Publish(ctx, stream.TrafficTuple{
			NodeID:    r.nodeID,
			UserID:    userID,
			Upload:    u.upload,
			Download:  u.download,
			Timestamp: now,
		})
		if err != nil {
			r.logger.Errorw("failed to publish traffic tuple",
				"user_id", userID,
				"error", err,
			)
			continue
		}
		published++
	}

	r.logger.Debugw("traffic reported", "users", published)
	return nil
}

// parseUserStatName extracts the email and direction from a stat name of
// the form user>>>EMAIL>>>traffic>>>uplink.
func parseUserStatName(name string) (email, direction string, ok bool) {
	parts := strings.Split(name, ">>>")
	if len(parts) != 4 || parts[0] != "user" || parts[2] != "traffic" {
		return "", "", false
	}
	if parts[3] != "uplink" && parts[3] != "downlink" {
		return "", "", false
	}
	return parts[1], parts[3], true
}

// queryXrayStats calls the local Xray stats endpoint. An empty pattern
// returns all counters, which doubles as a liveness probe.
func queryXrayStats(ctx context.Context, client *http.Client, apiPort int, pattern string, reset bool) (*xrayStatsResponse, error) {
	body, err := json.Marshal(map[string]any{
		"pattern": pattern,
		"reset":   reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats query: %w", err)
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/stats/query", apiPort)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats query rejected with status %d", resp.StatusCode)
	}

	var stats xrayStatsResponse
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("invalid stats response: %w", err)
	}
	return &stats, nil
}
