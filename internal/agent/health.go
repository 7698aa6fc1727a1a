package agent

import (
	"context"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"veil/internal/shared/logger"
)

// HealthMonitor sends periodic heartbeats. When Xray is down it reports
// the node offline and attempts a restart.
type HealthMonitor struct {
	interval time.Duration
	apiPort  int
	api      *APIClient
	xray     *XrayManager
	users    *userIndex
	client   *http.Client
	logger   logger.Interface
}

func NewHealthMonitor(cfg *Config, api *APIClient, xray *XrayManager, users *userIndex, log logger.Interface) *HealthMonitor {
	return &HealthMonitor{
		interval: cfg.HeartbeatInterval,
		apiPort:  cfg.XrayAPIPort,
		api:      api,
		xray:     xray,
		users:    users,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   log.Named("health"),
	}
}

// Run sends heartbeats on the configured interval until ctx is cancelled.
// The first heartbeat is sent immediately so the node comes online
// without waiting a full interval.
func (m *HealthMonitor) Run(ctx context.Context) {
	m.beat(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.beat(ctx)
		}
	}
}

func (m *HealthMonitor) beat(ctx context.Context) {
	status := "online"
	if !m.xrayRunning(ctx) {
		status = "offline"
		m.logger.Warnw("xray is not responding, attempting restart")
		if err := m.xray.Restart(ctx); err != nil {
			m.logger.Errorw("xray restart failed", "error", err)
		}
	}

	report := HeartbeatReport{
		Status:            status,
		ActiveConnections: len(m.users.Eligible()),
		CPUUsage:          m.cpuUsage(ctx),
		MemoryUsage:       m.memoryUsage(ctx),
	}

	if err := m.api.SendHeartbeat(ctx, report); err != nil {
		m.logger.Warnw("heartbeat failed", "error", err)
		return
	}
	m.logger.Debugw("heartbeat sent",
		"status", report.Status,
		"cpu", report.CPUUsage,
		"memory", report.MemoryUsage,
	)
}

func (m *HealthMonitor) xrayRunning(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := queryXrayStats(ctx, m.client, m.apiPort, "", false)
	return err == nil
}

func (m *HealthMonitor) cpuUsage(ctx context.Context) float64 {
	return m.shellFloat(ctx, `top -bn1 | grep "Cpu(s)" | awk '{print $2}'`)
}

func (m *HealthMonitor) memoryUsage(ctx context.Context) float64 {
	return m.shellFloat(ctx, `free | grep Mem | awk '{print $3/$2 * 100.0}'`)
}

func (m *HealthMonitor) shellFloat(ctx context.Context, command string) float64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "sh", "-c", command).Output()
	if err != nil {
		m.logger.Debugw("system metric collection failed", "error", err)
		return 0
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0
	}
	return value
}
