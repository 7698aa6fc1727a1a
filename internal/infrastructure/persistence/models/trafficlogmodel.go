package models

import (
	"time"

	"veil/internal/domain/node"
	"veil/internal/shared/constants"
)

// TrafficLogModel represents the database persistence model for applied
// traffic samples. Rows are append-only.
type TrafficLogModel struct {
	ID         uint      `gorm:"primarykey"`
	UserID     uint      `gorm:"not null;index:idx_traffic_log_user"`
	NodeID     uint      `gorm:"not null;index:idx_traffic_log_node"`
	Upload     int64     `gorm:"not null"`
	Download   int64     `gorm:"not null"`
	RecordedAt time.Time `gorm:"not null;index:idx_traffic_log_user"`
}

// TableName specifies the table name for GORM
func (TrafficLogModel) TableName() string {
	return constants.TableTrafficLogs
}

// ToEntity converts the model to a domain entity
func (m *TrafficLogModel) ToEntity() *node.TrafficLog {
	return &node.TrafficLog{
		ID:         m.ID,
		UserID:     m.UserID,
		NodeID:     m.NodeID,
		Upload:     m.Upload,
		Download:   m.Download,
		RecordedAt: m.RecordedAt,
	}
}
