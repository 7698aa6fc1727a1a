package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"veil/internal/domain/node"
	"veil/internal/shared/constants"
)

// NodeModel represents the database persistence model for nodes.
// Protocol-specific settings live in the Config JSON column.
type NodeModel struct {
	ID             uint   `gorm:"primarykey"`
	Name           string `gorm:"uniqueIndex;not null;size:100"`
	Host           string `gorm:"not null;size:255"`
	Port           int    `gorm:"not null"`
	Protocol       string `gorm:"not null;size:20"`
	Secret         string `gorm:"not null;size:32"`
	Config         datatypes.JSON
	Status         string `gorm:"not null;default:offline;size:20;index:idx_node_status"`
	MaxUsers       int    `gorm:"not null;default:0"`
	CurrentUsers   int    `gorm:"not null;default:0"`
	TotalUpload    int64  `gorm:"not null;default:0"`
	TotalDownload  int64  `gorm:"not null;default:0"`
	SortOrder      int    `gorm:"not null;default:0"`
	IncludeInClash bool   `gorm:"not null;default:true;index:idx_node_clash"`
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName specifies the table name for GORM
func (NodeModel) TableName() string {
	return constants.TableNodes
}

// BeforeCreate hook for GORM
func (m *NodeModel) BeforeCreate(tx *gorm.DB) error {
	if m.Status == "" {
		m.Status = string(node.StatusOffline)
	}
	return nil
}

// ToEntity converts the model to a domain entity
func (m *NodeModel) ToEntity() *node.Node {
	var cfg map[string]any
	if len(m.Config) > 0 {
		// A corrupt config blob degrades to no overrides rather than failing reads.
		_ = json.Unmarshal(m.Config, &cfg)
	}

	return &node.Node{
		ID:             m.ID,
		Name:           m.Name,
		Host:           m.Host,
		Port:           m.Port,
		Protocol:       node.Protocol(m.Protocol),
		Secret:         m.Secret,
		Config:         cfg,
		Status:         node.Status(m.Status),
		MaxUsers:       m.MaxUsers,
		CurrentUsers:   m.CurrentUsers,
		TotalUpload:    m.TotalUpload,
		TotalDownload:  m.TotalDownload,
		SortOrder:      m.SortOrder,
		IncludeInClash: m.IncludeInClash,
		LastHeartbeat:  m.LastHeartbeat,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// NodeModelFromEntity converts a domain entity to a persistence model
func NodeModelFromEntity(n *node.Node) (*NodeModel, error) {
	var cfg datatypes.JSON
	if n.Config != nil {
		data, err := json.Marshal(n.Config)
		if err != nil {
			return nil, err
		}
		cfg = datatypes.JSON(data)
	}

	return &NodeModel{
		ID:             n.ID,
		Name:           n.Name,
		Host:           n.Host,
		Port:           n.Port,
		Protocol:       string(n.Protocol),
		Secret:         n.Secret,
		Config:         cfg,
		Status:         string(n.Status),
		MaxUsers:       n.MaxUsers,
		CurrentUsers:   n.CurrentUsers,
		TotalUpload:    n.TotalUpload,
		TotalDownload:  n.TotalDownload,
		SortOrder:      n.SortOrder,
		IncludeInClash: n.IncludeInClash,
		LastHeartbeat:  n.LastHeartbeat,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}, nil
}
