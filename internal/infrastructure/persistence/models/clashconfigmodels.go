package models

import (
	"time"

	"veil/internal/domain/subscription"
	"veil/internal/shared/constants"
)

// ClashProxyGroupModel represents the database persistence model for proxy groups
type ClashProxyGroupModel struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"uniqueIndex;not null;size:100"`
	Type      string `gorm:"not null;default:select;size:20"`
	URL       string `gorm:"not null;default:'';size:255"`
	Interval  int    `gorm:"not null;default:0"`
	SortOrder int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ClashProxyGroupModel) TableName() string {
	return constants.TableClashProxyGroups
}

// ToEntity converts the model to a domain entity
func (m *ClashProxyGroupModel) ToEntity() *subscription.ClashProxyGroup {
	return &subscription.ClashProxyGroup{
		ID:        m.ID,
		Name:      m.Name,
		Type:      subscription.ProxyGroupType(m.Type),
		URL:       m.URL,
		Interval:  m.Interval,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ClashRuleModel represents the database persistence model for routing rules
type ClashRuleModel struct {
	ID        uint   `gorm:"primarykey"`
	RuleType  string `gorm:"not null;size:32"`
	Value     string `gorm:"not null;default:'';size:255"`
	Target    string `gorm:"not null;size:100"`
	NoResolve bool   `gorm:"not null;default:false"`
	SortOrder int    `gorm:"not null;default:0"`
	IsActive  bool   `gorm:"not null;default:true;index:idx_clash_rule_active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ClashRuleModel) TableName() string {
	return constants.TableClashRules
}

// ToEntity converts the model to a domain entity
func (m *ClashRuleModel) ToEntity() *subscription.ClashRule {
	return &subscription.ClashRule{
		ID:        m.ID,
		RuleType:  m.RuleType,
		Value:     m.Value,
		Target:    m.Target,
		NoResolve: m.NoResolve,
		SortOrder: m.SortOrder,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
