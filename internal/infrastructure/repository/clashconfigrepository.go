package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"veil/internal/domain/subscription"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

// ClashConfigRepository manages admin-defined proxy groups and routing rules.
type ClashConfigRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewClashConfigRepository(database *gorm.DB, log logger.Interface) *ClashConfigRepository {
	return &ClashConfigRepository{
		db:     database,
		logger: log.Named("clash_config_repository"),
	}
}

func (r *ClashConfigRepository) CreateProxyGroup(ctx context.Context, g *subscription.ClashProxyGroup) error {
	model := &models.ClashProxyGroupModel{
		Name:      g.Name,
		Type:      string(g.Type),
		URL:       g.URL,
		Interval:  g.Interval,
		SortOrder: g.SortOrder,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("proxy group name already exists")
		}
		return apperrors.NewInternalError("failed to create proxy group")
	}

	g.ID = model.ID
	g.CreatedAt = model.CreatedAt
	g.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *ClashConfigRepository) UpdateProxyGroup(ctx context.Context, g *subscription.ClashProxyGroup) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ClashProxyGroupModel{}).
		Where("id = ?", g.ID).
		Updates(map[string]any{
			"name":       g.Name,
			"type":       string(g.Type),
			"url":        g.URL,
			"interval":   g.Interval,
			"sort_order": g.SortOrder,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewConflictError("proxy group name already exists")
		}
		return apperrors.NewInternalError("failed to update proxy group")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("proxy group not found")
	}
	return nil
}

func (r *ClashConfigRepository) DeleteProxyGroup(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ClashProxyGroupModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternalError("failed to delete proxy group")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("proxy group not found")
	}
	return nil
}

func (r *ClashConfigRepository) FindProxyGroupByID(ctx context.Context, id uint) (*subscription.ClashProxyGroup, error) {
	var model models.ClashProxyGroupModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("proxy group not found")
		}
		return nil, apperrors.NewInternalError("failed to find proxy group")
	}
	return model.ToEntity(), nil
}

func (r *ClashConfigRepository) ListProxyGroups(ctx context.Context) ([]*subscription.ClashProxyGroup, error) {
	var modelsList []models.ClashProxyGroupModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("sort_order, id").
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list proxy groups")
	}

	groups := make([]*subscription.ClashProxyGroup, 0, len(modelsList))
	for i := range modelsList {
		groups = append(groups, modelsList[i].ToEntity())
	}
	return groups, nil
}

func (r *ClashConfigRepository) CreateRule(ctx context.Context, rule *subscription.ClashRule) error {
	model := &models.ClashRuleModel{
		RuleType:  rule.RuleType,
		Value:     rule.Value,
		Target:    rule.Target,
		SortOrder: rule.SortOrder,
		IsActive:  rule.IsActive,
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.NewInternalError("failed to create rule")
	}

	rule.ID = model.ID
	rule.CreatedAt = model.CreatedAt
	rule.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *ClashConfigRepository) UpdateRule(ctx context.Context, rule *subscription.ClashRule) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ClashRuleModel{}).
		Where("id = ?", rule.ID).
		Updates(map[string]any{
			"rule_type":  rule.RuleType,
			"value":      rule.Value,
			"target":     rule.Target,
			"sort_order": rule.SortOrder,
			"is_active":  rule.IsActive,
		})
	if result.Error != nil {
		return apperrors.NewInternalError("failed to update rule")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("rule not found")
	}
	return nil
}

func (r *ClashConfigRepository) DeleteRule(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ClashRuleModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternalError("failed to delete rule")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("rule not found")
	}
	return nil
}

func (r *ClashConfigRepository) ListRules(ctx context.Context) ([]*subscription.ClashRule, error) {
	var modelsList []models.ClashRuleModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("sort_order, id").
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list rules")
	}

	rules := make([]*subscription.ClashRule, 0, len(modelsList))
	for i := range modelsList {
		rules = append(rules, modelsList[i].ToEntity())
	}
	return rules, nil
}

// ListActiveRules returns rules rendered into subscription documents.
func (r *ClashConfigRepository) ListActiveRules(ctx context.Context) ([]*subscription.ClashRule, error) {
	var modelsList []models.ClashRuleModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("is_active = ?", true).
		Order("sort_order, id").
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active rules")
	}

	rules := make([]*subscription.ClashRule, 0, len(modelsList))
	for i := range modelsList {
		rules = append(rules, modelsList[i].ToEntity())
	}
	return rules, nil
}
