package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"veil/internal/domain/node"
	"veil/internal/infrastructure/persistence/models"
	"veil/internal/shared/db"
	apperrors "veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type NodeRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewNodeRepository(database *gorm.DB, log logger.Interface) *NodeRepository {
	return &NodeRepository{
		db:     database,
		logger: log.Named("node_repository"),
	}
}

func (r *NodeRepository) Create(ctx context.Context, n *node.Node) error {
	model, err := models.NodeModelFromEntity(n)
	if err != nil {
		return apperrors.NewValidationError("invalid node config", err.Error())
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("node name already exists")
		}
		r.logger.Errorw("failed to create node", "error", err)
		return apperrors.NewInternalError("failed to create node")
	}

	n.ID = model.ID
	n.CreatedAt = model.CreatedAt
	n.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *NodeRepository) Update(ctx context.Context, n *node.Node) error {
	model, err := models.NodeModelFromEntity(n)
	if err != nil {
		return apperrors.NewValidationError("invalid node config", err.Error())
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.NodeModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"name":             model.Name,
			"host":             model.Host,
			"port":             model.Port,
			"protocol":         model.Protocol,
			"config":           model.Config,
			"status":           model.Status,
			"max_users":        model.MaxUsers,
			"sort_order":       model.SortOrder,
			"include_in_clash": model.IncludeInClash,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewConflictError("node name already exists")
		}
		return apperrors.NewInternalError("failed to update node")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("node not found")
	}
	return nil
}

func (r *NodeRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.NodeModel{}, id)
	if result.Error != nil {
		return apperrors.NewInternalError("failed to delete node")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("node not found")
	}
	return nil
}

func (r *NodeRepository) FindByID(ctx context.Context, id uint) (*node.Node, error) {
	var model models.NodeModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("node not found")
		}
		return nil, apperrors.NewInternalError("failed to find node")
	}
	return model.ToEntity(), nil
}

func (r *NodeRepository) List(ctx context.Context) ([]*node.Node, error) {
	var modelsList []models.NodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Order("sort_order, name").
		Find(&modelsList).Error
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list nodes")
	}
	return nodesFromModels(modelsList), nil
}

// ListClashNodes returns nodes included in subscription documents, in
// render order.
func (r *NodeRepository) ListClashNodes(ctx context.Context) ([]*node.Node, error) {
	var modelsList []models.NodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("include_in_clash = ?", true).
		Order("sort_order, name").
		Find(&modelsList).Error
	if err != nil {
		r.logger.Errorw("failed to list clash nodes", "error", err)
		return nil, apperrors.NewInternalError("failed to list nodes")
	}
	return nodesFromModels(modelsList), nil
}

// UpdateHeartbeat records an agent heartbeat. Returns the previous status
// so callers can detect transitions. A nil currentUsers leaves the stored
// connection count untouched.
func (r *NodeRepository) UpdateHeartbeat(ctx context.Context, id uint, status node.Status, currentUsers *int, at time.Time) (node.Status, error) {
	var model models.NodeModel
	database := db.GetTxFromContext(ctx, r.db)

	if err := database.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NewNotFoundError("node not found")
		}
		return "", apperrors.NewInternalError("failed to find node")
	}

	previous := node.Status(model.Status)

	updates := map[string]any{
		"status":         string(status),
		"last_heartbeat": at,
	}
	if currentUsers != nil {
		updates["current_users"] = *currentUsers
	}

	err := database.Model(&models.NodeModel{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return "", apperrors.NewInternalError("failed to update heartbeat")
	}

	return previous, nil
}

// AddTraffic accumulates reported byte counters on the node's lifetime
// totals.
func (r *NodeRepository) AddTraffic(ctx context.Context, id uint, upload, download int64) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.NodeModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_upload":   gorm.Expr("total_upload + ?", upload),
			"total_download": gorm.Expr("total_download + ?", download),
		})
	if result.Error != nil {
		return apperrors.NewInternalError("failed to update node traffic totals")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("node not found")
	}
	return nil
}

func (r *NodeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.NodeModel{}).Count(&count).Error; err != nil {
		return 0, apperrors.NewInternalError("failed to count nodes")
	}
	return count, nil
}

func (r *NodeRepository) CountByStatus(ctx context.Context, status node.Status) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.NodeModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count nodes")
	}
	return count, nil
}

func nodesFromModels(modelsList []models.NodeModel) []*node.Node {
	nodes := make([]*node.Node, 0, len(modelsList))
	for i := range modelsList {
		nodes = append(nodes, modelsList[i].ToEntity())
	}
	return nodes
}
