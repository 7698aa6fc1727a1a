package usecases

import (
	"context"

	"veil/internal/domain/subscription"
	"veil/internal/shared/errors"
	"veil/internal/shared/logger"
)

type SaveProxyGroupCommand struct {
	ID        uint
	Name      string
	Type      string
	URL       string
	Interval  int
	SortOrder int
}

// ManageClashConfigUseCase covers admin CRUD for proxy groups and routing
// rules. Cached subscription documents are not touched here; they refresh
// when their TTL lapses.
type ManageClashConfigUseCase struct {
	clashRepo ClashConfigRepository
	logger    logger.Interface
}

func NewManageClashConfigUseCase(clashRepo ClashConfigRepository, log logger.Interface) *ManageClashConfigUseCase {
	return &ManageClashConfigUseCase{
		clashRepo: clashRepo,
		logger:    log.Named("clash_config_usecase"),
	}
}

func (uc *ManageClashConfigUseCase) ListProxyGroups(ctx context.Context) ([]*subscription.ClashProxyGroup, error) {
	return uc.clashRepo.ListProxyGroups(ctx)
}

func (uc *ManageClashConfigUseCase) CreateProxyGroup(ctx context.Context, cmd SaveProxyGroupCommand) (*subscription.ClashProxyGroup, error) {
	g, err := proxyGroupFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	if err := uc.clashRepo.CreateProxyGroup(ctx, g); err != nil {
		return nil, err
	}
	uc.logger.Infow("proxy group created", "group_id", g.ID, "name", g.Name)
	return g, nil
}

func (uc *ManageClashConfigUseCase) UpdateProxyGroup(ctx context.Context, cmd SaveProxyGroupCommand) (*subscription.ClashProxyGroup, error) {
	if _, err := uc.clashRepo.FindProxyGroupByID(ctx, cmd.ID); err != nil {
		return nil, err
	}
	g, err := proxyGroupFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	g.ID = cmd.ID
	if err := uc.clashRepo.UpdateProxyGroup(ctx, g); err != nil {
		return nil, err
	}
	uc.logger.Infow("proxy group updated", "group_id", g.ID)
	return g, nil
}

func (uc *ManageClashConfigUseCase) DeleteProxyGroup(ctx context.Context, id uint) error {
	if err := uc.clashRepo.DeleteProxyGroup(ctx, id); err != nil {
		return err
	}
	uc.logger.Infow("proxy group deleted", "group_id", id)
	return nil
}

func proxyGroupFromCommand(cmd SaveProxyGroupCommand) (*subscription.ClashProxyGroup, error) {
	if cmd.Name == "" {
		return nil, errors.NewValidationError("group name is required")
	}
	groupType := subscription.ProxyGroupType(cmd.Type)
	if groupType != subscription.ProxyGroupSelect && groupType != subscription.ProxyGroupURLTest {
		return nil, errors.NewValidationError("unsupported group type", cmd.Type)
	}
	return &subscription.ClashProxyGroup{
		Name:      cmd.Name,
		Type:      groupType,
		URL:       cmd.URL,
		Interval:  cmd.Interval,
		SortOrder: cmd.SortOrder,
	}, nil
}

type SaveRuleCommand struct {
	ID        uint
	RuleType  string
	Value     string
	Target    string
	NoResolve bool
	SortOrder int
	IsActive  bool
}

func (uc *ManageClashConfigUseCase) ListRules(ctx context.Context) ([]*subscription.ClashRule, error) {
	return uc.clashRepo.ListRules(ctx)
}

func (uc *ManageClashConfigUseCase) CreateRule(ctx context.Context, cmd SaveRuleCommand) (*subscription.ClashRule, error) {
	rule, err := ruleFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	if err := uc.clashRepo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	uc.logger.Infow("clash rule created", "rule_id", rule.ID)
	return rule, nil
}

func (uc *ManageClashConfigUseCase) UpdateRule(ctx context.Context, cmd SaveRuleCommand) (*subscription.ClashRule, error) {
	rule, err := ruleFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	rule.ID = cmd.ID
	if err := uc.clashRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	uc.logger.Infow("clash rule updated", "rule_id", rule.ID)
	return rule, nil
}

func (uc *ManageClashConfigUseCase) DeleteRule(ctx context.Context, id uint) error {
	if err := uc.clashRepo.DeleteRule(ctx, id); err != nil {
		return err
	}
	uc.logger.Infow("clash rule deleted", "rule_id", id)
	return nil
}

func ruleFromCommand(cmd SaveRuleCommand) (*subscription.ClashRule, error) {
	if cmd.RuleType == "" {
		return nil, errors.NewValidationError("rule type is required")
	}
	if cmd.Target == "" {
		return nil, errors.NewValidationError("rule target is required")
	}
	return &subscription.ClashRule{
		RuleType:  cmd.RuleType,
		Value:     cmd.Value,
		Target:    cmd.Target,
		NoResolve: cmd.NoResolve,
		SortOrder: cmd.SortOrder,
		IsActive:  cmd.IsActive,
	}, nil
}
