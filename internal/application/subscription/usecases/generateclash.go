package usecases

import (
	"context"

	"veil/internal/shared/logger"
)

// GenerateClashDocumentUseCase renders the current Clash document from
// live node and routing configuration, bypassing the subscription cache.
// Admins use it to preview exactly what subscribers will receive.
type GenerateClashDocumentUseCase struct {
	nodeRepo  NodeRepository
	clashRepo ClashConfigRepository
	renderer  DocumentRenderer
	logger    logger.Interface
}

func NewGenerateClashDocumentUseCase(
	nodeRepo NodeRepository,
	clashRepo ClashConfigRepository,
	renderer DocumentRenderer,
	log logger.Interface,
) *GenerateClashDocumentUseCase {
	return &GenerateClashDocumentUseCase{
		nodeRepo:  nodeRepo,
		clashRepo: clashRepo,
		renderer:  renderer,
		logger:    log.Named("generate_clash_usecase"),
	}
}

func (uc *GenerateClashDocumentUseCase) Execute(ctx context.Context) (string, error) {
	nodes, err := uc.nodeRepo.ListClashNodes(ctx)
	if err != nil {
		return "", err
	}
	groups, err := uc.clashRepo.ListProxyGroups(ctx)
	if err != nil {
		return "", err
	}
	rules, err := uc.clashRepo.ListActiveRules(ctx)
	if err != nil {
		return "", err
	}
	return uc.renderer.Render(nodes, groups, rules)
}
