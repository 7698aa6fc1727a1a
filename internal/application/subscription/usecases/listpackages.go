package usecases

import (
	"context"

	"veil/internal/domain/subscription"
)

type ListPackagesUseCase struct {
	packageRepo PackageRepository
}

func NewListPackagesUseCase(packageRepo PackageRepository) *ListPackagesUseCase {
	return &ListPackagesUseCase{packageRepo: packageRepo}
}

func (uc *ListPackagesUseCase) Execute(ctx context.Context) ([]*subscription.Package, error) {
	return uc.packageRepo.ListActive(ctx)
}
