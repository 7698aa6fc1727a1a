// Package migration runs schema migrations with pluggable strategies.
package migration

import (
	"os"

	"gorm.io/gorm"

	"veil/internal/shared/logger"
)

const defaultScriptsPath = "internal/infrastructure/migration/scripts"

// Manager selects and runs a migration strategy.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager builds a Manager. The strategy is chosen via the
// MIGRATION_STRATEGY env var (goose by default, golang-migrate as the
// alternative); MIGRATION_SCRIPTS_PATH overrides the scripts directory.
func NewManager(env string) *Manager {
	scriptsPath := os.Getenv("MIGRATION_SCRIPTS_PATH")
	if scriptsPath == "" {
		scriptsPath = defaultScriptsPath
	}

	var strategy Strategy
	switch os.Getenv("MIGRATION_STRATEGY") {
	case "golang-migrate":
		strategy = NewGolangMigrateStrategy(scriptsPath)
	default:
		strategy = NewGooseStrategy(scriptsPath)
	}

	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration"),
	}
}

// Migrate runs pending migrations.
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("running migrations", "strategy", m.strategy.GetName())
	return m.strategy.Migrate(db)
}

// Strategy exposes the selected strategy for strategy-specific commands.
func (m *Manager) Strategy() Strategy {
	return m.strategy
}
