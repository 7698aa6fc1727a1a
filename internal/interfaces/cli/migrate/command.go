// Package migrate implements the database migration commands.
package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"veil/internal/infrastructure/config"
	"veil/internal/infrastructure/database"
	"veil/internal/infrastructure/migration"
	"veil/internal/shared/logger"
)

var (
	env   string
	name  string
	steps int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations: apply, rollback, inspect status, and create new migration files.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		RunE:  runCreate,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func initEnv() (string, logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		OutputPath: cfg.Logger.OutputPath,
	}); err != nil {
		return "", nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return "", nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scriptsPath, err := filepath.Abs("./internal/infrastructure/migration/scripts")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get scripts path: %w", err)
	}

	return scriptsPath, logger.NewLogger(), nil
}

func gooseStrategy(scriptsPath string) (*migration.GooseStrategy, error) {
	strategy := migration.NewGooseStrategy(scriptsPath)
	goose, ok := strategy.(*migration.GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("unexpected migration strategy type")
	}
	return goose, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Infow("running migrations", "environment", env)

	strategy := migration.NewGooseStrategy(scriptsPath)
	if err := strategy.Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations applied")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := gooseStrategy(scriptsPath)
	if err != nil {
		return err
	}

	log.Infow("rolling back migrations", "steps", steps)
	if err := goose.Down(database.Get(), steps); err != nil {
		log.Errorw("rollback failed", "error", err)
		return err
	}

	log.Infow("rollback completed")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	scriptsPath, _, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := gooseStrategy(scriptsPath)
	if err != nil {
		return err
	}
	return goose.Status(database.Get())
}

func runCreate(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	goose, err := gooseStrategy(scriptsPath)
	if err != nil {
		return err
	}

	if err := goose.Create(name); err != nil {
		log.Errorw("failed to create migration", "error", err)
		return err
	}

	log.Infow("migration created", "name", name)
	return nil
}
