package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/middleware"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/platform/config"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/repositories/database/memory"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/repositories/database/pgsql"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/pkg/database"
)

// ServiceFactory builds the services a command runs against. The returned
// func releases whatever the services hold.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error)

// PostgresServices wires the services over a pgx pool.
func PostgresServices(ctx context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return nil, nil, err
	}
	return services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool)), pool.Close, nil
}

// MemoryServices wires the services over an empty in-memory store that is
// discarded when the command ends.
func MemoryServices(_ context.Context, cfg *config.Config) (*portssvc.ServiceContainer, func(), error) {
	return services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore())), func() {}, nil
}

type app struct {
	logger     *slog.Logger
	loadConfig func() (*config.Config, error)
	factory    ServiceFactory
	validate   *validator.Validate
	userID     string
	dryRun     bool
}

// Option customizes the root command.
type Option func(*app)

// WithServiceFactory replaces the postgres wiring.
func WithServiceFactory(f ServiceFactory) Option {
	return func(a *app) { a.factory = f }
}

// WithConfigLoader replaces config.LoadConfig.
func WithConfigLoader(f func() (*config.Config, error)) Option {
	return func(a *app) { a.loadConfig = f }
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(logger *slog.Logger, opts ...Option) *cobra.Command {
	a := &app{
		logger:     logger,
		loadConfig: config.LoadConfig,
		factory:    PostgresServices,
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the MotoLibre ledger and bank reconciliation",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.userID, "user", "ledgerctl", "user id recorded in audit fields")
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "run against a throwaway in-memory store instead of the database")

	rootCmd.AddCommand(
		a.newMigrateCommand(),
		a.newSeedChartCommand(),
		a.newBalanceCommand(),
		a.newPeriodCommand(),
		a.newImportStatementCommand(),
		a.newReconcileCommand(),
	)

	return rootCmd
}

// withServices loads config, builds services and runs fn with a context
// carrying the CLI logger and user.
func (a *app) withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *portssvc.ServiceContainer) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	ctx := middleware.WithLogger(cmd.Context(), a.logger)
	ctx = middleware.WithUserID(ctx, a.userID)

	factory := a.factory
	if a.dryRun {
		factory = MemoryServices
	}
	svc, release, err := factory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer release()
	return fn(ctx, svc)
}

func (a *app) check(input any) error {
	if err := a.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
