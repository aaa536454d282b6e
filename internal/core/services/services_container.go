package services

import (
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/matching"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/platform/config"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/locale"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account and period services come first since the ledger depends on both
	container.Account = NewAccountService(repos.AccountRepo, repos.AuditRepo, repos.TxManager)
	container.Period = NewPeriodService(
		repos.PeriodRepo,
		repos.TxManager,
		WithMonthNamer(locale.NewMonthNamer(cfg.Locale)),
	)

	container.Ledger = NewLedgerService(repos.JournalRepo, repos.TxManager, container.Account, container.Period)

	container.Statement = NewStatementService(
		repos.BankAccountRepo,
		repos.StatementRepo,
		repos.TxManager,
		container.Account,
		WithCashAccountCodes(cfg.CashAccountCodes),
	)

	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.StatementRepo,
		repos.MovementSource,
		repos.TxManager,
		container.Statement,
		container.Ledger,
		WithMatchingEngine(matching.NewEngine(matching.WithAmountTolerance(cfg.MatchAmountTolerance))),
	)

	return container
}
