package pgsql

import (
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	bankRepo := newPgxBankRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:          NewTxManager(dbPool),
		AccountRepo:        accountRepo,
		AuditRepo:          accountRepo,
		PeriodRepo:         newPgxPeriodRepository(dbPool),
		JournalRepo:        newPgxJournalRepository(dbPool),
		BankAccountRepo:    bankRepo,
		StatementRepo:      bankRepo,
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		MovementSource:     newPgxMovementSource(dbPool),
	}
}
