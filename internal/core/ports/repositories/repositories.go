package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager          TransactionManager
	AccountRepo        AccountRepositoryFacade
	AuditRepo          AuditLogRepository
	PeriodRepo         PeriodRepository
	JournalRepo        JournalRepositoryFacade
	BankAccountRepo    BankAccountRepository
	StatementRepo      StatementRepository
	ReconciliationRepo ReconciliationRepository
	MovementSource     MovementSource
}

// MovementKey identifies an internal movement across kinds.
func MovementKey(kind string, id string) string {
	return kind + ":" + id
}
