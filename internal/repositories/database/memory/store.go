package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of every repository port.
// It is safe for concurrent use: WithinTx holds the store lock for the whole
// unit of work and restores a snapshot when fn fails. Data is lost when the
// process exits.
type Store struct {
	mu       sync.Mutex
	state    *state
	failures map[string]error
}

type state struct {
	accounts     map[string]domain.Account
	audit        []domain.AuditLogEntry
	periods      map[string]domain.AccountingPeriod
	entries      map[string]domain.JournalEntry
	entrySeq     int64
	bankAccounts map[string]domain.BankAccount
	lines        []domain.BankStatementLine
	runs         map[string]domain.ReconciliationRun
	matches      []domain.ReconciliationMatch
	movements    map[string]domain.InternalMovement
}

func newState() *state {
	return &state{
		accounts:     map[string]domain.Account{},
		periods:      map[string]domain.AccountingPeriod{},
		entries:      map[string]domain.JournalEntry{},
		bankAccounts: map[string]domain.BankAccount{},
		runs:         map[string]domain.ReconciliationRun{},
		movements:    map[string]domain.InternalMovement{},
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:     make(map[string]domain.Account, len(s.accounts)),
		audit:        append([]domain.AuditLogEntry(nil), s.audit...),
		periods:      make(map[string]domain.AccountingPeriod, len(s.periods)),
		entries:      make(map[string]domain.JournalEntry, len(s.entries)),
		entrySeq:     s.entrySeq,
		bankAccounts: make(map[string]domain.BankAccount, len(s.bankAccounts)),
		lines:        append([]domain.BankStatementLine(nil), s.lines...),
		runs:         make(map[string]domain.ReconciliationRun, len(s.runs)),
		matches:      append([]domain.ReconciliationMatch(nil), s.matches...),
		movements:    make(map[string]domain.InternalMovement, len(s.movements)),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.periods {
		c.periods[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.bankAccounts {
		c.bankAccounts[k] = v
	}
	for k, v := range s.runs {
		c.runs[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	return c
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newState(), failures: map[string]error{}}
}

// NewRepositoryProvider exposes the store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          s,
		AccountRepo:        s,
		AuditRepo:          s,
		PeriodRepo:         s,
		JournalRepo:        s,
		BankAccountRepo:    s,
		StatementRepo:      s,
		ReconciliationRepo: s,
		MovementSource:     s,
	}
}

var (
	_ portsrepo.TransactionManager       = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade  = (*Store)(nil)
	_ portsrepo.AuditLogRepository       = (*Store)(nil)
	_ portsrepo.PeriodRepository         = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade  = (*Store)(nil)
	_ portsrepo.BankAccountRepository    = (*Store)(nil)
	_ portsrepo.StatementRepository      = (*Store)(nil)
	_ portsrepo.ReconciliationRepository = (*Store)(nil)
	_ portsrepo.MovementSource           = (*Store)(nil)
)

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store lock unless ctx already runs inside one of its transactions.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx runs fn with exclusive access to the store. Nested calls reuse
// the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// FailOn makes the named operation return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

// AddMovement registers an internal movement as if another module had recorded it.
func (s *Store) AddMovement(m domain.InternalMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.movements[portsrepo.MovementKey(string(m.Kind), m.ID)] = m
}

// --- accounts ---

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveAccount"); err != nil {
		return err
	}
	for _, existing := range s.state.accounts {
		if existing.Code == account.Code {
			return fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.Code)
		}
	}
	s.state.accounts[account.AccountID] = account
	return nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	defer s.lock(ctx)()
	acc, ok := s.state.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *Store) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	defer s.lock(ctx)()
	for _, acc := range s.state.accounts {
		if acc.Code == code {
			found := acc
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	defer s.lock(ctx)()
	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.state.accounts[id]; ok {
			result[id] = acc
		}
	}
	return result, nil
}

func (s *Store) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.Account, error) {
	defer s.lock(ctx)()
	result := []domain.Account{}
	for _, acc := range s.state.accounts {
		if filter.AccountType != "" && acc.AccountType != filter.AccountType {
			continue
		}
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		if filter.PostingOnly && !acc.AcceptsPostings {
			continue
		}
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool {
		return domain.CompareCodes(result[i].Code, result[j].Code) < 0
	})
	return result, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	existing, ok := s.state.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Name = account.Name
	existing.Description = account.Description
	existing.AcceptsPostings = account.AcceptsPostings
	existing.IsActive = account.IsActive
	existing.LastUpdatedAt = account.LastUpdatedAt
	existing.LastUpdatedBy = account.LastUpdatedBy
	s.state.accounts[account.AccountID] = existing
	return nil
}

func (s *Store) SaveAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveAuditEntry"); err != nil {
		return err
	}
	entry.Changes = append([]domain.FieldChange(nil), entry.Changes...)
	s.state.audit = append(s.state.audit, entry)
	return nil
}

func (s *Store) ListAuditEntries(ctx context.Context, entityType, entityID string) ([]domain.AuditLogEntry, error) {
	defer s.lock(ctx)()
	result := []domain.AuditLogEntry{}
	for _, e := range s.state.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, nil
}

// --- periods ---

func (s *Store) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	p, ok := s.state.periods[periodID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (s *Store) FindPeriodForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return s.FindPeriodByID(ctx, periodID)
}

func (s *Store) GetOrCreatePeriod(ctx context.Context, year, month int, name string) (*domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	for _, p := range s.state.periods {
		if p.Year == year && p.Month == month {
			found := p
			return &found, nil
		}
	}
	now := time.Now().UTC()
	p := domain.AccountingPeriod{
		PeriodID: uuid.NewString(),
		Year:     year,
		Month:    month,
		Name:     name,
		AuditFields: domain.AuditFields{
			CreatedAt: now, CreatedBy: "system", LastUpdatedAt: now, LastUpdatedBy: "system",
		},
	}
	s.state.periods[p.PeriodID] = p
	return &p, nil
}

func (s *Store) ListPeriods(ctx context.Context, year int) ([]domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	result := []domain.AccountingPeriod{}
	for _, p := range s.state.periods {
		if year != 0 && p.Year != year {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].After(result[j]) })
	return result, nil
}

func (s *Store) FindLatestClosedPeriod(ctx context.Context) (*domain.AccountingPeriod, error) {
	defer s.lock(ctx)()
	var latest *domain.AccountingPeriod
	for _, p := range s.state.periods {
		if !p.Closed {
			continue
		}
		if latest == nil || p.After(*latest) {
			found := p
			latest = &found
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (s *Store) UpdatePeriodStatus(ctx context.Context, period domain.AccountingPeriod) error {
	defer s.lock(ctx)()
	existing, ok := s.state.periods[period.PeriodID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Closed = period.Closed
	existing.ClosedAt = period.ClosedAt
	existing.ClosedBy = period.ClosedBy
	existing.LastUpdatedAt = period.LastUpdatedAt
	existing.LastUpdatedBy = period.LastUpdatedBy
	s.state.periods[period.PeriodID] = existing
	return nil
}

// --- journal ---

func (s *Store) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveEntry"); err != nil {
		return err
	}
	if _, ok := s.state.entries[entry.EntryID]; ok {
		return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryID)
	}
	if entry.SourceEventID != "" {
		for _, e := range s.state.entries {
			if e.SourceEventID == entry.SourceEventID {
				return fmt.Errorf("%w: source event %s", apperrors.ErrDuplicate, entry.SourceEventID)
			}
		}
	}
	lines := make([]domain.JournalLine, len(entry.Lines))
	for i, l := range entry.Lines {
		acc, ok := s.state.accounts[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %s of line %d", apperrors.ErrNotFound, l.AccountID, l.LineNo)
		}
		l.EntryID = entry.EntryID
		l.AccountCode = acc.Code
		lines[i] = l
	}
	s.state.entrySeq++
	entry.EntryNumber = s.state.entrySeq

	stored := *entry
	stored.Lines = lines
	s.state.entries[entry.EntryID] = stored
	return nil
}

func copyEntry(e domain.JournalEntry) *domain.JournalEntry {
	e.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return &e
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	e, ok := s.state.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyEntry(e), nil
}

func (s *Store) FindEntryBySourceEventID(ctx context.Context, sourceEventID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	for _, e := range s.state.entries {
		if e.SourceEventID == sourceEventID {
			return copyEntry(e), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, string, error) {
	defer s.lock(ctx)()
	var cursor *pagination.EntryCursor
	if params.NextToken != "" {
		c, err := pagination.DecodeEntryCursor(params.NextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	entries := []domain.JournalEntry{}
	for _, e := range s.state.entries {
		if params.From != nil && e.EntryDate.Before(*params.From) {
			continue
		}
		if params.To != nil && e.EntryDate.After(*params.To) {
			continue
		}
		if params.Kind != "" && e.Kind != params.Kind {
			continue
		}
		if cursor != nil && !cursor.Before(e.EntryDate, e.CreatedAt, e.EntryID) {
			continue
		}
		e.Lines = nil
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.EntryID > b.EntryID
	})

	var next string
	if len(entries) > params.Limit {
		entries = entries[:params.Limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeEntryCursor(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	}
	return entries, next, nil
}

func (s *Store) SumAccountLines(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	defer s.lock(ctx)()
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range s.state.entries {
		if asOf != nil && e.EntryDate.After(*asOf) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID == accountID {
				debit = debit.Add(l.Debit)
				credit = credit.Add(l.Credit)
			}
		}
	}
	return debit, credit, nil
}

func (s *Store) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	defer s.lock(ctx)()
	rows := map[string]*domain.TrialBalanceRow{}
	for _, e := range s.state.entries {
		if asOf != nil && e.EntryDate.After(*asOf) {
			continue
		}
		for _, l := range e.Lines {
			row, ok := rows[l.AccountID]
			if !ok {
				acc := s.state.accounts[l.AccountID]
				row = &domain.TrialBalanceRow{
					AccountID:   acc.AccountID,
					Code:        acc.Code,
					Name:        acc.Name,
					AccountType: acc.AccountType,
					TotalDebit:  decimal.Zero,
					TotalCredit: decimal.Zero,
				}
				rows[l.AccountID] = row
			}
			row.TotalDebit = row.TotalDebit.Add(l.Debit)
			row.TotalCredit = row.TotalCredit.Add(l.Credit)
		}
	}
	result := make([]domain.TrialBalanceRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return domain.CompareCodes(result[i].Code, result[j].Code) < 0
	})
	return result, nil
}

// --- bank accounts and statements ---

func (s *Store) SaveBankAccount(ctx context.Context, account domain.BankAccount) error {
	defer s.lock(ctx)()
	for _, existing := range s.state.bankAccounts {
		if existing.Name == account.Name {
			return fmt.Errorf("%w: bank account %s", apperrors.ErrDuplicate, account.Name)
		}
	}
	s.state.bankAccounts[account.BankAccountID] = account
	return nil
}

func (s *Store) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	defer s.lock(ctx)()
	b, ok := s.state.bankAccounts[bankAccountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &b, nil
}

func (s *Store) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	defer s.lock(ctx)()
	result := make([]domain.BankAccount, 0, len(s.state.bankAccounts))
	for _, b := range s.state.bankAccounts {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveStatementLines"); err != nil {
		return err
	}
	for _, l := range lines {
		if _, ok := s.state.bankAccounts[l.BankAccountID]; !ok {
			return fmt.Errorf("%w: bank account %s", apperrors.ErrNotFound, l.BankAccountID)
		}
		l.Reconciled = false
		l.MatchedBy = ""
		s.state.lines = append(s.state.lines, l)
	}
	return nil
}

func (s *Store) FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error) {
	defer s.lock(ctx)()
	for _, l := range s.state.lines {
		if l.LineID == lineID {
			found := l
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListStatementLines(ctx context.Context, filter portsrepo.StatementLineFilter) ([]domain.BankStatementLine, error) {
	defer s.lock(ctx)()
	result := []domain.BankStatementLine{}
	for _, l := range s.state.lines {
		if l.BankAccountID != filter.BankAccountID {
			continue
		}
		if !filter.From.IsZero() && l.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && l.Date.After(filter.To) {
			continue
		}
		if filter.UnreconciledOnly && l.Reconciled {
			continue
		}
		result = append(result, l)
	}
	// lines are kept in import order, so a stable sort by date gives (date, seq)
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (s *Store) MarkLineReconciled(ctx context.Context, lineID, matchID string) (bool, error) {
	defer s.lock(ctx)()
	if err := s.failure("MarkLineReconciled"); err != nil {
		return false, err
	}
	for i := range s.state.lines {
		if s.state.lines[i].LineID != lineID {
			continue
		}
		if s.state.lines[i].Reconciled {
			return false, nil
		}
		s.state.lines[i].Reconciled = true
		s.state.lines[i].MatchedBy = matchID
		return true, nil
	}
	return false, apperrors.ErrNotFound
}

// --- movements ---

func (s *Store) ListMovements(ctx context.Context, from, to time.Time) ([]domain.InternalMovement, error) {
	defer s.lock(ctx)()
	fromDay, toDay := truncateDay(from), truncateDay(to)
	result := []domain.InternalMovement{}
	for _, m := range s.state.movements {
		day := truncateDay(m.Date)
		if day.Before(fromDay) || day.After(toDay) {
			continue
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.ID < b.ID
	})
	return result, nil
}

func (s *Store) GetMovement(ctx context.Context, kind domain.MovementKind, id string) (*domain.InternalMovement, error) {
	defer s.lock(ctx)()
	m, ok := s.state.movements[portsrepo.MovementKey(string(kind), id)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &m, nil
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// --- reconciliation ---

func (s *Store) NextRunSequence(ctx context.Context, prefix string) (int, error) {
	defer s.lock(ctx)()
	highest := 0
	for _, run := range s.state.runs {
		suffix, ok := strings.CutPrefix(run.Number, prefix)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func (s *Store) SaveRun(ctx context.Context, run domain.ReconciliationRun) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveRun"); err != nil {
		return err
	}
	for _, existing := range s.state.runs {
		if existing.Number == run.Number {
			return fmt.Errorf("%w: reconciliation run %s", apperrors.ErrDuplicate, run.Number)
		}
	}
	run.Matches = nil
	s.state.runs[run.RunID] = run
	return nil
}

func (s *Store) FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	defer s.lock(ctx)()
	run, ok := s.state.runs[runID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &run, nil
}

func (s *Store) FindRunForUpdate(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	return s.FindRunByID(ctx, runID)
}

func (s *Store) ListRuns(ctx context.Context, bankAccountID string) ([]domain.ReconciliationRun, error) {
	defer s.lock(ctx)()
	result := []domain.ReconciliationRun{}
	for _, run := range s.state.runs {
		if bankAccountID != "" && run.BankAccountID != bankAccountID {
			continue
		}
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Number > result[j].Number
	})
	return result, nil
}

func (s *Store) UpdateRun(ctx context.Context, run domain.ReconciliationRun) error {
	defer s.lock(ctx)()
	if err := s.failure("UpdateRun"); err != nil {
		return err
	}
	existing, ok := s.state.runs[run.RunID]
	if !ok {
		return apperrors.ErrNotFound
	}
	existing.Status = run.Status
	existing.TotalStatementLines = run.TotalStatementLines
	existing.TotalMatched = run.TotalMatched
	existing.TotalUnmatched = run.TotalUnmatched
	existing.ClosedAt = run.ClosedAt
	existing.ClosedBy = run.ClosedBy
	existing.LastUpdatedAt = run.LastUpdatedAt
	existing.LastUpdatedBy = run.LastUpdatedBy
	s.state.runs[run.RunID] = existing
	return nil
}

func (s *Store) SaveMatches(ctx context.Context, matches []domain.ReconciliationMatch) error {
	defer s.lock(ctx)()
	if err := s.failure("SaveMatches"); err != nil {
		return err
	}
	for _, m := range matches {
		if _, ok := s.state.runs[m.RunID]; !ok {
			return fmt.Errorf("%w: reconciliation run %s", apperrors.ErrNotFound, m.RunID)
		}
	}
	s.state.matches = append(s.state.matches, matches...)
	return nil
}

func (s *Store) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	defer s.lock(ctx)()
	for _, m := range s.state.matches {
		if m.MatchID == matchID {
			found := m
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListMatchesByRun(ctx context.Context, runID string) ([]domain.ReconciliationMatch, error) {
	defer s.lock(ctx)()
	result := []domain.ReconciliationMatch{}
	for _, m := range s.state.matches {
		if m.RunID == runID {
			result = append(result, m)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Confidence > result[j].Confidence })
	return result, nil
}

func (s *Store) UpdateMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	defer s.lock(ctx)()
	if err := s.failure("UpdateMatch"); err != nil {
		return err
	}
	for i := range s.state.matches {
		if s.state.matches[i].MatchID == match.MatchID {
			s.state.matches[i].Status = match.Status
			s.state.matches[i].ApprovedBy = match.ApprovedBy
			s.state.matches[i].ApprovedAt = match.ApprovedAt
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (s *Store) ListApprovedInternalIDs(ctx context.Context) (map[string]bool, error) {
	defer s.lock(ctx)()
	used := map[string]bool{}
	for _, m := range s.state.matches {
		if m.Status == domain.MatchApproved {
			used[portsrepo.MovementKey(string(m.InternalKind), m.InternalID)] = true
		}
	}
	return used, nil
}
