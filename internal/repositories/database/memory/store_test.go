package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedAccount(t *testing.T, s *Store, id, code string, typ domain.AccountType) {
	t.Helper()
	seedAccountCtx(context.Background(), t, s, id, code, typ)
}

func seedAccountCtx(ctx context.Context, t *testing.T, s *Store, id, code string, typ domain.AccountType) {
	t.Helper()
	require.NoError(t, s.SaveAccount(ctx, domain.Account{
		AccountID: id, Code: code, Name: code, AccountType: typ, AcceptsPostings: true, IsActive: true,
	}))
}

func entry(id string, date time.Time, created time.Time, lines ...domain.JournalLine) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID:     id,
		EntryDate:   date,
		Kind:        domain.EntryManual,
		Description: id,
		Lines:       lines,
		AuditFields: domain.AuditFields{CreatedAt: created},
	}
}

func line(no int, accountID string, debit, credit int64) domain.JournalLine {
	return domain.JournalLine{
		LineID: accountID + "-" + string(rune('a'+no)), LineNo: no, AccountID: accountID,
		Debit: decimal.NewFromInt(debit), Credit: decimal.NewFromInt(credit),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1.1.01.001", domain.Asset)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		seedAccountCtx(ctx, t, s, "bank", "1.1.01.002", domain.Asset)
		return s.WithinTx(ctx, func(ctx context.Context) error {
			_, err := s.FindAccountByID(ctx, "bank")
			require.NoError(t, err)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindAccountByID(ctx, "bank")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.FindAccountByID(ctx, "cash")
	assert.NoError(t, err)
}

func TestSaveAccount_DuplicateCode(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1", domain.Asset)
	err := s.SaveAccount(context.Background(), domain.Account{AccountID: "a2", Code: "1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestListAccounts_OrderedByCodeSegments(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a", "1.10", domain.Asset)
	seedAccount(t, s, "b", "1.9", domain.Asset)
	seedAccount(t, s, "c", "1", domain.Asset)

	accounts, err := s.ListAccounts(context.Background(), portsrepo.AccountFilter{})
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, []string{"1", "1.9", "1.10"}, []string{accounts[0].Code, accounts[1].Code, accounts[2].Code})
}

func TestSaveEntry_NumbersAndSourceEvent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1.1.01.001", domain.Asset)
	seedAccount(t, s, "sales", "4.1.01", domain.Income)

	first := entry("e1", day(2025, 6, 1), time.Now(), line(1, "cash", 100, 0), line(2, "sales", 0, 100))
	first.SourceEventID = "evt-1"
	require.NoError(t, s.SaveEntry(ctx, first))
	second := entry("e2", day(2025, 6, 2), time.Now(), line(1, "cash", 50, 0), line(2, "sales", 0, 50))
	require.NoError(t, s.SaveEntry(ctx, second))

	assert.Equal(t, int64(1), first.EntryNumber)
	assert.Equal(t, int64(2), second.EntryNumber)

	dup := entry("e3", day(2025, 6, 3), time.Now(), line(1, "cash", 1, 0), line(2, "sales", 0, 1))
	dup.SourceEventID = "evt-1"
	assert.ErrorIs(t, s.SaveEntry(ctx, dup), apperrors.ErrDuplicate)

	found, err := s.FindEntryBySourceEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "e1", found.EntryID)
	require.Len(t, found.Lines, 2)
	assert.Equal(t, "1.1.01.001", found.Lines[0].AccountCode)
}

func TestSumAccountLinesAndTrialBalance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1.1.01.001", domain.Asset)
	seedAccount(t, s, "sales", "4.1.01", domain.Income)
	require.NoError(t, s.SaveEntry(ctx, entry("e1", day(2025, 6, 1), time.Now(), line(1, "cash", 100, 0), line(2, "sales", 0, 100))))
	require.NoError(t, s.SaveEntry(ctx, entry("e2", day(2025, 7, 1), time.Now(), line(1, "cash", 0, 30), line(2, "sales", 30, 0))))

	debit, credit, err := s.SumAccountLines(ctx, "cash", nil)
	require.NoError(t, err)
	assert.True(t, debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, credit.Equal(decimal.NewFromInt(30)))

	asOf := day(2025, 6, 30)
	debit, credit, err = s.SumAccountLines(ctx, "cash", &asOf)
	require.NoError(t, err)
	assert.True(t, debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, credit.IsZero())

	rows, err := s.TrialBalance(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.1.01.001", rows[0].Code)
	assert.Equal(t, "4.1.01", rows[1].Code)
}

func TestListEntries_Paginates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedAccount(t, s, "cash", "1", domain.Asset)
	seedAccount(t, s, "eq", "3", domain.Equity)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, s.SaveEntry(ctx, entry(id, day(2025, 6, 1+i), base.Add(time.Duration(i)*time.Minute),
			line(1, "cash", 10, 0), line(2, "eq", 0, 10))))
	}

	page, next, err := s.ListEntries(ctx, portsrepo.ListEntriesParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "e3", page[0].EntryID)
	assert.Equal(t, "e2", page[1].EntryID)
	require.NotEmpty(t, next)

	page, next, err = s.ListEntries(ctx, portsrepo.ListEntriesParams{Limit: 2, NextToken: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "e1", page[0].EntryID)
	assert.Empty(t, next)

	_, _, err = s.ListEntries(ctx, portsrepo.ListEntriesParams{Limit: 2, NextToken: "%%%"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPeriods_GetOrCreateAndLatestClosed(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	june, err := s.GetOrCreatePeriod(ctx, 2025, 6, "Junio 2025")
	require.NoError(t, err)
	again, err := s.GetOrCreatePeriod(ctx, 2025, 6, "ignored")
	require.NoError(t, err)
	assert.Equal(t, june.PeriodID, again.PeriodID)
	assert.Equal(t, "Junio 2025", again.Name)

	_, err = s.FindLatestClosedPeriod(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	may, err := s.GetOrCreatePeriod(ctx, 2025, 5, "Mayo 2025")
	require.NoError(t, err)
	for _, p := range []*domain.AccountingPeriod{may, june} {
		p.Closed = true
		require.NoError(t, s.UpdatePeriodStatus(ctx, *p))
	}
	latest, err := s.FindLatestClosedPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, june.PeriodID, latest.PeriodID)

	periods, err := s.ListPeriods(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, 6, periods[0].Month)
}

func TestMarkLineReconciled_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveBankAccount(ctx, domain.BankAccount{BankAccountID: "ba", Name: "Galicia"}))
	require.NoError(t, s.SaveStatementLines(ctx, []domain.BankStatementLine{
		{LineID: "l2", BankAccountID: "ba", Date: day(2025, 6, 2), Amount: decimal.NewFromInt(5)},
		{LineID: "l1", BankAccountID: "ba", Date: day(2025, 6, 1), Amount: decimal.NewFromInt(5)},
		{LineID: "l3", BankAccountID: "ba", Date: day(2025, 6, 2), Amount: decimal.NewFromInt(5)},
	}))

	ok, err := s.MarkLineReconciled(ctx, "l1", "m1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.MarkLineReconciled(ctx, "l1", "m2")
	require.NoError(t, err)
	assert.False(t, ok)

	lines, err := s.ListStatementLines(ctx, portsrepo.StatementLineFilter{BankAccountID: "ba"})
	require.NoError(t, err)
	assert.Equal(t, "l1", lines[0].LineID)
	assert.Equal(t, "l2", lines[1].LineID)
	assert.Equal(t, "l3", lines[2].LineID)

	open, err := s.ListStatementLines(ctx, portsrepo.StatementLineFilter{BankAccountID: "ba", UnreconciledOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestNextRunSequence(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	prefix := domain.RunNumberPrefix(2025)

	seq, err := s.NextRunSequence(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	require.NoError(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r1", Number: domain.FormatRunNumber(2025, 7)}))
	require.NoError(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r2", Number: domain.FormatRunNumber(2024, 40)}))

	seq, err = s.NextRunSequence(ctx, prefix)
	require.NoError(t, err)
	assert.Equal(t, 8, seq)
}

func TestMovementsAndApprovedIDs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddMovement(domain.InternalMovement{Kind: domain.MovementPayment, ID: "p1", Date: day(2025, 6, 10), Amount: decimal.NewFromInt(100)})
	s.AddMovement(domain.InternalMovement{Kind: domain.MovementExpense, ID: "x1", Date: day(2025, 7, 1), Amount: decimal.NewFromInt(-20)})

	movements, err := s.ListMovements(ctx, day(2025, 6, 1), day(2025, 6, 30))
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "p1", movements[0].ID)

	_, err = s.GetMovement(ctx, domain.MovementExpense, "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r1", Number: "CONC-2025-00001", BankAccountID: "ba"}))
	require.NoError(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r2", Number: "CONC-2025-00002", BankAccountID: "bb"}))
	require.NoError(t, s.SaveMatches(ctx, []domain.ReconciliationMatch{
		{MatchID: "m1", RunID: "r1", InternalKind: domain.MovementPayment, InternalID: "p1", Status: domain.MatchApproved},
		{MatchID: "m2", RunID: "r1", InternalKind: domain.MovementExpense, InternalID: "x1", Status: domain.MatchProposed},
		{MatchID: "m3", RunID: "r2", InternalKind: domain.MovementExpense, InternalID: "x2", Status: domain.MatchApproved},
	}))

	used, err := s.ListApprovedInternalIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Payment:p1": true, "Expense:x2": true}, used, "approvals of every bank account count")
}

func TestFailOn(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("disk full")
	s.FailOn("SaveRun", boom)
	assert.ErrorIs(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r1"}), boom)
	s.FailOn("SaveRun", nil)
	assert.NoError(t, s.SaveRun(ctx, domain.ReconciliationRun{RunID: "r1", Number: "CONC-2025-00001"}))
}
