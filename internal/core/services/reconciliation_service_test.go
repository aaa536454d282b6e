package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/stretchr/testify/suite"
)

const reconStatement = "Fecha;Descripción;Referencia;Importe;Saldo\n" +
	"05/06/2025;TRANSF JUAN PEREZ;OP-1;10.000,00;110.000,00\n" +
	"07/06/2025;DEBITO PROVEEDOR;;-1.234,56;108.765,44\n" +
	"12/06/2025;COMISION;;-150,00;108.615,44\n"

type ReconciliationServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	env   *testEnv
	recon portssvc.ReconciliationSvcFacade
	bank  *domain.BankAccount
	lines []domain.BankStatementLine
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.env = newSeededEnv(s.T())
	store := s.env.store
	s.recon = services.NewReconciliationService(
		store, store, store, store,
		s.env.svc.Statement,
		s.env.svc.Ledger,
		services.WithClock(func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }),
	)

	s.bank = createBankAccount(s.T(), s.env)
	_, err := s.env.svc.Statement.ImportStatement(s.ctx, s.bank.BankAccountID, reconStatement, testUser)
	s.Require().NoError(err)
	s.lines, err = s.env.svc.Statement.ListStatementLines(s.ctx, s.bank.BankAccountID, dto.StatementLinesParams{})
	s.Require().NoError(err)
	s.Require().Len(s.lines, 3)

	store.AddMovement(domain.InternalMovement{
		Kind: domain.MovementPayment, ID: "p1", Label: domain.MovementLabel(domain.MovementPayment, "JUAN PEREZ"),
		Amount: dec("10000"), Date: day(2025, 6, 5), Reference: "OP-1",
	})
	store.AddMovement(domain.InternalMovement{
		Kind: domain.MovementExpense, ID: "e1", Label: domain.MovementLabel(domain.MovementExpense, "Proveedor SA"),
		Amount: dec("-1234.56"), Date: day(2025, 6, 7),
	})
	store.AddMovement(domain.InternalMovement{
		Kind: domain.MovementPayrollReceipt, ID: "r1", Label: domain.MovementLabel(domain.MovementPayrollReceipt, "ANA LOPEZ"),
		Amount: dec("-80000"), Date: day(2025, 6, 30),
	})
}

func (s *ReconciliationServiceTestSuite) startRun() *domain.ReconciliationRun {
	run, err := s.recon.StartRun(s.ctx, dto.StartRunRequest{
		BankAccountID: s.bank.BankAccountID, PeriodFrom: "2025-06-01", PeriodTo: "2025-06-30",
	}, testUser)
	s.Require().NoError(err)
	return run
}

func (s *ReconciliationServiceTestSuite) matchFor(run *domain.ReconciliationRun, internalID string) domain.ReconciliationMatch {
	for _, m := range run.Matches {
		if m.InternalID == internalID {
			return m
		}
	}
	s.FailNow("no match for " + internalID)
	return domain.ReconciliationMatch{}
}

func (s *ReconciliationServiceTestSuite) TestRunMatching_DoesNotPersist() {
	results, err := s.recon.RunMatching(s.ctx, s.bank.BankAccountID, day(2025, 6, 1), day(2025, 6, 30))
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal("p1", results[0].InternalID)
	s.Equal(100, results[0].Confidence)
	s.Equal(domain.MatchExact, results[1].MatchType)
	s.Equal(90, results[1].Confidence)

	runs, err := s.recon.ListRuns(s.ctx, s.bank.BankAccountID)
	s.Require().NoError(err)
	s.Empty(runs)

	_, err = s.recon.RunMatching(s.ctx, s.bank.BankAccountID, day(2025, 6, 30), day(2025, 6, 1))
	s.ErrorIs(err, services.ErrInvalidRange)

	_, err = s.recon.RunMatching(s.ctx, "missing", day(2025, 6, 1), day(2025, 6, 30))
	s.ErrorIs(err, services.ErrBankAccountNotFound)
}

func (s *ReconciliationServiceTestSuite) TestStartRun_NumbersAndCounters() {
	run := s.startRun()
	s.Equal("CONC-2025-00001", run.Number)
	s.Equal(domain.RunInProgress, run.Status)
	s.Equal(3, run.TotalStatementLines)
	s.Equal(2, run.TotalMatched)
	s.Equal(1, run.TotalUnmatched)
	s.Require().Len(run.Matches, 2)
	for _, m := range run.Matches {
		s.Equal(domain.MatchProposed, m.Status)
	}

	second := s.startRun()
	s.Equal("CONC-2025-00002", second.Number)

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Len(got.Matches, 2)

	_, err = s.recon.GetRun(s.ctx, "missing")
	s.ErrorIs(err, services.ErrRunNotFound)

	_, err = s.recon.StartRun(s.ctx, dto.StartRunRequest{BankAccountID: s.bank.BankAccountID, PeriodFrom: "2025-06-30", PeriodTo: "2025-06-01"}, testUser)
	s.ErrorIs(err, services.ErrInvalidRange)
}

func (s *ReconciliationServiceTestSuite) TestLifecycle() {
	run := s.startRun()
	payment := s.matchFor(run, "p1")
	expense := s.matchFor(run, "e1")

	approved, err := s.recon.ApproveMatch(s.ctx, run.RunID, payment.MatchID, testUser)
	s.Require().NoError(err)
	s.Equal(domain.MatchApproved, approved.Status)
	s.Equal(testUser, approved.ApprovedBy)
	s.NotNil(approved.ApprovedAt)

	line, err := s.env.store.FindStatementLineByID(s.ctx, payment.StatementLineID)
	s.Require().NoError(err)
	s.True(line.Reconciled)
	s.Equal(payment.MatchID, line.MatchedBy)

	_, err = s.recon.ApproveMatch(s.ctx, run.RunID, payment.MatchID, testUser)
	s.ErrorIs(err, services.ErrMatchNotProposed)

	_, err = s.recon.CloseRun(s.ctx, run.RunID, testUser)
	s.ErrorIs(err, services.ErrRunHasPendingMatches)

	rejected, err := s.recon.RejectMatch(s.ctx, run.RunID, expense.MatchID, testUser)
	s.Require().NoError(err)
	s.Equal(domain.MatchRejected, rejected.Status)

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Equal(1, got.TotalMatched)
	s.Equal(2, got.TotalUnmatched)

	closed, err := s.recon.CloseRun(s.ctx, run.RunID, testUser)
	s.Require().NoError(err)
	s.Equal(domain.RunApproved, closed.Status)
	s.Equal(testUser, closed.ClosedBy)
	s.NotNil(closed.ClosedAt)

	_, err = s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: s.lines[2].LineID, InternalKind: domain.MovementPayrollReceipt, InternalID: "r1",
	}, testUser)
	s.ErrorIs(err, services.ErrRunClosed)
	s.ErrorIs(err, apperrors.ErrConflict)

	// the approved payment is excluded from new proposals
	results, err := s.recon.RunMatching(s.ctx, s.bank.BankAccountID, day(2025, 6, 1), day(2025, 6, 30))
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("e1", results[0].InternalID)
}

func (s *ReconciliationServiceTestSuite) TestApproveMatch_LineTakenByOtherRun() {
	first := s.startRun()
	second := s.startRun()
	proposal := s.matchFor(second, "p1")

	// the first run reconciles the payment line against another movement
	_, err := s.recon.CreateManualMatch(s.ctx, first.RunID, dto.ManualMatchRequest{
		StatementLineID: proposal.StatementLineID, InternalKind: domain.MovementPayrollReceipt, InternalID: "r1",
	}, testUser)
	s.Require().NoError(err)

	_, err = s.recon.ApproveMatch(s.ctx, second.RunID, proposal.MatchID, testUser)
	s.ErrorIs(err, services.ErrStatementLineReconciled)

	m, err := s.env.store.FindMatchByID(s.ctx, proposal.MatchID)
	s.Require().NoError(err)
	s.Equal(domain.MatchProposed, m.Status)

	_, err = s.recon.ApproveMatch(s.ctx, first.RunID, s.matchFor(second, "e1").MatchID, testUser)
	s.ErrorIs(err, services.ErrMatchNotFound, "matches of another run are not visible")
}

func (s *ReconciliationServiceTestSuite) TestApproveMatch_MovementTakenByOtherRun() {
	first := s.startRun()
	second := s.startRun()

	_, err := s.recon.ApproveMatch(s.ctx, first.RunID, s.matchFor(first, "p1").MatchID, testUser)
	s.Require().NoError(err)

	_, err = s.recon.ApproveMatch(s.ctx, second.RunID, s.matchFor(second, "p1").MatchID, testUser)
	s.ErrorIs(err, services.ErrMovementReconciled)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Equal(1, s.approvedFor("p1"))
}

func (s *ReconciliationServiceTestSuite) TestApproveMatch_MovementTakenByManualMatch() {
	run := s.startRun()
	proposal := s.matchFor(run, "p1")
	commission := s.lines[2]

	_, err := s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: commission.LineID, InternalKind: domain.MovementPayment, InternalID: "p1",
	}, testUser)
	s.Require().NoError(err)

	// the proposal holding the same payment is superseded by the manual match
	superseded, err := s.env.store.FindMatchByID(s.ctx, proposal.MatchID)
	s.Require().NoError(err)
	s.Equal(domain.MatchRejected, superseded.Status)

	_, err = s.recon.ApproveMatch(s.ctx, run.RunID, proposal.MatchID, testUser)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Equal(1, s.approvedFor("p1"))

	line, err := s.env.store.FindStatementLineByID(s.ctx, proposal.StatementLineID)
	s.Require().NoError(err)
	s.False(line.Reconciled)

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Equal(2, got.TotalMatched)
	s.Equal(1, got.TotalUnmatched)
}

func (s *ReconciliationServiceTestSuite) TestCreateManualMatch_MovementTakenByOtherBankAccount() {
	other, err := s.env.svc.Statement.CreateBankAccount(s.ctx, dto.CreateBankAccountRequest{
		Name: "Banco Galicia CC", BankName: "Banco Galicia", AccountNumber: "4455-6677",
		LedgerAccountCode: domain.BankCheckingCode,
	}, testUser)
	s.Require().NoError(err)
	_, err = s.env.svc.Statement.ImportStatement(s.ctx, other.BankAccountID, reconStatement, testUser)
	s.Require().NoError(err)
	otherLines, err := s.env.svc.Statement.ListStatementLines(s.ctx, other.BankAccountID, dto.StatementLinesParams{})
	s.Require().NoError(err)
	s.Require().NotEmpty(otherLines)

	otherRun, err := s.recon.StartRun(s.ctx, dto.StartRunRequest{
		BankAccountID: other.BankAccountID, PeriodFrom: "2025-06-01", PeriodTo: "2025-06-30",
	}, testUser)
	s.Require().NoError(err)

	run := s.startRun()
	_, err = s.recon.ApproveMatch(s.ctx, run.RunID, s.matchFor(run, "p1").MatchID, testUser)
	s.Require().NoError(err)

	_, err = s.recon.CreateManualMatch(s.ctx, otherRun.RunID, dto.ManualMatchRequest{
		StatementLineID: otherLines[0].LineID, InternalKind: domain.MovementPayment, InternalID: "p1",
	}, testUser)
	s.ErrorIs(err, services.ErrMovementReconciled)

	_, err = s.recon.ApproveMatch(s.ctx, otherRun.RunID, s.matchFor(otherRun, "p1").MatchID, testUser)
	s.ErrorIs(err, services.ErrMovementReconciled)
	s.Equal(1, s.approvedFor("p1"))

	results, err := s.recon.RunMatching(s.ctx, other.BankAccountID, day(2025, 6, 1), day(2025, 6, 30))
	s.Require().NoError(err)
	for _, r := range results {
		s.NotEqual("p1", r.InternalID, "movements approved on another account are not proposed")
	}
}

func (s *ReconciliationServiceTestSuite) approvedFor(internalID string) int {
	runs, err := s.env.store.ListRuns(s.ctx, "")
	s.Require().NoError(err)
	n := 0
	for _, run := range runs {
		matches, err := s.env.store.ListMatchesByRun(s.ctx, run.RunID)
		s.Require().NoError(err)
		for _, m := range matches {
			if m.InternalID == internalID && m.Status == domain.MatchApproved {
				n++
			}
		}
	}
	return n
}

func (s *ReconciliationServiceTestSuite) TestCreateManualMatch() {
	run := s.startRun()
	commission := s.lines[2]

	match, err := s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: commission.LineID, InternalKind: domain.MovementPayrollReceipt, InternalID: "r1",
	}, testUser)
	s.Require().NoError(err)
	s.Equal(domain.MatchManual, match.MatchType)
	s.Equal(domain.MatchApproved, match.Status)
	s.Equal(100, match.Confidence)
	s.True(match.Difference.Equal(dec("79850")), match.Difference.String())

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Equal(3, got.TotalMatched)
	s.Equal(0, got.TotalUnmatched)

	line, err := s.env.store.FindStatementLineByID(s.ctx, commission.LineID)
	s.Require().NoError(err)
	s.True(line.Reconciled)

	_, err = s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: commission.LineID, InternalKind: domain.MovementExpense, InternalID: "e1",
	}, testUser)
	s.ErrorIs(err, services.ErrStatementLineReconciled)

	_, err = s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: s.lines[1].LineID, InternalKind: domain.MovementExpense, InternalID: "nope",
	}, testUser)
	s.ErrorIs(err, services.ErrMovementNotFound)

	_, err = s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: "missing", InternalKind: domain.MovementExpense, InternalID: "e1",
	}, testUser)
	s.ErrorIs(err, services.ErrStatementLineNotFound)
}

func (s *ReconciliationServiceTestSuite) TestCreateManualMatch_SupersedesProposal() {
	run := s.startRun()
	proposal := s.matchFor(run, "e1")

	_, err := s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: proposal.StatementLineID, InternalKind: domain.MovementPayrollReceipt, InternalID: "r1",
	}, testUser)
	s.Require().NoError(err)

	superseded, err := s.env.store.FindMatchByID(s.ctx, proposal.MatchID)
	s.Require().NoError(err)
	s.Equal(domain.MatchRejected, superseded.Status)

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Equal(2, got.TotalMatched)
	s.Equal(1, got.TotalUnmatched)
}

func (s *ReconciliationServiceTestSuite) TestCreateManualMatch_IsAtomic() {
	run := s.startRun()
	commission := s.lines[2]

	boom := errors.New("counter update failed")
	s.env.store.FailOn("UpdateRun", boom)
	_, err := s.recon.CreateManualMatch(s.ctx, run.RunID, dto.ManualMatchRequest{
		StatementLineID: commission.LineID, InternalKind: domain.MovementPayrollReceipt, InternalID: "r1",
	}, testUser)
	s.ErrorIs(err, boom)
	s.env.store.FailOn("UpdateRun", nil)

	line, err := s.env.store.FindStatementLineByID(s.ctx, commission.LineID)
	s.Require().NoError(err)
	s.False(line.Reconciled, "line flip is rolled back with the counters")
	s.Empty(line.MatchedBy)

	got, err := s.recon.GetRun(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Len(got.Matches, 2)
	s.Equal(2, got.TotalMatched)
	s.Equal(1, got.TotalUnmatched)
}

func (s *ReconciliationServiceTestSuite) TestRunSummary() {
	_, err := s.env.svc.Ledger.PostEntry(s.ctx, entryRequest("2025-06-01", bankCode, equityCode, "100000", "100000"), testUser)
	s.Require().NoError(err)
	run := s.startRun()

	summary, err := s.recon.RunSummary(s.ctx, run.RunID)
	s.Require().NoError(err)
	s.Equal(2, summary.Proposed)
	s.Zero(summary.Approved)
	s.Equal(bankCode, summary.LedgerAccountCode)
	s.True(summary.LedgerBalance.Equal(dec("100000")), summary.LedgerBalance.String())
	s.Require().NotNil(summary.BankClosingBalance)
	s.True(summary.BankClosingBalance.Equal(dec("108615.44")))
	s.True(summary.UnmatchedBankAmount.Equal(dec("8615.44")), summary.UnmatchedBankAmount.String())
}
