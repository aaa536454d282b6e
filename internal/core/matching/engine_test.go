package matching_test

import (
	"testing"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/matching"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func line(id string, amount string, desc string, ref string) domain.BankStatementLine {
	return domain.BankStatementLine{
		LineID:      id,
		Date:        day,
		Description: desc,
		Reference:   ref,
		Amount:      decimal.RequireFromString(amount),
	}
}

func payment(id string, amount string, counterparty string, ref string) domain.InternalMovement {
	return domain.InternalMovement{
		Kind:      domain.MovementPayment,
		ID:        id,
		Label:     domain.MovementLabel(domain.MovementPayment, counterparty),
		Amount:    decimal.RequireFromString(amount),
		Date:      day,
		Reference: ref,
	}
}

func TestMatch_ExactWithoutReference(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "10000.00", "TRANSF JUAN PEREZ", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "JUAN PEREZ", "")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchExact, results[0].MatchType)
	assert.Equal(t, 90, results[0].Confidence)
	assert.True(t, results[0].Difference.IsZero())
	assert.Equal(t, "Pago - JUAN PEREZ", results[0].InternalLabel)
}

func TestMatch_ExactWithReference(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "-2500.00", "DEBITO", "OP-000123")},
		[]domain.InternalMovement{payment("p1", "-2500.00", "Proveedor SA", "op-000123")},
	)
	require.Len(t, results, 1)
	assert.Equal(t, 100, results[0].Confidence)
}

func TestMatch_ApproximateWithinTolerance(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "10050.00", "DEPOSITO", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "ACME SRL", "")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchApproximate, results[0].MatchType)
	assert.Equal(t, 60, results[0].Confidence)
	assert.True(t, results[0].Difference.Equal(decimal.RequireFromString("50")))
}

func TestMatch_ApproximateKeepsSignedDifference(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "9950.00", "DEPOSITO", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "ACME SRL", "")},
	)

	require.Len(t, results, 1)
	assert.True(t, results[0].Difference.Equal(decimal.RequireFromString("-50")))
	assert.Equal(t, 60, results[0].Confidence)
}

func TestMatch_OutsideToleranceFallsThroughToReference(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "10150.00", "TRANSF JUAN PEREZ", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "JUAN PEREZ", "")},
	)

	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchReference, results[0].MatchType)
	assert.Equal(t, 40, results[0].Confidence)
	assert.True(t, results[0].Difference.Equal(decimal.RequireFromString("150")))
}

func TestMatch_OutsideToleranceWithoutCueIsUnmatched(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "10150.00", "DEPOSITO EFECTIVO", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "JUAN PEREZ", "")},
	)
	assert.Empty(t, results)
}

func TestMatch_FirstFitAndExclusivity(t *testing.T) {
	engine := matching.NewEngine()
	lines := []domain.BankStatementLine{
		line("l1", "500.00", "PAGO A", ""),
		line("l2", "500.00", "PAGO B", ""),
		line("l3", "500.00", "PAGO C", ""),
	}
	movements := []domain.InternalMovement{
		payment("p1", "500.00", "Uno", ""),
		payment("p2", "500.00", "Dos", ""),
	}

	results := engine.Match(lines, movements)
	require.Len(t, results, 2)
	assert.Equal(t, "l1", results[0].StatementLineID)
	assert.Equal(t, "p1", results[0].InternalID)
	assert.Equal(t, "l2", results[1].StatementLineID)
	assert.Equal(t, "p2", results[1].InternalID)

	seenLines := map[string]bool{}
	seenMovements := map[string]bool{}
	for _, r := range results {
		assert.False(t, seenLines[r.StatementLineID])
		assert.False(t, seenMovements[r.InternalID])
		seenLines[r.StatementLineID] = true
		seenMovements[r.InternalID] = true
	}
}

func TestMatch_FirstQualifyingNotClosest(t *testing.T) {
	engine := matching.NewEngine()
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "1000.00", "DEP", "")},
		[]domain.InternalMovement{
			payment("far", "995.00", "X", ""),
			payment("near", "999.00", "Y", ""),
		},
	)
	require.Len(t, results, 1)
	assert.Equal(t, "far", results[0].InternalID)
}

func TestMatch_SortedByConfidenceAndDeterministic(t *testing.T) {
	engine := matching.NewEngine()
	lines := []domain.BankStatementLine{
		line("ref", "777.00", "TRANSF MARIA GOMEZ", ""),
		line("approx", "2010.00", "DEP", ""),
		line("exact", "300.00", "DEP", "R-9"),
	}
	movements := []domain.InternalMovement{
		payment("m-ref", "100.00", "Maria Gomez", ""),
		payment("m-approx", "2000.00", "Otro", ""),
		payment("m-exact", "300.00", "Tercero", "R-9"),
	}

	first := engine.Match(lines, movements)
	require.Len(t, first, 3)
	assert.Equal(t, []int{100, 60, 40}, []int{first[0].Confidence, first[1].Confidence, first[2].Confidence})
	assert.Equal(t, "exact", first[0].StatementLineID)
	assert.Equal(t, "approx", first[1].StatementLineID)
	assert.Equal(t, "ref", first[2].StatementLineID)

	second := engine.Match(lines, movements)
	assert.Equal(t, first, second)
}

func TestMatch_CustomTolerance(t *testing.T) {
	engine := matching.NewEngine(matching.WithAmountTolerance(decimal.NewFromFloat(0.02)))
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "10150.00", "DEP", "")},
		[]domain.InternalMovement{payment("p1", "10000.00", "X", "")},
	)
	require.Len(t, results, 1)
	assert.Equal(t, domain.MatchApproximate, results[0].MatchType)
}

func TestMatch_LabelWithoutSeparatorHasNoReferenceCue(t *testing.T) {
	engine := matching.NewEngine()
	mv := payment("p1", "1.00", "", "")
	mv.Label = "JUAN"
	results := engine.Match(
		[]domain.BankStatementLine{line("l1", "999.00", "TRANSF JUAN", "")},
		[]domain.InternalMovement{mv},
	)
	assert.Empty(t, results)
}
