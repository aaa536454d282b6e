// Package matching proposes pairings between bank statement lines and
// internal cash movements.
package matching

import (
	"sort"
	"strings"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

const (
	// Confidence scores per tier.
	ExactWithReferenceConfidence = 100
	ExactConfidence              = 90
	ApproximateMaxConfidence     = 70
	ApproximateConfidenceSpan    = 20
	ReferenceConfidence          = 40
)

var (
	// DefaultAmountTolerance is the approximate-match ceiling as a fraction of the bank amount.
	DefaultAmountTolerance = decimal.NewFromFloat(0.01)

	// cent is the smallest difference that is not an exact match.
	cent = decimal.NewFromFloat(0.01)
)

// Engine runs the three greedy passes. The zero value is not usable; use NewEngine.
type Engine struct {
	amountTolerance decimal.Decimal
}

// Option configures an Engine.
type Option func(*Engine)

// WithAmountTolerance overrides the approximate-match tolerance fraction.
func WithAmountTolerance(fraction decimal.Decimal) Option {
	return func(e *Engine) {
		if fraction.IsPositive() {
			e.amountTolerance = fraction
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{amountTolerance: DefaultAmountTolerance}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// usage tracks which lines and movements a pass has consumed.
type usage struct {
	lines     map[string]bool
	movements map[int]bool
}

type pass func(line domain.BankStatementLine, mv domain.InternalMovement) (domain.MatchResult, bool)

// Match returns proposals sorted by confidence descending. Each line and each
// movement appears in at most one proposal. Inputs are not modified.
func (e *Engine) Match(lines []domain.BankStatementLine, movements []domain.InternalMovement) []domain.MatchResult {
	used := usage{
		lines:     make(map[string]bool, len(lines)),
		movements: make(map[int]bool, len(movements)),
	}

	results := make([]domain.MatchResult, 0)
	for _, p := range []pass{e.exact, e.approximate, e.reference} {
		var found []domain.MatchResult
		found, used = runPass(p, lines, movements, used)
		results = append(results, found...)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

// runPass is first-fit: for each free line the first free movement accepted by p wins.
func runPass(p pass, lines []domain.BankStatementLine, movements []domain.InternalMovement, used usage) ([]domain.MatchResult, usage) {
	var found []domain.MatchResult
	for _, line := range lines {
		if used.lines[line.LineID] {
			continue
		}
		for i, mv := range movements {
			if used.movements[i] {
				continue
			}
			if res, ok := p(line, mv); ok {
				found = append(found, res)
				used.lines[line.LineID] = true
				used.movements[i] = true
				break
			}
		}
	}
	return found, used
}

func (e *Engine) exact(line domain.BankStatementLine, mv domain.InternalMovement) (domain.MatchResult, bool) {
	diff := line.Amount.Sub(mv.Amount)
	if diff.Abs().GreaterThanOrEqual(cent) {
		return domain.MatchResult{}, false
	}
	confidence := ExactConfidence
	if referenceContains(line.Reference, mv.Reference) {
		confidence = ExactWithReferenceConfidence
	}
	return newResult(line, mv, domain.MatchExact, confidence, diff.Round(2)), true
}

func (e *Engine) approximate(line domain.BankStatementLine, mv domain.InternalMovement) (domain.MatchResult, bool) {
	tolerance := line.Amount.Abs().Mul(e.amountTolerance)
	diff := line.Amount.Sub(mv.Amount).Round(2)
	absDiff := diff.Abs()
	if absDiff.LessThan(cent) || absDiff.GreaterThan(tolerance) {
		return domain.MatchResult{}, false
	}
	scaled := absDiff.Div(tolerance).Mul(decimal.NewFromInt(ApproximateConfidenceSpan))
	confidence := decimal.NewFromInt(ApproximateMaxConfidence).Sub(scaled).Round(0).IntPart()
	return newResult(line, mv, domain.MatchApproximate, int(confidence), diff), true
}

func (e *Engine) reference(line domain.BankStatementLine, mv domain.InternalMovement) (domain.MatchResult, bool) {
	word := counterpartyFirstWord(mv.Label)
	if word == "" || !strings.Contains(strings.ToLower(line.Description), strings.ToLower(word)) {
		return domain.MatchResult{}, false
	}
	diff := line.Amount.Sub(mv.Amount).Round(2)
	return newResult(line, mv, domain.MatchReference, ReferenceConfidence, diff), true
}

// counterpartyFirstWord takes "Pago - JUAN PEREZ" to "JUAN".
func counterpartyFirstWord(label string) string {
	_, counterparty, ok := strings.Cut(label, domain.LabelSeparator)
	if !ok {
		return ""
	}
	fields := strings.Fields(counterparty)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func referenceContains(lineRef, movementRef string) bool {
	if lineRef == "" || movementRef == "" {
		return false
	}
	return strings.Contains(strings.ToLower(lineRef), strings.ToLower(movementRef))
}

func newResult(line domain.BankStatementLine, mv domain.InternalMovement, t domain.MatchType, confidence int, diff decimal.Decimal) domain.MatchResult {
	return domain.MatchResult{
		StatementLineID: line.LineID,
		InternalKind:    mv.Kind,
		InternalID:      mv.ID,
		InternalLabel:   mv.Label,
		MatchType:       t,
		Confidence:      confidence,
		BankAmount:      line.Amount,
		SystemAmount:    mv.Amount,
		Difference:      diff,
	}
}
