// Package statement parses delimited bank statement exports into statement lines.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/locale"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyStatement = apperrors.Define(apperrors.ErrValidation, "statement has no header line")
	ErrMissingColumn  = apperrors.Define(apperrors.ErrValidation, "statement is missing a required column")
	ErrInvalidAmount  = apperrors.Define(apperrors.ErrValidation, "statement amount has an invalid format")
)

// Role is the meaning inferred for a statement column.
type Role string

const (
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleReference   Role = "reference"
	RoleAmount      Role = "amount"
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
	RoleBalance     Role = "balance"
)

// MissingColumnError names the role that could not be located in the header.
type MissingColumnError struct {
	Role Role
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn.Error(), e.Role)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// InvalidAmountError reports the data row and raw cell of a bad amount.
type InvalidAmountError struct {
	Row   int
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: row %d: %q", ErrInvalidAmount.Error(), e.Row, e.Value)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// synonyms are matched against folded header cells in this order; the first
// unassigned role whose keyword is a substring wins the column. Debit and
// credit come before amount so "Importe Débito" is a debit column.
var synonyms = []struct {
	role     Role
	keywords []string
}{
	{RoleDate, []string{"fecha"}},
	{RoleDebit, []string{"debito", "debe"}},
	{RoleCredit, []string{"credito", "haber"}},
	{RoleBalance, []string{"saldo"}},
	{RoleAmount, []string{"monto", "importe"}},
	{RoleReference, []string{"ref", "comprobante", "numero"}},
	{RoleDescription, []string{"desc", "concepto", "detalle"}},
}

var dateLayouts = []string{"2/1/2006", "2006-01-02"}

// Result is the outcome of parsing one statement.
type Result struct {
	Lines     []domain.BankStatementLine
	Skipped   int
	Delimiter rune
	Columns   map[Role]int
}

// Parse detects the delimiter and column roles from the header line and
// converts every data row. Rows with an unparseable date are skipped.
func Parse(raw string) (*Result, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	header := firstNonBlankLine(raw)
	if header == "" {
		return nil, ErrEmptyStatement
	}
	delim := ','
	if strings.Contains(header, ";") {
		delim = ';'
	}

	cr := csv.NewReader(strings.NewReader(raw))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	headerRec, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading statement header: %w", err)
	}
	columns := detectColumns(headerRec)
	if err := requireColumns(columns); err != nil {
		return nil, err
	}

	res := &Result{Delimiter: delim, Columns: columns, Lines: []domain.BankStatementLine{}}
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("reading statement row %d: %w", row, err)
		}
		line, ok, err := parseRow(rec, row, columns)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Lines = append(res.Lines, line)
	}
	return res, nil
}

func firstNonBlankLine(raw string) string {
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}

func detectColumns(header []string) map[Role]int {
	columns := make(map[Role]int)
	for idx, cell := range header {
		folded := locale.Fold(cell)
		if folded == "" {
			continue
		}
	roles:
		for _, syn := range synonyms {
			if _, taken := columns[syn.role]; taken {
				continue
			}
			for _, kw := range syn.keywords {
				if strings.Contains(folded, kw) {
					columns[syn.role] = idx
					break roles
				}
			}
		}
	}
	return columns
}

func requireColumns(columns map[Role]int) error {
	if _, ok := columns[RoleDate]; !ok {
		return &MissingColumnError{Role: RoleDate}
	}
	if _, ok := columns[RoleDescription]; !ok {
		return &MissingColumnError{Role: RoleDescription}
	}
	if hasAmountColumn(columns) || hasDebitCreditPair(columns) {
		return nil
	}
	return &MissingColumnError{Role: RoleAmount}
}

func hasAmountColumn(columns map[Role]int) bool {
	_, ok := columns[RoleAmount]
	return ok
}

func hasDebitCreditPair(columns map[Role]int) bool {
	_, debit := columns[RoleDebit]
	_, credit := columns[RoleCredit]
	return debit && credit
}

func cell(rec []string, columns map[Role]int, role Role) string {
	idx, ok := columns[role]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// parseRow reports ok=false for rows whose date cannot be read.
func parseRow(rec []string, row int, columns map[Role]int) (domain.BankStatementLine, bool, error) {
	date, ok := parseDate(cell(rec, columns, RoleDate))
	if !ok {
		return domain.BankStatementLine{}, false, nil
	}

	var amount decimal.Decimal
	if hasAmountColumn(columns) {
		raw := cell(rec, columns, RoleAmount)
		v, err := ParseAmount(raw)
		if err != nil {
			return domain.BankStatementLine{}, false, &InvalidAmountError{Row: row, Value: raw}
		}
		amount = v
	} else {
		debit, err := parseOptionalAmount(cell(rec, columns, RoleDebit))
		if err != nil {
			return domain.BankStatementLine{}, false, &InvalidAmountError{Row: row, Value: cell(rec, columns, RoleDebit)}
		}
		credit, err := parseOptionalAmount(cell(rec, columns, RoleCredit))
		if err != nil {
			return domain.BankStatementLine{}, false, &InvalidAmountError{Row: row, Value: cell(rec, columns, RoleCredit)}
		}
		amount = credit.Abs().Sub(debit.Abs())
	}

	line := domain.BankStatementLine{
		Date:        date,
		Description: cell(rec, columns, RoleDescription),
		Reference:   cell(rec, columns, RoleReference),
		Amount:      amount,
	}
	if raw := cell(rec, columns, RoleBalance); raw != "" {
		if bal, err := ParseAmount(raw); err == nil {
			line.RunningBalance = &bal
		}
	}
	return line, true, nil
}

func parseDate(s string) (time.Time, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, fields[0]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return ParseAmount(s)
}
