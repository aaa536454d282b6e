package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is a company bank or cash account. LedgerAccountCode links it
// to the cash account of the chart that books its movements.
type BankAccount struct {
	BankAccountID     string `json:"bankAccountID"`
	Name              string `json:"name"`
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	LedgerAccountCode string `json:"ledgerAccountCode"`
	IsActive          bool   `json:"isActive"`
	AuditFields
}

// BankStatementLine is one imported row of a bank statement. Amount is signed:
// positive for funds in, negative for funds out.
type BankStatementLine struct {
	LineID         string           `json:"lineID"`
	BankAccountID  string           `json:"bankAccountID"`
	Date           time.Time        `json:"date"`
	Description    string           `json:"description"`
	Reference      string           `json:"reference,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	RunningBalance *decimal.Decimal `json:"runningBalance,omitempty"`
	Reconciled     bool             `json:"reconciled"`
	MatchedBy      string           `json:"matchedBy,omitempty"`
	ImportBatchID  string           `json:"importBatchID,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// MovementKind names the business record behind an internal cash movement.
type MovementKind string

const (
	MovementPayment         MovementKind = "Payment"
	MovementExpense         MovementKind = "Expense"
	MovementPurchaseInvoice MovementKind = "PurchaseInvoice"
	MovementPayrollReceipt  MovementKind = "PayrollReceipt"
)

// Label returns the display prefix used in movement labels.
func (k MovementKind) Label() string {
	switch k {
	case MovementPayment:
		return "Pago"
	case MovementExpense:
		return "Gasto"
	case MovementPurchaseInvoice:
		return "Factura compra"
	case MovementPayrollReceipt:
		return "Recibo sueldo"
	}
	return string(k)
}

// LabelSeparator splits a movement label into kind and counterparty.
const LabelSeparator = " - "

// InternalMovement is a cash-affecting business record normalized to the
// statement line sign convention.
type InternalMovement struct {
	Kind      MovementKind    `json:"kind"`
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// MovementLabel builds "<kind> - <counterparty>".
func MovementLabel(kind MovementKind, counterparty string) string {
	return kind.Label() + LabelSeparator + counterparty
}
