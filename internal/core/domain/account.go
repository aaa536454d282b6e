package domain

import (
	"strconv"
	"strings"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNatured reports whether debits increase the balance of this type.
func (t AccountType) IsDebitNatured() bool {
	return t == Asset || t == Expense
}

// Account is a node of the chart of accounts. Parent is a weak reference by id;
// the tree is assembled at read time.
type Account struct {
	AccountID       string      `json:"accountID"`
	Code            string      `json:"code"` // dot-segmented, e.g. 1.1.01.001
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	Level           int         `json:"level"`
	AcceptsPostings bool        `json:"acceptsPostings"`
	IsActive        bool        `json:"isActive"`
	ParentAccountID string      `json:"parentAccountID"`
	Description     string      `json:"description"`
	AuditFields
}

// CodeLevel returns the number of segments in an account code.
func CodeLevel(code string) int {
	if code == "" {
		return 0
	}
	return len(strings.Split(code, "."))
}

// ValidCode reports whether code is a non-empty list of dot-separated digit groups.
func ValidCode(code string) bool {
	if code == "" {
		return false
	}
	for _, seg := range strings.Split(code, ".") {
		if seg == "" {
			return false
		}
		if _, err := strconv.Atoi(seg); err != nil {
			return false
		}
		if strings.HasPrefix(seg, "-") || strings.HasPrefix(seg, "+") {
			return false
		}
	}
	return true
}

// IsChildCode reports whether child sits below parent in the code hierarchy.
func IsChildCode(parent, child string) bool {
	return strings.HasPrefix(child, parent+".")
}

// Diff lists the trackable fields that differ between a and updated.
func (a Account) Diff(updated Account) []FieldChange {
	var changes []FieldChange
	if a.Name != updated.Name {
		changes = append(changes, FieldChange{Field: "name", OldValue: a.Name, NewValue: updated.Name})
	}
	if a.Description != updated.Description {
		changes = append(changes, FieldChange{Field: "description", OldValue: a.Description, NewValue: updated.Description})
	}
	if a.AcceptsPostings != updated.AcceptsPostings {
		changes = append(changes, FieldChange{
			Field:    "acceptsPostings",
			OldValue: strconv.FormatBool(a.AcceptsPostings),
			NewValue: strconv.FormatBool(updated.AcceptsPostings),
		})
	}
	if a.IsActive != updated.IsActive {
		changes = append(changes, FieldChange{
			Field:    "isActive",
			OldValue: strconv.FormatBool(a.IsActive),
			NewValue: strconv.FormatBool(updated.IsActive),
		})
	}
	return changes
}

// AccountNode is an account with its children, built from the flat list.
type AccountNode struct {
	Account
	Children []*AccountNode `json:"children"`
}

// BuildAccountTree groups a flat list into root nodes by ParentAccountID,
// preserving the input order among siblings. Accounts whose parent is not
// in the list become roots.
func BuildAccountTree(accounts []Account) []*AccountNode {
	nodes := make(map[string]*AccountNode, len(accounts))
	for _, acc := range accounts {
		nodes[acc.AccountID] = &AccountNode{Account: acc}
	}
	roots := make([]*AccountNode, 0)
	for _, acc := range accounts {
		node := nodes[acc.AccountID]
		if parent, ok := nodes[acc.ParentAccountID]; ok && acc.ParentAccountID != "" {
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// CompareCodes orders account codes segment by segment numerically, so
// 1.9 sorts before 1.10 and a parent before its children.
func CompareCodes(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, errX := strconv.Atoi(as[i])
		y, errY := strconv.Atoi(bs[i])
		if errX != nil || errY != nil {
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return len(as) - len(bs)
}
