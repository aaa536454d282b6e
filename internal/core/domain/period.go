package domain

import "time"

// AccountingPeriod is one calendar month of the ledger.
type AccountingPeriod struct {
	PeriodID string     `json:"periodID"`
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Name     string     `json:"name"` // e.g. "Junio 2025"
	Closed   bool       `json:"closed"`
	ClosedAt *time.Time `json:"closedAt,omitempty"`
	ClosedBy string     `json:"closedBy,omitempty"`
	AuditFields
}

// PeriodKey returns the (year, month) a date falls in, in UTC.
func PeriodKey(t time.Time) (int, int) {
	u := t.UTC()
	return u.Year(), int(u.Month())
}

// After reports whether p is later than other.
func (p AccountingPeriod) After(other AccountingPeriod) bool {
	if p.Year != other.Year {
		return p.Year > other.Year
	}
	return p.Month > other.Month
}
