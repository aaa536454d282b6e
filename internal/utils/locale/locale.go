// Package locale holds the Spanish text helpers used for period names and
// bank statement headers.
package locale

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spanishMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var englishMonths = [12]string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthNamer formats period names for one language.
type MonthNamer struct {
	months [12]string
	caser  cases.Caser
}

// NewMonthNamer returns a namer for the BCP 47 tag; unknown tags fall back to Spanish.
func NewMonthNamer(tag string) *MonthNamer {
	parsed, err := language.Parse(tag)
	if err != nil {
		parsed = language.Spanish
	}
	base, _ := parsed.Base()
	months := spanishMonths
	if base.String() == "en" {
		months = englishMonths
	} else {
		parsed = language.Spanish
	}
	return &MonthNamer{months: months, caser: cases.Title(parsed)}
}

// PeriodName returns e.g. "Junio 2025".
func (m *MonthNamer) PeriodName(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", m.caser.String(m.months[month-1]), year)
}

// Fold lowercases s and strips diacritics, so "Débito" becomes "debito".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
