package cells

import (
	"strings"
	"unicode"
)

// NormalizeDate converts DD/MM/YY, DD/MM/YYYY or DD-MM-YYYY to YYYY-MM-DD.
// Anything else, including values already in ISO form, is returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	sep := ""
	switch {
	case strings.Contains(s, "/"):
		sep = "/"
	case strings.Contains(s, "-"):
		sep = "-"
	default:
		return s
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return s
	}
	day, month, year := parts[0], parts[1], parts[2]
	if !allDigits(day) || !allDigits(month) || !allDigits(year) {
		return s
	}
	if len(day) > 2 || len(month) > 2 {
		return s
	}
	switch len(year) {
	case 2:
		year = "20" + year
	case 4:
	default:
		return s
	}
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Clean trims a cell and drops bidi control marks that some exports embed.
func Clean(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200e', '\u200f', '\u202a', '\u202b', '\u202c', '\ufeff':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// Label collapses every whitespace run, newlines included, to one space so
// that headers like "תאריך\nעסקה" compare equal to "תאריך עסקה".
func Label(s string) string {
	return strings.Join(strings.FieldsFunc(Clean(s), unicode.IsSpace), " ")
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}
