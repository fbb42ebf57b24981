// Package cells holds the text helpers shared by the vendor analyzers:
// localized amount parsing, date normalization and milliunit scaling.
package cells

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shekelsync/shekelsync/internal/model"
)

// Rounding selects how a decimal amount is brought to whole milliunits.
// Each vendor keeps the rule its institution uses so balances match exactly.
type Rounding int

const (
	// HalfAwayFromZero rounds 0.5 milliunit away from zero.
	HalfAwayFromZero Rounding = iota
	// Floor rounds toward negative infinity.
	Floor
	// Truncate drops the fraction, rounding toward zero.
	Truncate
)

func (r Rounding) String() string {
	switch r {
	case HalfAwayFromZero:
		return "half-away-from-zero"
	case Floor:
		return "floor"
	case Truncate:
		return "truncate"
	default:
		return "unknown"
	}
}

var thousand = decimal.NewFromInt(1000)

// ToMilliunits scales a major-unit amount by 1000 and rounds it with r.
func ToMilliunits(d decimal.Decimal, r Rounding) model.Milliunits {
	scaled := d.Mul(thousand)
	switch r {
	case Floor:
		scaled = scaled.Floor()
	case Truncate:
		scaled = scaled.Truncate(0)
	default:
		scaled = scaled.Round(0)
	}
	return model.Milliunits(scaled.IntPart())
}

// numericRun matches digits with comma thousands separators and an optional
// decimal fraction.
var numericRun = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ExtractNumber finds the longest numeric run in s and parses it. The longest
// run wins so that "as of 02/05/2025: 5,259.19 ₪" yields 5259.19 rather than 2.
// Runs that are part of a date (joined to another digit by '/' or '-') are
// never candidates, and among equally long runs the last one wins. A '-' right
// before the run that is not a date separator makes it negative.
func ExtractNumber(s string) (decimal.Decimal, bool) {
	var best string
	negative := false
	for _, loc := range numericRun.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		if dateJoined(s, start, end) {
			continue
		}
		m := strings.TrimRight(s[start:end], ",")
		if len(m) >= len(best) {
			best = m
			negative = start > 0 && s[start-1] == '-'
		}
	}
	if best == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(best, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// dateJoined reports whether s[start:end] touches another digit through a
// date separator on either side.
func dateJoined(s string, start, end int) bool {
	if start >= 2 && isDateSep(s[start-1]) && isDigit(s[start-2]) {
		return true
	}
	if end+1 < len(s) && isDateSep(s[end]) && isDigit(s[end+1]) {
		return true
	}
	return false
}

func isDateSep(b byte) bool { return b == '/' || b == '-' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var amountNoise = strings.NewReplacer(
	",", "",
	"₪", "",
	"$", "",
	"€", "",
	"£", "",
	" ", "",
	"\u00a0", "",
	"\u200e", "",
	"\u200f", "",
	"\t", "",
)

// IsBlank reports whether a cell carries no amount at all (empty, whitespace,
// or only a currency glyph).
func IsBlank(s string) bool {
	return amountNoise.Replace(strings.TrimSpace(s)) == ""
}

// ParseAmount parses a localized amount cell such as "1,234.50", "₪ 12.00",
// "-50" or the trailing-minus form "50.00-". ok is false for blank cells and
// for text that is not a number.
func ParseAmount(s string) (decimal.Decimal, bool) {
	clean := amountNoise.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, false
	}
	if strings.HasSuffix(clean, "-") && !strings.HasPrefix(clean, "-") {
		clean = "-" + strings.TrimSuffix(clean, "-")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// StripNonNumeric keeps digits, the decimal point and a minus sign, then parses.
func StripNonNumeric(s string) (decimal.Decimal, bool) {
	clean := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if clean == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
