package extraction

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount is returned when a numeric-looking token is not a number.
var ErrMalformedAmount = errors.New("malformed amount")

// amountPattern matches a monetary amount: digits, optionally grouped by
// thousands with a space, dot or comma, then a decimal mark and two digits.
const amountPattern = `\d{1,3}(?:[ \x{00A0}\x{202F}.,]\d{3})+[.,]\d{2}|\d+[.,]\d{2}`

var (
	reAmountToken = regexp.MustCompile(`(` + amountPattern + `)(?:[^\d]|$)`)
	reNumeric     = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
)

// ParseAmount converts a locale-formatted number ("1 234,56", "1.234,56",
// "1234.56") to a decimal rounded to two places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	// The last separator is the decimal mark; any earlier one groups thousands.
	if i := strings.LastIndexAny(s, ".,"); i >= 0 {
		intPart, ok := ungroup(s[:i])
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
		}
		s = intPart + "." + s[i+1:]
	}

	if !reNumeric.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return d.Round(2), nil
}

// ungroup removes thousands separators from the integer part of an amount.
// A grouped integer part is a leading group of one to three digits followed
// by groups of exactly three.
func ungroup(intPart string) (string, bool) {
	seps := strings.Count(intPart, ".") + strings.Count(intPart, ",")
	if seps == 0 {
		return intPart, true
	}
	groups := strings.FieldsFunc(intPart, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) != seps+1 {
		return "", false
	}
	lead := strings.TrimPrefix(groups[0], "-")
	if len(lead) < 1 || len(lead) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// amountSpan is an amount token located in a row.
type amountSpan struct {
	start, end int
	raw        string
}

// findAmounts returns every amount token of s in appearance order. Tokens
// directly followed by a percent sign are rates, not amounts, and tokens
// followed by another separated digit group are dates like 01.03.2024.
func findAmounts(s string) []amountSpan {
	var spans []amountSpan
	for pos := 0; pos < len(s); {
		m := reAmountToken.FindStringSubmatchIndex(s[pos:])
		if m == nil {
			break
		}
		start, end := pos+m[2], pos+m[3]
		// A token starting inside a longer number ("Ref 2024 150,00") is
		// retried one byte later until it starts on a number boundary.
		if continuesNumber(s, start) {
			pos = start + 1
			continue
		}
		pos = end
		if strings.HasPrefix(strings.TrimLeft(s[end:], " "), "%") {
			continue
		}
		if rest := s[end:]; len(rest) > 1 && (rest[0] == '.' || rest[0] == ',' || rest[0] == '/') && isDigit(rest[1]) {
			continue
		}
		spans = append(spans, amountSpan{start: start, end: end, raw: s[start:end]})
	}
	return spans
}

// continuesNumber reports whether position i of s is preceded by a digit,
// directly or through a decimal separator.
func continuesNumber(s string, i int) bool {
	if i == 0 {
		return false
	}
	if isDigit(s[i-1]) {
		return true
	}
	return i >= 2 && (s[i-1] == '.' || s[i-1] == ',') && isDigit(s[i-2])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
