package extraction

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reLineBreaks   = regexp.MustCompile(`\r\n?|\f|\v`)
	reBoxNoiseLine = regexp.MustCompile(`(?m)^ *[_\-=~.]{3,} *(?:\n|\z)`)
	reRatePercent  = regexp.MustCompile(`(\d) +%`)
	reRunOfSpaces  = regexp.MustCompile(` {3,}`)
	reTrailing     = regexp.MustCompile(`(?m) +$`)
	reBlankRuns    = regexp.MustCompile(`\n{3,}`)

	spaceReplacer = strings.NewReplacer(
		"\t", "  ",
		"\u00a0", " ",
		"\u202f", " ",
		"\u2007", " ",
		"\u2009", " ",
	)
)

// digitLookalikes maps glyphs OCR engines commonly return in place of a
// digit. They are only rewritten when both neighbours are digits.
var digitLookalikes = map[rune]rune{
	'O': '0',
	'o': '0',
	'D': '0',
	'I': '1',
	'l': '1',
	'!': '1',
	'S': '5',
	'B': '8',
}

// Normalize rewrites recurring OCR confusions. The steps run in this order:
//
//  1. CRLF, CR, form feed and vertical tab become LF.
//  2. Unicode NFC composition.
//  3. Tabs become a two-space column separator; exotic spaces become spaces.
//  4. Digit lookalikes flanked by digits become digits ("1O5" -> "105").
//  5. Spaces between a number and a percent sign are removed.
//  6. Ruler lines ("-----", "____") are dropped.
//  7. Runs of three or more spaces collapse to two; runs of exactly two
//     are column boundaries and kept.
//  8. Trailing spaces are trimmed from every line.
//  9. Three or more consecutive newlines collapse to one blank line.
//
// Normalize is idempotent.
func Normalize(text string) string {
	s := reLineBreaks.ReplaceAllString(text, "\n")
	s = norm.NFC.String(s)
	s = spaceReplacer.Replace(s)
	s = fixDigitLookalikes(s)
	s = reRatePercent.ReplaceAllString(s, "$1%")
	s = reBoxNoiseLine.ReplaceAllString(s, "")
	s = reRunOfSpaces.ReplaceAllString(s, "  ")
	s = reTrailing.ReplaceAllString(s, "")
	s = reBlankRuns.ReplaceAllString(s, "\n\n")
	return strings.Trim(s, "\n ")
}

// fixDigitLookalikes repeats the substitution until nothing changes so that
// runs like "1OO2" are fully repaired.
func fixDigitLookalikes(s string) string {
	runes := []rune(s)
	for changed := true; changed; {
		changed = false
		for i := 1; i < len(runes)-1; i++ {
			d, ok := digitLookalikes[runes[i]]
			if !ok {
				continue
			}
			if isDigitRune(runes[i-1]) && (isDigitRune(runes[i+1]) || isLookalikeBetweenDigits(runes, i+1)) {
				runes[i] = d
				changed = true
			}
		}
	}
	return string(runes)
}

// isLookalikeBetweenDigits reports whether runes[i] starts a run of
// lookalikes that ends on a digit.
func isLookalikeBetweenDigits(runes []rune, i int) bool {
	for ; i < len(runes); i++ {
		if isDigitRune(runes[i]) {
			return true
		}
		if _, ok := digitLookalikes[runes[i]]; !ok {
			return false
		}
	}
	return false
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}
