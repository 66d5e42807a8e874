package extraction

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reCurrency      = regexp.MustCompile(`€|\bEUR\b|\$|£`)
	reTaxRate       = regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:[.,]\d{1,2})?)%`)
	reDescBoundary  = regexp.MustCompile(` {2,}\d`)
	reLooseBoundary = regexp.MustCompile(` \d`)
	reNumberToken   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	reLetter        = regexp.MustCompile(`\p{L}`)
	reLeadingBullet = regexp.MustCompile(`^[-*•·>]+\s*`)
	reHeaderWord    = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:qty|qt[ée]|quantit[ée]|quantity|unit[ée]?|price|prix|p\.u\.|pu|tva|vat|total|montant|amount|taux|rate|ht|ttc)(?:[^\p{L}]|$)`)
	reSummaryRow    = regexp.MustCompile(`(?i)^(?:sous[\s\-]?total|sub\s*-?\s*total|total|montant\s+(?:ht|tva|ttc)|net\s+(?:à|a)\s+payer|amount\s+due)(?:[^\p{L}]|$)`)
)

// unitVocabulary maps the canonical unit label to the tokens read as it.
var unitVocabulary = map[string][]string{
	"hour":      {"h", "hr", "hrs", "hour", "hours", "heure", "heures"},
	"m2":        {"m2", "m²", "sqm"},
	"kg":        {"kg", "kgs", "kilo", "kilos", "kilogram", "kilograms", "kilogramme", "kilogrammes"},
	"unit":      {"u", "un", "unit", "units", "unité", "unités", "unite", "unites"},
	"piece":     {"pc", "pcs", "pce", "pces", "piece", "pieces", "pièce", "pièces"},
	"flat-rate": {"forfait", "flat", "flat-rate", "lump sum", "ft"},
	"day":       {"day", "days", "jour", "jours", "j"},
	"month":     {"month", "months", "mois"},
}

var reUnit, unitByToken = unitMatcher()

func unitMatcher() (*regexp.Regexp, map[string]string) {
	byToken := map[string]string{}
	var tokens []string
	for canonical, words := range unitVocabulary {
		for _, w := range words {
			byToken[w] = canonical
			tokens = append(tokens, w)
		}
	}
	// Longer tokens first so "hours" is preferred over "h".
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	for i, t := range tokens {
		tokens[i] = regexp.QuoteMeta(t)
	}
	re := regexp.MustCompile(`(?i)(?:^|[\s\d])(` + strings.Join(tokens, "|") + `)(?:[\s.]|$)`)
	return re, byToken
}

// rowNotes collects observations about a row that belong in the document
// warnings rather than in the item's validation.
type rowNotes []string

// ParseTable parses every row of a line-item table block, in order. Header,
// summary and blank rows, and rows without a description, are skipped.
func ParseTable(block string) []LineItem {
	items, _ := parseTable(block)
	return items
}

func parseTable(block string) ([]LineItem, rowNotes) {
	var (
		items []LineItem
		notes rowNotes
	)
	for i, row := range strings.Split(block, "\n") {
		if strings.TrimSpace(row) == "" || isHeaderRow(row, i == 0) || isSummaryRow(row) {
			continue
		}
		item, ok, rowNote := parseRow(row)
		if !ok {
			continue
		}
		if rowNote != "" {
			notes = append(notes, rowNote)
		}
		items = append(items, item)
	}
	return items, notes
}

// isHeaderRow reports whether row is a column header. The first row of a
// block is the remainder of the header line the table label was found on.
func isHeaderRow(row string, first bool) bool {
	if len(findAmounts(row)) > 0 {
		return false
	}
	n := len(reHeaderWord.FindAllStringIndex(row, -1))
	return (first && n >= 1) || n >= 2
}

func isSummaryRow(row string) bool {
	return reSummaryRow.MatchString(strings.TrimSpace(row))
}

// parseRow tokenizes one table row. ok is false when the row has no
// description and must be discarded.
func parseRow(raw string) (item LineItem, ok bool, note string) {
	row := reCurrency.ReplaceAllString(raw, "")
	amounts := findAmounts(row)
	rate := findTaxRate(row)

	descEnd := len(row)
	if loc := reDescBoundary.FindStringIndex(row); loc != nil {
		descEnd = loc[0]
	} else if len(amounts) > 0 || rate.Outcome != Absent {
		if loc := reLooseBoundary.FindStringIndex(row); loc != nil {
			descEnd = loc[0]
		}
	}

	desc := strings.TrimSpace(reLeadingBullet.ReplaceAllString(strings.TrimSpace(row[:descEnd]), ""))
	if !reLetter.MatchString(desc) {
		return LineItem{}, false, ""
	}
	item.Description = desc

	tail := row[descEnd:]
	item.Quantity = findQuantity(row, descEnd, amounts).Ptr()
	item.Unit = findUnit(tail).Ptr()
	item.TaxRate = rate.Ptr()

	assignAmounts(&item, amounts)
	if len(amounts) > 4 {
		note = fmt.Sprintf("line item %q: %d amount columns, only the last four were assigned", desc, len(amounts))
	}

	item.Validation = validateItem(item)
	return item, true, note
}

// assignAmounts fills the monetary slots right to left: total with tax, tax
// amount, line total before tax, unit price.
func assignAmounts(item *LineItem, amounts []amountSpan) {
	slot := func(fromRight int) *decimal.Decimal {
		i := len(amounts) - 1 - fromRight
		if i < 0 {
			return nil
		}
		d, err := ParseAmount(amounts[i].raw)
		if err != nil {
			return nil
		}
		return &d
	}

	item.TotalWithTax = slot(0)
	item.TaxAmount = slot(1)
	item.LineTotal = slot(2)
	item.UnitPrice = slot(3)

	if len(amounts) == 3 && leadIsUnitPrice(item.Quantity, item.LineTotal, item.TaxAmount, item.TotalWithTax) {
		item.UnitPrice, item.LineTotal = item.LineTotal, nil
	}
}

// leadIsUnitPrice settles a three-amount row, where the leading amount may
// be either the unit price or the line total before tax. It picks whichever
// reading lands closer to totalWithTax - taxAmount.
func leadIsUnitPrice(qty, lead, tax, ttc *decimal.Decimal) bool {
	if qty == nil || lead == nil || tax == nil || ttc == nil {
		return false
	}
	implied := ttc.Sub(*tax)
	asUnit := qty.Mul(*lead).Sub(implied).Abs()
	asTotal := lead.Sub(implied).Abs()
	return asUnit.LessThan(asTotal)
}

// findTaxRate returns the first "n%" token whose value is a valid percentage.
func findTaxRate(row string) Match[decimal.Decimal] {
	for _, m := range reTaxRate.FindAllStringSubmatch(row, -1) {
		d, err := ParseAmount(m[1])
		if err != nil {
			return malformed[decimal.Decimal](m[1])
		}
		if d.IsNegative() || d.GreaterThan(hundred) {
			continue
		}
		return found(d, m[1])
	}
	return absent[decimal.Decimal]()
}

func findUnit(tail string) Match[string] {
	m := reUnit.FindStringSubmatch(tail)
	if m == nil {
		return absent[string]()
	}
	canonical, ok := unitByToken[strings.ToLower(m[1])]
	if !ok {
		return malformed[string](m[1])
	}
	return found(canonical, m[1])
}

// findQuantity returns the first standalone number after the description
// that is neither part of an amount token, nor a rate, nor glued to letters.
func findQuantity(row string, descEnd int, amounts []amountSpan) Match[decimal.Decimal] {
	for _, loc := range reNumberToken.FindAllStringIndex(row, -1) {
		start, end := loc[0], loc[1]
		if start < descEnd || insideAmount(start, amounts) {
			continue
		}
		if end < len(row) && row[end] == '%' {
			continue
		}
		if start > 0 && reLetter.MatchString(row[start-1:start]) {
			continue
		}
		d, err := ParseAmount(row[start:end])
		if err != nil {
			return malformed[decimal.Decimal](row[start:end])
		}
		return found(d, row[start:end])
	}
	return absent[decimal.Decimal]()
}

func insideAmount(pos int, amounts []amountSpan) bool {
	for _, a := range amounts {
		if pos >= a.start && pos < a.end {
			return true
		}
	}
	return false
}

// validateItem runs Validate when the row carries enough numbers, and
// otherwise attaches a low-confidence warning naming what is missing.
func validateItem(item LineItem) Validation {
	var missing []string
	if item.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if item.UnitPrice == nil && item.LineTotal == nil {
		missing = append(missing, "price")
	}
	if item.TaxRate == nil {
		missing = append(missing, "tax rate")
	}
	if item.TotalWithTax == nil {
		missing = append(missing, "total with tax")
	}
	if len(missing) > 0 {
		return warning("low confidence: missing " + strings.Join(missing, ", "))
	}

	unitPrice := item.UnitPrice
	if unitPrice == nil {
		if item.Quantity.IsZero() {
			return warning("low confidence: zero quantity with a line total")
		}
		derived := item.LineTotal.Div(*item.Quantity)
		unitPrice = &derived
	}
	return Validate(*item.Quantity, *unitPrice, *item.TaxRate, item.TaxAmount, *item.TotalWithTax)
}
