package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	numericDate = `\d{4}-\d{2}-\d{2}|\d{1,2}[/.\-]\d{1,2}[/.\-](?:\d{4}|\d{2})`
	writtenDate = `\d{1,2}(?:er|st|nd|rd|th)?\s+(?:janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre|january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{4}`
	datePattern = `(?:` + numericDate + `|` + writtenDate + `)`

	identifier = `([A-Z0-9](?:[A-Z0-9\-/_.]*[A-Z0-9])?)`
)

var (
	reDateToken = regexp.MustCompile(`(?i)` + datePattern)
	reISODate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reNumDate   = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})$`)
	reWordDate  = regexp.MustCompile(`(?i)^(\d{1,2})(?:er|st|nd|rd|th)?\s+(\p{L}+)\.?\s+(\d{4})$`)

	invoiceNumberRules = []Rule{
		newRule("invoice-number",
			`(?i)\b(?:invoice\s*(?:no\.?|number|n°|#)|facture\s*(?:n°|no\.?|num[ée]ro|#)|n°\s*(?:de\s+)?facture|num[ée]ro\s+de\s+facture)\s*[:#.]?\s*`+identifier),
		newRule("invoice-number-loose",
			`(?i)\b(?:invoice|facture)\s*[:#]?\s*([A-Z]{0,4}[\-/]?\d[A-Z0-9\-/_.]*)`),
	}

	issueDateRule = newRule("issue-date",
		`(?im)(?:date\s+of\s+issue|issue\s+date|date\s+issued|invoice\s+date|date\s+de\s+(?:la\s+)?facture|date\s+de\s+facturation|date\s+d['’][ée]mission|^[ ]*date)\s*[:\-]?\s*(?:le\s+|on\s+)?(`+datePattern+`)`)

	dueDateRule = newRule("due-date",
		`(?i)(?:due\s+date|date\s+due|payment\s+due|due\s+on|date\s+d['’][ée]ch[ée]ance|[ée]ch[ée]ance|date\s+limite(?:\s+de\s+paiement)?|payable\s+(?:by|before|avant\s+le)|à\s+payer\s+avant\s+le)\s*[:\-]?\s*(?:le\s+|on\s+)?(`+datePattern+`)`)

	paymentTermsRule = newRule("payment-terms",
		`(?i)(?:payment\s+terms|terms\s+of\s+payment|conditions\s+de\s+(?:paiement|r[èe]glement)|modalit[ée]s\s+de\s+(?:paiement|r[èe]glement)|mode\s+de\s+(?:paiement|r[èe]glement))[ ]*[:\-]?[ ]*([^\n]+)`)

	orderReferenceRule = newRule("order-reference",
		`(?i)(?:order\s+(?:reference|ref\.?|no\.?|number|#)|purchase\s+order(?:\s+(?:no\.?|number|#))?|\bp\.?o\.?\s*(?:no\.?|number|#|:)|bon\s+de\s+commande(?:\s+n°)?|r[ée]f(?:[ée]rence)?\.?\s+commande|commande\s+n°|n°\s+de\s+commande)\s*[:#.]?\s*`+identifier)
)

var monthNames = map[string]time.Month{
	"janvier": time.January, "january": time.January, "jan": time.January,
	"février": time.February, "fevrier": time.February, "february": time.February, "feb": time.February,
	"mars": time.March, "march": time.March, "mar": time.March,
	"avril": time.April, "april": time.April, "apr": time.April,
	"mai": time.May, "may": time.May,
	"juin": time.June, "june": time.June, "jun": time.June,
	"juillet": time.July, "july": time.July, "jul": time.July,
	"août": time.August, "aout": time.August, "august": time.August, "aug": time.August,
	"septembre": time.September, "september": time.September, "sep": time.September, "sept": time.September,
	"octobre": time.October, "october": time.October, "oct": time.October,
	"novembre": time.November, "november": time.November, "nov": time.November,
	"décembre": time.December, "decembre": time.December, "december": time.December, "dec": time.December,
}

// ParseDate interprets a date-shaped token. Numeric dates are read day
// first; when the first field cannot be a day-of-month pairing, the token is
// read month first.
func ParseDate(token string) Match[time.Time] {
	token = strings.TrimSpace(token)

	var year, month, day int
	switch {
	case reISODate.MatchString(token):
		m := reISODate.FindStringSubmatch(token)
		year, month, day = atoi(m[1]), atoi(m[2]), atoi(m[3])
	case reNumDate.MatchString(token):
		m := reNumDate.FindStringSubmatch(token)
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		if len(m[3]) == 2 {
			year += 2000
		}
	case reWordDate.MatchString(token):
		m := reWordDate.FindStringSubmatch(token)
		mon, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return malformed[time.Time](token)
		}
		day, month, year = atoi(m[1]), int(mon), atoi(m[3])
	default:
		return absent[time.Time]()
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return malformed[time.Time](token)
	}
	return found(t, token)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// dateTokens returns every well-formed date in appearance order.
func dateTokens(text string) []time.Time {
	var dates []time.Time
	for _, loc := range reDateToken.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if touchesDigits(text, start, end) {
			continue
		}
		if d := ParseDate(text[start:end]); d.Outcome == Found {
			dates = append(dates, d.Value)
		}
	}
	return dates
}

// touchesDigits reports whether text[start:end] is glued to more digits,
// such as a phone number "01.23.45.67.89" read as a date.
func touchesDigits(text string, start, end int) bool {
	if start > 0 && isDigit(text[start-1]) {
		return true
	}
	if start > 1 && isSeparator(text[start-1]) && isDigit(text[start-2]) {
		return true
	}
	if end < len(text) && isDigit(text[end]) {
		return true
	}
	return end+1 < len(text) && isSeparator(text[end]) && isDigit(text[end+1])
}

func isSeparator(b byte) bool {
	return b == '.' || b == '/' || b == '-'
}

func labeledDate(rule Rule, text string) Match[time.Time] {
	raw := rule.Find(text)
	if raw.Outcome != Found {
		return absent[time.Time]()
	}
	return ParseDate(raw.Value)
}

func isoDate(t time.Time) *string {
	s := t.Format("2006-01-02")
	return &s
}

// ExtractMetadata finds the reference fields anywhere in the text.
//
// Dates prefer a labeled match. Without one, the invoicing date is the
// first date-shaped token of the document and the due date the second; the
// corresponding Inferred flag is set because this positional guess is less
// reliable than a label.
func ExtractMetadata(text string) Metadata {
	var md Metadata

	for _, rule := range invoiceNumberRules {
		if m := rule.Find(text); m.Outcome == Found {
			md.InvoiceNumber = m.Ptr()
			break
		}
	}

	dates := dateTokens(text)

	if issue := labeledDate(issueDateRule, text); issue.Outcome == Found {
		md.InvoicingDate = isoDate(issue.Value)
	} else if len(dates) > 0 {
		md.InvoicingDate = isoDate(dates[0])
		md.InvoicingDateInferred = true
	}

	if due := labeledDate(dueDateRule, text); due.Outcome == Found {
		md.DueDate = isoDate(due.Value)
	} else if len(dates) > 1 {
		md.DueDate = isoDate(dates[1])
		md.DueDateInferred = true
	}

	md.PaymentTerms = paymentTermsRule.Find(text).Ptr()
	md.OrderReference = orderReferenceRule.Find(text).Ptr()

	return md
}
