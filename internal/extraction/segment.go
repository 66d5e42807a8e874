package extraction

import (
	"regexp"
	"strings"
)

// Anchor is a named, case-insensitive anchor used to find section
// boundaries in the text.
type Anchor struct {
	Name string
	re   *regexp.Regexp
}

// NewAnchor builds an anchor matching any of words as whole words. Spaces in a
// word match any run of whitespace.
func NewAnchor(name string, words ...string) Anchor {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		parts := strings.Fields(w)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		alts = append(alts, strings.Join(parts, `\s+`))
	}
	pattern := `(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(alts, "|") + `)(?:[^\p{L}\p{N}]|$)`
	return Anchor{Name: name, re: regexp.MustCompile(pattern)}
}

// NewPatternAnchor builds an anchor from a raw regular expression. When the
// expression has a capture group, the first group marks the anchor itself.
func NewPatternAnchor(name, pattern string) Anchor {
	return Anchor{Name: name, re: regexp.MustCompile(pattern)}
}

// locate returns the byte range of the first occurrence of the anchor in s.
func (a Anchor) locate(s string) (int, int, bool) {
	if a.re == nil {
		return 0, 0, false
	}
	m := a.re.FindStringSubmatchIndex(s)
	if m == nil {
		return 0, 0, false
	}
	if len(m) >= 4 && m[2] >= 0 {
		return m[2], m[3], true
	}
	return m[0], m[1], true
}

// Anchors groups the anchors that carve the text into sections. Each section
// has a starting anchor and the anchors that end it.
type Anchors struct {
	Vendor      Anchor
	VendorStops []Anchor
	Client      Anchor
	ClientStops []Anchor
	Table       Anchor
	TableStops  []Anchor
	Notes       Anchor
	NotesStops  []Anchor
}

var (
	clientAnchor = NewAnchor("client",
		"client", "customer", "buyer", "recipient", "bill to", "billed to",
		"destinataire", "acheteur", "facturé à", "adressé à")

	referenceAnchor = NewAnchor("reference",
		"invoice no", "invoice number", "invoice #", "invoice n°",
		"facture n°", "facture no", "n° facture", "n° de facture",
		"date", "due", "échéance", "référence", "reference", "ref",
		"order", "commande", "description", "désignation", "designation",
		"article", "articles", "prestation", "prestations", "item", "items")

	totalHTAnchor = NewAnchor("total-ht",
		"total ht", "total h.t.", "total hors taxe", "total hors taxes",
		"total before tax", "total excl. tax", "total excluding tax",
		"subtotal", "sub-total", "sous-total", "sous total", "montant ht")

	blankLine = NewPatternAnchor("blank-line", `\n[ ]*\n`)
)

// DefaultAnchors returns the French/English anchor vocabulary.
func DefaultAnchors() Anchors {
	return Anchors{
		Vendor: NewAnchor("vendor",
			"vendor", "seller", "supplier", "issuer", "fournisseur", "vendeur",
			"émetteur", "emetteur", "prestataire"),
		VendorStops: []Anchor{clientAnchor, referenceAnchor},
		Client:      clientAnchor,
		ClientStops: []Anchor{referenceAnchor},
		Table: NewAnchor("table",
			"description", "désignation", "designation", "libellé", "libelle",
			"article", "articles", "prestation", "prestations", "item", "items"),
		TableStops: []Anchor{totalHTAnchor},
		Notes: NewAnchor("notes",
			"notes", "note", "remarks", "comments", "commentaires", "observations"),
		NotesStops: []Anchor{
			blankLine,
			NewAnchor("trailer",
				"total", "iban", "bic", "signature", "thank you", "merci",
				"payment terms", "conditions de paiement", "conditions de règlement"),
		},
	}
}

// Segment returns the text between the first occurrence of section and the
// first following occurrence of any stop anchor, or the end of the text when
// no stop anchor follows. It is Absent when section does not occur.
func Segment(text string, section Anchor, stops ...Anchor) Match[string] {
	_, end, ok := section.locate(text)
	if !ok {
		return absent[string]()
	}

	return cutAtStop(strings.TrimLeft(text[end:], " \t\n:-"), stops)
}

// SegmentItemRows is the fallback for tables printed without a header row.
// The block starts at the first line that reads like a line item (a
// description and at least two amounts, not a total) and ends at the first
// following stop anchor. It is Absent when no line qualifies.
func SegmentItemRows(text string, stops ...Anchor) Match[string] {
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if looksLikeItemRow(line) {
			return cutAtStop(text[offset:], stops)
		}
		offset += len(line)
	}
	return absent[string]()
}

func looksLikeItemRow(line string) bool {
	row := reCurrency.ReplaceAllString(line, "")
	return !isSummaryRow(row) && reLetter.MatchString(row) && len(findAmounts(row)) >= 2
}

func cutAtStop(rest string, stops []Anchor) Match[string] {
	cut := len(rest)
	for _, stop := range stops {
		if start, _, ok := stop.locate(rest); ok && start < cut {
			cut = start
		}
	}
	return found(strings.TrimSpace(rest[:cut]), rest[:cut])
}
