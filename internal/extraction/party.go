package extraction

import (
	"regexp"
	"strings"
)

var (
	rePostalCity = regexp.MustCompile(`(?:^|[^\d])(\d{5}) +(\p{Lu}[\p{L}'’\-]*(?:[ \-]\p{L}[\p{L}'’\-]*)*)`)
	reEmail      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	rePhone      = regexp.MustCompile(`(?:(?:\+|00)33[ .\-]?(?:\(0\))?[ .\-]?|\b0)[1-9](?:[ .\-]?\d{2}){4}\b`)
	reTaxID      = regexp.MustCompile(`(?i)\b(?:siret|siren|n°\s*tva|tva(?:\s+intra\w*\.?)?|vat(?:\s+(?:no|number|id))?|tax\s*id|tin)\b[^\d\n]{0,20}(\d(?: ?\d){12,14})\b`)
	reTaxLabel   = regexp.MustCompile(`(?i)^(?:siret|siren|n°\s*tva|tva|vat|tax\s*id)\b`)
	reStreet     = regexp.MustCompile(`(?i)^\d+(?:\s*(?:bis|ter|[a-c]))?[\s,]+(?:rue|avenue|av\.|bd|boulevard|place|pl\.|chemin|allée|allee|impasse|route|quai|cours|square|lieu-dit|street|st\.|road|rd\.?|lane|drive|way)(?:[\s.,]|$)`)
)

// postalCity finds a 5-digit postal code followed by a capitalized locality.
func postalCity(line string) (Match[string], Match[string]) {
	m := rePostalCity.FindStringSubmatch(line)
	if m == nil {
		return absent[string](), absent[string]()
	}
	return found(m[1], m[1]), found(strings.TrimSpace(m[2]), m[2])
}

func findEmail(block string) Match[string] {
	if m := reEmail.FindString(block); m != "" {
		return found(m, m)
	}
	return absent[string]()
}

func findPhone(block string) Match[string] {
	if m := rePhone.FindString(block); m != "" {
		return found(strings.TrimSpace(m), m)
	}
	return absent[string]()
}

// findTaxID returns a labeled registration number of 13 to 15 digits with
// its spacing removed.
func findTaxID(block string) Match[string] {
	m := reTaxID.FindStringSubmatch(block)
	if m == nil {
		return absent[string]()
	}
	return found(strings.ReplaceAll(m[1], " ", ""), m[1])
}

// ExtractParty parses a segmented party block. It returns nil when the
// block has no content at all.
func ExtractParty(block string) *Address {
	var lines []string
	for _, l := range strings.Split(block, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	addr := &Address{}

	for _, l := range lines {
		code, city := postalCity(l)
		if code.Outcome == Found {
			addr.PostalCode = code.Ptr()
			addr.City = city.Ptr()
			break
		}
	}

	addr.Email = findEmail(block).Ptr()
	addr.Phone = findPhone(block).Ptr()
	addr.TaxID = findTaxID(block).Ptr()

	for _, l := range lines {
		if isPostalLine(l) || reEmail.MatchString(l) || reTaxID.MatchString(l) || reTaxLabel.MatchString(l) {
			continue
		}
		name := strings.Trim(l, " :-")
		if name != "" {
			addr.Name = &name
		}
		break
	}

	for _, l := range lines {
		if reStreet.MatchString(l) {
			street := l
			addr.Street = &street
			break
		}
	}
	if addr.Street == nil && len(lines) > 1 {
		street := lines[1]
		addr.Street = &street
	}

	return addr
}

func isPostalLine(l string) bool {
	code, _ := postalCity(l)
	return code.Outcome == Found
}
