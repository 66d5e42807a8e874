package extraction

import (
	"github.com/shopspring/decimal"
)

const (
	currencyPrefix = `(?:€|EUR|\$|£)?`
	rateInLabel    = `(?:[ ]*\(?[ ]*\d{1,2}(?:[.,]\d{1,2})?[ ]*%[ ]*\)?)?`
	totalSeparator = `[ ]*(?:\([ ]*(?:€|EUR)[ ]*\))?[ ]*[:\-=]?[ ]*`
)

func totalRule(name, labels string) Rule {
	return newRule(name,
		`(?i)(?:`+labels+`)`+rateInLabel+totalSeparator+currencyPrefix+`[ ]*(`+amountPattern+`)(?:[^\d]|$)`)
}

var (
	totalHTRule = totalRule("total-ht",
		`\btotal\s*h\.?\s?t\.?|\btotal\s+hors\s+taxes?|\btotal\s+(?:before|excl(?:uding|\.)?)\s+tax|\bsub\s*-?\s*total|\bsous[\s\-]total|\bmontant\s+h\.?t\.?|\btotal\s+net\s+h\.?t\.?`)

	totalTVARule = totalRule("total-tva",
		`\btotal\s*t\.?v\.?a\.?|\bmontant\s+t\.?v\.?a\.?|\btotal\s+(?:vat|tax)|\bvat(?:\s+amount)?|\btax\s+amount|\bt\.?v\.?a\.?`)

	totalTTCRule = totalRule("total-ttc",
		`\btotal\s*t\.?t\.?c\.?|\btotal\s+(?:including|incl\.?)\s+tax|\bamount\s+due|\bbalance\s+due|\btotal\s+due|\bnet\s+(?:à|a)\s+payer|\bnet\s+payable|\bgrand\s+total|\bmontant\s+t\.?t\.?c\.?`)
)

// TotalsMatch holds the three headline totals as tagged outcomes.
type TotalsMatch struct {
	HT  Match[decimal.Decimal]
	TVA Match[decimal.Decimal]
	TTC Match[decimal.Decimal]
}

// Totals flattens the outcomes into nullable amounts.
func (t TotalsMatch) Totals() Totals {
	return Totals{HT: t.HT.Ptr(), TVA: t.TVA.Ptr(), TTC: t.TTC.Ptr()}
}

// ExtractTotals finds the HT, TVA and TTC totals. For each, the first
// labeled amount in the text wins.
func ExtractTotals(text string) TotalsMatch {
	return TotalsMatch{
		HT:  totalHTRule.FindAmount(text),
		TVA: totalTVARule.FindAmount(text),
		TTC: totalTTCRule.FindAmount(text),
	}
}
