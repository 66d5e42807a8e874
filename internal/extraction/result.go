package extraction

import (
	"github.com/shopspring/decimal"
)

// Address is a party block parsed into contact fields. Every field is
// independently nullable.
type Address struct {
	Name       *string `json:"name"`
	Street     *string `json:"street"`
	PostalCode *string `json:"postal_code"`
	City       *string `json:"city"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	TaxID      *string `json:"tax_id"`
}

// ValidationStatus is the outcome of cross-checking a line item's arithmetic.
type ValidationStatus string

const (
	StatusValidated ValidationStatus = "validated"
	StatusWarning   ValidationStatus = "warning"
)

// Validation carries the validation status and, for warnings, a message
// meant for human review.
type Validation struct {
	Status  ValidationStatus `json:"status"`
	Message string           `json:"message,omitempty"`
}

// Validated reports whether the item passed cross-validation.
func (v Validation) Validated() bool {
	return v.Status == StatusValidated
}

func validated() Validation {
	return Validation{Status: StatusValidated}
}

func warning(message string) Validation {
	return Validation{Status: StatusWarning, Message: message}
}

// LineItem is one row of the itemized table.
type LineItem struct {
	Description  string           `json:"description"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Unit         *string          `json:"unit"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	LineTotal    *decimal.Decimal `json:"line_total"`
	TaxAmount    *decimal.Decimal `json:"tax_amount"`
	TotalWithTax *decimal.Decimal `json:"total_with_tax"`
	Validation   Validation       `json:"validation"`
}

// Totals are the three headline amounts of the invoice.
type Totals struct {
	HT  *decimal.Decimal `json:"ht"`
	TVA *decimal.Decimal `json:"tva"`
	TTC *decimal.Decimal `json:"ttc"`
}

// Metadata holds the document-level reference fields.
type Metadata struct {
	InvoiceNumber  *string `json:"invoice_number"`
	InvoicingDate  *string `json:"invoicing_date"` // YYYY-MM-DD
	DueDate        *string `json:"due_date"`       // YYYY-MM-DD
	PaymentTerms   *string `json:"payment_terms"`
	OrderReference *string `json:"order_reference"`

	// Set when a date came from the unlabeled positional fallback rather
	// than a labeled match.
	InvoicingDateInferred bool `json:"invoicing_date_inferred"`
	DueDateInferred       bool `json:"due_date_inferred"`
}

// Meta describes how the result was produced.
type Meta struct {
	Confidence float64  `json:"confidence"`
	RawText    string   `json:"raw_text"`
	Warnings   []string `json:"warnings"`
}

// InvoiceResult is the structured record produced for one document.
type InvoiceResult struct {
	Vendor *Address `json:"vendor"`
	Client *Address `json:"client"`

	InvoiceNumber  *string `json:"invoice_number"`
	InvoicingDate  *string `json:"invoicing_date"`
	DueDate        *string `json:"due_date"`
	PaymentTerms   *string `json:"payment_terms"`
	OrderReference *string `json:"order_reference"`
	Notes          *string `json:"notes"`

	LineItems []LineItem `json:"line_items"`
	Totals    Totals     `json:"totals"`
	Meta      Meta       `json:"meta"`
}

// NeedsReview reports whether a human should look at the result.
func (r *InvoiceResult) NeedsReview() bool {
	return len(r.Meta.Warnings) > 0
}
