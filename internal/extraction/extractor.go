package extraction

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyDocument is returned when the document has no text to extract from.
var ErrEmptyDocument = errors.New("empty document text")

// Config tunes the extractor.
type Config struct {
	// MinConfidence is the OCR confidence (0-100) below which the result
	// carries a low-confidence warning.
	MinConfidence float64
	Anchors       Anchors
}

// DefaultConfig returns the default threshold and anchor vocabulary.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 60,
		Anchors:       DefaultAnchors(),
	}
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor turns OCR text into an InvoiceResult. It holds no per-document
// state and is safe for concurrent use.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor.
func New(cfg Config, opts ...Option) *Extractor {
	e := &Extractor{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the pipeline over one document. The only error is
// ErrEmptyDocument; everything that cannot be read becomes a nil field or a
// warning on the result.
func (e *Extractor) Extract(text string, confidence float64) (*InvoiceResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	normalized := Normalize(text)
	if normalized == "" {
		return nil, ErrEmptyDocument
	}

	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if math.IsNaN(confidence) || confidence < 0 || confidence > 100 {
		clamped := clampConfidence(confidence)
		warn("OCR confidence %v outside 0-100, using %v", confidence, clamped)
		confidence = clamped
	}
	if confidence < e.cfg.MinConfidence {
		warn("low OCR confidence: %.1f is below %.1f", confidence, e.cfg.MinConfidence)
	}

	anchors := e.cfg.Anchors
	result := &InvoiceResult{LineItems: []LineItem{}}

	if block := Segment(normalized, anchors.Vendor, anchors.VendorStops...); block.Outcome == Found {
		result.Vendor = ExtractParty(block.Value)
	}
	if block := Segment(normalized, anchors.Client, anchors.ClientStops...); block.Outcome == Found {
		result.Client = ExtractParty(block.Value)
	}
	e.logger.Debug("Parties extracted", "vendor", result.Vendor != nil, "client", result.Client != nil)

	md := ExtractMetadata(normalized)
	result.InvoiceNumber = md.InvoiceNumber
	result.InvoicingDate = md.InvoicingDate
	result.DueDate = md.DueDate
	result.PaymentTerms = md.PaymentTerms
	result.OrderReference = md.OrderReference
	if md.InvoicingDateInferred {
		warn("invoicing date %s inferred from the first date in the document", *md.InvoicingDate)
	}
	if md.DueDateInferred {
		warn("due date %s inferred from the second date in the document", *md.DueDate)
	}
	e.logger.Debug("Metadata extracted", "invoice_number", md.InvoiceNumber != nil, "invoicing_date", md.InvoicingDate != nil)

	if block := Segment(normalized, anchors.Notes, anchors.NotesStops...); block.Outcome == Found && block.Value != "" {
		notes := block.Value
		result.Notes = &notes
	}

	totals := ExtractTotals(normalized)
	result.Totals = totals.Totals()
	for _, t := range []struct {
		name string
		m    Match[decimal.Decimal]
	}{
		{"HT", totals.HT},
		{"TVA", totals.TVA},
		{"TTC", totals.TTC},
	} {
		if t.m.Outcome == Malformed {
			warn("total %s: unreadable amount %q", t.name, t.m.Raw)
		}
	}
	if t := result.Totals; t.HT != nil && t.TVA != nil && t.TTC != nil && !withinTolerance(t.HT.Add(*t.TVA), *t.TTC) {
		warn("totals: HT %s + TVA %s does not match TTC %s",
			t.HT.StringFixed(2), t.TVA.StringFixed(2), t.TTC.StringFixed(2))
	}

	table := Segment(normalized, anchors.Table, anchors.TableStops...)
	if table.Outcome != Found {
		if table = SegmentItemRows(normalized, anchors.TableStops...); table.Outcome == Found {
			warn("no line-item table header found, reading items from the first row with amounts")
		}
	}
	if table.Outcome == Found {
		items, notes := parseTable(table.Value)
		result.LineItems = MergeContinuations(items)
		warnings = append(warnings, notes...)
	} else {
		warn("no line-item table found")
	}
	for i, item := range result.LineItems {
		if !item.Validation.Validated() {
			warn("line item %d (%s): %s", i+1, item.Description, item.Validation.Message)
		}
	}
	e.logger.Debug("Line items extracted", "count", len(result.LineItems))

	if warnings == nil {
		warnings = []string{}
	}
	result.Meta = Meta{
		Confidence: confidence,
		RawText:    normalized,
		Warnings:   warnings,
	}
	return result, nil
}

// Extract runs the pipeline with the default configuration.
func Extract(text string, confidence float64) (*InvoiceResult, error) {
	return New(DefaultConfig()).Extract(text, confidence)
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 100:
		return 100
	default:
		return c
	}
}
