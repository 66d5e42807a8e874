package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/invoice-ocr/internal/extraction"
	"github.com/zombor/invoice-ocr/internal/scanning"
)

// IDGenerator generates unique IDs for invoices
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// DefaultConcurrency bounds how many invoices Reextract works on at once
const DefaultConcurrency = 4

// Service handles invoice operations
type Service struct {
	db           DB
	preprocessor scanning.Preprocessor
	recognizer   scanning.Recognizer
	storage      Storage
	extractor    *extraction.Extractor
	concurrency  int
	idGenerator  IDGenerator
	timeSource   TimeSource
}

// NewService creates a new Service with a UUID generator and the wall clock
func NewService(db DB, preprocessor scanning.Preprocessor, recognizer scanning.Recognizer, storage Storage, extractor *extraction.Extractor) *Service {
	return NewServiceWithDeps(db, preprocessor, recognizer, storage, extractor, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, preprocessor scanning.Preprocessor, recognizer scanning.Recognizer, storage Storage, extractor *extraction.Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:           db,
		preprocessor: preprocessor,
		recognizer:   recognizer,
		storage:      storage,
		extractor:    extractor,
		concurrency:  DefaultConcurrency,
		idGenerator:  idGen,
		timeSource:   timeSrc,
	}
}

// SetConcurrency sets the worker limit used by Reextract
func (s *Service) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
}

var (
	reFilenameJunk   = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reFilenameSpaces = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and truncates long scanner names
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = reFilenameJunk.ReplaceAllString(base, "")
	base = strings.TrimSpace(reFilenameSpaces.ReplaceAllString(base, " "))

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "invoice"
	}
	return base + reFilenameJunk.ReplaceAllString(ext, "")
}

// ProcessInvoice stores an upload, runs it through preprocessing, recognition
// and extraction, and saves the result
func (s *Service) ProcessInvoice(ctx context.Context, filename string, data []byte, contentType string) (*Invoice, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.recognize(ctx, data)
	if err != nil {
		slog.Error("Failed to process invoice",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, err
	}

	invoice := &Invoice{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		Result:      result,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveInvoice(invoice); err != nil {
		s.removeFile(savedPath)
		return nil, fmt.Errorf("saving invoice to database: %w", err)
	}

	slog.Info("Invoice processed",
		"id", id,
		"confidence", result.Meta.Confidence,
		"line_items", len(result.LineItems),
		"warnings", len(result.Meta.Warnings),
	)
	return invoice, nil
}

func (s *Service) recognize(ctx context.Context, data []byte) (*extraction.InvoiceResult, error) {
	image, err := s.preprocessor.Preprocess(data)
	if err != nil {
		return nil, fmt.Errorf("preprocessing invoice: %w", err)
	}

	recognition, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("recognizing invoice: %w", err)
	}

	result, err := s.extractor.Extract(recognition.Text, recognition.Confidence)
	if err != nil {
		return nil, fmt.Errorf("extracting invoice: %w", err)
	}
	return result, nil
}

// ExtractText runs extraction over text that was recognized elsewhere.
// Nothing is stored.
func (s *Service) ExtractText(text string, confidence float64) (*extraction.InvoiceResult, error) {
	result, err := s.extractor.Extract(text, confidence)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	return result, nil
}

// Reextract re-runs extraction over the stored text of the given invoices, or
// of every invoice when ids is empty. The original uploads are not
// recognized again.
func (s *Service) Reextract(ctx context.Context, ids []string) ([]*Invoice, error) {
	if len(ids) == 0 {
		all, err := s.db.ListInvoices()
		if err != nil {
			return nil, fmt.Errorf("listing invoices: %w", err)
		}
		for _, inv := range all {
			ids = append(ids, inv.ID)
		}
	}

	updated := make([]*Invoice, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inv, err := s.reextractOne(id)
			if err != nil {
				return err
			}
			updated[i] = inv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) reextractOne(id string) (*Invoice, error) {
	inv, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice %s: %w", id, err)
	}
	if inv.Result == nil {
		return nil, fmt.Errorf("invoice %s: %w", id, extraction.ErrEmptyDocument)
	}

	result, err := s.extractor.Extract(inv.Result.Meta.RawText, inv.Result.Meta.Confidence)
	if err != nil {
		return nil, fmt.Errorf("extracting invoice %s: %w", id, err)
	}
	inv.Result = result
	inv.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveInvoice(inv); err != nil {
		return nil, fmt.Errorf("updating invoice %s: %w", id, err)
	}
	return inv, nil
}

// GetInvoice retrieves an invoice by ID
func (s *Service) GetInvoice(id string) (*Invoice, error) {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns all invoices, newest first
func (s *Service) ListInvoices() ([]*Invoice, error) {
	invoices, err := s.db.ListInvoices()
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

// removeFile deletes a stored upload that no invoice record points to
func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to clean up file", "filename", name, "error", err)
	}
}

// DeleteInvoice removes an invoice and its file
func (s *Service) DeleteInvoice(id string) error {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return fmt.Errorf("getting invoice for deletion: %w", err)
	}

	if err := s.storage.Delete(invoice.Filename); err != nil {
		slog.Warn("Failed to delete file", "filename", invoice.Filename, "error", err)
	}

	if err := s.db.DeleteInvoice(id); err != nil {
		return fmt.Errorf("deleting invoice from database: %w", err)
	}
	return nil
}

// GetInvoiceFile retrieves the original upload for an invoice
func (s *Service) GetInvoiceFile(id string) ([]byte, string, error) {
	invoice, err := s.db.GetInvoice(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice: %w", err)
	}

	data, err := s.storage.Get(invoice.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting invoice file: %w", err)
	}
	return data, invoice.ContentType, nil
}

// IsClientError reports whether err was caused by the request rather than
// the service
func IsClientError(err error) bool {
	return errors.Is(err, extraction.ErrEmptyDocument) ||
		errors.Is(err, extraction.ErrMalformedAmount) ||
		errors.Is(err, scanning.ErrUnsupportedFormat)
}
