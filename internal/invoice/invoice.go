package invoice

import (
	"time"

	"github.com/zombor/invoice-ocr/internal/extraction"
)

// Invoice is an uploaded invoice document with its extraction result
type Invoice struct {
	ID          string                    `json:"id"`
	Filename    string                    `json:"filename"`
	ContentType string                    `json:"content_type"`
	Result      *extraction.InvoiceResult `json:"result"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}
