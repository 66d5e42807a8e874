package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrUnsupportedFormat is returned for uploads that are not a PDF or a
// decodable image
var ErrUnsupportedFormat = errors.New("unsupported image format")

// renderPDF renders the first page of a PDF
func renderPDF(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// Invoices are read from their first page only
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files carry an ftyp box at offset 4 with a HEIF-family brand
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// detectFormat sniffs the upload since callers only hand over bytes
func detectFormat(data []byte) string {
	if isHEICFormat(data) {
		return "image/heic"
	}
	return http.DetectContentType(data)
}

// decodeImage decodes PDFs, HEIC/HEIF photos and the standard image formats
func decodeImage(data []byte) (image.Image, error) {
	switch format := detectFormat(data); {
	case format == "application/pdf":
		return renderPDF(data)
	case format == "image/heic":
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, fmt.Errorf("%w %q. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF", ErrUnsupportedFormat, format)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return img, nil
	}
}
