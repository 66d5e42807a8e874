package scanning

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Recognizer interface with a local Tesseract
// installation through gosseract.
type Tesseract struct {
	languages []string
}

// NewTesseract creates a Tesseract recognizer for the given languages
// (e.g. "fra", "eng")
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"fra", "eng"}
	}
	return &Tesseract{languages: languages}
}

// Recognize reads a preprocessed image. The confidence is the mean of the
// word-level confidences Tesseract reports.
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte) (*Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// gosseract clients are not safe for concurrent use, so each call gets its own
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return nil, fmt.Errorf("setting language: %w", err)
	}
	// Column gaps are meaningful to the extractor
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		return nil, fmt.Errorf("setting tesseract variable: %w", err)
	}
	if err := client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("reading word confidences: %w", err)
	}

	return &Recognition{
		Text:       text,
		Confidence: meanConfidence(boxes),
	}, nil
}

func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}

// Close is a no-op; clients are created per call
func (t *Tesseract) Close() error {
	return nil
}
