package scanning

import "context"

// Recognition is the text an OCR engine read from one image together with
// the engine's own accuracy estimate.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Recognizer defines the interface for OCR engines
type Recognizer interface {
	// Recognize reads the text of a preprocessed image
	Recognize(ctx context.Context, imageData []byte) (*Recognition, error)
	// Close closes the recognizer and releases resources
	Close() error
}

// Preprocessor prepares a raw upload for recognition
type Preprocessor interface {
	// Preprocess returns a normalized PNG image
	Preprocess(imageData []byte) ([]byte, error)
}
