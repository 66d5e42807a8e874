package scanning

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// ImagingPreprocessor resizes an upload to a fixed width, converts it to
// grayscale and thresholds it to black and white.
type ImagingPreprocessor struct {
	Width     int
	Threshold uint8
	Contrast  float64
	Sharpen   float64
}

// NewImagingPreprocessor creates a preprocessor with the given output width
// and black/white threshold
func NewImagingPreprocessor(width int, threshold uint8) *ImagingPreprocessor {
	if width <= 0 {
		width = 1800
	}
	if threshold == 0 {
		threshold = 160
	}
	return &ImagingPreprocessor{
		Width:     width,
		Threshold: threshold,
		Contrast:  20,
		Sharpen:   1.0,
	}
}

// Preprocess decodes the upload (PDF, HEIC or a standard image format) and
// returns a PNG ready for recognition
func (p *ImagingPreprocessor) Preprocess(imageData []byte) ([]byte, error) {
	src, err := decodeImage(imageData)
	if err != nil {
		return nil, err
	}

	img := imaging.Resize(src, p.Width, 0, imaging.Lanczos)
	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, p.Contrast)
	img = imaging.Sharpen(img, p.Sharpen)

	threshold := p.Threshold
	img = imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		// Grayscale leaves R == G == B
		if c.R >= threshold {
			return color.NRGBA{R: 255, G: 255, B: 255, A: c.A}
		}
		return color.NRGBA{A: c.A}
	})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
