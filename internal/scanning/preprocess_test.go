package scanning

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// sampleImage draws a light page with a dark band across the middle
func sampleImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 235, G: 230, B: 220, A: 255}
			if y >= h/3 && y < 2*h/3 {
				c = color.RGBA{R: 30, G: 40, B: 50, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

var _ = Describe("ImagingPreprocessor", func() {
	var (
		input  []byte
		output []byte
		err    error
		pre    *ImagingPreprocessor
	)

	BeforeEach(func() {
		pre = NewImagingPreprocessor(400, 128)
	})

	JustBeforeEach(func() {
		output, err = pre.Preprocess(input)
	})

	When("given a JPEG", func() {
		BeforeEach(func() {
			var buf bytes.Buffer
			Expect(jpeg.Encode(&buf, sampleImage(200, 90), nil)).To(Succeed())
			input = buf.Bytes()
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return a PNG resized to the configured width", func() {
			img, err := png.Decode(bytes.NewReader(output))
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(400))
			Expect(img.Bounds().Dy()).To(Equal(180))
		})

		It("should threshold every pixel to black or white", func() {
			img, err := png.Decode(bytes.NewReader(output))
			Expect(err).NotTo(HaveOccurred())
			for _, p := range []image.Point{{10, 5}, {200, 90}, {390, 175}} {
				r, g, b, _ := img.At(p.X, p.Y).RGBA()
				Expect(r).To(Equal(g))
				Expect(g).To(Equal(b))
				Expect(r == 0 || r == 0xffff).To(BeTrue())
			}
		})

		It("should keep the dark band dark and the page light", func() {
			img, err := png.Decode(bytes.NewReader(output))
			Expect(err).NotTo(HaveOccurred())
			r, _, _, _ := img.At(200, 90).RGBA()
			Expect(r).To(Equal(uint32(0)))
			r, _, _, _ = img.At(200, 10).RGBA()
			Expect(r).To(Equal(uint32(0xffff)))
		})
	})

	When("given bytes that are not an image", func() {
		BeforeEach(func() {
			input = []byte("definitely not an image")
		})

		It("returns an error", func() {
			Expect(err).To(MatchError(ContainSubstring("unsupported image format")))
		})
	})

	Describe("defaults", func() {
		It("should fill in width and threshold", func() {
			p := NewImagingPreprocessor(0, 0)
			Expect(p.Width).To(Equal(1800))
			Expect(p.Threshold).To(Equal(uint8(160)))
		})
	})
})

var _ = Describe("isHEICFormat", func() {
	It("recognizes the ftyp brand", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects short and foreign data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
		Expect(isHEICFormat([]byte("%PDF-1.7 0000000"))).To(BeFalse())
	})
})

var _ = Describe("meanConfidence", func() {
	It("averages the word confidences", func() {
		boxes := []gosseract.BoundingBox{{Confidence: 90}, {Confidence: 70}}
		Expect(meanConfidence(boxes)).To(Equal(80.0))
	})

	It("is zero without words", func() {
		Expect(meanConfidence(nil)).To(Equal(0.0))
	})
})
