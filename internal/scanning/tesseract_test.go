package scanning

import (
	"github.com/otiai10/gosseract/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("meanConfidence", func() {
	DescribeTable("averages word confidences",
		func(confidences []float64, expected float64) {
			boxes := make([]gosseract.BoundingBox, 0, len(confidences))
			for _, c := range confidences {
				boxes = append(boxes, gosseract.BoundingBox{Confidence: c})
			}
			Expect(meanConfidence(boxes)).To(BeNumerically("~", expected, 0.001))
		},
		Entry("no words", nil, 0.0),
		Entry("single word", []float64{87.5}, 87.5),
		Entry("several words", []float64{90, 80, 70}, 80.0),
	)
})
