package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Segment", func() {
	var anchors Anchors

	BeforeEach(func() {
		anchors = DefaultAnchors()
	})

	When("the section anchor is missing", func() {
		It("is absent", func() {
			m := Segment("Vendor\nAcme Corp\nInvoice No 12", anchors.Client, anchors.ClientStops...)
			Expect(m.Outcome).To(Equal(Absent))
			Expect(m.Ptr()).To(BeNil())
		})
	})

	When("a stop anchor follows", func() {
		It("returns the text up to the stop", func() {
			m := Segment("Vendor: Acme Corp\n12 rue de Paris\nClient: Globex", anchors.Vendor, anchors.VendorStops...)
			Expect(m.Outcome).To(Equal(Found))
			Expect(m.Value).To(Equal("Acme Corp\n12 rue de Paris"))
		})
	})

	When("no stop anchor follows", func() {
		It("runs to the end of the text", func() {
			m := Segment("Client\nGlobex SA\n69003 Lyon", anchors.Client, anchors.ClientStops...)
			Expect(m.Value).To(Equal("Globex SA\n69003 Lyon"))
		})
	})

	It("matches anchors as whole words only", func() {
		m := Segment("Clientele services\nnothing here", anchors.Client)
		Expect(m.Outcome).To(Equal(Absent))
	})

	It("matches anchors regardless of case and accents in the vocabulary", func() {
		m := Segment("FACTURÉ À\nGlobex SA\nDate : 01/02/2024", anchors.Client, anchors.ClientStops...)
		Expect(m.Value).To(Equal("Globex SA"))
	})

	It("ends notes at a blank line", func() {
		m := Segment("Notes: deliver to dock 4\nbefore noon\n\nIBAN FR76", anchors.Notes, anchors.NotesStops...)
		Expect(m.Value).To(Equal("deliver to dock 4\nbefore noon"))
	})

	It("supports custom anchors", func() {
		ship := NewAnchor("ship-to", "ship to", "livraison")
		m := Segment("Ship   to: Dock 4\nTotal 12,00", ship, NewAnchor("total", "total"))
		Expect(m.Value).To(Equal("Dock 4"))
	})
})

var _ = Describe("SegmentItemRows", func() {
	It("starts at the first row with a description and amounts", func() {
		text := "Client\nGlobex SA\nDate: 01.02.2024\nHosting  12  25,00  20%  60,00  360,00\nTotal HT: 300,00"
		m := SegmentItemRows(text, DefaultAnchors().TableStops...)
		Expect(m.Outcome).To(Equal(Found))
		Expect(m.Value).To(Equal("Hosting  12  25,00  20%  60,00  360,00"))
	})

	It("does not take a totals row for an item", func() {
		m := SegmentItemRows("Total HT 1500,00 TVA 300,00\nMerci", DefaultAnchors().TableStops...)
		Expect(m.Outcome).To(Equal(Absent))
	})
})
