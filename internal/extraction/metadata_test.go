package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractMetadata", func() {
	var (
		text string
		md   Metadata
	)

	JustBeforeEach(func() {
		md = ExtractMetadata(text)
	})

	When("every field is labeled", func() {
		BeforeEach(func() {
			text = "Invoice No: INV-001\nDate of issue: 15/03/2024\nDue date: 2024-04-14\n" +
				"Payment terms: 30 days net\nOrder reference: PO-778"
		})

		It("extracts the labeled values", func() {
			Expect(md.InvoiceNumber).To(HaveValue(Equal("INV-001")))
			Expect(md.InvoicingDate).To(HaveValue(Equal("2024-03-15")))
			Expect(md.DueDate).To(HaveValue(Equal("2024-04-14")))
			Expect(md.PaymentTerms).To(HaveValue(Equal("30 days net")))
			Expect(md.OrderReference).To(HaveValue(Equal("PO-778")))
		})

		It("does not mark the dates as inferred", func() {
			Expect(md.InvoicingDateInferred).To(BeFalse())
			Expect(md.DueDateInferred).To(BeFalse())
		})
	})

	When("the labels are French", func() {
		BeforeEach(func() {
			text = "FACTURE N° F2024-118\nDate de facturation : 2 mars 2024\nDate d'échéance : 1er avril 2024\n" +
				"Conditions de paiement : 30 jours fin de mois"
		})

		It("extracts the labeled values", func() {
			Expect(md.InvoiceNumber).To(HaveValue(Equal("F2024-118")))
			Expect(md.InvoicingDate).To(HaveValue(Equal("2024-03-02")))
			Expect(md.DueDate).To(HaveValue(Equal("2024-04-01")))
			Expect(md.PaymentTerms).To(HaveValue(Equal("30 jours fin de mois")))
		})
	})

	When("no date is labeled", func() {
		BeforeEach(func() {
			text = "Facture FA-12\nParis, le 03/02/2024\nÀ régler avant 05/03/2024\nTél 01.23.45.67.89"
		})

		It("takes the first and second dates of the document", func() {
			Expect(md.InvoicingDate).To(HaveValue(Equal("2024-02-03")))
			Expect(md.DueDate).To(HaveValue(Equal("2024-03-05")))
		})

		It("marks both dates as inferred", func() {
			Expect(md.InvoicingDateInferred).To(BeTrue())
			Expect(md.DueDateInferred).To(BeTrue())
		})

		It("falls back to the loose invoice number rule", func() {
			Expect(md.InvoiceNumber).To(HaveValue(Equal("FA-12")))
		})
	})

	When("only the issue date is labeled", func() {
		BeforeEach(func() {
			text = "Invoice date: 10/01/2024\nDelivered 12/01/2024"
		})

		It("infers the due date from the second date", func() {
			Expect(md.InvoicingDate).To(HaveValue(Equal("2024-01-10")))
			Expect(md.InvoicingDateInferred).To(BeFalse())
			Expect(md.DueDate).To(HaveValue(Equal("2024-01-12")))
			Expect(md.DueDateInferred).To(BeTrue())
		})
	})

	When("the text has no metadata", func() {
		BeforeEach(func() {
			text = "Consulting services"
		})

		It("leaves every field nil", func() {
			Expect(md.InvoiceNumber).To(BeNil())
			Expect(md.InvoicingDate).To(BeNil())
			Expect(md.DueDate).To(BeNil())
			Expect(md.PaymentTerms).To(BeNil())
			Expect(md.OrderReference).To(BeNil())
		})
	})
})

var _ = Describe("ParseDate", func() {
	DescribeTable("reads date tokens",
		func(token string, want time.Time) {
			m := ParseDate(token)
			Expect(m.Outcome).To(Equal(Found))
			Expect(m.Value).To(Equal(want))
		},
		Entry("ISO", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Entry("day first", "15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Entry("dotted", "15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Entry("month first when the day cannot be a month", "03/15/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		Entry("two-digit year", "01/02/24", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		Entry("French month", "5 mars 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
		Entry("French ordinal", "1er janvier 2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		Entry("English month", "3rd September 2024", time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)),
	)

	DescribeTable("rejects impossible dates",
		func(token string) {
			Expect(ParseDate(token).Outcome).To(Equal(Malformed))
		},
		Entry("day 30 of February", "30/02/2024"),
		Entry("month 13 and day 13", "13/13/2024"),
		Entry("unknown month name", "5 brumaire 2024"),
	)

	It("is absent for tokens that are not dates", func() {
		Expect(ParseDate("INV-001").Outcome).To(Equal(Absent))
	})
})
