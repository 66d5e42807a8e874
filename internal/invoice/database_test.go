package invoice

import (
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/invoice-ocr/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	newInvoice := func(id string) *Invoice {
		number := "FA-001"
		ttc := decimal.RequireFromString("1800.00")
		return &Invoice{
			ID:          id,
			Filename:    id + "_invoice.pdf",
			ContentType: "application/pdf",
			Result: &extraction.InvoiceResult{
				InvoiceNumber: &number,
				LineItems:     []extraction.LineItem{},
				Totals:        extraction.Totals{TTC: &ttc},
				Meta:          extraction.Meta{Confidence: 88.5, RawText: "Facture FA-001", Warnings: []string{}},
			},
			CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		}
	}

	Describe("SaveInvoice", func() {
		var (
			invoice *Invoice
			err     error
		)

		BeforeEach(func() {
			invoice = newInvoice("test-id")
		})

		JustBeforeEach(func() {
			err = db.SaveInvoice(invoice)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("round-trips the extraction result", func() {
				saved, getErr := db.GetInvoice("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Result.InvoiceNumber).To(HaveValue(Equal("FA-001")))
				Expect(saved.Result.Totals.TTC.Equal(decimal.RequireFromString("1800"))).To(BeTrue())
				Expect(saved.Result.Meta.Confidence).To(Equal(88.5))
				Expect(saved.CreatedAt.Equal(invoice.CreatedAt)).To(BeTrue())
			})
		})

		When("the invoice has no ID", func() {
			BeforeEach(func() {
				invoice.ID = ""
			})

			It("returns an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("GetInvoice", func() {
		var (
			invoiceID string
			invoice   *Invoice
			err       error
		)

		JustBeforeEach(func() {
			invoice, err = db.GetInvoice(invoiceID)
		})

		When("invoice exists", func() {
			BeforeEach(func() {
				invoiceID = "test-id"
				Expect(db.SaveInvoice(newInvoice("test-id"))).To(Succeed())
			})

			It("should return the invoice", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(invoice.ID).To(Equal("test-id"))
				Expect(invoice.Filename).To(Equal("test-id_invoice.pdf"))
			})
		})

		When("invoice does not exist", func() {
			BeforeEach(func() {
				invoiceID = "nonexistent"
			})

			It("returns ErrNotFound", func() {
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListInvoices", func() {
		When("invoices exist", func() {
			BeforeEach(func() {
				Expect(db.SaveInvoice(newInvoice("id1"))).To(Succeed())
				Expect(db.SaveInvoice(newInvoice("id2"))).To(Succeed())
			})

			It("returns all invoices", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(invoices).To(HaveLen(2))
			})
		})

		When("no invoices exist", func() {
			It("returns an empty list", func() {
				invoices, err := db.ListInvoices()
				Expect(err).NotTo(HaveOccurred())
				Expect(invoices).NotTo(BeNil())
				Expect(invoices).To(BeEmpty())
			})
		})
	})

	Describe("DeleteInvoice", func() {
		When("invoice exists", func() {
			BeforeEach(func() {
				Expect(db.SaveInvoice(newInvoice("test-id"))).To(Succeed())
			})

			It("removes it", func() {
				Expect(db.DeleteInvoice("test-id")).To(Succeed())
				_, err := db.GetInvoice("test-id")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})

		When("invoice does not exist", func() {
			It("returns ErrNotFound", func() {
				Expect(db.DeleteInvoice("nonexistent")).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("reopening", func() {
		It("keeps saved invoices", func() {
			Expect(db.SaveInvoice(newInvoice("persisted"))).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			invoice, err := db.GetInvoice("persisted")
			Expect(err).NotTo(HaveOccurred())
			Expect(invoice.ID).To(Equal("persisted"))
		})
	})
})
