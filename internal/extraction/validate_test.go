package extraction

import (
	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var _ = Describe("Validate", func() {
	When("the row is consistent", func() {
		It("is validated", func() {
			v := Validate(dec("10"), dec("150"), dec("20"), decPtr("300"), dec("1800"))
			Expect(v.Status).To(Equal(StatusValidated))
			Expect(v.Message).To(BeEmpty())
		})
	})

	When("the total is off by less than the tolerance", func() {
		It("is validated", func() {
			v := Validate(dec("10"), dec("150"), dec("20"), nil, dec("1800.99"))
			Expect(v.Validated()).To(BeTrue())
		})
	})

	When("the total with tax is misread", func() {
		It("warns with the expected and extracted totals", func() {
			v := Validate(dec("10"), dec("150"), dec("20"), decPtr("300"), dec("1900"))
			Expect(v.Status).To(Equal(StatusWarning))
			Expect(v.Message).To(ContainSubstring("expected 1800.00"))
			Expect(v.Message).To(ContainSubstring("extracted 1900.00"))
			Expect(v.Message).NotTo(ContainSubstring("tax amount"))
		})
	})

	When("the tax amount is misread", func() {
		It("warns about the tax amount", func() {
			v := Validate(dec("10"), dec("150"), dec("20"), decPtr("350"), dec("1800"))
			Expect(v.Status).To(Equal(StatusWarning))
			Expect(v.Message).To(Equal("tax amount: expected 300.00, extracted 350.00"))
		})
	})

	DescribeTable("accepts totals computed from the row",
		func(qty, price, rate string) {
			q, p, r := dec(qty), dec(price), dec(rate)
			base := q.Mul(p)
			tax := base.Mul(r).Div(decimal.NewFromInt(100)).Round(2)
			total := base.Add(tax)
			Expect(Validate(q, p, r, &tax, total).Validated()).To(BeTrue())
		},
		Entry(nil, "1", "0.01", "20"),
		Entry(nil, "3", "19.99", "5.5"),
		Entry(nil, "12.5", "48", "10"),
		Entry(nil, "100", "0.35", "2.1"),
		Entry(nil, "7", "1234.56", "20"),
		Entry(nil, "1", "999999.99", "0"),
	)

	DescribeTable("flags totals further than the tolerance",
		func(qty, price, rate, offset string) {
			q, p, r := dec(qty), dec(price), dec(rate)
			total := q.Mul(p).Mul(decimal.NewFromInt(1).Add(r.Div(decimal.NewFromInt(100)))).Add(dec(offset))
			Expect(Validate(q, p, r, nil, total).Status).To(Equal(StatusWarning))
		},
		Entry(nil, "10", "150", "20", "1.01"),
		Entry(nil, "10", "150", "20", "-100"),
		Entry(nil, "2", "50", "5.5", "5"),
		Entry(nil, "1", "10", "0", "-2"),
	)
})
