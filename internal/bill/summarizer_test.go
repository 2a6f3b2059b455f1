package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Summarizer", func() {
	var (
		extractor  *Extractor
		summarizer *Summarizer
	)

	BeforeEach(func() {
		extractor = NewExtractor()
		summarizer = NewSummarizer()
	})

	twoItemBill := func(finalTotal string) *Bill {
		data := map[string]any{
			"bill_id":     "INV-1",
			"vendor_name": "Acme",
			"date":        "2024-01-15",
			"line_items": []any{
				map[string]any{"description": "Widget", "quantity": 2, "unit_price": 10, "amount": 20},
				map[string]any{"description": "Gadget", "quantity": 3, "unit_price": 15, "amount": 45},
			},
		}
		if finalTotal != "" {
			data["final_total"] = finalTotal
		}
		b, err := extractor.Build(data)
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	Describe("Summarize", func() {
		When("the stated total matches the computed total", func() {
			It("reports a matching summary with zero discrepancy", func() {
				summary := summarizer.Summarize(twoItemBill("65"))
				Expect(summary.ComputedTotal.String()).To(Equal("65"))
				Expect(summary.StatedTotal).NotTo(BeNil())
				Expect(summary.TotalMatch).To(BeTrue())
				Expect(summary.Discrepancy.String()).To(Equal("0"))
			})

			It("enumerates line items with 1-based indices", func() {
				summary := summarizer.Summarize(twoItemBill("65"))
				Expect(summary.LineItemDetails).To(HaveLen(2))
				Expect(summary.LineItemDetails[0].Index).To(Equal(1))
				Expect(summary.LineItemDetails[0].Description).To(Equal("Widget"))
				Expect(summary.LineItemDetails[0].Amount).To(Equal("20"))
				Expect(summary.LineItemDetails[1].Index).To(Equal(2))
				Expect(summary.LineItemDetails[1].Amount).To(Equal("45"))
			})
		})

		When("the stated total exceeds the computed total", func() {
			It("reports the signed discrepancy", func() {
				summary := summarizer.Summarize(twoItemBill("70"))
				Expect(summary.ComputedTotal.String()).To(Equal("65"))
				Expect(summary.TotalMatch).To(BeFalse())
				Expect(summary.Discrepancy.String()).To(Equal("5"))
			})
		})

		When("no total is stated", func() {
			It("reports a match with a nil stated total", func() {
				summary := summarizer.Summarize(twoItemBill(""))
				Expect(summary.StatedTotal).To(BeNil())
				Expect(summary.TotalMatch).To(BeTrue())
				Expect(summary.Discrepancy.String()).To(Equal("0"))
			})
		})

		When("sub-totals are present", func() {
			It("lists them without affecting the computed total", func() {
				b := twoItemBill("65")
				b.SubTotals = []SubTotal{
					{Label: "Hardware", Amount: mustDecimal("65"), LineItemRefs: []int{0, 1}},
				}
				summary := summarizer.Summarize(b)
				Expect(summary.SubTotals).To(HaveLen(1))
				Expect(summary.SubTotals[0].Label).To(Equal("Hardware"))
				Expect(summary.SubTotals[0].Amount).To(Equal("65"))
				Expect(summary.SubTotals[0].LineItemCount).To(Equal(2))
				Expect(summary.ComputedTotal.String()).To(Equal("65"))
				Expect(summary.TotalMatch).To(BeTrue())
			})
		})
	})

	Describe("SummarizeMany", func() {
		It("combines computed totals and item counts", func() {
			b1, err := extractor.Build(map[string]any{
				"bill_id": "A", "vendor_name": "V", "date": "2024-01-01",
				"line_items": []any{
					map[string]any{"description": "One", "amount": 100},
				},
				"final_total": 999,
			})
			Expect(err).NotTo(HaveOccurred())
			b2, err := extractor.Build(map[string]any{
				"bill_id": "B", "vendor_name": "W", "date": "2024-01-02",
				"line_items": []any{
					map[string]any{"description": "Two", "amount": 50},
					map[string]any{"description": "Three", "amount": 75},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			aggregate := summarizer.SummarizeMany([]*Bill{b1, b2})
			Expect(aggregate.BillCount).To(Equal(2))
			Expect(aggregate.TotalLineItems).To(Equal(3))
			// Combined total sums computed totals, never stated totals
			Expect(aggregate.CombinedTotal.String()).To(Equal("225"))
			Expect(aggregate.Summaries).To(HaveLen(2))
			Expect(aggregate.Summaries[0].BillID).To(Equal("A"))
		})

		It("handles an empty list", func() {
			aggregate := summarizer.SummarizeMany(nil)
			Expect(aggregate.BillCount).To(Equal(0))
			Expect(aggregate.CombinedTotal.String()).To(Equal("0"))
			Expect(aggregate.Summaries).To(BeEmpty())
		})
	})

	Describe("RenderText", func() {
		It("renders header, items, and computed total", func() {
			text := summarizer.RenderText(twoItemBill(""))
			Expect(text).To(ContainSubstring("Bill Summary: INV-1"))
			Expect(text).To(ContainSubstring("Vendor: Acme"))
			Expect(text).To(ContainSubstring("Date: 2024-01-15"))
			Expect(text).To(ContainSubstring("1. Widget: 2 x $10 = $20"))
			Expect(text).To(ContainSubstring("2. Gadget: 3 x $15 = $45"))
			Expect(text).To(ContainSubstring("Computed Total: $65"))
			Expect(text).NotTo(ContainSubstring("Stated Total"))
			Expect(text).NotTo(ContainSubstring("Sub-totals:"))
		})

		It("includes the sub-totals section only when sub-totals exist", func() {
			b := twoItemBill("")
			b.SubTotals = []SubTotal{{Label: "Hardware", Amount: mustDecimal("65")}}
			text := summarizer.RenderText(b)
			Expect(text).To(ContainSubstring("Sub-totals:"))
			Expect(text).To(ContainSubstring("Hardware: $65"))
		})

		It("warns about a discrepancy only when totals mismatch", func() {
			matching := summarizer.RenderText(twoItemBill("65"))
			Expect(matching).To(ContainSubstring("Stated Total: $65"))
			Expect(matching).NotTo(ContainSubstring("Discrepancy"))

			mismatching := summarizer.RenderText(twoItemBill("70"))
			Expect(mismatching).To(ContainSubstring("Stated Total: $70"))
			Expect(mismatching).To(ContainSubstring("Discrepancy: $5"))
		})

		It("is deterministic", func() {
			b := twoItemBill("70")
			Expect(summarizer.RenderText(b)).To(Equal(summarizer.RenderText(b)))
		})
	})
})
