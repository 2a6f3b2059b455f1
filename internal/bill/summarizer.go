package bill

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItemDetail is a presentation row for a single line item. Amounts are
// stringified decimals.
type LineItemDetail struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
	Category    string `json:"category,omitempty"`
}

// SubTotalDetail is a presentation row for a sub-total.
type SubTotalDetail struct {
	Label         string `json:"label"`
	Amount        string `json:"amount"`
	LineItemCount int    `json:"line_item_count"`
}

// BillSummary is a derived projection of a Bill for presentation. It is
// recomputed from the Bill each time and holds no independent state.
type BillSummary struct {
	BillID          string           `json:"bill_id"`
	VendorName      string           `json:"vendor_name"`
	Date            string           `json:"date"`
	LineItemDetails []LineItemDetail `json:"line_item_details"`
	SubTotals       []SubTotalDetail `json:"sub_totals"`
	ComputedTotal   decimal.Decimal  `json:"computed_total"`
	StatedTotal     *decimal.Decimal `json:"stated_total"`
	TotalMatch      bool             `json:"total_match"`
	Discrepancy     decimal.Decimal  `json:"discrepancy"`
}

// MultiBillSummary aggregates summaries over a list of bills. CombinedTotal
// sums each bill's computed total, never its stated total.
type MultiBillSummary struct {
	BillCount      int             `json:"bill_count"`
	TotalLineItems int             `json:"total_line_items"`
	CombinedTotal  decimal.Decimal `json:"combined_total"`
	Summaries      []BillSummary   `json:"individual_summaries"`
}

// Summarizer derives presentation summaries from Bills. It performs no
// validation of its own; a Bill satisfies its invariants by construction.
type Summarizer struct{}

// NewSummarizer creates a new Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize generates a summary of a bill. The computed total sums
// individual line items only, so sub-totals can never be double-counted.
func (s *Summarizer) Summarize(b *Bill) BillSummary {
	itemDetails := make([]LineItemDetail, 0, len(b.LineItems))
	for i, item := range b.LineItems {
		itemDetails = append(itemDetails, LineItemDetail{
			Index:       i + 1,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			Amount:      item.Amount.String(),
			Category:    item.Category,
		})
	}

	subTotalDetails := make([]SubTotalDetail, 0, len(b.SubTotals))
	for _, st := range b.SubTotals {
		subTotalDetails = append(subTotalDetails, SubTotalDetail{
			Label:         st.Label,
			Amount:        st.Amount.String(),
			LineItemCount: len(st.LineItemRefs),
		})
	}

	return BillSummary{
		BillID:          b.BillID,
		VendorName:      b.VendorName,
		Date:            b.Date,
		LineItemDetails: itemDetails,
		SubTotals:       subTotalDetails,
		ComputedTotal:   b.ComputedTotal(),
		StatedTotal:     b.FinalTotal,
		TotalMatch:      b.VerifyTotal(),
		Discrepancy:     b.Discrepancy(),
	}
}

// SummarizeMany summarizes a list of bills and combines their computed
// totals.
func (s *Summarizer) SummarizeMany(bills []*Bill) MultiBillSummary {
	summaries := make([]BillSummary, 0, len(bills))
	combinedTotal := decimal.Zero
	totalLineItems := 0
	for _, b := range bills {
		summary := s.Summarize(b)
		combinedTotal = combinedTotal.Add(summary.ComputedTotal)
		totalLineItems += len(summary.LineItemDetails)
		summaries = append(summaries, summary)
	}

	return MultiBillSummary{
		BillCount:      len(bills),
		TotalLineItems: totalLineItems,
		CombinedTotal:  combinedTotal,
		Summaries:      summaries,
	}
}

// RenderText generates a deterministic multi-line text rendering of a bill
// summary.
func (s *Summarizer) RenderText(b *Bill) string {
	summary := s.Summarize(b)
	rule := strings.Repeat("-", 50)

	lines := []string{
		fmt.Sprintf("Bill Summary: %s", summary.BillID),
		strings.Repeat("=", 50),
		fmt.Sprintf("Vendor: %s", summary.VendorName),
		fmt.Sprintf("Date: %s", summary.Date),
		"",
		"Line Items:",
		rule,
	}

	for _, item := range summary.LineItemDetails {
		lines = append(lines, fmt.Sprintf("  %d. %s: %s x $%s = $%s",
			item.Index, item.Description, item.Quantity, item.UnitPrice, item.Amount))
	}
	lines = append(lines, "")

	if len(summary.SubTotals) > 0 {
		lines = append(lines, "Sub-totals:", rule)
		for _, st := range summary.SubTotals {
			lines = append(lines, fmt.Sprintf("  %s: $%s", st.Label, st.Amount))
		}
		lines = append(lines, "")
	}

	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("Computed Total: $%s", summary.ComputedTotal))

	if summary.StatedTotal != nil {
		lines = append(lines, fmt.Sprintf("Stated Total: $%s", summary.StatedTotal))
		if !summary.TotalMatch {
			lines = append(lines, fmt.Sprintf("WARNING: Discrepancy: $%s", summary.Discrepancy))
		}
	}

	return strings.Join(lines, "\n")
}
