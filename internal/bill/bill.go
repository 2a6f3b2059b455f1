package bill

import "github.com/shopspring/decimal"

// LineItem represents a single priced entry on a bill.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
}

// SubTotal represents a labeled intermediate sum grouping some line items.
// Sub-totals are informational only: LineItemRefs exist for display and
// audit, and a sub-total amount is never added into a bill's computed total.
type SubTotal struct {
	Label        string          `json:"label"`
	Amount       decimal.Decimal `json:"amount"`
	LineItemRefs []int           `json:"line_item_refs"`
}

// Bill represents a complete bill/invoice.
type Bill struct {
	BillID     string           `json:"bill_id"`
	VendorName string           `json:"vendor_name"`
	Date       string           `json:"date"`
	LineItems  []LineItem       `json:"line_items"`
	SubTotals  []SubTotal       `json:"sub_totals"`
	FinalTotal *decimal.Decimal `json:"final_total,omitempty"` // total as stated in the document; nil when not stated
	Currency   string           `json:"currency"`
	PageCount  int              `json:"page_count"`
}

// NewBill creates a Bill with the required identity fields and defaults.
// It fails with a ValidationError when any required field is empty.
func NewBill(billID, vendorName, date string) (*Bill, error) {
	if billID == "" {
		return nil, newValidationError("bill_id is required")
	}
	if vendorName == "" {
		return nil, newValidationError("vendor_name is required")
	}
	if date == "" {
		return nil, newValidationError("date is required")
	}
	return &Bill{
		BillID:     billID,
		VendorName: vendorName,
		Date:       date,
		LineItems:  []LineItem{},
		SubTotals:  []SubTotal{},
		Currency:   "USD",
		PageCount:  1,
	}, nil
}

// LineItemsTotal returns the sum of all line item amounts in list order.
func (b *Bill) LineItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.LineItems {
		total = total.Add(item.Amount)
	}
	return total
}

// ComputedTotal returns the authoritative bill total, derived strictly from
// line items. Sub-totals are excluded so nested intermediate sums can never
// be double-counted.
func (b *Bill) ComputedTotal() decimal.Decimal {
	return b.LineItemsTotal()
}

// VerifyTotal reports whether the stated final total matches the computed
// total. A bill with no stated total trivially verifies.
func (b *Bill) VerifyTotal() bool {
	if b.FinalTotal == nil {
		return true
	}
	return b.FinalTotal.Equal(b.ComputedTotal())
}

// Discrepancy returns the stated total minus the computed total, preserving
// sign. It returns zero when no total is stated.
func (b *Bill) Discrepancy() decimal.Decimal {
	if b.FinalTotal == nil {
		return decimal.Zero
	}
	return b.FinalTotal.Sub(b.ComputedTotal())
}
