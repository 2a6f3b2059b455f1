package scanning

import "fmt"

// PageItem is one line item extracted from a single page.
type PageItem struct {
	ItemName     string  `json:"item_name"`
	ItemAmount   float64 `json:"item_amount"`
	ItemRate     float64 `json:"item_rate"`
	ItemQuantity float64 `json:"item_quantity"`
}

// PageData contains the line items extracted from a single page.
type PageData struct {
	PageNo    string     `json:"page_no"`
	PageType  string     `json:"page_type"` // "Bill Detail", "Final Bill", or "Pharmacy"
	BillItems []PageItem `json:"bill_items"`
}

// Usage tracks model token consumption across page scans.
type Usage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another usage record into this one.
func (u *Usage) Add(other Usage) {
	u.TotalTokens += other.TotalTokens
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Scanner defines the interface for per-page bill scanning operations.
type Scanner interface {
	// ScanPage analyzes a single page image (PNG) and extracts its line
	// items, tagged with the given page number.
	ScanPage(pngData []byte, pageNo int) (*PageData, Usage, error)
	// Close closes the scanner and releases resources
	Close() error
}

// emptyPage is the substitute result for a page whose model output could
// not be parsed. Extraction of the remaining pages continues.
func emptyPage(pageNo int) *PageData {
	return &PageData{
		PageNo:    fmt.Sprintf("%d", pageNo),
		PageType:  pageTypeBillDetail,
		BillItems: []PageItem{},
	}
}
