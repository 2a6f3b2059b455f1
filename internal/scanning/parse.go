package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	pageTypeBillDetail = "Bill Detail"
	pageTypeFinalBill  = "Final Bill"
	pageTypePharmacy   = "Pharmacy"
)

// rawPage mirrors the JSON shape the model is prompted to return. Items are
// cleaned before they become PageItems.
type rawPage struct {
	PageType  string `json:"page_type"`
	BillItems []struct {
		ItemName     string   `json:"item_name"`
		ItemAmount   float64  `json:"item_amount"`
		ItemRate     *float64 `json:"item_rate"`
		ItemQuantity *float64 `json:"item_quantity"`
	} `json:"bill_items"`
}

// parsePageJSON parses the JSON response from the model for a single page
func parsePageJSON(text string, pageNo int) (*PageData, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var raw rawPage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	pageType := raw.PageType
	if pageType == "" {
		pageType = pageTypeBillDetail
	}

	// Clean the items: drop unnamed entries, default missing rates to the
	// amount and missing quantities to 1
	items := make([]PageItem, 0, len(raw.BillItems))
	for _, item := range raw.BillItems {
		name := strings.TrimSpace(item.ItemName)
		if name == "" {
			continue
		}

		rate := item.ItemAmount
		if item.ItemRate != nil {
			rate = *item.ItemRate
		}
		quantity := 1.0
		if item.ItemQuantity != nil {
			quantity = *item.ItemQuantity
		}

		items = append(items, PageItem{
			ItemName:     name,
			ItemAmount:   item.ItemAmount,
			ItemRate:     rate,
			ItemQuantity: quantity,
		})
	}

	return &PageData{
		PageNo:    fmt.Sprintf("%d", pageNo),
		PageType:  pageType,
		BillItems: items,
	}, nil
}
