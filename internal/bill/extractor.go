package bill

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Extractor builds validated Bills from untyped mappings, as produced by
// deserializing JSON. All numeric fields go through ParseAmount so the
// resulting Bill only ever holds exact decimals.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Build constructs a Bill from an untyped mapping. It fails with a
// ValidationError when bill_id, vendor_name, or date is absent or empty;
// no partial Bill is ever returned.
func (e *Extractor) Build(data map[string]any) (*Bill, error) {
	billID := stringField(data, "bill_id")
	vendorName := stringField(data, "vendor_name")
	date := stringField(data, "date")

	b, err := NewBill(billID, vendorName, date)
	if err != nil {
		return nil, err
	}

	if b.LineItems, err = e.buildLineItems(data["line_items"]); err != nil {
		return nil, err
	}
	if b.SubTotals, err = e.buildSubTotals(data["sub_totals"]); err != nil {
		return nil, err
	}

	// Distinguish "no stated total" from "stated total of zero": only an
	// explicit non-null value is parsed.
	if v, ok := data["final_total"]; ok && v != nil {
		ft, err := ParseAmount(v)
		if err != nil {
			return nil, fmt.Errorf("final_total: %w", err)
		}
		b.FinalTotal = &ft
	}

	if currency := stringField(data, "currency"); currency != "" {
		b.Currency = currency
	}
	if pages, ok := intField(data, "page_count"); ok && pages > 0 {
		b.PageCount = pages
	}

	return b, nil
}

// BuildFromJSON deserializes a JSON document and delegates to Build. A
// deserialization failure yields a ValidationError wrapping the syntax
// error. Numbers are decoded as json.Number so amounts keep their exact
// written form.
func (e *Extractor) BuildFromJSON(jsonText string) (*Bill, error) {
	var data map[string]any
	if err := decodeJSON(jsonText, &data); err != nil {
		return nil, wrapValidationError(err, "invalid JSON: %v", err)
	}
	return e.Build(data)
}

// BuildManyFromJSON deserializes a JSON array of bill objects.
func (e *Extractor) BuildManyFromJSON(jsonText string) ([]*Bill, error) {
	var rawBills []map[string]any
	if err := decodeJSON(jsonText, &rawBills); err != nil {
		return nil, wrapValidationError(err, "invalid JSON: %v", err)
	}

	bills := make([]*Bill, 0, len(rawBills))
	for i, raw := range rawBills {
		b, err := e.Build(raw)
		if err != nil {
			return nil, fmt.Errorf("bill %d: %w", i, err)
		}
		bills = append(bills, b)
	}
	return bills, nil
}

func (e *Extractor) buildLineItems(raw any) ([]LineItem, error) {
	items, err := mappingSlice(raw, "line_items")
	if err != nil {
		return nil, err
	}

	lineItems := make([]LineItem, 0, len(items))
	for i, item := range items {
		quantity, err := parseFieldOrDefault(item, "quantity", 1)
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i, err)
		}
		unitPrice, err := parseFieldOrDefault(item, "unit_price", 0)
		if err != nil {
			return nil, fmt.Errorf("line item %d: %w", i, err)
		}

		// An explicit amount wins over the quantity*unit_price derivation:
		// model output that reports a post-discount amount must not be
		// overwritten by a naive recomputation.
		amount := quantity.Mul(unitPrice)
		if v, ok := item["amount"]; ok {
			if amount, err = ParseAmount(v); err != nil {
				return nil, fmt.Errorf("line item %d: %w", i, err)
			}
		}

		lineItems = append(lineItems, LineItem{
			Description: stringField(item, "description"),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Amount:      amount,
			Category:    stringField(item, "category"),
		})
	}
	return lineItems, nil
}

func (e *Extractor) buildSubTotals(raw any) ([]SubTotal, error) {
	mappings, err := mappingSlice(raw, "sub_totals")
	if err != nil {
		return nil, err
	}

	subTotals := make([]SubTotal, 0, len(mappings))
	for i, st := range mappings {
		label := stringField(st, "label")
		if label == "" {
			label = "Sub-total"
		}
		amount, err := parseFieldOrDefault(st, "amount", 0)
		if err != nil {
			return nil, fmt.Errorf("sub-total %d: %w", i, err)
		}

		// Refs are accepted as-is: no validation that the indices exist or
		// that the amount equals the sum of the referenced items.
		refs := []int{}
		if rawRefs, ok := st["line_item_refs"].([]any); ok {
			for _, r := range rawRefs {
				if n, ok := intValue(r); ok {
					refs = append(refs, n)
				}
			}
		}

		subTotals = append(subTotals, SubTotal{
			Label:        label,
			Amount:       amount,
			LineItemRefs: refs,
		})
	}
	return subTotals, nil
}

// decodeJSON decodes with json.Number enabled so amounts reach ParseAmount
// as exact literals instead of binary floats.
func decodeJSON(jsonText string, out any) error {
	dec := json.NewDecoder(strings.NewReader(jsonText))
	dec.UseNumber()
	return dec.Decode(out)
}

// mappingSlice coerces a raw field into a slice of mappings. A missing
// field is an empty slice; a malformed entry aborts the extraction.
func mappingSlice(raw any, field string) ([]map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, newValidationError("%s must be a list", field)
	}
	mappings := make([]map[string]any, 0, len(entries))
	for i, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, newValidationError("%s[%d] must be an object", field, i)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func parseFieldOrDefault(m map[string]any, key string, def int64) (d decimal.Decimal, err error) {
	if v, ok := m[key]; ok {
		d, err = ParseAmount(v)
		if err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
		return d, err
	}
	return decimal.NewFromInt(def), nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func intField(m map[string]any, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	return intValue(v)
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		// Non-integral values are rejected rather than truncated
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
