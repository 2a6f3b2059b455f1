package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// billScanPrompt is the shared prompt used by all LLM providers for
// extracting line items from a bill page
const billScanPrompt = `Analyze this bill/invoice page and extract ALL line items with their details.

For each line item, extract:
1. item_name: The exact name/description of the item as written in the bill
2. item_amount: The net/total amount for this item (after any discounts) as a float
3. item_rate: The unit rate/price per item as a float (if available, otherwise use the amount)
4. item_quantity: The quantity of the item as a float (if available, otherwise use 1)

Also determine the page_type which can be one of:
- "Bill Detail": If this page contains detailed line items of the bill
- "Final Bill": If this page shows the final summary/total of the bill
- "Pharmacy": If this page contains pharmacy/medicine items

IMPORTANT RULES:
1. Extract EVERY line item visible on the page - do not miss any
2. Do NOT include subtotals, totals, taxes, or summary rows as line items
3. Do NOT double count items that appear in both detail and summary
4. Extract amounts exactly as shown (post-discount if discounts are applied)
5. If a column is not visible for an item, make reasonable inferences or use defaults

Return ONLY a valid JSON object in this exact format (no markdown, no explanation):
{
    "page_type": "Bill Detail | Final Bill | Pharmacy",
    "bill_items": [
        {
            "item_name": "string",
            "item_amount": float,
            "item_rate": float,
            "item_quantity": float
        }
    ]
}

If no line items are found on this page, return:
{
    "page_type": "Bill Detail",
    "bill_items": []
}`

// SplitDocument renders a document into one PNG image per page. PDFs are
// rendered page by page at the given DPI; anything else is treated as a
// single-page image.
func SplitDocument(data []byte, mimeType string, dpi int) ([][]byte, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "application/pdf" || isPDFData(data) {
		return pdfToImages(data, dpi)
	}

	pngData, err := imageToPNG(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("converting image to PNG: %w", err)
	}
	return [][]byte{pngData}, nil
}

// isPDFData checks for the PDF magic bytes
func isPDFData(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("%PDF"))
}

// pdfToImages converts every page of a PDF to a PNG image
func pdfToImages(pdfData []byte, dpi int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([][]byte, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page %d: %w", n+1, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding PNG for page %d: %w", n+1, err)
		}
		pages = append(pages, buf.Bytes())
	}

	return pages, nil
}

// imageToPNG converts any image format to PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// HEIC/HEIF (common on iPhones) is not supported by Go's standard image
	// package, so it gets its own decoder
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") || strings.Contains(err.Error(), "unsupported") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF. Error: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format
// HEIC files typically start with specific magic bytes
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand
	if string(data[4:8]) == "ftyp" {
		brand := string(data[8:12])
		if brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1" {
			return true
		}
	}
	return false
}

// isHEICMimeType checks if the MIME type indicates HEIC/HEIF format
func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return mimeType == "image/heic" || mimeType == "image/heif" ||
		strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}
