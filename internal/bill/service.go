package bill

import (
	"fmt"
	"time"

	"billscan/internal/scanning"
)

// Fetcher downloads a document and reports its MIME type.
type Fetcher interface {
	Fetch(url string) ([]byte, string, error)
}

// IDGenerator generates unique IDs for extracted bills
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ExtractionData is the payload of a successful document extraction.
type ExtractionData struct {
	PagewiseLineItems []*scanning.PageData `json:"pagewise_line_items"`
	TotalItemCount    int                  `json:"total_item_count"`
	Summary           *BillSummary         `json:"summary,omitempty"`
}

// ExtractionResult is the response envelope for a document extraction.
type ExtractionResult struct {
	IsSuccess  bool            `json:"is_success"`
	TokenUsage scanning.Usage  `json:"token_usage"`
	Data       *ExtractionData `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Service handles bill extraction and summarization operations. It is
// stateless between calls: each request produces an independently owned
// result and nothing is persisted.
type Service struct {
	fetcher     Fetcher
	scanner     scanning.Scanner
	extractor   *Extractor
	summarizer  *Summarizer
	pdfDPI      int
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(fetcher Fetcher, scanner scanning.Scanner, pdfDPI int) *Service {
	return NewServiceWithDeps(fetcher, scanner, pdfDPI, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(fetcher Fetcher, scanner scanning.Scanner, pdfDPI int, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		fetcher:     fetcher,
		scanner:     scanner,
		extractor:   NewExtractor(),
		summarizer:  NewSummarizer(),
		pdfDPI:      pdfDPI,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// ProcessDocument downloads a document, scans every page with the vision
// model, and collects the per-page line items. Pages are scanned in order
// and each result is tagged with its 1-based page number.
func (s *Service) ProcessDocument(documentURL string) (*ExtractionResult, error) {
	data, mimeType, err := s.fetcher.Fetch(documentURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}

	pages, err := scanning.SplitDocument(data, mimeType, s.pdfDPI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}

	var usage scanning.Usage
	pagewise := make([]*scanning.PageData, 0, len(pages))
	for i, pngData := range pages {
		pageData, pageUsage, err := s.scanner.ScanPage(pngData, i+1)
		usage.Add(pageUsage)
		if err != nil {
			return nil, fmt.Errorf("failed to extract line items from page %d: %w", i+1, err)
		}
		pagewise = append(pagewise, pageData)
	}

	totalItemCount := 0
	for _, page := range pagewise {
		totalItemCount += len(page.BillItems)
	}

	b, err := s.billFromPages(pagewise)
	if err != nil {
		return nil, fmt.Errorf("building bill from pages: %w", err)
	}
	summary := s.summarizer.Summarize(b)

	return &ExtractionResult{
		IsSuccess:  true,
		TokenUsage: usage,
		Data: &ExtractionData{
			PagewiseLineItems: pagewise,
			TotalItemCount:    totalItemCount,
			Summary:           &summary,
		},
	}, nil
}

// billFromPages reconciles the per-page model output shape with the
// full-bill shape the Extractor accepts. The document carries no bill
// identity of its own, so the id is generated and the vendor and date
// are placeholders.
func (s *Service) billFromPages(pages []*scanning.PageData) (*Bill, error) {
	lineItems := make([]any, 0)
	for _, page := range pages {
		for _, item := range page.BillItems {
			lineItems = append(lineItems, map[string]any{
				"description": item.ItemName,
				"quantity":    item.ItemQuantity,
				"unit_price":  item.ItemRate,
				"amount":      item.ItemAmount,
			})
		}
	}

	raw := map[string]any{
		"bill_id":     s.idGenerator.Generate(),
		"vendor_name": "Unknown Vendor",
		"date":        s.timeSource.Now().Format("2006-01-02"),
		"line_items":  lineItems,
	}
	if len(pages) > 0 {
		raw["page_count"] = len(pages)
	}

	return s.extractor.Build(raw)
}

// SummarizeBill builds a bill from full-bill JSON and summarizes it.
func (s *Service) SummarizeBill(jsonText string) (BillSummary, error) {
	b, err := s.extractor.BuildFromJSON(jsonText)
	if err != nil {
		return BillSummary{}, err
	}
	return s.summarizer.Summarize(b), nil
}

// SummarizeBills builds bills from a JSON array and aggregates their
// summaries.
func (s *Service) SummarizeBills(jsonText string) (MultiBillSummary, error) {
	bills, err := s.extractor.BuildManyFromJSON(jsonText)
	if err != nil {
		return MultiBillSummary{}, err
	}
	return s.summarizer.SummarizeMany(bills), nil
}

// RenderBill builds a bill from full-bill JSON and renders it as text.
func (s *Service) RenderBill(jsonText string) (string, error) {
	b, err := s.extractor.BuildFromJSON(jsonText)
	if err != nil {
		return "", err
	}
	return s.summarizer.RenderText(b), nil
}
