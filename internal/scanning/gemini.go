package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Scanner interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Low temperature keeps the line-item output deterministic
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(4096)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ScanPage analyzes a single page image and extracts its line items
func (g *Gemini) ScanPage(pngData []byte, pageNo int) (*PageData, Usage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(billScanPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("generating content for page %d: %w", pageNo, err)
	}

	usage := geminiUsage(resp)

	text, err := geminiResponseText(resp)
	if err != nil {
		return nil, usage, fmt.Errorf("no response from gemini for page %d: %w", pageNo, err)
	}

	data, err := parsePageJSON(text, pageNo)
	if err != nil {
		// An unparseable page becomes an empty result rather than aborting
		// the whole multi-page extraction
		slog.Warn("Failed to parse model response, substituting empty page",
			"page", pageNo, "error", err)
		return emptyPage(pageNo), usage, nil
	}

	return data, usage, nil
}

// geminiUsage maps the response usage metadata to a Usage. Older models
// omit the total, so it falls back to input+output.
func geminiUsage(resp *genai.GenerateContentResponse) Usage {
	usage := Usage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
		if usage.TotalTokens == 0 {
			usage.TotalTokens = usage.InputTokens + usage.OutputTokens
		}
	}
	return usage
}

// geminiResponseText concatenates the text parts of the first candidate.
// A safety-blocked response carries a candidate with nil Content.
func geminiResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("response has no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("candidate has no content")
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
