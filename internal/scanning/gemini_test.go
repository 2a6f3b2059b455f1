package scanning

import (
	"github.com/google/generative-ai-go/genai"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("geminiResponseText", func() {
	It("concatenates the text parts of the first candidate", func() {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Text(`{"page_no": "1",`),
					genai.Text(` "page_type": "Bill Detail", "bill_items": []}`),
				}}},
			},
		}

		text, err := geminiResponseText(resp)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal(`{"page_no": "1", "page_type": "Bill Detail", "bill_items": []}`))
	})

	When("the response has no candidates", func() {
		It("returns an error", func() {
			_, err := geminiResponseText(&genai.GenerateContentResponse{})
			Expect(err).To(MatchError(ContainSubstring("no candidates")))
		})
	})

	When("the candidate was blocked and has nil content", func() {
		It("returns an error instead of panicking", func() {
			resp := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: nil, FinishReason: genai.FinishReasonSafety},
				},
			}

			_, err := geminiResponseText(resp)
			Expect(err).To(MatchError(ContainSubstring("no content")))
		})
	})

	When("the candidate content has no parts", func() {
		It("returns an error", func() {
			resp := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{Content: &genai.Content{}},
				},
			}

			_, err := geminiResponseText(resp)
			Expect(err).To(MatchError(ContainSubstring("no content")))
		})
	})
})

var _ = Describe("geminiUsage", func() {
	It("maps the usage metadata token counts", func() {
		resp := &genai.GenerateContentResponse{
			UsageMetadata: &genai.UsageMetadata{
				PromptTokenCount:     100,
				CandidatesTokenCount: 20,
				TotalTokenCount:      120,
			},
		}

		Expect(geminiUsage(resp)).To(Equal(Usage{
			InputTokens:  100,
			OutputTokens: 20,
			TotalTokens:  120,
		}))
	})

	It("falls back to input+output when the total is absent", func() {
		resp := &genai.GenerateContentResponse{
			UsageMetadata: &genai.UsageMetadata{
				PromptTokenCount:     100,
				CandidatesTokenCount: 20,
			},
		}

		Expect(geminiUsage(resp).TotalTokens).To(Equal(120))
	})

	It("returns zero usage when the metadata is missing", func() {
		Expect(geminiUsage(&genai.GenerateContentResponse{})).To(Equal(Usage{}))
	})
})
