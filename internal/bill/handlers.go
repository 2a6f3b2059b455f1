package bill

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"billscan/internal/scanning"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// extractionError writes the extraction error envelope with zeroed token
// usage
func extractionError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &ExtractionResult{
		IsSuccess:  false,
		Error:      message,
		TokenUsage: scanning.Usage{},
	})
}

// handleHealth reports service health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleExtractBillData downloads a document by URL, scans every page, and
// returns the per-page line items with token usage
func (s *Server) handleExtractBillData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Document string `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Document == "" {
		extractionError(w, http.StatusBadRequest, "Missing 'document' field in request body")
		return
	}

	result, err := s.service.ProcessDocument(req.Document)
	if err != nil {
		slog.Error("Error processing document", "url", req.Document, "error", err)
		extractionError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSummarizeBill summarizes a single full-bill JSON document. A
// text/plain Accept header selects the rendered text form.
func (s *Server) handleSummarizeBill(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Error reading request body"})
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		rendered, err := s.service.RenderBill(string(body))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(rendered))
		return
	}

	summary, err := s.service.SummarizeBill(string(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleSummarizeBills summarizes a JSON array of bills into an aggregate
func (s *Server) handleSummarizeBills(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Error reading request body"})
		return
	}

	aggregate, err := s.service.SummarizeBills(string(body))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, aggregate)
}
