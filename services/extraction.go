package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"casevault/config"
)

// ExtractionResult is the structured record the extraction oracle returns
// for a banking document. Only AccountHolderName is required downstream;
// every other field passes through unvalidated for the user to confirm.
type ExtractionResult struct {
	AccountHolderName    string     `json:"account_holder_name"`
	FinancialInstitution string     `json:"financial_institution"`
	AccountNumber        string     `json:"account_number"`
	BsbSortCode          string     `json:"bsb_sort_code"`
	DateFrom             *time.Time `json:"date_from,omitempty"`
	DateTo               *time.Time `json:"date_to,omitempty"`
	Confidence           float64    `json:"confidence"`
}

// Extractor abstracts the AI extraction service for banking documents.
// Implementations are called before the case lock is taken; numbering never
// blocks on this boundary.
type Extractor interface {
	ExtractBankingMetadata(ctx context.Context, document io.Reader) (*ExtractionResult, error)
}

// DocumentExtractor is the global extractor instance
var DocumentExtractor Extractor

// InitializeExtractor sets up the extraction client based on configuration
func InitializeExtractor(cfg *config.Config) {
	if cfg.ExtractionAPIURL == "" {
		DocumentExtractor = nil
		return
	}
	DocumentExtractor = &HTTPExtractor{
		url:    cfg.ExtractionAPIURL,
		apiKey: cfg.ExtractionAPIKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// HTTPExtractor calls an external extraction API with the raw document bytes
type HTTPExtractor struct {
	url    string
	apiKey string
	client *http.Client
}

// ExtractBankingMetadata posts the document to the extraction API and decodes
// the structured result
func (e *HTTPExtractor) ExtractBankingMetadata(ctx context.Context, document io.Reader) (*ExtractionResult, error) {
	data, err := io.ReadAll(document)
	if err != nil {
		return nil, fmt.Errorf("failed to read document for extraction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("extraction API returned %d: %s", resp.StatusCode, string(body))
	}

	var result ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return &result, nil
}
