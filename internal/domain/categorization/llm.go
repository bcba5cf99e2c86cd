package categorization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finlytics/finlytics-api/pkg/config"
	"github.com/finlytics/finlytics-api/pkg/metrics"
)

const defaultInferenceTimeout = 30 * time.Second

// InferenceClient calls an Ollama-compatible generate endpoint to classify
// a transaction into one of the user's category names. Every failure mode
// (network, non-200, malformed JSON, unknown category name) degrades to "no
// result" so the waterfall can fall through to UNCATEGORISED.
type InferenceClient struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewInferenceClient(cfg config.OllamaConfig, logger *slog.Logger) *InferenceClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultInferenceTimeout
	}
	return &InferenceClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type inferenceVerdict struct {
	Category   string   `json:"category"`
	Confidence *float64 `json:"confidence"`
}

// Categorize asks the model to pick one of the given categories. The
// returned bool is false whenever the model produced nothing usable.
func (c *InferenceClient) Categorize(ctx context.Context, in Input, categories []Category) (Result, bool) {
	if c.baseURL == "" || len(categories) == 0 {
		return Result{}, false
	}

	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(in, names),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return Result{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Result{}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("inference request failed", slog.Any("error", err))
		metrics.LLMCalls.WithLabelValues("error").Inc()
		return Result{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("inference endpoint returned non-200", slog.Int("status", resp.StatusCode))
		metrics.LLMCalls.WithLabelValues("error").Inc()
		return Result{}, false
	}

	var outer generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&outer); err != nil {
		metrics.LLMCalls.WithLabelValues("error").Inc()
		return Result{}, false
	}

	var verdict inferenceVerdict
	if err := json.Unmarshal([]byte(outer.Response), &verdict); err != nil {
		c.logger.Debug("inference response is not valid JSON", slog.String("response", outer.Response))
		metrics.LLMCalls.WithLabelValues("unparsable").Inc()
		return Result{}, false
	}

	categoryID, found := resolveCategoryName(categories, verdict.Category)
	if !found {
		metrics.LLMCalls.WithLabelValues("unmatched").Inc()
		return Result{}, false
	}

	confidence := 0.5
	if verdict.Confidence != nil {
		confidence = *verdict.Confidence
	}

	metrics.LLMCalls.WithLabelValues("success").Inc()
	return resultFor(categoryID, SourceLLM, confidence), true
}

// resolveCategoryName maps a model-produced name back to a category id by
// exact-name lookup against the same closed list the prompt offered.
func resolveCategoryName(categories []Category, name string) (string, bool) {
	for _, cat := range categories {
		if cat.Name == name {
			return cat.ID, true
		}
	}
	return "", false
}

func buildPrompt(in Input, names []string) string {
	return fmt.Sprintf(`You are an AI trained to classify financial transactions.

Given:
Description: %q
Amount: %v
Direction: %s (DEBIT or CREDIT)
Account Type: %s

Return JSON with:
{
  "category": "...",
  "confidence": 0.0 - 1.0
}

Use only these approved categories:
%s

Return only valid JSON, no other text.`,
		in.Description, in.Amount, in.Direction, in.AccountType, strings.Join(names, ", "))
}
