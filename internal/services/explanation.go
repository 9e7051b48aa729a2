package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/storely/shoprec/internal/config"
	"github.com/storely/shoprec/pkg/models"
)

// ExplanationService produces the human-readable "why this product" text for
// a recommendation. It asks an OpenAI-compatible chat-completions endpoint
// first and falls back to a rule-based sentence whenever the call fails,
// times out, or returns something too short to be useful. Responses are
// cached in warm Redis per user and product.
type ExplanationService struct {
	config *config.LLMConfig
	client *http.Client
	cache  *redis.Client
	logger *logrus.Logger
}

func NewExplanationService(cfg *config.LLMConfig, cache *redis.Client, logger *logrus.Logger) *ExplanationService {
	return &ExplanationService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
	}
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain returns explanation text for one recommendation. It never returns
// an error; explanation generation is best-effort and degrades to the
// rule-based fallback.
func (s *ExplanationService) Explain(ctx context.Context, product *models.Product, insights *models.UserInsights) string {
	if product == nil {
		return ""
	}

	cacheKey := fmt.Sprintf("explanation:%s:%s", insights.UserID, product.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached
		}
	}

	explanation := s.generate(ctx, product, insights)
	if len(strings.TrimSpace(explanation)) < 20 {
		explanation = s.fallbackExplanation(product, insights)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, explanation, s.config.CacheTTL).Err(); err != nil {
			s.logger.WithError(err).Warn("Failed to cache explanation")
		}
	}

	return explanation
}

func (s *ExplanationService) generate(ctx context.Context, product *models.Product, insights *models.UserInsights) string {
	if s.config.APIKey == "" {
		return ""
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: buildExplanationPrompt(product, insights)},
		},
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to encode explanation request")
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to build explanation request")
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Warn("Explanation request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		s.logger.WithField("status", resp.StatusCode).Warn("Explanation request rejected")
		return ""
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		s.logger.WithError(err).Warn("Failed to decode explanation response")
		return ""
	}
	if len(completion.Choices) == 0 {
		return ""
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content)
}

func buildExplanationPrompt(product *models.Product, insights *models.UserInsights) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful shopping assistant. In one or two sentences, explain why the following product suits this customer.\n\n")

	fmt.Fprintf(&sb, "Product: %s (category: %s, price: $%.2f", product.Name, product.Category, product.Price)
	if product.Brand != nil && *product.Brand != "" {
		fmt.Fprintf(&sb, ", brand: %s", *product.Brand)
	}
	fmt.Fprintf(&sb, ", rating: %.1f)\n", product.Rating)

	if len(insights.FavoriteCategories) > 0 {
		fmt.Fprintf(&sb, "Customer's favorite categories: %s\n", joinLabels(insights.FavoriteCategories))
	}
	if len(insights.FavoriteBrands) > 0 {
		fmt.Fprintf(&sb, "Customer's favorite brands: %s\n", joinLabels(insights.FavoriteBrands))
	}
	if insights.AvgPrice > 0 {
		fmt.Fprintf(&sb, "Customer's average purchase price: $%.2f\n", insights.AvgPrice)
	}

	sb.WriteString("\nDo not mention that you are an assistant. Address the customer directly.")
	return sb.String()
}

// fallbackExplanation assembles a deterministic sentence from profile
// signals when the text-generation call is unavailable.
func (s *ExplanationService) fallbackExplanation(product *models.Product, insights *models.UserInsights) string {
	var reasons []string

	if len(insights.FavoriteCategories) > 0 && product.Category == insights.FavoriteCategories[0].Label {
		reasons = append(reasons, fmt.Sprintf("matches your interest in %s", product.Category))
	}

	if product.Brand != nil {
		for _, brand := range insights.FavoriteBrands {
			if brand.Label == *product.Brand {
				reasons = append(reasons, fmt.Sprintf("is from %s, a brand you like", *product.Brand))
				break
			}
		}
	}

	if product.Rating >= 4.5 {
		reasons = append(reasons, fmt.Sprintf("has an excellent rating of %.1f", product.Rating))
	}

	if insights.AvgPrice > 0 && math.Abs(product.Price-insights.AvgPrice) <= 0.3*insights.AvgPrice {
		reasons = append(reasons, "is in your typical price range")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "is popular among users with similar preferences")
	}

	return fmt.Sprintf("This %s is recommended because it %s.", product.Name, strings.Join(reasons, " and "))
}

func joinLabels(labels []models.WeightedLabel) string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Label
	}
	return strings.Join(names, ", ")
}
