package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"tnstc-api/internal/config"
	"tnstc-api/internal/parser/processors"
	"tnstc-api/internal/parser/prompts"
	"tnstc-api/internal/retry"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

// Strategy extracts bus services through the hosted Gemini API. Responses
// are constrained to JSON with a response schema, so the model cannot wrap
// the record in prose.
type Strategy struct {
	cfg      *config.Config
	client   *genai.Client
	genCfg   *genai.GenerateContentConfig
	minifier *processors.Minifier
	policy   retry.Policy
	logger   *logrus.Logger
}

// New creates a Gemini-backed extraction strategy. It fails when no API key
// is configured so the selector can fall back to markup scraping.
func New(ctx context.Context, cfg *config.Config) (*Strategy, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Strategy{
		cfg:      cfg,
		client:   client,
		genCfg:   buildConfig(),
		minifier: processors.NewMinifier(),
		policy: retry.Policy{
			MaxAttempts: cfg.Gemini.MaxAttempts,
			BaseDelay:   cfg.Gemini.BaseDelay,
			MaxDelay:    cfg.Gemini.MaxDelay,
			Jitter:      true,
		},
		logger: utils.GetLogger(),
	}, nil
}

func (s *Strategy) Name() string {
	return config.StrategyGemini
}

// Extract sends the minified fragments to Gemini and decodes the structured
// response. API and decode failures are retried; a record that decodes but
// fails normalization is dropped without retrying, since resending the same
// fragments cannot fix bad source data.
func (s *Strategy) Extract(ctx context.Context, listing, detail string) (*models.BusService, error) {
	listing = s.minifier.Minify(listing)
	if detail != "" {
		detail = s.minifier.Minify(detail)
	}
	prompt := prompts.BuildUserPrompt(listing, detail)

	var svc models.BusService
	err := s.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		// A failed attempt may have partially decoded into svc.
		svc = models.BusService{}

		s.logger.WithFields(logrus.Fields{
			"attempt":      attempt,
			"prompt_bytes": len(prompt),
			"listing":      utils.Truncate(listing, 150),
		}).Debug("Sending extraction prompt to Gemini")

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Gemini.Timeout)
		defer cancel()

		result, err := s.client.Models.GenerateContent(callCtx, s.cfg.Gemini.Model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: prompt}},
			}},
			s.genCfg,
		)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Gemini call failed")
			return err
		}
		if result == nil {
			return fmt.Errorf("gemini returned nil result")
		}

		text := stripFences(result.Text())
		if err := json.Unmarshal([]byte(text), &svc); err != nil {
			s.logger.WithFields(logrus.Fields{
				"attempt":  attempt,
				"response": utils.Truncate(text, 200),
			}).Warn("Gemini returned undecodable JSON")
			return fmt.Errorf("failed to decode Gemini response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := svc.Normalize(); err != nil {
		s.logger.WithFields(logrus.Fields{
			"trip_code": svc.TripCode,
			"error":     err,
		}).Warn("Dropping service that failed normalization")
		return nil, nil
	}
	return &svc, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite the response MIME type
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// buildConfig returns the generation config shared by all calls: structured
// JSON output at temperature zero.
func buildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompts.SystemPrompt}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   serviceSchema(),
	}
}

// serviceSchema mirrors models.BusService field for field
func serviceSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"operator":        {Type: genai.TypeString},
			"bus_type":        {Type: genai.TypeString},
			"trip_code":       {Type: genai.TypeString},
			"route_code":      {Type: genai.TypeString},
			"departure_time":  {Type: genai.TypeString},
			"arrival_time":    {Type: genai.TypeString},
			"duration":        {Type: genai.TypeString},
			"price_in_rs":     {Type: genai.TypeInteger},
			"seats_available": {Type: genai.TypeInteger},
			"via_route":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"total_kms":       {Type: genai.TypeString},
			"child_fare":      {Type: genai.TypeString},
		},
		Required: []string{
			"operator", "bus_type", "trip_code", "route_code",
			"departure_time", "arrival_time", "duration",
			"price_in_rs", "seats_available", "child_fare",
		},
	}
}
