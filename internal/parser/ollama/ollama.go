package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"tnstc-api/internal/config"
	"tnstc-api/internal/parser/processors"
	"tnstc-api/internal/parser/prompts"
	"tnstc-api/internal/retry"
	"tnstc-api/pkg/models"
	"tnstc-api/pkg/utils"
)

// Strategy extracts bus services through a locally hosted Ollama model. A
// small model chokes when too many chat requests run at once, so admission
// to the server is gated by a semaphore sized from configuration.
type Strategy struct {
	cfg      *config.Config
	http     *http.Client
	sem      chan struct{}
	minifier *processors.Minifier
	policy   retry.Policy
	logger   *logrus.Logger
}

// New creates an Ollama-backed extraction strategy
func New(cfg *config.Config) *Strategy {
	concurrency := cfg.Ollama.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Strategy{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Ollama.Timeout},
		sem:      make(chan struct{}, concurrency),
		minifier: processors.NewMinifier(),
		policy: retry.Policy{
			MaxAttempts: cfg.Ollama.MaxAttempts,
			BaseDelay:   cfg.Ollama.BaseDelay,
			MaxDelay:    cfg.Ollama.MaxDelay,
			Jitter:      true,
		},
		logger: utils.GetLogger(),
	}
}

func (s *Strategy) Name() string {
	return config.StrategyOllama
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format"`
	Options  chatOptions     `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Extract sends the minified fragments to the local model. The semaphore is
// held across the whole call, retries included, so a retrying request cannot
// starve fresh ones of their admission slot.
func (s *Strategy) Extract(ctx context.Context, listing, detail string) (*models.BusService, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

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
		}).Debug("Sending extraction prompt to Ollama")

		text, err := s.chat(ctx, prompt)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Ollama call failed")
			return err
		}
		if err := json.Unmarshal([]byte(text), &svc); err != nil {
			s.logger.WithFields(logrus.Fields{
				"attempt":  attempt,
				"response": utils.Truncate(text, 200),
			}).Warn("Ollama returned undecodable JSON")
			return fmt.Errorf("failed to decode Ollama response: %w", err)
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

// chat performs one /api/chat round trip and returns the message content
func (s *Strategy) chat(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: s.cfg.Ollama.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Format: serviceFormat,
		Options: chatOptions{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := strings.TrimSuffix(s.cfg.Ollama.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, utils.Truncate(string(body), 200))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	return strings.TrimSpace(chat.Message.Content), nil
}

// serviceFormat is the JSON schema passed as the structured output format,
// mirroring models.BusService field for field
var serviceFormat = json.RawMessage(`{
	"type": "object",
	"properties": {
		"operator": {"type": "string"},
		"bus_type": {"type": "string"},
		"trip_code": {"type": "string"},
		"route_code": {"type": "string"},
		"departure_time": {"type": "string"},
		"arrival_time": {"type": "string"},
		"duration": {"type": "string"},
		"price_in_rs": {"type": "integer"},
		"seats_available": {"type": "integer"},
		"via_route": {"type": "array", "items": {"type": "string"}},
		"total_kms": {"type": "string"},
		"child_fare": {"type": "string"}
	},
	"required": ["operator", "bus_type", "trip_code", "route_code",
		"departure_time", "arrival_time", "duration",
		"price_in_rs", "seats_available", "child_fare"]
}`)
