// Copyright 2026 DealerLens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
// Package gemini implements llm.Completer on the Google Generative AI API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dealerlens/dealerlens/pkg/llm"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.0-flash-lite-001"

// throttleBackoff is the wait before the single retry on rate limiting.
const throttleBackoff = 2 * time.Second

// Compile-time interface check.
var _ llm.Completer = (*Client)(nil)

// Config holds Gemini client configuration.
type Config struct {
	// APIKey authenticates against the Generative Language API.
	APIKey string
	// Model is the model identifier (default DefaultModel).
	Model string
	// Temperature controls sampling randomness (default 0.1).
	Temperature float32
	// MaxTokens bounds the completion length (default 2048).
	MaxTokens int32
	// StopSequences truncate generation when emitted by the model.
	StopSequences []string

	Logger *zap.Logger
}

// Client is a Gemini-backed completer.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *zap.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxTokens)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.StopSequences = cfg.StopSequences

	cfg.Logger.Info("gemini client created",
		zap.String("model", cfg.Model),
		zap.Float32("temperature", cfg.Temperature))

	return &Client{
		client: client,
		model:  model,
		name:   cfg.Model,
		logger: cfg.Logger,
	}, nil
}

// Complete sends the prompt and returns the concatenated text parts of the
// first candidate. A rate-limited request is retried once after a short
// backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if !isThrottled(err) {
			return "", fmt.Errorf("gemini completion failed: %w", err)
		}
		c.logger.Warn("gemini request throttled, retrying", zap.Error(err))
		select {
		case <-time.After(throttleBackoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if resp, err = c.model.GenerateContent(ctx, genai.Text(prompt)); err != nil {
			return "", fmt.Errorf("gemini completion failed after retry: %w", err)
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := sb.String()
	if out == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}

	c.logger.Debug("gemini completion",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("completion_chars", len(out)))
	return out, nil
}

// isThrottled reports whether the API rejected the request for rate limiting.
func isThrottled(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "gemini"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.name
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}
