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
// Package bedrock implements llm.Completer on the Amazon Bedrock Converse API.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/pkg/llm"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"

// throttleBackoff is the wait before the single retry on throttling.
const throttleBackoff = 2 * time.Second

// Compile-time interface check.
var _ llm.Completer = (*Client)(nil)

// Config holds Bedrock client configuration.
type Config struct {
	// Region is the AWS region hosting the model (default "us-east-1").
	Region string
	// Model is the Bedrock model identifier (default DefaultModel).
	Model string
	// Temperature controls sampling randomness (default 0.1).
	Temperature float32
	// MaxTokens bounds the completion length (default 2048).
	MaxTokens int32
	// StopSequences truncate generation when emitted by the model.
	StopSequences []string

	Logger *zap.Logger
}

// Client is a Bedrock-backed completer.
type Client struct {
	client *bedrockruntime.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Bedrock client using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
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

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cfg.Logger.Info("bedrock client created",
		zap.String("model", cfg.Model),
		zap.String("region", cfg.Region))

	return &Client{
		client: bedrockruntime.NewFromConfig(awsCfg),
		cfg:    cfg,
		logger: cfg.Logger,
	}, nil
}

// Complete sends the prompt through the Converse API. A throttled request is
// retried once after a short backoff.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.converse(ctx, prompt)
	if err != nil {
		var throttle *types.ThrottlingException
		if !errors.As(err, &throttle) {
			return "", fmt.Errorf("bedrock completion failed: %w", err)
		}
		c.logger.Warn("bedrock request throttled, retrying", zap.Error(err))
		select {
		case <-time.After(throttleBackoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if out, err = c.converse(ctx, prompt); err != nil {
			return "", fmt.Errorf("bedrock completion failed after retry: %w", err)
		}
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock returned unexpected output type %T", out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	result := sb.String()
	if result == "" {
		return "", fmt.Errorf("bedrock returned an empty completion")
	}

	c.logger.Debug("bedrock completion",
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("completion_chars", len(result)),
		zap.String("stop_reason", string(out.StopReason)))
	return result, nil
}

func (c *Client) converse(ctx context.Context, prompt string) (*bedrockruntime.ConverseOutput, error) {
	return c.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.cfg.Model),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:     aws.Int32(c.cfg.MaxTokens),
			Temperature:   aws.Float32(c.cfg.Temperature),
			StopSequences: c.cfg.StopSequences,
		},
	})
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "bedrock"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}
