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
// Package factory constructs the model provider bound to the selected
// platform.
package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/pkg/config"
	"github.com/dealerlens/dealerlens/pkg/llm"
	"github.com/dealerlens/dealerlens/pkg/llm/bedrock"
	"github.com/dealerlens/dealerlens/pkg/llm/gemini"
)

// New returns the completer for the configured platform: Gemini on GCP,
// Bedrock on AWS. stopSequences are forwarded to the provider so generation
// halts where the reasoning loop takes over.
func New(ctx context.Context, cfg *config.Config, stopSequences []string, logger *zap.Logger) (llm.Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Platform {
	case config.PlatformGCP:
		return gemini.New(ctx, gemini.Config{
			APIKey:        cfg.GeminiAPIKey,
			Model:         cfg.GeminiModel,
			Temperature:   float32(cfg.GeminiTemperature),
			MaxTokens:     int32(cfg.GeminiMaxTokens),
			StopSequences: stopSequences,
			Logger:        logger,
		})
	case config.PlatformAWS:
		return bedrock.New(ctx, bedrock.Config{
			Region:        cfg.AWSRegion,
			Model:         cfg.BedrockModelID,
			Temperature:   float32(cfg.BedrockTemperature),
			MaxTokens:     int32(cfg.BedrockMaxTokens),
			StopSequences: stopSequences,
			Logger:        logger,
		})
	default:
		return nil, fmt.Errorf("no model provider for platform %q", cfg.Platform)
	}
}
