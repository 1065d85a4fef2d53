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
// Package config loads DealerLens configuration from the environment.
//
// Every knob is an environment variable so the same binary can run locally,
// in Cloud Run, or in ECS without code changes. Platform selection (gcp vs
// aws) decides which warehouse and completion backends get constructed; the
// agent knobs are shared across both platforms.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Platform identifies which cloud stack to bind.
type Platform string

const (
	PlatformGCP Platform = "gcp"
	PlatformAWS Platform = "aws"
)

// Config holds the full application configuration.
type Config struct {
	Platform Platform

	// Agent budgets.
	MaxIterations       int
	MaxExecutionTime    time.Duration
	TopK                int
	MaxObservationChars int

	// BigQuery.
	GCPProjectID     string
	BigQueryDataset  string
	BigQueryLocation string

	// Gemini.
	GeminiAPIKey      string
	GeminiModel       string
	GeminiTemperature float64
	GeminiMaxTokens   int

	// Redshift.
	RedshiftHost              string
	RedshiftPort              int
	RedshiftDatabase          string
	RedshiftSchema            string
	RedshiftUser              string
	RedshiftPassword          string
	RedshiftUseIAM            bool
	RedshiftClusterIdentifier string

	// Bedrock.
	AWSRegion          string
	BedrockModelID     string
	BedrockTemperature float64
	BedrockMaxTokens   int

	LogLevel string
}

// Load reads configuration from the environment, applying defaults that
// match the original deployment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PLATFORM", string(PlatformGCP))

	v.SetDefault("SQL_AGENT_MAX_ITERATIONS", 15)
	v.SetDefault("SQL_AGENT_MAX_EXECUTION_TIME", 100)
	v.SetDefault("SQL_TOP_K_RESULTS", 10)
	v.SetDefault("SQL_MAX_OBSERVATION_CHARS", 4000)

	v.SetDefault("BIGQUERY_DATASET", "automotive_data")
	v.SetDefault("BIGQUERY_LOCATION", "US")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash-lite-001")
	v.SetDefault("GEMINI_TEMPERATURE", 0.1)
	v.SetDefault("GEMINI_MAX_OUTPUT_TOKENS", 2048)

	v.SetDefault("REDSHIFT_PORT", 5439)
	v.SetDefault("REDSHIFT_DATABASE", "automotive_data")
	v.SetDefault("REDSHIFT_SCHEMA", "public")
	v.SetDefault("REDSHIFT_USER", "admin")
	v.SetDefault("REDSHIFT_USE_IAM", false)
	v.SetDefault("REDSHIFT_CLUSTER_IDENTIFIER", "automotive-cluster")

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0")
	v.SetDefault("BEDROCK_TEMPERATURE", 0.1)
	v.SetDefault("BEDROCK_MAX_TOKENS", 2048)

	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Platform: Platform(strings.ToLower(v.GetString("PLATFORM"))),

		MaxIterations:       v.GetInt("SQL_AGENT_MAX_ITERATIONS"),
		MaxExecutionTime:    time.Duration(v.GetInt("SQL_AGENT_MAX_EXECUTION_TIME")) * time.Second,
		TopK:                v.GetInt("SQL_TOP_K_RESULTS"),
		MaxObservationChars: v.GetInt("SQL_MAX_OBSERVATION_CHARS"),

		GCPProjectID:     v.GetString("GCP_PROJECT_ID"),
		BigQueryDataset:  v.GetString("BIGQUERY_DATASET"),
		BigQueryLocation: v.GetString("BIGQUERY_LOCATION"),

		GeminiAPIKey:      v.GetString("GEMINI_API_KEY"),
		GeminiModel:       v.GetString("GEMINI_MODEL"),
		GeminiTemperature: v.GetFloat64("GEMINI_TEMPERATURE"),
		GeminiMaxTokens:   v.GetInt("GEMINI_MAX_OUTPUT_TOKENS"),

		RedshiftHost:              v.GetString("REDSHIFT_HOST"),
		RedshiftPort:              v.GetInt("REDSHIFT_PORT"),
		RedshiftDatabase:          v.GetString("REDSHIFT_DATABASE"),
		RedshiftSchema:            v.GetString("REDSHIFT_SCHEMA"),
		RedshiftUser:              v.GetString("REDSHIFT_USER"),
		RedshiftPassword:          v.GetString("REDSHIFT_PASSWORD"),
		RedshiftUseIAM:            v.GetBool("REDSHIFT_USE_IAM"),
		RedshiftClusterIdentifier: v.GetString("REDSHIFT_CLUSTER_IDENTIFIER"),

		AWSRegion:          v.GetString("AWS_REGION"),
		BedrockModelID:     v.GetString("BEDROCK_MODEL_ID"),
		BedrockTemperature: v.GetFloat64("BEDROCK_TEMPERATURE"),
		BedrockMaxTokens:   v.GetInt("BEDROCK_MAX_TOKENS"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields required by the selected platform.
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformGCP:
		if c.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required for platform %q", c.Platform)
		}
		if c.BigQueryDataset == "" {
			return fmt.Errorf("BIGQUERY_DATASET is required for platform %q", c.Platform)
		}
	case PlatformAWS:
		if c.RedshiftHost == "" {
			return fmt.Errorf("REDSHIFT_HOST is required for platform %q", c.Platform)
		}
		if c.RedshiftDatabase == "" {
			return fmt.Errorf("REDSHIFT_DATABASE is required for platform %q", c.Platform)
		}
		if !c.RedshiftUseIAM && c.RedshiftPassword == "" {
			return fmt.Errorf("REDSHIFT_PASSWORD is required when REDSHIFT_USE_IAM is false")
		}
	default:
		return fmt.Errorf("unknown platform %q (expected %q or %q)", c.Platform, PlatformGCP, PlatformAWS)
	}
	return nil
}
