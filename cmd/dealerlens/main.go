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
// Command dealerlens answers natural language questions about an automotive
// sales warehouse.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/internal/log"
	"github.com/dealerlens/dealerlens/pkg/agent"
	"github.com/dealerlens/dealerlens/pkg/config"
	"github.com/dealerlens/dealerlens/pkg/llm"
	"github.com/dealerlens/dealerlens/pkg/llm/factory"
	"github.com/dealerlens/dealerlens/pkg/toolkit"
	"github.com/dealerlens/dealerlens/pkg/warehouse"
	"github.com/dealerlens/dealerlens/pkg/warehouse/bigquery"
	"github.com/dealerlens/dealerlens/pkg/warehouse/redshift"
)

var version = "dev"

var platformFlag string

func main() {
	root := &cobra.Command{
		Use:     "dealerlens",
		Short:   "Ask questions about the automotive sales warehouse in plain English",
		Version: version,
		Long: `dealerlens turns natural language questions into SQL against the automotive
sales warehouse (BigQuery on GCP, Redshift on AWS) and reports the answer
along with every query it ran.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&platformFlag, "platform", "",
		"cloud platform to target: gcp or aws (default from PLATFORM env)")

	root.AddCommand(newAskCmd(), newTablesCmd(), newSchemaCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a natural language question about the dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, w, completer, err := connect(ctx)
			if err != nil {
				return err
			}
			defer w.Close()

			registry, err := toolkit.NewSQLTools(w, completer, toolkit.SQLToolsConfig{
				MaxObservationChars: cfg.MaxObservationChars,
				Logger:              log.Logger(),
			})
			if err != nil {
				return err
			}

			analyst, err := agent.New(w, completer, registry, agent.Config{
				MaxIterations:    cfg.MaxIterations,
				MaxExecutionTime: cfg.MaxExecutionTime,
				TopK:             cfg.TopK,
			}, log.Logger())
			if err != nil {
				return err
			}

			resp := analyst.Ask(ctx, strings.Join(args, " "))
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if resp.Status == agent.StatusError {
				return fmt.Errorf("%s", resp.Error)
			}
			return nil
		},
	}
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the warehouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, w, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer w.Close()

			tables, err := w.ListTables(ctx)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table...]",
		Short: "Show schema and sample rows for tables (all tables by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, w, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer w.Close()

			out, err := w.Describe(ctx, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// connect loads configuration and opens the platform-bound warehouse and
// model provider.
func connect(ctx context.Context) (*config.Config, warehouse.Warehouse, llm.Completer, error) {
	if platformFlag != "" {
		os.Setenv("PLATFORM", platformFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log.Configure(cfg.LogLevel)
	logger := log.Logger()

	w, err := openWarehouse(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	completer, err := factory.New(ctx, cfg, agent.StopSequences(), logger)
	if err != nil {
		w.Close()
		return nil, nil, nil, err
	}

	logger.Info("connected",
		zap.String("platform", string(cfg.Platform)),
		zap.String("warehouse", w.Name()),
		zap.String("model", completer.Model()))
	return cfg, w, completer, nil
}

func openWarehouse(ctx context.Context, cfg *config.Config, logger *zap.Logger) (warehouse.Warehouse, error) {
	switch cfg.Platform {
	case config.PlatformGCP:
		return bigquery.Open(ctx, bigquery.Config{
			ProjectID: cfg.GCPProjectID,
			Dataset:   cfg.BigQueryDataset,
			Location:  cfg.BigQueryLocation,
			Logger:    logger,
		})
	case config.PlatformAWS:
		return redshift.Open(ctx, redshift.Config{
			Host:              cfg.RedshiftHost,
			Port:              cfg.RedshiftPort,
			Database:          cfg.RedshiftDatabase,
			Schema:            cfg.RedshiftSchema,
			User:              cfg.RedshiftUser,
			Password:          cfg.RedshiftPassword,
			UseIAM:            cfg.RedshiftUseIAM,
			ClusterIdentifier: cfg.RedshiftClusterIdentifier,
			Region:            cfg.AWSRegion,
			Logger:            logger,
		})
	default:
		return nil, fmt.Errorf("no warehouse for platform %q", cfg.Platform)
	}
}
