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
// Package bigquery implements warehouse.Warehouse for Google BigQuery.
package bigquery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	bq "cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

// maxResultRows is the safety limit for query results to prevent OOM.
const maxResultRows = 500

// Compile-time interface check.
var _ warehouse.Warehouse = (*Backend)(nil)

// Config holds connection configuration for the BigQuery backend.
type Config struct {
	ProjectID string
	Dataset   string
	// Location is the dataset location used for query jobs (default "US").
	Location string

	// SampleRows per table in Describe output (default warehouse.DefaultSampleRows).
	SampleRows int

	Logger *zap.Logger
}

// Backend implements warehouse.Warehouse for Google BigQuery.
type Backend struct {
	client     *bq.Client
	projectID  string
	dataset    string
	location   string
	sampleRows int
	logger     *zap.Logger
}

// Open creates a BigQuery client using Application Default Credentials and
// verifies the dataset exists.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("ProjectID is required")
	}
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("Dataset is required")
	}
	if cfg.Location == "" {
		cfg.Location = "US"
	}
	if cfg.SampleRows == 0 {
		cfg.SampleRows = warehouse.DefaultSampleRows
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	client, err := bq.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}
	client.Location = cfg.Location

	b := &Backend{
		client:     client,
		projectID:  cfg.ProjectID,
		dataset:    cfg.Dataset,
		location:   cfg.Location,
		sampleRows: cfg.SampleRows,
		logger:     cfg.Logger,
	}
	if err := b.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	cfg.Logger.Info("bigquery backend connected",
		zap.String("project", cfg.ProjectID),
		zap.String("dataset", cfg.Dataset),
		zap.String("location", cfg.Location))
	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return "bigquery"
}

// Dialect describes BigQuery Standard SQL for the planning briefing.
func (b *Backend) Dialect() warehouse.Dialect {
	return warehouse.Dialect{
		Name: "BigQuery Standard SQL",
		Notes: []string{
			"For year extraction: EXTRACT(YEAR FROM date_column) NOT strftime",
			"For month extraction: EXTRACT(MONTH FROM date_column)",
			"For date filtering: WHERE date_column >= '2024-01-01'",
			fmt.Sprintf("Qualify tables as `%s.%s.table_name` in backticks", b.projectID, b.dataset),
			"Use standard SQL syntax, NOT SQLite functions",
		},
	}
}

// ListTables returns the tables in the configured dataset.
func (b *Backend) ListTables(ctx context.Context) ([]string, error) {
	it := b.client.Dataset(b.dataset).Tables(ctx)
	var tables []string
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list tables in dataset %s: %w", b.dataset, err)
		}
		tables = append(tables, t.TableID)
	}
	sort.Strings(tables)
	return tables, nil
}

// Describe returns CREATE-TABLE-style schema text plus sample rows for the
// given tables (all tables when the list is empty).
func (b *Backend) Describe(ctx context.Context, tables []string) (string, error) {
	if len(tables) == 0 {
		all, err := b.ListTables(ctx)
		if err != nil {
			return "", err
		}
		tables = all
	} else {
		tables = append([]string(nil), tables...)
		sort.Strings(tables)
	}

	var sb strings.Builder
	for i, table := range tables {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if err := b.describeTable(ctx, &sb, table); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (b *Backend) describeTable(ctx context.Context, sb *strings.Builder, table string) error {
	md, err := b.client.Dataset(b.dataset).Table(table).Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to read metadata for table %s: %w", table, err)
	}

	fmt.Fprintf(sb, "CREATE TABLE %s (\n", table)
	for i, field := range md.Schema {
		if i > 0 {
			sb.WriteString(",\n")
		}
		fmt.Fprintf(sb, "\t%s %s", field.Name, string(field.Type))
		if field.Required {
			sb.WriteString(" NOT NULL")
		}
	}
	sb.WriteString("\n)\n")

	sample, err := b.Execute(ctx, fmt.Sprintf("SELECT * FROM `%s.%s.%s` LIMIT %d",
		b.projectID, b.dataset, table, b.sampleRows))
	if err != nil {
		// Sample rows are best effort; the schema is still useful on its own.
		b.logger.Warn("failed to sample table", zap.String("table", table), zap.Error(err))
		return nil
	}
	fmt.Fprintf(sb, "\n%d rows from %s table:\n%s", b.sampleRows, table, sample)
	return nil
}

// Execute runs a literal SQL statement and renders the result.
func (b *Backend) Execute(ctx context.Context, sqlText string) (string, error) {
	start := time.Now()
	q := b.client.Query(sqlText)
	q.Location = b.location

	it, err := q.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}

	var columns []string
	var rendered [][]string
	truncated := false
	for {
		var row []bq.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", fmt.Errorf("row iteration error: %w", err)
		}
		if columns == nil {
			for _, field := range it.Schema {
				columns = append(columns, field.Name)
			}
		}
		if len(rendered) >= maxResultRows {
			truncated = true
			break
		}
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = warehouse.FormatValue(v)
		}
		rendered = append(rendered, cells)
	}
	if columns == nil {
		for _, field := range it.Schema {
			columns = append(columns, field.Name)
		}
	}

	out := warehouse.RenderRows(columns, rendered, warehouse.DefaultMaxCellChars)
	if truncated {
		out += fmt.Sprintf("\n(result truncated at %d rows)", maxResultRows)
	}
	b.logger.Debug("executed query",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(out)))
	return out, nil
}

// Ping verifies the dataset is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.client.Dataset(b.dataset).Metadata(ctx); err != nil {
		return fmt.Errorf("failed to reach dataset %s: %w", b.dataset, err)
	}
	return nil
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}
