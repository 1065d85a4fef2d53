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
package toolkit

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/pkg/llm"
	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

// Canonical tool names written by the model on its Action line.
const (
	NameListTables   = "sql_db_list_tables"
	NameSchema       = "sql_db_schema"
	NameQueryChecker = "sql_db_query_checker"
	NameQuery        = "sql_db_query"
)

// DefaultMaxObservationChars bounds tool output fed back into the prompt.
const DefaultMaxObservationChars = 4000

// SQLToolsConfig configures the standard warehouse toolset.
type SQLToolsConfig struct {
	// MaxObservationChars truncates query output (default
	// DefaultMaxObservationChars). Schema output is never truncated.
	MaxObservationChars int

	Logger *zap.Logger
}

// NewSQLTools builds a registry holding the four standard tools: list
// tables, describe schema, check a query, execute a query. The checker is
// model-backed and never touches the warehouse.
func NewSQLTools(w warehouse.Warehouse, completer llm.Completer, cfg SQLToolsConfig) (*Registry, error) {
	if w == nil {
		return nil, fmt.Errorf("warehouse is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if cfg.MaxObservationChars == 0 {
		cfg.MaxObservationChars = DefaultMaxObservationChars
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	reg := NewRegistry()
	tools := []Tool{
		&listTablesTool{w: w},
		&schemaTool{w: w},
		&queryCheckerTool{completer: completer, dialect: w.Dialect().Name},
		&queryTool{w: w, maxChars: cfg.MaxObservationChars, logger: cfg.Logger},
	}
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

type listTablesTool struct {
	w warehouse.Warehouse
}

func (t *listTablesTool) Name() string { return NameListTables }
func (t *listTablesTool) Kind() Kind   { return KindListTables }

func (t *listTablesTool) Description() string {
	return "Input is an empty string, output is a comma-separated list of tables in the database."
}

func (t *listTablesTool) Call(ctx context.Context, _ string) (string, error) {
	tables, err := t.w.ListTables(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(tables, ", "), nil
}

type schemaTool struct {
	w warehouse.Warehouse
}

func (t *schemaTool) Name() string { return NameSchema }
func (t *schemaTool) Kind() Kind   { return KindDescribeTables }

func (t *schemaTool) Description() string {
	return "Input to this tool is a comma-separated list of tables, output is the schema and sample rows for those tables. " +
		"Be sure that the tables actually exist by calling " + NameListTables + " first!"
}

func (t *schemaTool) Call(ctx context.Context, input string) (string, error) {
	var tables []string
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			tables = append(tables, name)
		}
	}
	return t.w.Describe(ctx, tables)
}

type queryCheckerTool struct {
	completer llm.Completer
	dialect   string
}

func (t *queryCheckerTool) Name() string { return NameQueryChecker }
func (t *queryCheckerTool) Kind() Kind   { return KindCheckQuery }

func (t *queryCheckerTool) Description() string {
	return "Use this tool to double check if your query is correct before executing it. " +
		"Always use this tool before executing a query with " + NameQuery + "!"
}

func (t *queryCheckerTool) Call(ctx context.Context, input string) (string, error) {
	prompt := fmt.Sprintf(`%s
Double check the %s query above for common mistakes, including:
- Using NOT IN with NULL values
- Using UNION when UNION ALL should have been used
- Using BETWEEN for exclusive ranges
- Data type mismatch in predicates
- Properly quoting identifiers
- Using the correct number of arguments for functions
- Casting to the correct data type
- Using the proper columns for joins

If there are any of the above mistakes, rewrite the query. If there are no mistakes, just reproduce the original query.

Output the final SQL query only.`, input, t.dialect)

	out, err := t.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("query check failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

type queryTool struct {
	w        warehouse.Warehouse
	maxChars int
	logger   *zap.Logger
}

func (t *queryTool) Name() string { return NameQuery }
func (t *queryTool) Kind() Kind   { return KindExecuteQuery }

func (t *queryTool) Description() string {
	return "Input to this tool is a detailed and correct SQL query, output is a result from the database. " +
		"If the query is not correct, an error message will be returned. " +
		"If an error is returned, rewrite the query, check the query, and try again."
}

func (t *queryTool) Call(ctx context.Context, input string) (string, error) {
	out, err := t.w.Execute(ctx, input)
	if err != nil {
		return "", err
	}
	if len(out) > t.maxChars {
		t.logger.Debug("truncating query output",
			zap.Int("chars", len(out)),
			zap.Int("limit", t.maxChars))
		out = out[:t.maxChars] + "\n... (output truncated)"
	}
	return out, nil
}
