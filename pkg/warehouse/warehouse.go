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
// Package warehouse defines the database capability the reasoning core consumes.
//
// A Warehouse is a read/execute view of one cloud data warehouse: it can list
// tables, describe schemas with sample rows, and run literal SQL. Implementations
// live in the bigquery and redshift subpackages; the reasoning loop never depends
// on a concrete backend.
package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// DefaultSampleRows is the number of sample rows included in schema descriptions.
const DefaultSampleRows = 3

// DefaultMaxCellChars caps the rendered length of a single result cell.
const DefaultMaxCellChars = 1000

// Warehouse is the abstract database capability.
//
// All methods honor context cancellation; callers bound every invocation with a
// deadline so no warehouse round trip can hang the request.
type Warehouse interface {
	// Name returns the backend identifier (e.g. "bigquery", "redshift").
	Name() string

	// Dialect describes the backend's SQL dialect for prompt briefing.
	Dialect() Dialect

	// ListTables returns the table names in the configured dataset/schema, sorted.
	ListTables(ctx context.Context) ([]string, error)

	// Describe returns schema text plus sample rows for the given tables.
	// An empty table list describes every table.
	Describe(ctx context.Context, tables []string) (string, error)

	// Execute runs a literal SQL statement and renders the result as text.
	Execute(ctx context.Context, sql string) (string, error)

	// Ping checks warehouse reachability.
	Ping(ctx context.Context) error

	// Close releases the underlying connection resources.
	Close() error
}

// Dialect carries the SQL dialect notes a warehouse contributes to the
// planning prompt. The two supported warehouses differ in date handling and
// identifier quoting, and the model needs to be told which rules apply.
type Dialect struct {
	// Name is the dialect label shown to the model (e.g. "BigQuery standard SQL").
	Name string

	// Notes are one-per-line syntax rules (date extraction, limits, quoting).
	Notes []string
}

// Briefing renders the dialect section of the system briefing.
func (d Dialect) Briefing() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CRITICAL - %s syntax:\n", d.Name)
	for _, n := range d.Notes {
		sb.WriteString("- ")
		sb.WriteString(n)
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderRows formats tabular results as aligned text, bounding each cell at
// maxCellChars. It is shared by the backends so observations look the same
// regardless of which warehouse produced them.
func RenderRows(columns []string, rows [][]string, maxCellChars int) string {
	if len(rows) == 0 {
		return "(no rows)"
	}
	if maxCellChars <= 0 {
		maxCellChars = DefaultMaxCellChars
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	clipped := make([][]string, len(rows))
	for r, row := range rows {
		clipped[r] = make([]string, len(row))
		for i, cell := range row {
			if len(cell) > maxCellChars {
				cell = cell[:maxCellChars] + "..."
			}
			clipped[r][i] = cell
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if pad := widths[i] - len(cell); pad > 0 && i < len(cells)-1 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
		}
		sb.WriteString("\n")
	}
	writeRow(columns)
	for _, row := range clipped {
		writeRow(row)
	}
	fmt.Fprintf(&sb, "(%d row(s))", len(rows))
	return sb.String()
}

// FormatValue renders a scanned database value for display.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
