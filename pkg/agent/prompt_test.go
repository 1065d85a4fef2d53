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
package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerlens/dealerlens/pkg/toolkit"
	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

func testRegistry(t *testing.T) *toolkit.Registry {
	t.Helper()
	reg, err := toolkit.NewSQLTools(
		&fakeWarehouse{},
		&scriptedCompleter{replies: []string{"SELECT 1"}},
		toolkit.SQLToolsConfig{})
	require.NoError(t, err)
	return reg
}

func TestBuildPromptStructure(t *testing.T) {
	dialect := warehouse.Dialect{
		Name:  "BigQuery Standard SQL",
		Notes: []string{"Use EXTRACT(YEAR FROM date_column)"},
	}

	prompt := buildPrompt("How many sales in 2024?", testRegistry(t), dialect, 10, nil)

	assert.Contains(t, prompt, "BigQuery Standard SQL")
	assert.Contains(t, prompt, "at most 10 results")
	assert.Contains(t, prompt, "Use EXTRACT(YEAR FROM date_column)")
	assert.Contains(t, prompt, "sales_transactions: individual vehicle sales")
	assert.Contains(t, prompt, "DO NOT make any DML statements")
	assert.Contains(t, prompt, toolkit.NameListTables)
	assert.Contains(t, prompt, "Final Answer: the final answer")
	assert.Contains(t, prompt, "Question: How many sales in 2024?")
	assert.True(t, strings.HasSuffix(prompt, "Thought:"))
}

func TestBuildPromptScratchpadReplay(t *testing.T) {
	steps := []Step{
		{
			Thought:     "List the tables first.",
			Action:      "sql_db_list_tables",
			Kind:        toolkit.KindListTables,
			Input:       "",
			Observation: "customers, vehicles",
		},
		{
			Thought:     "free-form rambling",
			Observation: "Invalid format.",
		},
	}

	prompt := buildPrompt("q", testRegistry(t), warehouse.Dialect{Name: "Test SQL"}, 10, steps)

	assert.Contains(t, prompt, "Thought: List the tables first.\nAction: sql_db_list_tables\nAction Input: \nObservation: customers, vehicles")
	assert.Contains(t, prompt, "free-form rambling\nObservation: Invalid format.")
	assert.True(t, strings.HasSuffix(prompt, "Thought:"))
}
