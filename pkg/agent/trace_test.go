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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealerlens/dealerlens/pkg/toolkit"
)

func TestExtractSQLOnlyExecutedQueries(t *testing.T) {
	traj := &Trajectory{
		Steps: []Step{
			{Action: "sql_db_list_tables", Kind: toolkit.KindListTables, Input: ""},
			{Action: "sql_db_schema", Kind: toolkit.KindDescribeTables, Input: "vehicles"},
			{Action: "sql_db_query_checker", Kind: toolkit.KindCheckQuery, Input: "SELECT 1"},
			{Action: "sql_db_query", Kind: toolkit.KindExecuteQuery, Input: "SELECT make FROM vehicles LIMIT 10"},
			{Action: "sql_db_query", Kind: toolkit.KindExecuteQuery, Input: "  SELECT COUNT(*) FROM sales_transactions  "},
		},
	}

	assert.Equal(t, []string{
		"SELECT make FROM vehicles LIMIT 10",
		"SELECT COUNT(*) FROM sales_transactions",
	}, ExtractSQL(traj))
}

func TestExtractSQLIncludesFailedExecutions(t *testing.T) {
	traj := &Trajectory{
		Steps: []Step{
			{Action: "sql_db_query", Kind: toolkit.KindExecuteQuery, Input: "SELECT * FROM nope", Observation: "Error: relation does not exist"},
		},
	}
	assert.Equal(t, []string{"SELECT * FROM nope"}, ExtractSQL(traj))
}

func TestExtractSQLSkipsSyntheticSteps(t *testing.T) {
	traj := &Trajectory{
		Steps: []Step{
			{Thought: "free-form rambling", Observation: "Invalid format."},
			{Action: "made_up_tool", Input: "SELECT 1", Observation: "made_up_tool is not a valid tool"},
		},
	}
	assert.Empty(t, ExtractSQL(traj))
}

func TestExtractSQLNilAndEmpty(t *testing.T) {
	assert.Nil(t, ExtractSQL(nil))
	assert.Empty(t, ExtractSQL(&Trajectory{}))
}
