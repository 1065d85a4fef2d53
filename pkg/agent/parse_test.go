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
)

func TestParseDecisionAction(t *testing.T) {
	d := ParseDecision("Thought: I should look at the tables first.\nAction: sql_db_list_tables\nAction Input: \"\"")
	assert.Equal(t, DecisionAction, d.Kind)
	assert.Equal(t, "I should look at the tables first.", d.Thought)
	assert.Equal(t, "sql_db_list_tables", d.Action)
	assert.Equal(t, "", d.Input)
}

func TestParseDecisionNumberedAction(t *testing.T) {
	d := ParseDecision("Action 2: sql_db_query\nAction 2 Input: SELECT 1")
	assert.Equal(t, DecisionAction, d.Kind)
	assert.Equal(t, "sql_db_query", d.Action)
	assert.Equal(t, "SELECT 1", d.Input)
}

func TestParseDecisionFinalAnswer(t *testing.T) {
	d := ParseDecision("Thought: I now know the final answer\nFinal Answer: Toyota sold the most vehicles in 2024.")
	assert.Equal(t, DecisionFinal, d.Kind)
	assert.Equal(t, "I now know the final answer", d.Thought)
	assert.Equal(t, "Toyota sold the most vehicles in 2024.", d.Answer)
}

func TestParseDecisionActionWinsOverFinalAnswer(t *testing.T) {
	d := ParseDecision("Thought: run it\nAction: sql_db_query\nAction Input: SELECT 1\nFinal Answer: premature")
	assert.Equal(t, DecisionAction, d.Kind)
	assert.Equal(t, "sql_db_query", d.Action)
	// The speculative answer must not leak into the SQL sent to the warehouse.
	assert.Equal(t, "SELECT 1", d.Input)
}

func TestParseDecisionStripsFencedSQL(t *testing.T) {
	d := ParseDecision("Action: sql_db_query\nAction Input: ```sql\nSELECT make FROM vehicles\n```")
	assert.Equal(t, DecisionAction, d.Kind)
	assert.Equal(t, "SELECT make FROM vehicles", d.Input)
}

func TestParseDecisionStripsBareFence(t *testing.T) {
	d := ParseDecision("Action: sql_db_query\nAction Input: ```\nSELECT 1\n```")
	assert.Equal(t, "SELECT 1", d.Input)
}

func TestParseDecisionStripsBackticksAndQuotes(t *testing.T) {
	d := ParseDecision("Action: sql_db_query\nAction Input: `SELECT 1`")
	assert.Equal(t, "SELECT 1", d.Input)

	d = ParseDecision("Action: sql_db_schema\nAction Input: \"vehicles\"")
	assert.Equal(t, "vehicles", d.Input)
}

func TestParseDecisionStripsActionDecoration(t *testing.T) {
	d := ParseDecision("Action: `sql_db_query`\nAction Input: SELECT 1")
	assert.Equal(t, "sql_db_query", d.Action)
}

func TestParseDecisionCutsHallucinatedObservation(t *testing.T) {
	d := ParseDecision("Action: sql_db_query\nAction Input: SELECT 1\nObservation: fabricated result")
	assert.Equal(t, "SELECT 1", d.Input)
}

func TestParseDecisionUnparseable(t *testing.T) {
	raw := "I think the answer is probably Toyota but I am not sure."
	d := ParseDecision(raw)
	assert.Equal(t, DecisionUnparseable, d.Kind)
	assert.Equal(t, raw, d.Raw)
}

func TestParseDecisionMultilineInput(t *testing.T) {
	d := ParseDecision("Thought: run it\nAction: sql_db_query\nAction Input: SELECT make, COUNT(*)\nFROM vehicles\nGROUP BY make")
	assert.Equal(t, DecisionAction, d.Kind)
	assert.Equal(t, "SELECT make, COUNT(*)\nFROM vehicles\nGROUP BY make", d.Input)
}
