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
	"fmt"
	"strings"

	"github.com/dealerlens/dealerlens/pkg/toolkit"
	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

// StopSequences are passed to the model provider so generation halts before
// the model invents its own Observation line.
func StopSequences() []string {
	return []string{"\nObservation:", "\n\tObservation:"}
}

// datasetBriefing summarizes the automotive sales dataset so the model does
// not waste steps rediscovering it.
const datasetBriefing = `The database contains automotive retail data:
- vehicles: vehicle inventory (make, model, year, trim, MSRP, fuel type)
- dealerships: dealership locations and regions
- customers: customer demographics
- sales_transactions: individual vehicle sales with price, date, dealership and customer
- marketing_campaigns: campaign spend and channels by period
- competitor_sales: aggregated competitor sales volumes by region

Data covers January 2023 through October 2024. All monetary amounts are in USD.
Sale prices can be below MSRP because of discounts and promotions.`

// buildPrompt renders the full completion prompt: role briefing, dataset and
// dialect notes, tool catalog, output format, and the scratchpad of steps so
// far.
func buildPrompt(question string, reg *toolkit.Registry, dialect warehouse.Dialect, topK int, steps []Step) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are an agent designed to interact with a SQL database.
Given an input question, create a syntactically correct %s query to run, then look at the results of the query and return the answer.
Unless the user specifies a specific number of examples they wish to obtain, always limit your query to at most %d results.
You can order the results by a relevant column to return the most interesting examples in the database.
Never query for all the columns from a specific table, only ask for the relevant columns given the question.
You have access to tools for interacting with the database.
Only use the below tools. Only use the information returned by the below tools to construct your final answer.
You MUST double check your query before executing it. If you get an error while executing a query, rewrite the query and try again.

DO NOT make any DML statements (INSERT, UPDATE, DELETE, DROP etc.) to the database.

`, dialect.Name, topK)

	sb.WriteString(datasetBriefing)
	sb.WriteString("\n\n")
	sb.WriteString(dialect.Briefing())
	sb.WriteString("\n\n")

	names := reg.Names()
	fmt.Fprintf(&sb, "You have access to the following tools:\n\n%s\n\n", reg.Describe())
	fmt.Fprintf(&sb, `Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [%s]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

`, strings.Join(names, ", "))

	fmt.Fprintf(&sb, "Question: %s\nThought:", question)
	sb.WriteString(renderScratchpad(steps))
	return sb.String()
}

// renderScratchpad replays completed steps in the format the model writes
// them, leaving the prompt ending on "Thought:" for the next completion.
// Steps without an action carry the raw output back verbatim so the
// corrective observation lands next to what the model actually said.
func renderScratchpad(steps []Step) string {
	var sb strings.Builder
	for _, step := range steps {
		if step.Action == "" {
			fmt.Fprintf(&sb, " %s\nObservation: %s\nThought:", step.Thought, step.Observation)
			continue
		}
		fmt.Fprintf(&sb, " %s\nAction: %s\nAction Input: %s\nObservation: %s\nThought:",
			step.Thought, step.Action, step.Input, step.Observation)
	}
	return sb.String()
}
