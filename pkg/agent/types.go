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
// Package agent implements the iterative plan-act-observe loop that turns a
// natural language question into warehouse queries and a final answer.
package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/dealerlens/dealerlens/pkg/toolkit"
)

// Defaults for the loop budgets, matching the production deployment.
const (
	DefaultMaxIterations    = 15
	DefaultMaxExecutionTime = 100 * time.Second
	DefaultTopK             = 10
)

// Config bounds a single reasoning run.
type Config struct {
	// MaxIterations caps the number of plan-act-observe steps.
	MaxIterations int
	// MaxExecutionTime caps wall-clock time for the whole run.
	MaxExecutionTime time.Duration
	// TopK is the row limit the model is told to apply unless the user asks
	// for a specific number of results.
	TopK int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	return c
}

// Step is one completed plan-act-observe cycle.
type Step struct {
	// Thought is the model's reasoning text preceding the action.
	Thought string
	// Action is the tool name the model chose. Empty when the model produced
	// unparseable output and the step carries only a corrective observation.
	Action string
	// Kind classifies the action. Valid only when Action is non-empty.
	Kind toolkit.Kind
	// Input is the raw tool input after fence stripping.
	Input string
	// Observation is the tool output (or synthetic feedback) shown back to
	// the model.
	Observation string
	// Failed marks steps whose observation is corrective feedback (unknown
	// tool, tool error, unparseable output) rather than a real result.
	Failed bool
}

// Outcome says how a run ended.
type Outcome int

const (
	// OutcomeFinalAnswer means the model produced a final answer.
	OutcomeFinalAnswer Outcome = iota
	// OutcomeStepLimit means the iteration budget ran out.
	OutcomeStepLimit
	// OutcomeTimeLimit means the wall-clock budget ran out.
	OutcomeTimeLimit
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeFinalAnswer:
		return "final_answer"
	case OutcomeStepLimit:
		return "step_limit"
	case OutcomeTimeLimit:
		return "time_limit"
	default:
		return "unknown"
	}
}

// Trajectory is the full record of one reasoning run.
type Trajectory struct {
	// ID uniquely identifies the run for logging and correlation.
	ID uuid.UUID
	// Question is the user's natural language question.
	Question string
	// Steps are the completed cycles in order.
	Steps []Step
	// Answer is the final answer text. Empty unless Outcome is
	// OutcomeFinalAnswer.
	Answer string
	// Outcome says how the run ended.
	Outcome Outcome
	// StartedAt is when the run began.
	StartedAt time.Time
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Response is the structured result returned to callers of Ask.
type Response struct {
	// Status is "success" or "error".
	Status string `json:"status"`
	// Question echoes the input question.
	Question string `json:"question"`
	// Answer is the final answer, or a fallback sentence when the budgets
	// ran out before the model concluded.
	Answer string `json:"answer,omitempty"`
	// SQLQueries lists every statement actually executed against the
	// warehouse, in order.
	SQLQueries []string `json:"sql_queries,omitempty"`
	// StepsCount is the number of completed reasoning steps.
	StepsCount int `json:"steps_count"`
	// Error carries the failure message when Status is "error".
	Error string `json:"error,omitempty"`
}

// Status values for Response.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
