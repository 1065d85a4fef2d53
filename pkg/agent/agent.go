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
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dealerlens/dealerlens/pkg/llm"
	"github.com/dealerlens/dealerlens/pkg/toolkit"
	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

// fallbackAnswer is returned when the budgets run out before the model
// concludes.
const fallbackAnswer = "I could not determine an answer within the allotted budget. Try rephrasing or simplifying the question."

// invalidFormatObservation steers the model back to the expected output
// format after an unparseable completion.
const invalidFormatObservation = "Invalid format. Either provide 'Action:' and 'Action Input:' lines, or 'Final Answer:' followed by the answer."

// Analyst answers natural language questions about a warehouse by running a
// bounded plan-act-observe loop over a tool registry.
type Analyst struct {
	warehouse warehouse.Warehouse
	completer llm.Completer
	registry  *toolkit.Registry
	cfg       Config
	logger    *zap.Logger
}

// New builds an Analyst. All collaborators are injected so tests can swap in
// fakes.
func New(w warehouse.Warehouse, completer llm.Completer, registry *toolkit.Registry, cfg Config, logger *zap.Logger) (*Analyst, error) {
	if w == nil {
		return nil, fmt.Errorf("warehouse is required")
	}
	if completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("registry must hold at least one tool")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyst{
		warehouse: w,
		completer: completer,
		registry:  registry,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}, nil
}

// Ask answers one question. The warehouse is pinged up front so connectivity
// problems surface as a clean error instead of fifteen failed steps. Loop
// budget exhaustion is not an error: the response reports success with a
// fallback answer and whatever SQL trail accumulated.
func (a *Analyst) Ask(ctx context.Context, question string) Response {
	question = strings.TrimSpace(question)
	if question == "" {
		return Response{
			Status:   StatusError,
			Question: question,
			Error:    "question must not be empty",
		}
	}

	if err := a.warehouse.Ping(ctx); err != nil {
		a.logger.Error("warehouse unreachable", zap.Error(err))
		return Response{
			Status:   StatusError,
			Question: question,
			Error:    fmt.Sprintf("database unavailable: %v", err),
		}
	}

	traj, err := a.run(ctx, question)
	if err != nil {
		return Response{
			Status:   StatusError,
			Question: question,
			Error:    err.Error(),
		}
	}

	answer := traj.Answer
	if traj.Outcome != OutcomeFinalAnswer {
		answer = bestEffortAnswer(traj)
	}
	return Response{
		Status:     StatusSuccess,
		Question:   question,
		Answer:     answer,
		SQLQueries: ExtractSQL(traj),
		StepsCount: len(traj.Steps),
	}
}

// run executes the reasoning loop until a final answer or a budget runs out.
// Only completer failures are hard errors; tool failures and malformed
// completions feed back into the loop as observations.
func (a *Analyst) run(ctx context.Context, question string) (*Trajectory, error) {
	traj := &Trajectory{
		ID:        uuid.New(),
		Question:  question,
		Outcome:   OutcomeStepLimit,
		StartedAt: time.Now(),
	}
	start := traj.StartedAt
	defer func() { traj.Elapsed = time.Since(start) }()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.MaxExecutionTime)
	defer cancel()

	log := a.logger.With(
		zap.String("run_id", traj.ID.String()),
		zap.String("model", a.completer.Model()),
		zap.String("warehouse", a.warehouse.Name()))
	log.Info("run started", zap.String("question", question))

	dialect := a.warehouse.Dialect()
	for i := 0; i < a.cfg.MaxIterations; i++ {
		if ctx.Err() != nil {
			traj.Outcome = OutcomeTimeLimit
			break
		}

		prompt := buildPrompt(question, a.registry, dialect, a.cfg.TopK, traj.Steps)
		output, err := a.completer.Complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				traj.Outcome = OutcomeTimeLimit
				break
			}
			return traj, fmt.Errorf("model completion failed: %w", err)
		}

		decision := ParseDecision(output)
		switch decision.Kind {
		case DecisionFinal:
			traj.Answer = decision.Answer
			traj.Outcome = OutcomeFinalAnswer
			log.Info("run finished",
				zap.Int("steps", len(traj.Steps)),
				zap.Duration("elapsed", time.Since(start)))
			return traj, nil

		case DecisionAction:
			step := a.act(ctx, decision)
			traj.Steps = append(traj.Steps, step)
			log.Debug("step completed",
				zap.Int("step", len(traj.Steps)),
				zap.String("action", step.Action),
				zap.String("kind", step.Kind.String()),
				zap.Int("observation_chars", len(step.Observation)))

		case DecisionUnparseable:
			traj.Steps = append(traj.Steps, Step{
				Thought:     strings.TrimSpace(decision.Raw),
				Observation: invalidFormatObservation,
				Failed:      true,
			})
			log.Warn("unparseable completion", zap.Int("step", len(traj.Steps)))
		}
	}

	if traj.Outcome == OutcomeTimeLimit || ctx.Err() != nil {
		traj.Outcome = OutcomeTimeLimit
	}
	log.Warn("run stopped before final answer",
		zap.String("outcome", traj.Outcome.String()),
		zap.Int("steps", len(traj.Steps)),
		zap.Duration("elapsed", time.Since(start)))
	return traj, nil
}

// act resolves and invokes the chosen tool, turning every failure into an
// observation the model can recover from.
func (a *Analyst) act(ctx context.Context, decision Decision) Step {
	step := Step{
		Thought: decision.Thought,
		Action:  decision.Action,
		Input:   decision.Input,
	}

	tool, err := a.registry.Get(decision.Action)
	if err != nil {
		step.Observation = fmt.Sprintf("%s is not a valid tool, try one of [%s].",
			decision.Action, strings.Join(a.registry.Names(), ", "))
		step.Failed = true
		return step
	}
	step.Kind = tool.Kind()

	observation, err := tool.Call(ctx, decision.Input)
	if err != nil {
		step.Observation = fmt.Sprintf("Error: %v", err)
		step.Failed = true
		return step
	}
	step.Observation = observation
	return step
}

// bestEffortAnswer salvages an aborted run: the most recent real observation
// is still more useful than nothing.
func bestEffortAnswer(traj *Trajectory) string {
	for i := len(traj.Steps) - 1; i >= 0; i-- {
		s := traj.Steps[i]
		if s.Action != "" && !s.Failed && s.Observation != "" {
			return s.Observation
		}
	}
	return fallbackAnswer
}
