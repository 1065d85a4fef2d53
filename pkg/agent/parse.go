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
	"regexp"
	"strings"
)

// DecisionKind tags what the model decided in one completion.
type DecisionKind int

const (
	// DecisionAction means the model chose a tool to run.
	DecisionAction DecisionKind = iota
	// DecisionFinal means the model produced its final answer.
	DecisionFinal
	// DecisionUnparseable means the completion matched neither format.
	DecisionUnparseable
)

// Decision is the parsed form of one model completion. Exactly the fields
// implied by Kind are populated.
type Decision struct {
	Kind    DecisionKind
	Thought string
	// Action and Input are set when Kind is DecisionAction.
	Action string
	Input  string
	// Answer is set when Kind is DecisionFinal.
	Answer string
	// Raw is the original completion, kept for corrective feedback.
	Raw string
}

// actionPattern matches the Action / Action Input lines, tolerating numbered
// variants ("Action 2:") the model sometimes emits.
var actionPattern = regexp.MustCompile(`(?s)Action\s*\d*\s*:\s*(.*?)\s*Action\s*\d*\s*Input\s*\d*\s*:\s*(.*)`)

const finalAnswerMarker = "Final Answer:"

// ParseDecision interprets one model completion. When a completion carries
// both an Action and a Final Answer the action wins: the model is still mid
// reasoning and the trailing answer is speculative.
func ParseDecision(output string) Decision {
	d := Decision{Raw: output}

	if m := actionPattern.FindStringSubmatchIndex(output); m != nil {
		d.Kind = DecisionAction
		d.Thought = cleanThought(output[:m[0]])
		d.Action = cleanActionName(output[m[2]:m[3]])
		d.Input = cleanActionInput(output[m[4]:m[5]])
		return d
	}

	if idx := strings.Index(output, finalAnswerMarker); idx >= 0 {
		d.Kind = DecisionFinal
		d.Thought = cleanThought(output[:idx])
		d.Answer = strings.TrimSpace(output[idx+len(finalAnswerMarker):])
		return d
	}

	d.Kind = DecisionUnparseable
	return d
}

func cleanThought(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Thought:")
	return strings.TrimSpace(s)
}

func cleanActionName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*\"'")
	return strings.TrimSpace(s)
}

// cleanActionInput strips the decoration models wrap around SQL: markdown
// fences, a language tag, surrounding backticks or quotes, and anything the
// model hallucinated past an Observation or Final Answer marker. The latter
// matters when the action wins the tie-break: the speculative answer text
// must not leak into the tool input.
func cleanActionInput(s string) string {
	if idx := strings.Index(s, "\nObservation"); idx >= 0 {
		s = s[:idx]
	}
	if idx := strings.Index(s, finalAnswerMarker); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag like "sql" on the fence line.
		if nl := strings.Index(s, "\n"); nl >= 0 {
			tag := strings.TrimSpace(s[:nl])
			if tag == "" || isLanguageTag(tag) {
				s = s[nl+1:]
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		return strings.TrimSpace(s)
	}

	s = strings.Trim(s, "`")
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func isLanguageTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "sql", "postgresql", "postgres", "bigquery", "redshift":
		return true
	}
	return false
}
