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
// Package toolkit defines the actions the reasoning loop can take against a
// warehouse, and the registry that dispatches them by name.
package toolkit

import "context"

// Kind classifies what a tool does. The trace extractor and the loop use the
// kind, never the tool name, so renaming a tool cannot silently change
// behavior.
type Kind int

const (
	// KindUnknown is the zero value, carried by steps whose action never
	// resolved to a registered tool.
	KindUnknown Kind = iota
	// KindListTables enumerates warehouse tables.
	KindListTables
	// KindDescribeTables returns schema text and sample rows.
	KindDescribeTables
	// KindCheckQuery reviews SQL for common mistakes without executing it.
	KindCheckQuery
	// KindExecuteQuery runs SQL against the warehouse.
	KindExecuteQuery
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindListTables:
		return "list_tables"
	case KindDescribeTables:
		return "describe_tables"
	case KindCheckQuery:
		return "check_query"
	case KindExecuteQuery:
		return "execute_query"
	default:
		return "unknown"
	}
}

// Tool is a single action available to the reasoning loop.
type Tool interface {
	// Name is the identifier the model writes on its Action line.
	Name() string

	// Kind classifies the tool.
	Kind() Kind

	// Description tells the model when and how to use the tool.
	Description() string

	// Call executes the tool with the model-provided input.
	Call(ctx context.Context, input string) (string, error)
}
