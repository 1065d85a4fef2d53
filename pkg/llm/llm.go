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
// Package llm defines the text completion interface shared by all model
// providers.
package llm

import "context"

// Completer generates a text completion for a prompt. The reasoning loop
// drives it one prompt at a time; conversation state lives in the prompt.
type Completer interface {
	// Complete returns the model's completion for the given prompt.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name, e.g. "gemini" or "bedrock".
	Name() string

	// Model returns the model identifier in use.
	Model() string
}
