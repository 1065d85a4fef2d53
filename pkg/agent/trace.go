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

	"github.com/dealerlens/dealerlens/pkg/toolkit"
)

// ExtractSQL returns the statements sent to the warehouse, in step order.
// Selection is by step kind, not tool name, and only execution counts:
// queries that merely passed through the checker never touched the database
// and are excluded.
func ExtractSQL(traj *Trajectory) []string {
	if traj == nil {
		return nil
	}
	var queries []string
	for _, step := range traj.Steps {
		if step.Action == "" || step.Kind != toolkit.KindExecuteQuery {
			continue
		}
		if sql := strings.TrimSpace(step.Input); sql != "" {
			queries = append(queries, sql)
		}
	}
	return queries
}
