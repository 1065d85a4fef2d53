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
package gemini

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestIsThrottled(t *testing.T) {
	throttle := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}
	assert.True(t, isThrottled(throttle))
	assert.True(t, isThrottled(fmt.Errorf("call failed: %w", throttle)))

	assert.False(t, isThrottled(&googleapi.Error{Code: http.StatusInternalServerError}))
	assert.False(t, isThrottled(&googleapi.Error{Code: http.StatusUnauthorized}))
	assert.False(t, isThrottled(errors.New("connection refused")))
	assert.False(t, isThrottled(nil))
}
