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
package toolkit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerlens/dealerlens/pkg/warehouse"
)

type fakeWarehouse struct {
	tables     []string
	schema     string
	result     string
	executeErr error
	lastSQL    string
	described  []string
}

func (f *fakeWarehouse) Name() string { return "fake" }

func (f *fakeWarehouse) Dialect() warehouse.Dialect {
	return warehouse.Dialect{Name: "Fake SQL"}
}

func (f *fakeWarehouse) ListTables(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeWarehouse) Describe(_ context.Context, tables []string) (string, error) {
	f.described = tables
	return f.schema, nil
}

func (f *fakeWarehouse) Execute(_ context.Context, sql string) (string, error) {
	f.lastSQL = sql
	if f.executeErr != nil {
		return "", f.executeErr
	}
	return f.result, nil
}

func (f *fakeWarehouse) Ping(context.Context) error { return nil }
func (f *fakeWarehouse) Close() error               { return nil }

type fakeCompleter struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

func (f *fakeCompleter) Name() string  { return "fake" }
func (f *fakeCompleter) Model() string { return "fake-model" }

type stubTool struct {
	name string
	kind Kind
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Kind() Kind          { return s.kind }
func (s *stubTool) Description() string { return "does " + s.name }

func (s *stubTool) Call(context.Context, string) (string, error) {
	return s.name + " ok", nil
}

func TestRegistryRegisterAndCall(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "b_tool"}))
	require.NoError(t, reg.Register(&stubTool{name: "a_tool"}))

	out, err := reg.Call(context.Background(), "a_tool", "")
	require.NoError(t, err)
	assert.Equal(t, "a_tool ok", out)

	assert.Equal(t, []string{"a_tool", "b_tool"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "dup"}))
	err := reg.Register(&stubTool{name: "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Call(context.Background(), "missing", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestRegistryDescribeSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubTool{name: "zeta"}))
	require.NoError(t, reg.Register(&stubTool{name: "alpha"}))

	desc := reg.Describe()
	lines := strings.Split(desc, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "alpha: does alpha", lines[0])
	assert.Equal(t, "zeta: does zeta", lines[1])
}

func TestNewSQLToolsRegistersAll(t *testing.T) {
	reg, err := NewSQLTools(&fakeWarehouse{}, &fakeCompleter{}, SQLToolsConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		NameListTables,
		NameQuery,
		NameQueryChecker,
		NameSchema,
	}, reg.Names())

	for _, name := range reg.Names() {
		tool, err := reg.Get(name)
		require.NoError(t, err)
		assert.NotEmpty(t, tool.Description())
	}
}

func TestListTablesJoinsNames(t *testing.T) {
	w := &fakeWarehouse{tables: []string{"customers", "vehicles"}}
	reg, err := NewSQLTools(w, &fakeCompleter{}, SQLToolsConfig{})
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), NameListTables, "")
	require.NoError(t, err)
	assert.Equal(t, "customers, vehicles", out)
}

func TestSchemaToolParsesCommaList(t *testing.T) {
	w := &fakeWarehouse{schema: "CREATE TABLE vehicles (...)"}
	reg, err := NewSQLTools(w, &fakeCompleter{}, SQLToolsConfig{})
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), NameSchema, " vehicles , sales_transactions ")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE vehicles (...)", out)
	assert.Equal(t, []string{"vehicles", "sales_transactions"}, w.described)
}

func TestQueryCheckerPromptsModel(t *testing.T) {
	c := &fakeCompleter{reply: "SELECT 1\n"}
	reg, err := NewSQLTools(&fakeWarehouse{}, c, SQLToolsConfig{})
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), NameQueryChecker, "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)
	assert.Contains(t, c.lastPrompt, "SELECT 1")
	assert.Contains(t, c.lastPrompt, "Fake SQL")
	assert.Contains(t, c.lastPrompt, "common mistakes")
}

func TestQueryToolTruncatesLongOutput(t *testing.T) {
	w := &fakeWarehouse{result: strings.Repeat("x", 5000)}
	reg, err := NewSQLTools(w, &fakeCompleter{}, SQLToolsConfig{MaxObservationChars: 100})
	require.NoError(t, err)

	out, err := reg.Call(context.Background(), NameQuery, "SELECT big FROM wide")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "... (output truncated)"))
	assert.Less(t, len(out), 200)
	assert.Equal(t, "SELECT big FROM wide", w.lastSQL)
}

func TestQueryToolPropagatesError(t *testing.T) {
	w := &fakeWarehouse{executeErr: errors.New("relation does not exist")}
	reg, err := NewSQLTools(w, &fakeCompleter{}, SQLToolsConfig{})
	require.NoError(t, err)

	_, err = reg.Call(context.Background(), NameQuery, "SELECT * FROM nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "list_tables", KindListTables.String())
	assert.Equal(t, "describe_tables", KindDescribeTables.String())
	assert.Equal(t, "check_query", KindCheckQuery.String())
	assert.Equal(t, "execute_query", KindExecuteQuery.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestKindZeroValueIsUnknown(t *testing.T) {
	var k Kind
	assert.Equal(t, KindUnknown, k)
}
