/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `term,short_description,description
매매,값을 지불하고 재화나 용역을 사고 파는 것,중고 거래도 매매의 일종이에요.
금리,돈의 가격,"빌린 돈에 붙는 이자의 비율이에요. 금리가 오르면, 대출이 비싸져요."
broken,only two
매매,dup short,dup long
`

func TestImportCSV_SkipsHeaderInvalidAndDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	st, err := NewImporter(s, PolicySkip, nil).ImportCSV(ctx, strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Inserted: 2, Skipped: 1, Invalid: 1}, st)

	got, err := s.FindByTerm(ctx, "금리")
	require.NoError(t, err)
	assert.Equal(t, "빌린 돈에 붙는 이자의 비율이에요. 금리가 오르면, 대출이 비싸져요.", got.Description)
	m, err := s.FindByTerm(ctx, "매매")
	require.NoError(t, err)
	assert.Equal(t, "값을 지불하고 재화나 용역을 사고 파는 것", m.ShortDescription)
}

func TestImportJSON_RejectsSchemaViolations(t *testing.T) {
	s := newTestStore(t)
	bad := `[{"term": "", "short_description": "x", "description": "y"}, {"term": "a"}]`
	_, err := NewImporter(s, PolicySkip, nil).ImportJSON(context.Background(), strings.NewReader(bad))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.GreaterOrEqual(t, len(se.Problems), 2)
	total, _, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total, "nothing is written for an invalid file")
}

func seedABC(t *testing.T, s *Store) {
	t.Helper()
	for _, term := range []string{"a", "b", "c"} {
		insert(t, s, term)
	}
}

func incoming(terms ...string) []Entry {
	out := make([]Entry, 0, len(terms))
	for _, tm := range terms {
		out = append(out, Entry{Term: tm, ShortDescription: "new", Description: "new"})
	}
	return out
}

func TestImport_OverwriteAllAppliesToCurrentAndLater(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedABC(t, s)
	answers := []MergePolicy{PolicySkip, PolicyOverwriteAll}
	var asked []string
	d := DeciderFunc(func(dup Duplicate) MergePolicy {
		asked = append(asked, dup.Existing.Term)
		a := answers[0]
		answers = answers[1:]
		return a
	})
	im := NewImporter(s, PolicyAsk, d)
	st, err := im.Import(ctx, incoming("a", "b", "c", "z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, asked, "no questions after an -all answer")
	assert.Equal(t, ImportStats{Inserted: 1, Updated: 2, Skipped: 1}, st)
	assert.Equal(t, PolicyOverwriteAll, im.Policy())

	for term, want := range map[string]string{"a": "a short", "b": "new", "c": "new"} {
		got, err := s.FindByTerm(ctx, term)
		require.NoError(t, err)
		assert.Equal(t, want, got.ShortDescription, term)
	}
}

func TestImport_SkipAllAppliesToCurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedABC(t, s)
	calls := 0
	im := NewImporter(s, PolicyAsk, DeciderFunc(func(Duplicate) MergePolicy {
		calls++
		return PolicySkipAll
	}))
	st, err := im.Import(ctx, incoming("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ImportStats{Skipped: 3}, st)
}

func TestImport_InvalidAnswerSkipsAndAsksAgain(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedABC(t, s)
	calls := 0
	im := NewImporter(s, PolicyAsk, DeciderFunc(func(Duplicate) MergePolicy {
		calls++
		return MergePolicy(42)
	}))
	st, err := im.Import(ctx, incoming("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, ImportStats{Skipped: 2}, st)
	assert.Equal(t, PolicyAsk, im.Policy())
}

func TestImport_AskWithoutDeciderSkips(t *testing.T) {
	s := newTestStore(t)
	seedABC(t, s)
	st, err := NewImporter(s, PolicyAsk, nil).Import(context.Background(), incoming("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, st.Skipped)
}

func TestImport_FixedOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedABC(t, s)
	st, err := NewImporter(s, PolicyOverwrite, nil).Import(ctx, incoming("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, 2, st.Updated)
}

func TestParseMergePolicy(t *testing.T) {
	for _, p := range []MergePolicy{PolicyAsk, PolicySkip, PolicyOverwrite, PolicySkipAll, PolicyOverwriteAll} {
		got, err := ParseMergePolicy(strings.ToUpper(p.String()))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseMergePolicy("sometimes")
	assert.Error(t, err)
}

func TestPromptDecider(t *testing.T) {
	var out bytes.Buffer
	d := NewPromptDecider(strings.NewReader("3\nx\n"), &out)
	dup := Duplicate{Incoming: Entry{Term: "a"}}
	assert.Equal(t, PolicySkipAll, d.Decide(dup))
	assert.Equal(t, PolicyAsk, d.Decide(dup))
	assert.Contains(t, out.String(), "overwrite all")
	assert.Contains(t, out.String(), "invalid input")
}

func TestImportFileAndSeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "term.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o644))

	st, err := SeedCSV(ctx, s, csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Inserted)

	st, err = SeedCSV(ctx, s, csvPath)
	require.NoError(t, err)
	assert.Equal(t, ImportStats{}, st, "non-empty store is not reseeded")

	jsonPath := filepath.Join(dir, "more.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"term":"환율","short_description":"s","description":"d"}]`), 0o644))
	st, err = NewImporter(s, PolicySkip, nil).ImportFile(ctx, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Inserted)

	_, err = NewImporter(s, PolicySkip, nil).ImportFile(ctx, filepath.Join(dir, "x.txt"))
	assert.Error(t, err)
}
