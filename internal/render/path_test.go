/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.WriteFile(p, nil, 0o644))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "card_01.png")

	got, err := UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, p, got, "free path is returned unchanged")

	touch(t, p)
	got, err = UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "card_01_1.png"), got)

	touch(t, got)
	got, err = UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "card_01_2.png"), got)
}

func TestUniquePath_NthVariant(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x.png")
	touch(t, p)
	for i := 1; i <= 5; i++ {
		got, err := UniquePath(p)
		require.NoError(t, err)
		_, statErr := os.Stat(got)
		require.True(t, os.IsNotExist(statErr))
		touch(t, got)
	}
	got, err := UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "x_6.png"), got)
}

func TestUniquePath_Idempotent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	touch(t, p)
	a, err := UniquePath(p)
	require.NoError(t, err)
	b, err := UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUniquePath_NoExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "card")
	touch(t, p)
	got, err := UniquePath(p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "card_1"), got)
}
