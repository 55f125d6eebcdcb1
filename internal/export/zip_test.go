/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleZIP_CardsAndManifest(t *testing.T) {
	cards := writeCards(t, 3)
	cards[0].Term = "매매"
	cards[0].Status = "success"
	out, err := BundleZIP(cards, filepath.Join(t.TempDir(), "bundle"))
	require.NoError(t, err)
	assert.Equal(t, ".zip", filepath.Ext(out))

	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()

	var names []string
	var man Manifest
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "manifest.json" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			_ = rc.Close()
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(b, &man))
		}
	}
	assert.Equal(t, []string{
		"cards/20250714_01.png", "cards/20250714_02.png", "cards/20250714_03.png", "manifest.json",
	}, names)
	require.Len(t, man.Cards, 3)
	assert.Equal(t, "매매", man.Cards[0].Term)
	assert.Equal(t, "20250714_01.png", man.Cards[0].File)
	assert.NotEmpty(t, man.Version)
}

func TestBundleZIP_DuplicateNames(t *testing.T) {
	a := writeCards(t, 1)
	b := writeCards(t, 1)
	out, err := BundleZIP(append(a, b...), filepath.Join(t.TempDir(), "dup.zip"))
	require.NoError(t, err)
	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer func() { _ = zr.Close() }()
	assert.Equal(t, "cards/20250714_01.png", zr.File[0].Name)
	assert.Equal(t, "cards/20250714_01_1.png", zr.File[1].Name)
}

func TestBundleZIP_FailureLeavesNoArchive(t *testing.T) {
	cards := writeCards(t, 2)
	cards[1].Path = filepath.Join(t.TempDir(), "missing.png")
	out := filepath.Join(t.TempDir(), "broken.zip")

	_, err := BundleZIP(cards, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read card")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial zip must be removed")
}
