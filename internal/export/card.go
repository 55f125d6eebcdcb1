/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export packages rendered cards for distribution: a printable PDF
// contact sheet and a ZIP bundle with a JSON manifest.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Card is one rendered card as seen by the exporters.
type Card struct {
	Path   string `json:"-"`
	File   string `json:"file"`
	Index  int    `json:"index,omitempty"`
	Term   string `json:"term,omitempty"`
	Status string `json:"status,omitempty"`
}

// CardsFromPaths describes bare PNG files, numbering them in order.
func CardsFromPaths(paths []string) []Card {
	out := make([]Card, 0, len(paths))
	for i, p := range paths {
		out = append(out, Card{Path: p, File: filepath.Base(p), Index: i + 1})
	}
	return out
}

func label(c Card) string {
	name := c.File
	if name == "" {
		name = filepath.Base(c.Path)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func checkCards(cards []Card) error {
	if len(cards) == 0 {
		return fmt.Errorf("no cards to export")
	}
	for _, c := range cards {
		if c.Path == "" {
			return fmt.Errorf("card %d has no path", c.Index)
		}
	}
	return nil
}
