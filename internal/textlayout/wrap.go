/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

// CharLimit is the per-line character budget for size within maxWidth.
// It is never below 1.
func CharLimit(size int, maxWidth float64) int {
	if size <= 0 {
		return 1
	}
	n := int(math.Floor(maxWidth / (float64(size) * AdvanceFactor)))
	if n < 1 {
		return 1
	}
	return n
}

// Wrap breaks text into lines using the character-budget heuristic.
//
// Text is split into sentences on '.', each sentence is greedily wrapped on
// its own, and the consumed '.' is put back on the last line of every
// sentence except the final fragment. A word longer than the budget stays
// whole on its own line. Text made only of periods comes back trimmed as a
// single line; whitespace-only text yields no lines, like empty text.
func Wrap(text string, size int, maxWidth float64) []string {
	limit := CharLimit(size, maxWidth)
	return wrapSentences(text, func(line string) bool {
		return utf8.RuneCountInString(line) <= limit
	})
}

// WrapMeasured is Wrap with the line test done on the measured advance of
// each candidate line instead of a character count.
func WrapMeasured(text string, face font.Face, maxWidth float64) []string {
	return wrapSentences(text, func(line string) bool {
		return fx(font.MeasureString(face, line)) <= maxWidth
	})
}

func wrapSentences(text string, fits func(line string) bool) []string {
	sentences := strings.Split(text, ".")
	var out []string
	for i, s := range sentences {
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		lines := greedy(words, fits)
		if i < len(sentences)-1 {
			lines[len(lines)-1] += "."
		}
		out = append(out, lines...)
	}
	// punctuation-only text has no words but must still produce a line
	if len(out) == 0 {
		if t := strings.TrimSpace(text); t != "" {
			out = []string{t}
		}
	}
	return out
}

// greedy packs words into lines while fits accepts the joined candidate.
func greedy(words []string, fits func(line string) bool) []string {
	var lines []string
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
			continue
		}
		cand := cur + " " + w
		if fits(cand) {
			cur = cand
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
