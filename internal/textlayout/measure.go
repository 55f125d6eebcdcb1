/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// GlyphMetrics are pixel measurements of one rendered string.
// Width and Height come from the ink bounding box; Ascent and Descent are the
// face-wide values and do not depend on the string.
type GlyphMetrics struct {
	Width   float64
	Height  float64
	Advance float64
	Ascent  float64
	Descent float64
	// MinX is the bbox offset from the pen origin; centering subtracts it.
	MinX float64
	// MinY is the bbox top relative to the baseline (negative above it).
	MinY float64
}

// Measure computes GlyphMetrics for line rendered with face.
func Measure(line string, face font.Face) GlyphMetrics {
	b, adv := font.BoundString(face, line)
	m := face.Metrics()
	return GlyphMetrics{
		Width:   fx(b.Max.X - b.Min.X),
		Height:  fx(b.Max.Y - b.Min.Y),
		Advance: fx(adv),
		Ascent:  fx(m.Ascent),
		Descent: fx(m.Descent),
		MinX:    fx(b.Min.X),
		MinY:    fx(b.Min.Y),
	}
}

// MeasureLines returns the widest bbox width and the stacked height of lines
// with a LineSpacingFactor*size gap between them.
func MeasureLines(lines []string, face font.Face, size int) (maxWidth, totalHeight float64) {
	for _, ln := range lines {
		gm := Measure(ln, face)
		if gm.Width > maxWidth {
			maxWidth = gm.Width
		}
		totalHeight += gm.Height
	}
	if len(lines) > 1 {
		totalHeight += LineSpacingFactor * float64(size) * float64(len(lines)-1)
	}
	return maxWidth, totalHeight
}

func fx(v fixed.Int26_6) float64 { return float64(v) / 64 }
