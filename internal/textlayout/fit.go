/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "golang.org/x/image/font"

// Fit picks the largest size, walking down from InitialSize in SizeStep
// steps while the size stays above MinSize, at which the wrapped text fits
// within MaxWidth x MaxHeight.
//
// When the font cannot be loaded, or no size fits, the built-in face is
// returned together with the unmodified text as a single line and
// result.Fallback says which branch was taken. Layout bounds do not hold in
// that case.
func Fit(src FaceSource, spec WrapSpec) (LayoutResult, font.Face) {
	spec = spec.normalized()
	for size := spec.InitialSize; size > spec.MinSize; size -= spec.SizeStep {
		face, err := src.Face(spec.Family, float64(size))
		if err != nil {
			return fallbackResult(spec, FallbackFontLoad, err), DefaultFace()
		}
		var lines []string
		if spec.Mode == WrapModeMeasured {
			lines = WrapMeasured(spec.Text, face, spec.MaxWidth)
		} else {
			lines = Wrap(spec.Text, size, spec.MaxWidth)
		}
		w, h := MeasureLines(lines, face, size)
		if w <= spec.MaxWidth && h <= spec.MaxHeight {
			m := Measure("", face)
			return LayoutResult{
				ChosenSize:  size,
				Lines:       lines,
				TotalWidth:  w,
				TotalHeight: h,
				Ascent:      m.Ascent,
				Descent:     m.Descent,
			}, face
		}
	}
	return fallbackResult(spec, FallbackOverflow, nil), DefaultFace()
}

func fallbackResult(spec WrapSpec, reason Fallback, cause error) LayoutResult {
	face := DefaultFace()
	var lines []string
	if spec.Text != "" {
		lines = []string{spec.Text}
	}
	w, h := MeasureLines(lines, face, spec.MinSize)
	m := Measure("", face)
	return LayoutResult{
		ChosenSize:  spec.MinSize,
		Lines:       lines,
		TotalWidth:  w,
		TotalHeight: h,
		Ascent:      m.Ascent,
		Descent:     m.Descent,
		Fallback:    reason,
		Cause:       cause,
	}
}
