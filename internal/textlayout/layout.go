/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Types shared by the measuring, wrapping and fitting steps. Everything in
// this package is a pure function over text and geometry; faces come in
// through FaceSource and the only state is the face cache in FontLibrary.

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	DefaultMinSize  = 10
	DefaultSizeStep = 2

	// LineSpacingFactor scales the font size into the gap between lines.
	LineSpacingFactor = 0.3
	// AdvanceFactor approximates the average glyph advance as a fraction of
	// the nominal size when budgeting characters per line.
	AdvanceFactor = 0.8
)

// WrapMode selects how lines are broken.
type WrapMode string

const (
	// WrapModeHeuristic budgets characters with AdvanceFactor.
	WrapModeHeuristic WrapMode = "heuristic"
	// WrapModeMeasured breaks on the measured advance of each candidate line.
	WrapModeMeasured WrapMode = "measured"
)

// WrapSpec is the immutable input to Fit.
type WrapSpec struct {
	Text        string
	MaxWidth    float64
	MaxHeight   float64
	Family      string
	InitialSize int
	MinSize     int // DefaultMinSize if zero
	SizeStep    int // DefaultSizeStep if zero
	Mode        WrapMode
}

func (s WrapSpec) normalized() WrapSpec {
	if s.MinSize <= 0 {
		s.MinSize = DefaultMinSize
	}
	if s.SizeStep <= 0 {
		s.SizeStep = DefaultSizeStep
	}
	if s.Mode == "" {
		s.Mode = WrapModeHeuristic
	}
	return s
}

// Fallback names the degraded branch a fit took, if any.
type Fallback int

const (
	FallbackNone Fallback = iota
	// FallbackFontLoad: the requested font could not be loaded.
	FallbackFontLoad
	// FallbackOverflow: no size in range satisfied the box.
	FallbackOverflow
)

func (f Fallback) String() string {
	switch f {
	case FallbackFontLoad:
		return "font-load"
	case FallbackOverflow:
		return "overflow"
	default:
		return "none"
	}
}

// LayoutResult is the outcome of one Fit call.
type LayoutResult struct {
	ChosenSize  int
	Lines       []string
	TotalWidth  float64 // widest line, glyph bbox
	TotalHeight float64 // sum of line bbox heights plus spacing
	Ascent      float64
	Descent     float64
	Fallback    Fallback
	// Cause is the font error behind FallbackFontLoad.
	Cause error
}

// Degraded reports whether the built-in face and unwrapped text were used.
func (r LayoutResult) Degraded() bool { return r.Fallback != FallbackNone }

// LineSpacing is the gap inserted between consecutive lines.
func (r LayoutResult) LineSpacing() float64 { return LineSpacingFactor * float64(r.ChosenSize) }

// BlockHeight is the height of the text block using face-wide line metrics
// (ascent+descent per line), which is what background boxes are sized with.
func (r LayoutResult) BlockHeight() float64 {
	n := len(r.Lines)
	if n == 0 {
		return 0
	}
	return float64(n)*(r.Ascent+r.Descent) + r.LineSpacing()*float64(n-1)
}

// DefaultFace is the built-in face used whenever a real font is unavailable.
func DefaultFace() font.Face { return basicfont.Face7x13 }
