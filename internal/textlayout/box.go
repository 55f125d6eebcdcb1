/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"image/color"
	"math"

	"termcard/internal/vector"
)

// BoxOptions controls the padded background box around a text block.
type BoxOptions struct {
	PaddingX float64
	PaddingY float64
	Radius   float64
	Fill     color.RGBA
}

// DefaultBoxOptions returns the padding and corner radius used for card bodies.
func DefaultBoxOptions() BoxOptions {
	return BoxOptions{PaddingX: 40, PaddingY: 30, Radius: 20, Fill: color.RGBA{R: 174, G: 151, B: 116, A: 255}}
}

// BoxGeometry is a rounded background box in canvas pixels.
// Right > Left, Bottom > Top and 2*CornerRadius <= min(width, height).
type BoxGeometry struct {
	Left, Top, Right, Bottom float64
	CornerRadius             float64
	Fill                     color.RGBA
	// TextStartY is where the first line's top sits inside the box.
	TextStartY float64
}

func (b BoxGeometry) Width() float64  { return b.Right - b.Left }
func (b BoxGeometry) Height() float64 { return b.Bottom - b.Top }

// RoundRect converts the box into a drawable rounded rectangle.
func (b BoxGeometry) RoundRect() vector.RoundRect {
	return vector.NewRoundRect(vector.R(b.Left, b.Top, b.Width(), b.Height()), b.CornerRadius)
}

// ComputeBox centers a box horizontally on the canvas around res and places
// it vertically at anchorY. The text start is nudged up by a tenth of the
// ascent so the glyphs sit visually centered in the box.
func ComputeBox(res LayoutResult, anchorY, canvasWidth float64, opt BoxOptions) BoxGeometry {
	textStart := anchorY - res.Ascent*0.1
	g := BoxGeometry{
		Left:       math.Floor((canvasWidth-res.TotalWidth)/2) - opt.PaddingX,
		Right:      math.Floor((canvasWidth+res.TotalWidth)/2) + opt.PaddingX,
		Top:        textStart - opt.PaddingY,
		Bottom:     textStart + res.BlockHeight() + opt.PaddingY,
		Fill:       opt.Fill,
		TextStartY: textStart,
	}
	if g.Right <= g.Left {
		g.Right = g.Left + 1
	}
	if g.Bottom <= g.Top {
		g.Bottom = g.Top + 1
	}
	g.CornerRadius = vector.ClampRadius(opt.Radius, g.Width(), g.Height())
	return g
}
