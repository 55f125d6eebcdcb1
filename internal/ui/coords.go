/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts the template coordinate viewer. The Fyne window is only
// compiled with -tags fyne; the geometry it relies on lives here so it can be
// tested headless.
package ui

import (
	"math"

	"termcard/internal/render"
	"termcard/internal/vector"
)

// Viewport maps between widget pixels and image pixels for an image scaled
// to fit (contain) a widget and centered in it.
type Viewport struct {
	// Image is the placed image rectangle in widget coordinates.
	Image vector.Rect
	Scale float64
	imgW  int
	imgH  int
}

// FitViewport computes the placement of an imgW x imgH image in a widget of
// the given size. Images smaller than the widget are not enlarged.
func FitViewport(widgetW, widgetH float64, imgW, imgH int) Viewport {
	if imgW <= 0 || imgH <= 0 || widgetW <= 0 || widgetH <= 0 {
		return Viewport{Scale: 1, imgW: imgW, imgH: imgH}
	}
	s := math.Min(1, math.Min(widgetW/float64(imgW), widgetH/float64(imgH)))
	w := float64(imgW) * s
	h := float64(imgH) * s
	return Viewport{
		Image: vector.R((widgetW-w)/2, (widgetH-h)/2, w, h),
		Scale: s,
		imgW:  imgW,
		imgH:  imgH,
	}
}

// ToImage converts a widget position to integer image pixels. ok is false
// when the position lies outside the image.
func (v Viewport) ToImage(x, y float64) (ix, iy int, ok bool) {
	if v.Scale <= 0 || !v.Image.Contains(vector.Pt{X: x, Y: y}) {
		return 0, 0, false
	}
	ix = int(math.Floor((x - v.Image.X) / v.Scale))
	iy = int(math.Floor((y - v.Image.Y) / v.Scale))
	// the closed far edge maps one past the last pixel
	ix = min(ix, v.imgW-1)
	iy = min(iy, v.imgH-1)
	return ix, iy, true
}

// ToWidget converts an image-space rectangle into widget coordinates.
func (v Viewport) ToWidget(r vector.Rect) vector.Rect {
	return vector.R(v.Image.X+r.X*v.Scale, v.Image.Y+r.Y*v.Scale, r.W*v.Scale, r.H*v.Scale)
}

// Guide is a named layout region in image pixels.
type Guide struct {
	Name string
	Rect vector.Rect
}

// LayoutGuides returns the fitting regions of a card layout on a canvas of
// the given width: the three text slots, centered horizontally, and the label
// anchor.
func LayoutGuides(lay render.Layout, canvasWidth float64) []Guide {
	slot := func(name string, s render.Slot) Guide {
		return Guide{Name: name, Rect: vector.R((canvasWidth-s.MaxWidth)/2, s.AnchorY, s.MaxWidth, s.MaxHeight)}
	}
	return []Guide{
		slot("title", lay.Title),
		slot("caption", lay.Caption),
		slot("body", lay.Body.Slot),
		{Name: "label", Rect: vector.R(lay.Label.X, lay.Label.Y, lay.Label.Size*4, lay.Label.Size)},
	}
}
