/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// RoundRect is a rectangle with quarter-circle corners of equal radius.
type RoundRect struct {
	Rect   Rect
	Radius float64
}

// ClampRadius limits r to [0, min(w,h)/2].
func ClampRadius(r, w, h float64) float64 {
	if r < 0 || w <= 0 || h <= 0 {
		return 0
	}
	return min(r, w/2, h/2)
}

// NewRoundRect builds a rounded rectangle with its radius clamped to fit.
func NewRoundRect(r Rect, radius float64) RoundRect {
	return RoundRect{Rect: r, Radius: ClampRadius(radius, r.W, r.H)}
}

// Primitives is the fill decomposition of a RoundRect: a horizontal band
// inset by the radius left and right, a vertical band inset top and bottom,
// and one disc of diameter 2r tucked into each corner. Their union is exactly
// the rounded rectangle.
type Primitives struct {
	Bands   [2]Rect
	Corners [4]Circle
}

func (rr RoundRect) Primitives() Primitives {
	r := rr.Radius
	x0, y0 := rr.Rect.X, rr.Rect.Y
	x1, y1 := x0+rr.Rect.W, y0+rr.Rect.H
	return Primitives{
		Bands: [2]Rect{
			{X: x0 + r, Y: y0, W: rr.Rect.W - 2*r, H: rr.Rect.H},
			{X: x0, Y: y0 + r, W: rr.Rect.W, H: rr.Rect.H - 2*r},
		},
		Corners: [4]Circle{
			{C: Pt{x0 + r, y0 + r}, R: r},
			{C: Pt{x1 - r, y0 + r}, R: r},
			{C: Pt{x0 + r, y1 - r}, R: r},
			{C: Pt{x1 - r, y1 - r}, R: r},
		},
	}
}

// Contains reports whether p is covered by any primitive.
func (p Primitives) Contains(pt Pt) bool {
	for _, b := range p.Bands {
		if b.Contains(pt) {
			return true
		}
	}
	for _, c := range p.Corners {
		if c.R > 0 && c.Contains(pt) {
			return true
		}
	}
	return false
}

// Contains is the analytic membership test: inside the rectangle and, in a
// corner square, within that corner's arc.
func (rr RoundRect) Contains(p Pt) bool {
	if !rr.Rect.Contains(p) {
		return false
	}
	r := rr.Radius
	if r <= 0 {
		return true
	}
	x0, y0 := rr.Rect.X, rr.Rect.Y
	x1, y1 := x0+rr.Rect.W, y0+rr.Rect.H
	var cx, cy float64
	switch {
	case p.X < x0+r:
		cx = x0 + r
	case p.X > x1-r:
		cx = x1 - r
	default:
		return true
	}
	switch {
	case p.Y < y0+r:
		cy = y0 + r
	case p.Y > y1-r:
		cy = y1 - r
	default:
		return true
	}
	return Circle{C: Pt{cx, cy}, R: r}.Contains(p)
}

// Mask rasterizes the primitive decomposition at pixel centers into an
// alpha mask covering the rectangle's pixel bounds.
func (rr RoundRect) Mask() *image.Alpha {
	b := image.Rect(
		int(math.Floor(rr.Rect.X)), int(math.Floor(rr.Rect.Y)),
		int(math.Ceil(rr.Rect.X+rr.Rect.W)), int(math.Ceil(rr.Rect.Y+rr.Rect.H)),
	)
	m := image.NewAlpha(b)
	prims := rr.Primitives()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if prims.Contains(Pt{float64(x) + 0.5, float64(y) + 0.5}) {
				m.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return m
}

// FillRoundRect paints rr onto dst with c, compositing over existing pixels.
func FillRoundRect(dst draw.Image, rr RoundRect, c color.Color) {
	m := rr.Mask()
	draw.DrawMask(dst, m.Bounds(), image.NewUniform(c), image.Point{}, m, m.Bounds().Min, draw.Over)
}
