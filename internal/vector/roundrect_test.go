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
	"testing"
)

func TestClampRadius(t *testing.T) {
	cases := []struct {
		r, w, h, want float64
	}{
		{20, 100, 100, 20},
		{20, 30, 100, 15},
		{20, 100, 10, 5},
		{-3, 100, 100, 0},
		{5, 0, 100, 0},
	}
	for _, c := range cases {
		if got := ClampRadius(c.r, c.w, c.h); got != c.want {
			t.Fatalf("ClampRadius(%v,%v,%v)=%v want %v", c.r, c.w, c.h, got, c.want)
		}
	}
}

// The band+disc decomposition must cover exactly the analytic rounded
// rectangle: no gaps and nothing outside the corner arcs.
func TestPrimitivesMatchRoundRect(t *testing.T) {
	sizes := []Rect{
		R(0, 0, 40, 40),
		R(3, 7, 41, 40),
		R(0, 0, 57, 40),
		R(10, 10, 200, 120),
		R(0, 0, 45, 300),
	}
	for _, rect := range sizes {
		rr := NewRoundRect(rect, 20)
		prims := rr.Primitives()
		for y := rect.Y - 2; y < rect.Y+rect.H+2; y++ {
			for x := rect.X - 2; x < rect.X+rect.W+2; x++ {
				p := Pt{x + 0.5, y + 0.5}
				if got, want := prims.Contains(p), rr.Contains(p); got != want {
					t.Fatalf("rect %+v pixel (%v,%v): primitives=%v ideal=%v", rect, x, y, got, want)
				}
			}
		}
	}
}

func TestRoundRectCornersAreCut(t *testing.T) {
	rr := NewRoundRect(R(0, 0, 100, 60), 20)
	if rr.Contains(Pt{0.5, 0.5}) {
		t.Fatalf("top-left corner pixel should be outside the arc")
	}
	if !rr.Contains(Pt{50, 0.5}) {
		t.Fatalf("top edge middle should be inside")
	}
	if !rr.Contains(Pt{0.5, 30}) {
		t.Fatalf("left edge middle should be inside")
	}
}

func TestFillRoundRect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	fill := color.RGBA{R: 174, G: 151, B: 116, A: 255}
	rr := NewRoundRect(R(10, 10, 100, 60), 20)
	FillRoundRect(img, rr, fill)

	if got := img.RGBAAt(60, 40); got != fill {
		t.Fatalf("center not filled: %+v", got)
	}
	if got := img.RGBAAt(10, 10); got.A != 0 {
		t.Fatalf("corner pixel should stay transparent: %+v", got)
	}
	if got := img.RGBAAt(5, 40); got.A != 0 {
		t.Fatalf("pixel outside the box should stay transparent: %+v", got)
	}
	filled := 0
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			on := img.RGBAAt(x, y) == fill
			if on != rr.Contains(Pt{float64(x) + 0.5, float64(y) + 0.5}) {
				t.Fatalf("pixel (%d,%d) fill=%v disagrees with analytic shape", x, y, on)
			}
			if on {
				filled++
			}
		}
	}
	if filled == 0 || filled >= 100*60 {
		t.Fatalf("unexpected filled pixel count %d", filled)
	}
}
