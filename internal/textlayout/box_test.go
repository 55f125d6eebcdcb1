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
	"testing"

	"termcard/internal/vector"
)

func TestComputeBox_CentersAndPads(t *testing.T) {
	res := LayoutResult{ChosenSize: 30, Lines: []string{"a", "b", "c"}, TotalWidth: 400, Ascent: 28, Descent: 7}
	g := ComputeBox(res, 630, 1080, DefaultBoxOptions())

	if g.Left != 340-40 || g.Right != 740+40 {
		t.Fatalf("unexpected horizontal extent: %v..%v", g.Left, g.Right)
	}
	if !near(g.TextStartY, 627.2) || !near(g.Top, 597.2) {
		t.Fatalf("unexpected top: start=%v top=%v", g.TextStartY, g.Top)
	}
	// three lines of ascent+descent plus two 0.3*size gaps
	if !near(g.Bottom, 627.2+123+30) {
		t.Fatalf("bottom %v want %v", g.Bottom, 627.2+123+30)
	}
	if g.CornerRadius != 20 {
		t.Fatalf("radius %v want 20", g.CornerRadius)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeBox_Invariants(t *testing.T) {
	results := []LayoutResult{
		{},
		{ChosenSize: 10, Lines: []string{"x"}, TotalWidth: 0, Ascent: 11, Descent: 2},
		{ChosenSize: 36, Lines: []string{"a", "b"}, TotalWidth: 650, Ascent: 33, Descent: 8},
		{ChosenSize: 12, Lines: []string{"wide"}, TotalWidth: 2000, Ascent: 11, Descent: 3},
	}
	opts := []BoxOptions{
		DefaultBoxOptions(),
		{PaddingX: 1, PaddingY: 1, Radius: 20},
		{PaddingX: 5, PaddingY: 2, Radius: 0},
		{PaddingX: 40, PaddingY: 30, Radius: 500},
	}
	for _, res := range results {
		for _, opt := range opts {
			g := ComputeBox(res, 100, 1080, opt)
			if !(g.Right > g.Left) || !(g.Bottom > g.Top) {
				t.Fatalf("degenerate box %+v for %+v", g, res)
			}
			if g.CornerRadius < 0 || 2*g.CornerRadius > min(g.Width(), g.Height()) {
				t.Fatalf("radius %v does not fit box %vx%v", g.CornerRadius, g.Width(), g.Height())
			}
		}
	}
}

func TestBoxGeometry_RoundRect(t *testing.T) {
	g := BoxGeometry{Left: 10, Top: 20, Right: 110, Bottom: 80, CornerRadius: 20}
	rr := g.RoundRect()
	if rr.Rect != vector.R(10, 20, 100, 60) || rr.Radius != 20 {
		t.Fatalf("unexpected round rect %+v", rr)
	}
}

func TestLayoutResult_BlockHeight(t *testing.T) {
	if h := (LayoutResult{}).BlockHeight(); h != 0 {
		t.Fatalf("empty block height %v", h)
	}
	r := LayoutResult{ChosenSize: 20, Lines: []string{"one"}, Ascent: 18, Descent: 5}
	if h := r.BlockHeight(); h != 23 {
		t.Fatalf("single line block height %v want 23", h)
	}
}
