/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const longDescription = "Buying and selling second hand goods through a neighborhood app is also a kind of trade. " +
	"People pay money and receive goods in return. Markets connect many buyers and sellers every single day."

func TestFit_ShortTitleKeepsLargeSize(t *testing.T) {
	lib := newTestLibrary(t)
	res, face := Fit(lib, WrapSpec{Text: "매매", MaxWidth: 750, MaxHeight: 200, Family: testFamily, InitialSize: 165})
	if res.Degraded() {
		t.Fatalf("short title should fit without fallback: %+v", res)
	}
	if res.ChosenSize < 151 {
		t.Fatalf("short title shrank too far: %d", res.ChosenSize)
	}
	if face == DefaultFace() {
		t.Fatalf("expected the real font face")
	}
	if len(res.Lines) != 1 || res.Lines[0] != "매매" {
		t.Fatalf("unexpected lines %q", res.Lines)
	}
}

func TestFit_LongDescriptionShrinks(t *testing.T) {
	if n := len([]rune(longDescription)); n < 180 || n > 220 {
		t.Fatalf("fixture should be ~200 chars, is %d", n)
	}
	lib := newTestLibrary(t)
	spec := WrapSpec{Text: longDescription, MaxWidth: 700, MaxHeight: 200, Family: testFamily, InitialSize: 36}
	res, _ := Fit(lib, spec)
	if res.Degraded() {
		t.Fatalf("description should fit at some size: %+v", res)
	}
	if res.ChosenSize >= 36 {
		t.Fatalf("expected shrinking below 36, got %d", res.ChosenSize)
	}
	if (36-res.ChosenSize)%2 != 0 {
		t.Fatalf("size %d is not on the step grid", res.ChosenSize)
	}
	if len(res.Lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %q", res.Lines)
	}
	if res.TotalWidth > 700 || res.TotalHeight > 200 {
		t.Fatalf("fitted block exceeds box: %vx%v", res.TotalWidth, res.TotalHeight)
	}
	if !strings.HasSuffix(res.Lines[len(res.Lines)-1], ".") {
		t.Fatalf("final sentence period lost: %q", res.Lines)
	}
}

func TestFit_Invariants(t *testing.T) {
	lib := newTestLibrary(t)
	texts := []string{"", "Trade", longDescription, strings.Repeat("inflation ", 40)}
	boxes := [][2]float64{{750, 200}, {780, 100}, {700, 200}, {120, 40}}
	for _, text := range texts {
		for _, box := range boxes {
			for _, initial := range []int{165, 38, 36, 21} {
				spec := WrapSpec{Text: text, MaxWidth: box[0], MaxHeight: box[1], Family: testFamily, InitialSize: initial}
				res, _ := Fit(lib, spec)
				if res.Degraded() {
					if res.ChosenSize != DefaultMinSize || res.Fallback != FallbackOverflow {
						t.Fatalf("fallback must report min size and overflow: %+v", res)
					}
					continue
				}
				if res.ChosenSize > initial || res.ChosenSize <= DefaultMinSize {
					t.Fatalf("size %d outside (%d, %d]", res.ChosenSize, DefaultMinSize, initial)
				}
				if (initial-res.ChosenSize)%DefaultSizeStep != 0 {
					t.Fatalf("size %d not reachable from %d", res.ChosenSize, initial)
				}
				if res.TotalWidth > box[0] || res.TotalHeight > box[1] {
					t.Fatalf("fit violates box %v: %vx%v", box, res.TotalWidth, res.TotalHeight)
				}
			}
		}
	}
}

func TestFit_OverflowFallback(t *testing.T) {
	lib := newTestLibrary(t)
	text := strings.Repeat("overflowing words ", 200)
	res, face := Fit(lib, WrapSpec{Text: text, MaxWidth: 60, MaxHeight: 20, Family: testFamily, InitialSize: 30})
	if res.Fallback != FallbackOverflow {
		t.Fatalf("expected overflow fallback, got %v", res.Fallback)
	}
	if res.ChosenSize != DefaultMinSize {
		t.Fatalf("fallback size %d want %d", res.ChosenSize, DefaultMinSize)
	}
	if len(res.Lines) != 1 || res.Lines[0] != text {
		t.Fatalf("fallback must keep the original text unwrapped")
	}
	if face != DefaultFace() {
		t.Fatalf("fallback must use the built-in face")
	}
}

func TestFit_FontLoadFallback(t *testing.T) {
	lib := NewFontLibrary()
	lib.Register("title", filepath.Join(t.TempDir(), "missing.ttf"))
	text := "Price. Value."
	res, face := Fit(lib, WrapSpec{Text: text, MaxWidth: 750, MaxHeight: 200, Family: "title", InitialSize: 165})
	if res.Fallback != FallbackFontLoad {
		t.Fatalf("expected font-load fallback, got %v", res.Fallback)
	}
	var fle *FontLoadError
	if !errors.As(res.Cause, &fle) || !errors.Is(res.Cause, os.ErrNotExist) {
		t.Fatalf("expected FontLoadError cause, got %v", res.Cause)
	}
	if len(res.Lines) != 1 || res.Lines[0] != text {
		t.Fatalf("fallback must keep the original text: %q", res.Lines)
	}
	if face != DefaultFace() {
		t.Fatalf("fallback must use the built-in face")
	}
}

func TestFit_MeasuredMode(t *testing.T) {
	lib := newTestLibrary(t)
	spec := WrapSpec{Text: longDescription, MaxWidth: 700, MaxHeight: 200, Family: testFamily, InitialSize: 36, Mode: WrapModeMeasured}
	res, _ := Fit(lib, spec)
	if res.Degraded() {
		t.Fatalf("measured mode should fit: %+v", res)
	}
	if res.TotalWidth > 700 || res.TotalHeight > 200 || len(res.Lines) < 2 {
		t.Fatalf("unexpected measured layout: %+v", res)
	}
}

func TestFit_CustomStep(t *testing.T) {
	lib := newTestLibrary(t)
	res, _ := Fit(lib, WrapSpec{Text: longDescription, MaxWidth: 700, MaxHeight: 200, Family: testFamily, InitialSize: 40, MinSize: 12, SizeStep: 4})
	if res.Degraded() {
		t.Fatalf("unexpected fallback: %+v", res)
	}
	if (40-res.ChosenSize)%4 != 0 || res.ChosenSize <= 12 {
		t.Fatalf("size %d not on the 4px grid above 12", res.ChosenSize)
	}
}

func TestWrapSpec_ModeDefaultsToHeuristic(t *testing.T) {
	if m := (WrapSpec{}).normalized().Mode; m != WrapModeHeuristic {
		t.Fatalf("default mode %q want %q", m, WrapModeHeuristic)
	}
	lib := newTestLibrary(t)
	text := "Markets connect many buyers and sellers every single day."
	h, _ := Fit(lib, WrapSpec{Text: text, MaxWidth: 300, MaxHeight: 200, Family: testFamily, InitialSize: 24})
	m, _ := Fit(lib, WrapSpec{Text: text, MaxWidth: 300, MaxHeight: 200, Family: testFamily, InitialSize: 24, Mode: WrapModeMeasured})
	if h.Degraded() || m.Degraded() {
		t.Fatalf("both modes should fit: %+v / %+v", h, m)
	}
	face, _ := lib.Face(testFamily, float64(m.ChosenSize))
	for _, ln := range m.Lines {
		if strings.Contains(ln, " ") && Measure(ln, face).Advance > 300 {
			t.Fatalf("measured mode produced a line wider than the slot: %q", ln)
		}
	}
}
