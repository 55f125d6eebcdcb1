/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render composes term cards: a background template, three fitted
// text slots, a rounded box behind the description and a fixed index label.
package render

import (
	"image/color"

	"termcard/internal/textlayout"
)

// Slot is a fitted text region. AnchorY is the top of the first line.
type Slot struct {
	Family      string
	MaxWidth    float64
	MaxHeight   float64
	InitialSize int
	AnchorY     float64
	Color       color.RGBA
}

// BodySlot is a Slot drawn inside a rounded background box.
type BodySlot struct {
	Slot
	Box textlayout.BoxOptions
}

// Label is the fixed-position index text. It is never fitted.
type Label struct {
	Family string
	Size   float64
	X, Y   float64
	Color  color.RGBA
	// Format receives the card index, e.g. "entry %02d".
	Format string
}

// Layout holds every geometric and color constant of a card.
type Layout struct {
	Title   Slot
	Caption Slot
	Body    BodySlot
	Label   Label

	MinSize  int
	SizeStep int
	Mode     textlayout.WrapMode
	// StackPitch multiplies a line's bbox height to get the advance to the
	// next line for the title and caption.
	StackPitch float64
}

// Font families the default layout asks for.
const (
	FamilyTitle   = "title"
	FamilyCaption = "caption"
	FamilyBody    = "body"
)

// DefaultLayout is the 1080px-wide card design.
func DefaultLayout() Layout {
	brown := color.RGBA{R: 174, G: 151, B: 116, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	return Layout{
		Title: Slot{
			Family: FamilyTitle, MaxWidth: 750, MaxHeight: 200, InitialSize: 165,
			AnchorY: 260, Color: brown,
		},
		Caption: Slot{
			Family: FamilyCaption, MaxWidth: 780, MaxHeight: 100, InitialSize: 38,
			AnchorY: 480, Color: color.RGBA{R: 180, G: 159, B: 126, A: 255},
		},
		Body: BodySlot{
			Slot: Slot{
				Family: FamilyBody, MaxWidth: 700, MaxHeight: 200, InitialSize: 36,
				AnchorY: 630, Color: white,
			},
			Box: textlayout.DefaultBoxOptions(),
		},
		Label: Label{
			Family: FamilyCaption, Size: 40, X: 358, Y: 130, Color: white,
			Format: "경제용어 %02d",
		},
		MinSize:    textlayout.DefaultMinSize,
		SizeStep:   textlayout.DefaultSizeStep,
		Mode:       textlayout.WrapModeHeuristic,
		StackPitch: 1.5,
	}
}

func (l Layout) wrapSpec(s Slot, text string) textlayout.WrapSpec {
	return textlayout.WrapSpec{
		Text:        text,
		MaxWidth:    s.MaxWidth,
		MaxHeight:   s.MaxHeight,
		Family:      s.Family,
		InitialSize: s.InitialSize,
		MinSize:     l.MinSize,
		SizeStep:    l.SizeStep,
		Mode:        l.Mode,
	}
}
