/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Core data records shared by the store, the compositor and the batch runner.

import (
	"fmt"
	"image/color"
)

// Term is one glossary entry as kept by the term store.
type Term struct {
	Idx              int64  `json:"idx"`
	Term             string `json:"term"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	// FileName is the rendered card path once the term has been used.
	FileName string `json:"file_name,omitempty"`
	Open     bool   `json:"open"`
	RegDate  string `json:"reg_date,omitempty"`
}

// Used reports whether a card was already produced for the term.
func (t Term) Used() bool { return t.FileName != "" }

// CardSpec is the input for rendering one card. It is consumed once.
type CardSpec struct {
	Index            int
	Term             string
	ShortDescription string
	Description      string
	// OutputPath is the requested path; the compositor may uniquify it.
	OutputPath string
}

// SpecFor builds the card input for a stored term.
func SpecFor(index int, t Term, outputPath string) CardSpec {
	return CardSpec{
		Index:            index,
		Term:             t.Term,
		ShortDescription: t.ShortDescription,
		Description:      t.Description,
		OutputPath:       outputPath,
	}
}

// CardStatus is the per-card outcome of a render.
type CardStatus string

const (
	StatusSuccess  CardStatus = "success"
	StatusDegraded CardStatus = "degraded"
	StatusFailed   CardStatus = "failed"
)

type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
	A uint8 `json:"a" yaml:"a"`
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 255} }

func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func (c Color) IsZero() bool { return c == Color{} }

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
