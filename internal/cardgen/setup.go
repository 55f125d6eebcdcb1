/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cardgen

import (
	"termcard/internal/config"
	"termcard/internal/render"
	"termcard/internal/textlayout"
)

// LayoutFromConfig maps the card section of the config onto a render layout.
func LayoutFromConfig(c config.CardConfig) render.Layout {
	slot := func(family string, s config.SlotConfig) render.Slot {
		return render.Slot{
			Family:      family,
			MaxWidth:    s.MaxWidth,
			MaxHeight:   s.MaxHeight,
			InitialSize: s.InitialSize,
			AnchorY:     s.AnchorY,
			Color:       s.Color.RGBA(),
		}
	}
	lay := render.DefaultLayout()
	lay.Title = slot(render.FamilyTitle, c.Title)
	lay.Caption = slot(render.FamilyCaption, c.Caption)
	lay.Body = render.BodySlot{
		Slot: slot(render.FamilyBody, c.Body),
		Box: textlayout.BoxOptions{
			PaddingX: c.Box.PaddingX,
			PaddingY: c.Box.PaddingY,
			Radius:   c.Box.Radius,
			Fill:     c.Box.Fill.RGBA(),
		},
	}
	lay.Label = render.Label{
		Family: render.FamilyCaption,
		Size:   c.Label.Size,
		X:      c.Label.X,
		Y:      c.Label.Y,
		Color:  c.Label.Color.RGBA(),
		Format: c.Label.Format,
	}
	lay.MinSize = c.MinSize
	lay.SizeStep = c.SizeStep
	lay.Mode = textlayout.WrapMode(c.WrapMode)
	return lay
}

// FontsFromConfig registers the three configured font files. Files are
// parsed lazily so a missing font only degrades the slots that use it.
func FontsFromConfig(f config.FontsConfig) *textlayout.FontLibrary {
	fl := textlayout.NewFontLibrary()
	fl.Register(render.FamilyTitle, f.Title)
	fl.Register(render.FamilyCaption, f.Caption)
	fl.Register(render.FamilyBody, f.Body)
	return fl
}

// NewCompositor builds a compositor and its font library from config. The
// caller closes the library.
func NewCompositor(c config.CardConfig) (*render.Compositor, *textlayout.FontLibrary) {
	fl := FontsFromConfig(c.Fonts)
	return render.New(render.Options{
		Background: c.Background,
		Fonts:      fl,
		Layout:     LayoutFromConfig(c),
	}), fl
}
