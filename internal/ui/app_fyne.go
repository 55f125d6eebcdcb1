//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"termcard/internal/crash"
	applog "termcard/internal/log"
	"termcard/internal/render"
	"termcard/internal/vector"
	"termcard/internal/version"
)

// Run opens a window showing the image at imagePath. Hovering shows the
// pixel under the pointer; clicking logs it. The fitting regions of lay are
// drawn as optional guides.
func Run(imagePath string, lay render.Layout) error {
	l := applog.WithComponent("ui")
	defer crash.Recover(filepath.Dir(imagePath))

	img, err := render.LoadImage(imagePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", imagePath, err)
	}
	b := img.Bounds()
	l.Info("viewer start", slog.String("image", imagePath), slog.Int("w", b.Dx()), slog.Int("h", b.Dy()))

	fyneApp := app.NewWithID("termcard")
	w := fyneApp.NewWindow(fmt.Sprintf("termcard %s: %s", version.String(), filepath.Base(imagePath)))

	status := widget.NewLabel("좌표: -")
	view := NewImageView(img, LayoutGuides(lay, float64(b.Dx())))
	view.OnHover = func(x, y int, ok bool) {
		if !ok {
			status.SetText("좌표: -")
			return
		}
		status.SetText(fmt.Sprintf("좌표: (%d, %d)", x, y))
	}
	view.OnClick = func(x, y int) {
		l.Info("click", slog.Int("x", x), slog.Int("y", y))
		fmt.Printf("클릭한 좌표: (%d, %d)\n", x, y)
	}

	guides := widget.NewCheck("Layout guides", func(on bool) { view.SetGuidesVisible(on) })
	guides.SetChecked(true)

	bar := container.NewHBox(status, widget.NewSeparator(), guides)
	w.SetContent(container.NewBorder(nil, bar, nil, nil, view))

	// open at image size up to a sane maximum
	vw, vh := float32(b.Dx()), float32(b.Dy())
	for vw > 1200 || vh > 900 {
		vw, vh = vw/2, vh/2
	}
	w.Resize(fyne.NewSize(vw, vh+40))
	w.ShowAndRun()
	l.Info("viewer closed")
	return nil
}

// ImageView draws an image scaled to fit and reports pointer positions in
// image pixels.
type ImageView struct {
	widget.BaseWidget

	img    image.Image
	guides []Guide
	showG  bool

	OnHover func(x, y int, ok bool)
	OnClick func(x, y int)
}

var (
	_ desktop.Hoverable = (*ImageView)(nil)
	_ fyne.Tappable     = (*ImageView)(nil)
)

func NewImageView(img image.Image, guides []Guide) *ImageView {
	v := &ImageView{img: img, guides: guides, showG: true}
	v.ExtendBaseWidget(v)
	return v
}

// SetGuidesVisible toggles the layout guide overlay.
func (v *ImageView) SetGuidesVisible(on bool) {
	v.showG = on
	v.Refresh()
}

func (v *ImageView) viewport() Viewport {
	sz := v.Size()
	b := v.img.Bounds()
	return FitViewport(float64(sz.Width), float64(sz.Height), b.Dx(), b.Dy())
}

func (v *ImageView) toImage(pos fyne.Position) (int, int, bool) {
	return v.viewport().ToImage(float64(pos.X), float64(pos.Y))
}

func (v *ImageView) MouseIn(e *desktop.MouseEvent) { v.MouseMoved(e) }

func (v *ImageView) MouseMoved(e *desktop.MouseEvent) {
	if v.OnHover == nil {
		return
	}
	x, y, ok := v.toImage(e.Position)
	v.OnHover(x, y, ok)
}

func (v *ImageView) MouseOut() {
	if v.OnHover != nil {
		v.OnHover(0, 0, false)
	}
}

// Tapped reports clicks inside the image; clicks on the letterbox are ignored.
func (v *ImageView) Tapped(e *fyne.PointEvent) {
	x, y, ok := v.toImage(e.Position)
	if ok && v.OnClick != nil {
		v.OnClick(x, y)
	}
}

func (v *ImageView) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	pic := canvas.NewImageFromImage(v.img)
	pic.FillMode = canvas.ImageFillStretch
	pic.ScaleMode = canvas.ImageScaleSmooth

	objs := []fyne.CanvasObject{bg, pic}
	var rects []*canvas.Rectangle
	for range v.guides {
		r := canvas.NewRectangle(color.Transparent)
		r.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 220}
		r.StrokeWidth = 1
		rects = append(rects, r)
		objs = append(objs, r)
	}
	return &imageViewRenderer{v: v, objects: objs, bg: bg, pic: pic, rects: rects}
}

type imageViewRenderer struct {
	v       *ImageView
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	pic     *canvas.Image
	rects   []*canvas.Rectangle
}

func (r *imageViewRenderer) Destroy()                     {}
func (r *imageViewRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *imageViewRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 200) }
func (r *imageViewRenderer) Refresh()                     { r.Layout(r.v.Size()); canvas.Refresh(r.v) }

func (r *imageViewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	vp := r.v.viewport()
	place(r.pic, vp.Image)
	for i, rect := range r.rects {
		if !r.v.showG {
			rect.Hide()
			continue
		}
		place(rect, vp.ToWidget(r.v.guides[i].Rect))
		rect.Show()
	}
}

func place(o fyne.CanvasObject, rc vector.Rect) {
	o.Move(fyne.NewPos(float32(rc.X), float32(rc.Y)))
	o.Resize(fyne.NewSize(float32(rc.W), float32(rc.H)))
}
