/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // background decoders
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"termcard/internal/domain"
	applog "termcard/internal/log"
	"termcard/internal/textlayout"
	"termcard/internal/vector"
)

// BackgroundLoadError means the template image could not be read or decoded.
// It is fatal for the card being rendered.
type BackgroundLoadError struct {
	Path string
	Err  error
}

func (e *BackgroundLoadError) Error() string {
	return fmt.Sprintf("load background %s: %v", e.Path, e.Err)
}

func (e *BackgroundLoadError) Unwrap() error { return e.Err }

// Options configures a Compositor.
type Options struct {
	Background string
	Fonts      textlayout.FaceSource
	Layout     Layout
	Logger     *slog.Logger
}

// SlotReport records how one slot was laid out.
type SlotReport struct {
	Name     string
	Size     int
	Lines    int
	Fallback textlayout.Fallback
	Err      error
}

// CardResult is the per-card outcome.
type CardResult struct {
	Path   string
	Status domain.CardStatus
	Slots  []SlotReport
}

// Compositor renders cards one at a time. The decoded background is cached
// after the first successful load and every card draws on its own copy.
type Compositor struct {
	opt Options
	log *slog.Logger

	mu sync.Mutex
	bg *image.RGBA
}

// New returns a Compositor. A zero Layout is replaced by DefaultLayout.
func New(opt Options) *Compositor {
	if opt.Layout.Title.InitialSize == 0 && opt.Layout.Body.InitialSize == 0 {
		opt.Layout = DefaultLayout()
	}
	if opt.Fonts == nil {
		opt.Fonts = textlayout.NewFontLibrary()
	}
	if opt.Layout.StackPitch <= 0 {
		opt.Layout.StackPitch = 1.5
	}
	l := opt.Logger
	if l == nil {
		l = applog.WithComponent("render")
	}
	return &Compositor{opt: opt, log: l}
}

// RenderCard composes spec and writes it as PNG to a unique path derived from
// spec.OutputPath. Background failures yield StatusFailed, a
// *BackgroundLoadError and no file.
func (c *Compositor) RenderCard(spec domain.CardSpec) (CardResult, error) {
	l := applog.WithOperation(c.log, "render_card").With(slog.Int("card", spec.Index))
	img, res, err := c.Compose(spec)
	if err != nil {
		l.Error("compose failed", slog.Any("err", err))
		return res, err
	}
	if dir := filepath.Dir(spec.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			res.Status = domain.StatusFailed
			return res, fmt.Errorf("ensure out dir: %w", err)
		}
	}
	path, err := UniquePath(spec.OutputPath)
	if err != nil {
		res.Status = domain.StatusFailed
		return res, err
	}
	if err := writePNG(path, img); err != nil {
		res.Status = domain.StatusFailed
		l.Error("write failed", slog.String("path", path), slog.Any("err", err))
		return res, err
	}
	res.Path = path
	l.Info("card written", slog.String("path", path), slog.String("status", string(res.Status)))
	return res, nil
}

// Compose draws spec in memory without touching the output location.
func (c *Compositor) Compose(spec domain.CardSpec) (*image.RGBA, CardResult, error) {
	res := CardResult{Status: domain.StatusSuccess}
	bg, err := c.background()
	if err != nil {
		res.Status = domain.StatusFailed
		return nil, res, err
	}
	canvas := image.NewRGBA(bg.Bounds())
	draw.Draw(canvas, canvas.Bounds(), bg, bg.Bounds().Min, draw.Src)
	width := float64(canvas.Bounds().Dx())
	lay := c.opt.Layout

	// title
	tr, tface := c.fit("title", lay.wrapSpec(lay.Title, spec.Term), &res)
	drawStack(canvas, tr.Lines, tface, width, lay.Title.AnchorY, lay.StackPitch, lay.Title.Color)

	// caption
	cr, cface := c.fit("caption", lay.wrapSpec(lay.Caption, spec.ShortDescription), &res)
	drawStack(canvas, cr.Lines, cface, width, lay.Caption.AnchorY, lay.StackPitch, lay.Caption.Color)

	// description in its box
	br, bface := c.fit("body", lay.wrapSpec(lay.Body.Slot, spec.Description), &res)
	if len(br.Lines) > 0 {
		box := textlayout.ComputeBox(br, lay.Body.AnchorY, width, lay.Body.Box)
		vector.FillRoundRect(canvas, box.RoundRect(), box.Fill)
		drawBlock(canvas, br, bface, width, box.TextStartY, lay.Body.Color)
	}

	c.drawLabel(canvas, spec.Index, &res)
	return canvas, res, nil
}

func (c *Compositor) fit(name string, ws textlayout.WrapSpec, res *CardResult) (textlayout.LayoutResult, font.Face) {
	lr, face := textlayout.Fit(c.opt.Fonts, ws)
	res.Slots = append(res.Slots, SlotReport{
		Name: name, Size: lr.ChosenSize, Lines: len(lr.Lines), Fallback: lr.Fallback, Err: lr.Cause,
	})
	if lr.Degraded() {
		res.Status = domain.StatusDegraded
		c.log.Warn("layout fallback",
			slog.String("slot", name),
			slog.String("reason", lr.Fallback.String()),
			slog.Any("err", lr.Cause))
	}
	return lr, face
}

func (c *Compositor) drawLabel(dst *image.RGBA, index int, res *CardResult) {
	lb := c.opt.Layout.Label
	if lb.Format == "" {
		return
	}
	face, err := c.opt.Fonts.Face(lb.Family, lb.Size)
	rep := SlotReport{Name: "label", Size: int(lb.Size), Lines: 1}
	if err != nil {
		face = textlayout.DefaultFace()
		rep.Fallback = textlayout.FallbackFontLoad
		rep.Err = err
		res.Status = domain.StatusDegraded
		c.log.Warn("label font fallback", slog.Any("err", err))
	}
	res.Slots = append(res.Slots, rep)
	m := textlayout.Measure("", face)
	drawText(dst, fmt.Sprintf(lb.Format, index), face, lb.X, lb.Y+m.Ascent, lb.Color)
}

func (c *Compositor) background() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bg != nil {
		return c.bg, nil
	}
	img, err := LoadImage(c.opt.Background)
	if err != nil {
		return nil, &BackgroundLoadError{Path: c.opt.Background, Err: err}
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	c.bg = rgba
	return rgba, nil
}

// LoadImage decodes a PNG, JPEG, BMP or WebP file.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, errors.New("no image path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// drawStack draws lines centered horizontally, each advancing by pitch times
// its own bbox height.
func drawStack(dst draw.Image, lines []string, face font.Face, width, top, pitch float64, col color.RGBA) {
	y := top
	ascent := textlayout.Measure("", face).Ascent
	for _, ln := range lines {
		gm := textlayout.Measure(ln, face)
		x := math.Floor((width-gm.Width)/2) - gm.MinX
		drawText(dst, ln, face, x, y+ascent, col)
		y += gm.Height * pitch
	}
}

// drawBlock draws a fitted block with face-wide line height, matching the
// pitch the background box was sized with.
func drawBlock(dst draw.Image, lr textlayout.LayoutResult, face font.Face, width, top float64, col color.RGBA) {
	y := top
	step := lr.Ascent + lr.Descent + lr.LineSpacing()
	for _, ln := range lr.Lines {
		gm := textlayout.Measure(ln, face)
		x := math.Floor((width-gm.Width)/2) - gm.MinX
		drawText(dst, ln, face, x, y+lr.Ascent, col)
		y += step
	}
}

func drawText(dst draw.Image, s string, face font.Face, x, baseline float64, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(baseline * 64))},
	}
	d.DrawString(s)
}
