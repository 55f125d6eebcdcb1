/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"termcard/internal/domain"
	"termcard/internal/version"
)

// PDFOptions controls the contact sheet layout. Units are points.
// Core Helvetica is used for captions, so captions are the card file names.
type PDFOptions struct {
	Title         string
	Columns       int // default 2
	Rows          int // default 3
	Margin        float64
	Gap           float64
	IncludeGuides bool
	GuideColor    domain.Color
}

func (o PDFOptions) withDefaults() PDFOptions {
	if o.Columns <= 0 {
		o.Columns = 2
	}
	if o.Rows <= 0 {
		o.Rows = 3
	}
	if o.Margin <= 0 {
		o.Margin = 36
	}
	if o.Gap <= 0 {
		o.Gap = 12
	}
	if o.GuideColor.IsZero() {
		o.GuideColor = domain.RGB(200, 200, 200)
	}
	if o.Title == "" {
		o.Title = "termcard contact sheet"
	}
	return o
}

const captionHeight = 14

// ContactSheetPDF lays cards out on A4 pages in a Columns x Rows grid, each
// scaled to fit its cell with the file name underneath.
func ContactSheetPDF(cards []Card, outPath string, opt PDFOptions) error {
	if err := checkCards(cards); err != nil {
		return err
	}
	opt = opt.withDefaults()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(opt.Title, true)
	pdf.SetAuthor("termcard", false)
	pdf.SetCreator("termcard "+version.String(), false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetAutoPageBreak(false, 0)

	pageW, pageH := pdf.GetPageSize()
	cellW := (pageW - 2*opt.Margin - float64(opt.Columns-1)*opt.Gap) / float64(opt.Columns)
	cellH := (pageH - 2*opt.Margin - float64(opt.Rows-1)*opt.Gap) / float64(opt.Rows)
	if cellW <= 0 || cellH <= captionHeight {
		return fmt.Errorf("grid %dx%d does not fit on the page", opt.Columns, opt.Rows)
	}
	perPage := opt.Columns * opt.Rows

	for i, c := range cards {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		slot := i % perPage
		x := opt.Margin + float64(slot%opt.Columns)*(cellW+opt.Gap)
		y := opt.Margin + float64(slot/opt.Columns)*(cellH+opt.Gap)

		if opt.IncludeGuides {
			pdf.SetDrawColor(int(opt.GuideColor.R), int(opt.GuideColor.G), int(opt.GuideColor.B))
			pdf.SetLineWidth(0.2)
			pdf.Rect(x, y, cellW, cellH, "D")
		}

		imgOpt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		info := pdf.RegisterImageOptions(c.Path, imgOpt)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("card %s: %w", c.Path, err)
		}
		iw, ih := info.Extent()
		w, h := fitInto(iw, ih, cellW, cellH-captionHeight)
		ix := x + (cellW-w)/2
		pdf.ImageOptions(c.Path, ix, y, w, h, false, imgOpt, 0, "")

		pdf.SetXY(x, y+h+2)
		pdf.CellFormat(cellW, captionHeight-2, label(c), "", 0, "C", false, 0, "")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fitInto scales w x h to fit maxW x maxH keeping the aspect ratio.
func fitInto(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	s := min(maxW/w, maxH/h)
	return w * s, h * s
}
