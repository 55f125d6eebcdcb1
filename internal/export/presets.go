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
	"path/filepath"
	"strings"
	"time"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a multi-format export of one set of cards.
//
// Outputs land in OutDir as cards-<stamp>.zip and cards-<stamp>.pdf.
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, zip; empty means preset defaults
	IncludeGuides *bool    // when set, overrides preset's default for guides
	OutDir        string
	Stamp         string // defaults to the current date
}

// BatchExport runs the exports of a preset and returns the written files.
func BatchExport(cards []Card, opt BatchOptions) ([]string, error) {
	if err := checkCards(cards); err != nil {
		return nil, err
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("unknown preset %q", opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = filepath.Join("exports", string(opt.Preset))
	}
	stamp := opt.Stamp
	if stamp == "" {
		stamp = time.Now().Format("20060102")
	}
	guides := presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}

	var written []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			out := filepath.Join(baseOut, "cards-"+stamp+".pdf")
			if err := ContactSheetPDF(cards, out, PDFOptions{IncludeGuides: guides}); err != nil {
				return written, fmt.Errorf("pdf: %w", err)
			}
			written = append(written, out)
		case "zip":
			out, err := BundleZIP(cards, filepath.Join(baseOut, "cards-"+stamp+".zip"))
			if err != nil {
				return written, fmt.Errorf("zip: %w", err)
			}
			written = append(written, out)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"zip"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return nil
	}
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}
