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
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// ErrUnknownFamily is wrapped by FontLoadError when no file was registered for a family.
var ErrUnknownFamily = errors.New("font family not registered")

// FontLoadError reports a font file that is missing, unreadable or not a
// parsable OpenType/TrueType font. Fitting treats it as non-fatal and falls
// back to the built-in face.
type FontLoadError struct {
	Family string
	Path   string
	Err    error
}

func (e *FontLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load font %q: %v", e.Family, e.Err)
	}
	return fmt.Sprintf("load font %q from %s: %v", e.Family, e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// FaceSource hands out faces for a family at a pixel size.
type FaceSource interface {
	Face(family string, size float64) (font.Face, error)
}

// FontLibrary stores parsed OpenType fonts by family and caches faces by
// (family, size). Files registered with Register are parsed on first use.
// Font files are read-only, so one library can serve a whole batch.
type FontLibrary struct {
	// DPI used for faces; 72 makes the point size equal the pixel size.
	DPI float64

	mu     sync.Mutex
	paths  map[string]string
	fonts  map[string]*opentype.Font
	failed map[string]error
	faces  map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
}

func NewFontLibrary() *FontLibrary {
	return &FontLibrary{
		DPI:    72,
		paths:  make(map[string]string),
		fonts:  make(map[string]*opentype.Font),
		failed: make(map[string]error),
		faces:  make(map[faceKey]font.Face),
	}
}

// Register associates a family with a font file without reading it.
func (fl *FontLibrary) Register(family, path string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.paths[family] = path
	delete(fl.failed, family)
	delete(fl.fonts, family)
	fl.dropFacesLocked(family)
}

// LoadTTF registers and parses a font file immediately.
func (fl *FontLibrary) LoadTTF(family, path string) error {
	fl.Register(family, path)
	fl.mu.Lock()
	defer fl.mu.Unlock()
	_, err := fl.fontLocked(family)
	return err
}

// Face returns a cached face for family at size, parsing the font on first use.
func (fl *FontLibrary) Face(family string, size float64) (font.Face, error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	key := faceKey{family: family, size: size}
	if face, ok := fl.faces[key]; ok {
		return face, nil
	}
	f, err := fl.fontLocked(family)
	if err != nil {
		return nil, err
	}
	dpi := fl.DPI
	if dpi <= 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, &FontLoadError{Family: family, Path: fl.paths[family], Err: fmt.Errorf("face at %.0fpx: %w", size, err)}
	}
	fl.faces[key] = face
	return face, nil
}

// Close releases all cached faces.
func (fl *FontLibrary) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	var errs []error
	for k, face := range fl.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(fl.faces, k)
	}
	return errors.Join(errs...)
}

// dropFacesLocked closes and forgets every cached face of family.
func (fl *FontLibrary) dropFacesLocked(family string) {
	for k, face := range fl.faces {
		if k.family == family {
			_ = face.Close()
			delete(fl.faces, k)
		}
	}
}

func (fl *FontLibrary) fontLocked(family string) (*opentype.Font, error) {
	if f, ok := fl.fonts[family]; ok {
		return f, nil
	}
	if err, ok := fl.failed[family]; ok {
		return nil, err
	}
	path, ok := fl.paths[family]
	if !ok {
		return nil, &FontLoadError{Family: family, Err: ErrUnknownFamily}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		lerr := &FontLoadError{Family: family, Path: path, Err: err}
		fl.failed[family] = lerr
		return nil, lerr
	}
	f, err := opentype.Parse(data)
	if err != nil {
		lerr := &FontLoadError{Family: family, Path: path, Err: err}
		fl.failed[family] = lerr
		return nil, lerr
	}
	fl.fonts[family] = f
	return f, nil
}
