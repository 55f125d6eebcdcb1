/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"termcard/internal/version"
)

// Manifest describes the contents of a card bundle.
type Manifest struct {
	Generated string `json:"generated"`
	Version   string `json:"version"`
	Cards     []Card `json:"cards"`
}

// BundleZIP packages cards under cards/ in a ZIP archive and adds
// manifest.json. A .zip extension is enforced. On error no archive is
// left behind.
func BundleZIP(cards []Card, outPath string) (_ string, err error) {
	if err := checkCards(cards); err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(outPath)
		}
	}()

	if err := writeBundle(zw, cards); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close zip file: %w", err)
	}
	return outPath, nil
}

func writeBundle(zw *zip.Writer, cards []Card) error {
	man := Manifest{Generated: time.Now().UTC().Format(time.RFC3339), Version: version.String()}
	seen := map[string]int{}
	for _, c := range cards {
		data, err := os.ReadFile(c.Path)
		if err != nil {
			return fmt.Errorf("read card: %w", err)
		}
		c.File = uniqueEntry(seen, filepath.Base(c.Path))
		if err := addZipFile(zw, "cards/"+c.File, data); err != nil {
			return fmt.Errorf("zip add card: %w", err)
		}
		man.Cards = append(man.Cards, c)
	}
	mb, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", mb); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	return nil
}

// uniqueEntry keeps entry names distinct when cards from different
// directories share a file name.
func uniqueEntry(seen map[string]int, name string) string {
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	// Ensure directory exists
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
