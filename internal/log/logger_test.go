/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readJSONLines returns the log file's records, closing the file first.
func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	if err := Close(); err != nil {
		t.Fatalf("close log: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var out []map[string]any
	for _, line := range strings.Split(string(b), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestInit_FileGetsBatchRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termcard.log")
	Init(Options{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{}) })

	l := WithOperation(WithComponent("cardgen"), "batch")
	ctx := WithCard(context.Background(), 2, "금리")
	l.InfoContext(ctx, "card rendered", slog.String("path", "out/20250714_02.png"))
	l.Debug("batch done", slog.Int("count", 1))

	recs := readJSONLines(t, path)
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	first := recs[0]
	for k, want := range map[string]any{
		"app": "termcard", "component": "cardgen", "op": "batch",
		"msg": "card rendered", "term": "금리", "path": "out/20250714_02.png",
	} {
		if first[k] != want {
			t.Errorf("%s = %v, want %v", k, first[k], want)
		}
	}
	if first["card"] != float64(2) {
		t.Errorf("card = %v, want 2", first["card"])
	}
	if _, ok := recs[1]["term"]; ok {
		t.Errorf("record without card context has term: %v", recs[1])
	}
}

func TestInit_LevelFiltersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termcard.log")
	Init(Options{Level: "warn", Format: "json", File: path})
	t.Cleanup(func() { Init(Options{}) })

	L().Info("skipped")
	L().Warn("font fallback", slog.String("family", "title"))

	recs := readJSONLines(t, path)
	if len(recs) != 1 || recs[0]["msg"] != "font fallback" {
		t.Fatalf("unexpected records: %v", recs)
	}
}

func TestRotatingWriter_Defaults(t *testing.T) {
	w := rotatingWriter(Options{File: "x.log"})
	if w.MaxSize != DefaultMaxSizeMB || w.MaxBackups != DefaultMaxBackups || w.MaxAge != DefaultMaxAgeDays {
		t.Fatalf("defaults not applied: size=%d backups=%d age=%d", w.MaxSize, w.MaxBackups, w.MaxAge)
	}
	w = rotatingWriter(Options{File: "x.log", MaxSizeMB: 1, MaxBackups: 7, MaxAgeDays: 2})
	if w.MaxSize != 1 || w.MaxBackups != 7 || w.MaxAge != 2 {
		t.Fatalf("explicit values lost: size=%d backups=%d age=%d", w.MaxSize, w.MaxBackups, w.MaxAge)
	}
}

func TestClose_WithoutFile(t *testing.T) {
	Init(Options{})
	if err := Close(); err != nil {
		t.Fatalf("close without file: %v", err)
	}
}
