/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"termcard/internal/domain"
	applog "termcard/internal/log"
)

//go:embed schema/terms.schema.json
var termsSchema []byte

// MergePolicy decides what happens when an imported term already exists.
type MergePolicy int

const (
	// PolicyAsk consults the Decider for every duplicate.
	PolicyAsk MergePolicy = iota
	PolicySkip
	PolicyOverwrite
	// PolicySkipAll and PolicyOverwriteAll apply to the current duplicate
	// and every later one.
	PolicySkipAll
	PolicyOverwriteAll
)

var policyNames = map[MergePolicy]string{
	PolicyAsk:          "ask",
	PolicySkip:         "skip",
	PolicyOverwrite:    "overwrite",
	PolicySkipAll:      "skip-all",
	PolicyOverwriteAll: "overwrite-all",
}

func (p MergePolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("MergePolicy(%d)", int(p))
}

// ParseMergePolicy accepts the names printed by String.
func ParseMergePolicy(s string) (MergePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return PolicyAsk, fmt.Errorf("unknown merge policy %q", s)
}

// Entry is one row of an import file.
type Entry struct {
	Term             string `json:"term"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
}

// Duplicate pairs an incoming entry with the stored term of the same name.
type Duplicate struct {
	Existing domain.Term
	Incoming Entry
}

// Decider answers a duplicate while the policy is PolicyAsk. Any answer other
// than skip, overwrite, skip-all or overwrite-all skips the duplicate.
type Decider interface {
	Decide(d Duplicate) MergePolicy
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(d Duplicate) MergePolicy

func (f DeciderFunc) Decide(d Duplicate) MergePolicy { return f(d) }

// ImportStats counts the outcome of an import run.
type ImportStats struct {
	Inserted int
	Updated  int
	Skipped  int
	// Invalid counts rows that were malformed and ignored.
	Invalid int
}

// Importer feeds entries into a Store.
type Importer struct {
	store   *Store
	policy  MergePolicy
	decider Decider
	log     *slog.Logger
}

// NewImporter returns an Importer starting with policy. decider may be nil,
// in which case PolicyAsk skips every duplicate.
func NewImporter(s *Store, policy MergePolicy, decider Decider) *Importer {
	return &Importer{
		store:   s,
		policy:  policy,
		decider: decider,
		log:     applog.WithOperation(applog.WithComponent("storage"), "import"),
	}
}

// Policy reports the current policy; it changes after a *-all answer.
func (im *Importer) Policy() MergePolicy { return im.policy }

// Import applies entries in order.
func (im *Importer) Import(ctx context.Context, entries []Entry) (ImportStats, error) {
	var st ImportStats
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if err := im.one(ctx, e, &st); err != nil {
			return st, err
		}
	}
	im.log.Info("import finished",
		slog.Int("inserted", st.Inserted), slog.Int("updated", st.Updated),
		slog.Int("skipped", st.Skipped), slog.Int("invalid", st.Invalid))
	return st, nil
}

func (im *Importer) one(ctx context.Context, e Entry, st *ImportStats) error {
	existing, err := im.store.FindByTerm(ctx, e.Term)
	if errors.Is(err, ErrNotFound) {
		if _, err := im.store.Insert(ctx, domain.Term{Term: e.Term, ShortDescription: e.ShortDescription, Description: e.Description}); err != nil {
			return err
		}
		st.Inserted++
		return nil
	}
	if err != nil {
		return err
	}
	l := im.log.With(slog.String("term", e.Term))
	if im.resolve(Duplicate{Existing: existing, Incoming: e}) {
		if err := im.store.UpdateDescriptions(ctx, existing.Idx, e.ShortDescription, e.Description); err != nil {
			return err
		}
		st.Updated++
		l.Info("duplicate overwritten", slog.String("policy", im.policy.String()))
		return nil
	}
	st.Skipped++
	l.Info("duplicate skipped", slog.String("policy", im.policy.String()))
	return nil
}

// resolve reports whether the duplicate should be overwritten, switching
// the policy when the answer covers all later duplicates.
func (im *Importer) resolve(d Duplicate) bool {
	switch im.policy {
	case PolicySkip, PolicySkipAll:
		return false
	case PolicyOverwrite, PolicyOverwriteAll:
		return true
	}
	if im.decider == nil {
		return false
	}
	switch choice := im.decider.Decide(d); choice {
	case PolicyOverwrite:
		return true
	case PolicySkipAll, PolicyOverwriteAll:
		im.policy = choice
		return choice == PolicyOverwriteAll
	default:
		return false
	}
}

// ImportFile imports a .csv or .json file.
func (im *Importer) ImportFile(ctx context.Context, path string) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("open import file: %w", err)
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return im.ImportCSV(ctx, f)
	case ".json":
		return im.ImportJSON(ctx, f)
	default:
		return ImportStats{}, fmt.Errorf("unsupported import format %q", filepath.Ext(path))
	}
}

// ImportCSV reads term,short_description,description rows after a header.
func (im *Importer) ImportCSV(ctx context.Context, r io.Reader) (ImportStats, error) {
	entries, invalid, err := ReadCSV(r)
	if err != nil {
		return ImportStats{}, err
	}
	st, err := im.Import(ctx, entries)
	st.Invalid += invalid
	return st, err
}

// ImportJSON reads an array of entries validated against the embedded schema.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) (ImportStats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportStats{}, fmt.Errorf("read json: %w", err)
	}
	entries, err := ReadJSON(data)
	if err != nil {
		return ImportStats{}, err
	}
	return im.Import(ctx, entries)
}

// ReadCSV parses a CSV term list. The first row is a header. Rows that do not
// have exactly three fields, or have an empty term, are counted as invalid.
func ReadCSV(r io.Reader) ([]Entry, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	var (
		out     []Entry
		invalid int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, invalid, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) != 3 || strings.TrimSpace(rec[0]) == "" {
			invalid++
			continue
		}
		out = append(out, Entry{
			Term:             strings.TrimSpace(rec[0]),
			ShortDescription: strings.TrimSpace(rec[1]),
			Description:      strings.TrimSpace(rec[2]),
		})
	}
	return out, invalid, nil
}

// SchemaError lists every violation found in a JSON import file.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "import file does not match schema: " + strings.Join(e.Problems, "; ")
}

// ReadJSON validates data and decodes the entries.
func ReadJSON(data []byte) ([]Entry, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(termsSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate json: %w", err)
	}
	if !res.Valid() {
		se := &SchemaError{}
		for _, e := range res.Errors() {
			se.Problems = append(se.Problems, e.String())
		}
		return nil, se
	}
	var out []Entry
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	for i := range out {
		out[i].Term = strings.TrimSpace(out[i].Term)
	}
	return out, nil
}

// PromptDecider asks on Out and reads the answer from In.
type PromptDecider struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewPromptDecider wraps r and w for interactive duplicate resolution.
func NewPromptDecider(r io.Reader, w io.Writer) *PromptDecider {
	return &PromptDecider{In: bufio.NewReader(r), Out: w}
}

func (p *PromptDecider) Decide(d Duplicate) MergePolicy {
	_, _ = fmt.Fprintf(p.Out, "\n[duplicate] %q already exists.\n", d.Existing.Term)
	_, _ = fmt.Fprintf(p.Out, "- stored short: %s\n- stored description: %s\n", d.Existing.ShortDescription, d.Existing.Description)
	_, _ = fmt.Fprintf(p.Out, "- new short: %s\n- new description: %s\n", d.Incoming.ShortDescription, d.Incoming.Description)
	_, _ = fmt.Fprint(p.Out, "[1] skip  [2] overwrite  [3] skip all  [4] overwrite all\nchoice: ")
	line, _ := p.In.ReadString('\n')
	switch strings.TrimSpace(line) {
	case "1":
		return PolicySkip
	case "2":
		return PolicyOverwrite
	case "3":
		return PolicySkipAll
	case "4":
		return PolicyOverwriteAll
	default:
		_, _ = fmt.Fprintln(p.Out, "invalid input, skipping.")
		return PolicyAsk
	}
}

// SeedCSV imports csvPath into an empty store, skipping duplicates. It does
// nothing when the store already has terms or the file does not exist.
func SeedCSV(ctx context.Context, s *Store, csvPath string) (ImportStats, error) {
	total, _, err := s.Count(ctx)
	if err != nil || total > 0 || csvPath == "" {
		return ImportStats{}, err
	}
	if _, err := os.Stat(csvPath); errors.Is(err, os.ErrNotExist) {
		s.log.Warn("seed file not found", slog.String("path", csvPath))
		return ImportStats{}, nil
	}
	return NewImporter(s, PolicySkipAll, nil).ImportFile(ctx, csvPath)
}
