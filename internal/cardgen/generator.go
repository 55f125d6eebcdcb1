/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cardgen renders a batch of unused terms into cards and records the
// produced files in the term store.
package cardgen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"termcard/internal/domain"
	applog "termcard/internal/log"
	"termcard/internal/render"
)

// TermSource is the part of the store a batch needs.
type TermSource interface {
	FetchUnused(ctx context.Context, n int) ([]domain.Term, error)
	MarkUsed(ctx context.Context, idx int64, fileName string) error
}

// CardRenderer renders one card to disk.
type CardRenderer interface {
	RenderCard(spec domain.CardSpec) (render.CardResult, error)
}

// CardOutcome is the record of one card in a batch.
type CardOutcome struct {
	Index  int
	Term   domain.Term
	Path   string
	Status domain.CardStatus
	Err    error
}

// BatchReport lists every card of a run in order.
type BatchReport struct {
	Started time.Time
	Cards   []CardOutcome
}

// Count returns how many cards ended with status.
func (r BatchReport) Count(status domain.CardStatus) int {
	n := 0
	for _, c := range r.Cards {
		if c.Status == status {
			n++
		}
	}
	return n
}

// Paths returns the written files of non-failed cards.
func (r BatchReport) Paths() []string {
	var out []string
	for _, c := range r.Cards {
		if c.Status != domain.StatusFailed && c.Path != "" {
			out = append(out, c.Path)
		}
	}
	return out
}

// Generator runs batches sequentially.
type Generator struct {
	Store    TermSource
	Renderer CardRenderer
	OutDir   string
	Now      func() time.Time
	Logger   *slog.Logger
}

// OutputPath is the requested path of the n-th (1-based) card of a batch.
func OutputPath(dir string, day time.Time, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%02d.png", day.Format("20060102"), n))
}

// Run renders up to n unused terms. Per-card failures are recorded in the
// report and never abort the batch; only failing to fetch terms does.
// Failed cards are not marked as used, so they are picked up again later.
func (g *Generator) Run(ctx context.Context, n int) (BatchReport, error) {
	now := g.Now
	if now == nil {
		now = time.Now
	}
	l := g.Logger
	if l == nil {
		l = applog.WithComponent("cardgen")
	}
	l = applog.WithOperation(l, "batch")
	rep := BatchReport{Started: now()}

	terms, err := g.Store.FetchUnused(ctx, n)
	if err != nil {
		l.Error("fetch terms failed", slog.Any("err", err))
		return rep, fmt.Errorf("fetch terms: %w", err)
	}
	l.Info("batch start", slog.Int("requested", n), slog.Int("terms", len(terms)))

	for i, t := range terms {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		index := i + 1
		cctx := applog.WithCard(ctx, index, t.Term)
		spec := domain.SpecFor(index, t, OutputPath(g.OutDir, rep.Started, index))
		out := CardOutcome{Index: index, Term: t}

		res, err := g.Renderer.RenderCard(spec)
		out.Status = res.Status
		out.Path = res.Path
		if err != nil {
			out.Status = domain.StatusFailed
			out.Err = err
			l.ErrorContext(cctx, "card failed", slog.Any("err", err))
			rep.Cards = append(rep.Cards, out)
			continue
		}
		if err := g.Store.MarkUsed(ctx, t.Idx, res.Path); err != nil {
			// The file exists; the term stays unused and may be rendered again.
			out.Err = err
			l.WarnContext(cctx, "mark used failed", slog.Any("err", err))
		}
		l.InfoContext(cctx, "card done", slog.String("path", res.Path), slog.String("status", string(out.Status)))
		rep.Cards = append(rep.Cards, out)
	}

	l.Info("batch done",
		slog.Int("success", rep.Count(domain.StatusSuccess)),
		slog.Int("degraded", rep.Count(domain.StatusDegraded)),
		slog.Int("failed", rep.Count(domain.StatusFailed)))
	return rep, nil
}
