/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// Postgres via database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"

	"termcard/internal/domain"
	applog "termcard/internal/log"
)

// ErrNotFound is returned when no term matches.
var ErrNotFound = errors.New("term not found")

// Supported driver names as used in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// regDateLayout matches the timestamps the glossary has always stored.
const regDateLayout = "2006-01-02 15:04:05"

// Store is the term list backed by SQLite or Postgres.
type Store struct {
	db      *sql.DB
	dialect string
	log     *slog.Logger
	now     func() time.Time
}

// Open connects to the database, applies the embedded schema and returns a
// ready Store. For sqlite, dsn may be a plain file path.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("driver", driver))
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite, "":
		driver = DriverSQLite
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		l.Error("ping failed", slog.Any("err", err))
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s := &Store{db: db, dialect: driver, log: l, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		l.Error("migrate failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("store ready")
	return s, nil
}

func openSQLite(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		// Use a URI with busy timeout. Convert to forward slashes for SQLite URI.
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(dsn))
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Single writer for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FetchUnused returns up to n open terms without a card, in random order.
func (s *Store) FetchUnused(ctx context.Context, n int) ([]domain.Term, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT idx, term, short_description, description, file_name, open_yn, reg_date
		FROM term_list
		WHERE open_yn = 1 AND file_name IS NULL
		ORDER BY RANDOM()
		LIMIT ?`), n)
	if err != nil {
		return nil, fmt.Errorf("query unused terms: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unused terms: %w", err)
	}
	if len(out) == 0 {
		s.log.Warn("no unused terms left")
	}
	return out, nil
}

// MarkUsed records the rendered card for a term.
func (s *Store) MarkUsed(ctx context.Context, idx int64, fileName string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE term_list SET file_name = ?, reg_date = ? WHERE idx = ?`),
		fileName, s.now().Format(regDateLayout), idx)
	if err != nil {
		return fmt.Errorf("mark term %d used: %w", idx, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark term %d used: %w", idx, ErrNotFound)
	}
	s.log.Info("term marked used", slog.Int64("idx", idx), slog.String("file", fileName))
	return nil
}

// FindByTerm looks a term up by its exact text.
func (s *Store) FindByTerm(ctx context.Context, term string) (domain.Term, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT idx, term, short_description, description, file_name, open_yn, reg_date
		FROM term_list WHERE term = ? ORDER BY idx LIMIT 1`), term)
	t, err := scanTerm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Term{}, ErrNotFound
	}
	return t, err
}

// Insert adds a new open term and returns its idx.
func (s *Store) Insert(ctx context.Context, t domain.Term) (int64, error) {
	var idx int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO term_list (term, short_description, description)
		VALUES (?, ?, ?) RETURNING idx`), t.Term, t.ShortDescription, t.Description).Scan(&idx)
	if err != nil {
		return 0, fmt.Errorf("insert term %q: %w", t.Term, err)
	}
	return idx, nil
}

// UpdateDescriptions overwrites both descriptions of an existing term.
func (s *Store) UpdateDescriptions(ctx context.Context, idx int64, short, desc string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE term_list SET short_description = ?, description = ? WHERE idx = ?`),
		short, desc, idx)
	if err != nil {
		return fmt.Errorf("update term %d: %w", idx, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update term %d: %w", idx, ErrNotFound)
	}
	return nil
}

// SetOpen toggles whether a term may be picked for new cards.
func (s *Store) SetOpen(ctx context.Context, idx int64, open bool) error {
	v := 0
	if open {
		v = 1
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`UPDATE term_list SET open_yn = ? WHERE idx = ?`), v, idx); err != nil {
		return fmt.Errorf("set open for term %d: %w", idx, err)
	}
	return nil
}

// Count returns the number of stored terms and how many are still unused.
func (s *Store) Count(ctx context.Context) (total, unused int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN open_yn = 1 AND file_name IS NULL THEN 1 ELSE 0 END), 0)
		FROM term_list`).Scan(&total, &unused)
	if err != nil {
		return 0, 0, fmt.Errorf("count terms: %w", err)
	}
	return total, unused, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTerm(sc scanner) (domain.Term, error) {
	var (
		t                         domain.Term
		short, desc, file, regDay sql.NullString
		open                      int64
	)
	if err := sc.Scan(&t.Idx, &t.Term, &short, &desc, &file, &open, &regDay); err != nil {
		return domain.Term{}, err
	}
	t.ShortDescription = short.String
	t.Description = desc.String
	t.FileName = file.String
	t.RegDate = regDay.String
	t.Open = open == 1
	return t, nil
}
