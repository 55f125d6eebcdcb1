/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"termcard/internal/cardgen"
	"termcard/internal/config"
	"termcard/internal/crash"
	"termcard/internal/domain"
	"termcard/internal/export"
	applog "termcard/internal/log"
	"termcard/internal/storage"
	"termcard/internal/ui"
	"termcard/internal/version"
)

func usage() {
	fmt.Println("termcard - term card renderer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  termcard version|-v|--version                          Show version")
	fmt.Println("  termcard render <term> <short> <description> [out] [n] Render one card")
	fmt.Println("  termcard generate [n] [--export=web|print]             Render the next n unused terms (default from config)")
	fmt.Println("  termcard import <file.csv|file.json> [--policy=<p>]    Import terms; p = ask|skip|overwrite|skip-all|overwrite-all")
	fmt.Println("  termcard export <web|print> <outDir> <card.png>...     Bundle rendered cards")
	fmt.Println("  termcard coords <image>                                Show pixel coordinates (build with -tags fyne)")
	fmt.Println("  termcard open|close <term>                             Allow or stop picking a term for new cards")
	fmt.Println("  termcard init-config                                   Write a config file with the defaults")
	fmt.Println("  termcard config                                        Print the effective configuration")
	fmt.Println("  termcard set-db-password <password>                    Store the postgres password in the OS keychain")
}

func main() {
	cfg, dbPassword, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,

		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	defer crash.Recover(cfg.Output.Dir)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	if args[1] == "version" || args[1] == "--version" || args[1] == "-v" {
		fmt.Println("termcard")
		fmt.Println(version.String())
		return
	}
	if args[1] == "init-config" {
		path, err := config.InitFile()
		if err != nil {
			fmt.Println("Error:", err, path)
			os.Exit(1)
		}
		fmt.Println("Wrote", path)
		return
	}
	if cfgErr != nil {
		l.Error("config failed", slog.Any("err", cfgErr))
		fmt.Println("Error:", cfgErr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch args[1] {
	case "render":
		if len(args) < 5 {
			fmt.Println("render requires <term> <short> <description>")
			usage()
			os.Exit(2)
		}
		err = runRender(cfg, args[2:])
	case "generate":
		n := cfg.Output.BatchSize
		var preset string
		for _, a := range args[2:] {
			if v, ok := strings.CutPrefix(a, "--export="); ok {
				preset = v
				continue
			}
			n, err = strconv.Atoi(a)
			if err != nil || n <= 0 {
				fmt.Println("generate: n must be a positive number")
				os.Exit(2)
			}
		}
		err = runGenerate(ctx, cfg, dbPassword, n, preset)
	case "import":
		if len(args) < 3 {
			fmt.Println("import requires <file>")
			usage()
			os.Exit(2)
		}
		err = runImport(ctx, cfg, dbPassword, args[2:])
	case "export":
		if len(args) < 5 {
			fmt.Println("export requires <preset> <outDir> and at least one card")
			usage()
			os.Exit(2)
		}
		err = runExport(args[2], args[3], args[4:])
	case "coords":
		if len(args) < 3 {
			fmt.Println("coords requires <image>")
			usage()
			os.Exit(2)
		}
		err = ui.Run(args[2], cardgen.LayoutFromConfig(cfg.Card))
	case "open", "close":
		if len(args) < 3 {
			fmt.Printf("%s requires <term>\n", args[1])
			os.Exit(2)
		}
		err = runSetOpen(ctx, cfg, dbPassword, args[2], args[1] == "open")
	case "config":
		err = runShowConfig(cfg)
	case "set-db-password":
		if len(args) < 3 {
			fmt.Println("set-db-password requires <password> (empty string removes it)")
			os.Exit(2)
		}
		err = config.SetDBPassword(args[2])
		if err == nil {
			fmt.Println("Password stored in the OS keychain.")
		}
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func runRender(cfg config.AppConfig, args []string) error {
	out := filepath.Join(cfg.Output.Dir, "card.png")
	if len(args) >= 4 && args[3] != "" {
		out = args[3]
	}
	index := 1
	if len(args) >= 5 {
		n, err := strconv.Atoi(args[4])
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		index = n
	}
	comp, fonts := cardgen.NewCompositor(cfg.Card)
	defer func() { _ = fonts.Close() }()

	t := domain.Term{Term: args[0], ShortDescription: args[1], Description: args[2]}
	res, err := comp.RenderCard(domain.SpecFor(index, t, out))
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", res.Path, res.Status)
	return nil
}

func openStore(ctx context.Context, cfg config.AppConfig, password string) (*storage.Store, error) {
	dsn := cfg.Store.DSN
	if cfg.Store.Driver == storage.DriverPostgres {
		dsn = config.DSNWithPassword(dsn, password)
	}
	return storage.Open(ctx, cfg.Store.Driver, dsn)
}

func runGenerate(ctx context.Context, cfg config.AppConfig, password string, n int, preset string) error {
	st, err := openStore(ctx, cfg, password)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	seeded, err := storage.SeedCSV(ctx, st, cfg.Store.SeedCSV)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if seeded.Inserted > 0 {
		fmt.Printf("Seeded %d terms from %s\n", seeded.Inserted, cfg.Store.SeedCSV)
	}

	comp, fonts := cardgen.NewCompositor(cfg.Card)
	defer func() { _ = fonts.Close() }()
	gen := &cardgen.Generator{Store: st, Renderer: comp, OutDir: cfg.Output.Dir}
	rep, err := gen.Run(ctx, n)
	if err != nil {
		return err
	}
	if len(rep.Cards) == 0 {
		fmt.Println("No unused terms left.")
		return nil
	}
	for _, c := range rep.Cards {
		if c.Err != nil {
			fmt.Printf("%2d  %-8s %s: %v\n", c.Index, c.Status, c.Term.Term, c.Err)
			continue
		}
		fmt.Printf("%2d  %-8s %s -> %s\n", c.Index, c.Status, c.Term.Term, c.Path)
	}
	fmt.Printf("success=%d degraded=%d failed=%d\n",
		rep.Count(domain.StatusSuccess), rep.Count(domain.StatusDegraded), rep.Count(domain.StatusFailed))
	if preset == "" || len(rep.Paths()) == 0 {
		return nil
	}
	return runExport(preset, filepath.Join(cfg.Output.Dir, "exports", preset), rep.Paths())
}

func runSetOpen(ctx context.Context, cfg config.AppConfig, password, term string, open bool) error {
	st, err := openStore(ctx, cfg, password)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	t, err := st.FindByTerm(ctx, term)
	if err != nil {
		return fmt.Errorf("%q: %w", term, err)
	}
	if err := st.SetOpen(ctx, t.Idx, open); err != nil {
		return err
	}
	state := "closed"
	if open {
		state = "open"
	}
	fmt.Printf("%s is now %s\n", t.Term, state)
	if open && t.Used() {
		fmt.Printf("note: it already has a card (%s) and is only picked again once that is cleared\n", t.FileName)
	}
	return nil
}

func runShowConfig(cfg config.AppConfig) error {
	if path, err := config.ConfigPath(); err == nil {
		fmt.Println("# file:", path)
	}
	for _, o := range config.ActiveOverrides() {
		fmt.Println("# env:", o)
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func runImport(ctx context.Context, cfg config.AppConfig, password string, args []string) error {
	path := args[0]
	policy := storage.PolicyAsk
	for _, a := range args[1:] {
		v, ok := strings.CutPrefix(a, "--policy=")
		if !ok {
			return fmt.Errorf("unknown flag %q", a)
		}
		p, err := storage.ParseMergePolicy(v)
		if err != nil {
			return err
		}
		policy = p
	}
	st, err := openStore(ctx, cfg, password)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	im := storage.NewImporter(st, policy, storage.NewPromptDecider(os.Stdin, os.Stdout))
	stats, err := im.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("inserted=%d updated=%d skipped=%d invalid=%d policy=%s\n", stats.Inserted, stats.Updated, stats.Skipped, stats.Invalid, im.Policy())
	return nil
}

func runExport(preset, outDir string, cards []string) error {
	written, err := export.BatchExport(export.CardsFromPaths(cards), export.BatchOptions{
		Preset: export.PresetName(preset),
		OutDir: outDir,
	})
	for _, w := range written {
		fmt.Println("Wrote", w)
	}
	return err
}
