/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"termcard/internal/domain"
)

// AppConfig is the user-editable configuration persisted as YAML.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type FontsConfig struct {
	Title   string `yaml:"title"`
	Caption string `yaml:"caption"`
	Body    string `yaml:"body"`
}

type SlotConfig struct {
	MaxWidth    float64      `yaml:"max_width"`
	MaxHeight   float64      `yaml:"max_height"`
	InitialSize int          `yaml:"initial_size"`
	AnchorY     float64      `yaml:"anchor_y"`
	Color       domain.Color `yaml:"color"`
}

type BoxConfig struct {
	PaddingX float64      `yaml:"padding_x"`
	PaddingY float64      `yaml:"padding_y"`
	Radius   float64      `yaml:"radius"`
	Fill     domain.Color `yaml:"fill"`
}

type LabelConfig struct {
	Size   float64      `yaml:"size"`
	X      float64      `yaml:"x"`
	Y      float64      `yaml:"y"`
	Color  domain.Color `yaml:"color"`
	Format string       `yaml:"format"`
}

type CardConfig struct {
	Background string      `yaml:"background"`
	Fonts      FontsConfig `yaml:"fonts"`
	Title      SlotConfig  `yaml:"title"`
	Caption    SlotConfig  `yaml:"caption"`
	Body       SlotConfig  `yaml:"body"`
	Box        BoxConfig   `yaml:"box"`
	Label      LabelConfig `yaml:"label"`
	MinSize    int         `yaml:"min_size"`
	SizeStep   int         `yaml:"size_step"`
	WrapMode   string      `yaml:"wrap_mode"` // "heuristic" | "measured"
}

type OutputConfig struct {
	Dir       string `yaml:"dir"`
	BatchSize int    `yaml:"batch_size"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "postgres"
	DSN    string `yaml:"dsn"`
	// SeedCSV is imported when the store is empty on first use.
	SeedCSV string `yaml:"seed_csv"`
	// The Postgres password is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
	// Log file rotation.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxBackups int `yaml:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Card          CardConfig    `yaml:"card"`
	Output        OutputConfig  `yaml:"output"`
	Store         StoreConfig   `yaml:"store"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	brown := domain.RGB(174, 151, 116)
	white := domain.RGB(255, 255, 255)
	return AppConfig{
		ConfigVersion: 1,
		Card: CardConfig{
			Background: filepath.Join("img", "background_card.png"),
			Fonts: FontsConfig{
				Title:   filepath.Join("fonts", "SB-Aggro-Bold.ttf"),
				Caption: filepath.Join("fonts", "SB-Aggro-Medium.ttf"),
				Body:    filepath.Join("fonts", "GmarketSansTTFBold.ttf"),
			},
			Title:    SlotConfig{MaxWidth: 750, MaxHeight: 200, InitialSize: 165, AnchorY: 260, Color: brown},
			Caption:  SlotConfig{MaxWidth: 780, MaxHeight: 100, InitialSize: 38, AnchorY: 480, Color: domain.RGB(180, 159, 126)},
			Body:     SlotConfig{MaxWidth: 700, MaxHeight: 200, InitialSize: 36, AnchorY: 630, Color: white},
			Box:      BoxConfig{PaddingX: 40, PaddingY: 30, Radius: 20, Fill: brown},
			Label:    LabelConfig{Size: 40, X: 358, Y: 130, Color: white, Format: "경제용어 %02d"},
			MinSize:  10,
			SizeStep: 2,
			WrapMode: "heuristic",
		},
		Output:  OutputConfig{Dir: "output", BatchSize: 3},
		Store:   StoreConfig{Driver: "sqlite", DSN: "sqlite.db", SeedCSV: "term.csv"},
		Logging: LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 5, MaxBackups: 3, MaxAgeDays: 30},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "TERMCARD_CONFIG"
	EnvBackground = "TERMCARD_BACKGROUND"
	EnvWrapMode   = "TERMCARD_WRAP_MODE"
	EnvOutputDir  = "TERMCARD_OUTPUT_DIR"
	EnvBatchSize  = "TERMCARD_BATCH_SIZE"
	EnvDBDriver   = "TERMCARD_DB_DRIVER"
	EnvDBDSN      = "TERMCARD_DB_DSN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "TERMCARD_LOG_LEVEL"
	EnvLogFormat = "TERMCARD_LOG_FORMAT"
	EnvLogSource = "TERMCARD_LOG_SOURCE"
	EnvLogFile   = "TERMCARD_LOG_FILE"
)

// localConfigName is picked up from the working directory when present.
const localConfigName = "termcard.yaml"

// ConfigPath returns the config file to use: $TERMCARD_CONFIG, then
// ./termcard.yaml if it exists, then the per-user config file.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	if _, err := os.Stat(localConfigName); err == nil {
		return localConfigName, nil
	}
	return userConfigPath()
}

func userConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "TermCard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "TermCard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "termcard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file (if present), applies defaults, and merges
// environment overrides. For the postgres driver the database password is
// read from the keychain and returned separately; a missing entry yields "".
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if err := loadFile(path, &cfg); err != nil {
		return cfg, "", err
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	if cfg.Store.Driver != "postgres" {
		return cfg, "", nil
	}
	pw, err := secrets.Get(keyringService, keyringDBPassword)
	if err != nil && !errors.Is(err, ErrSecretNotFound) {
		return cfg, "", fmt.Errorf("read db password: %w", err)
	}
	return cfg, pw, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fileCfg AppConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	mergeInto(cfg, &fileCfg)
	applyExplicitCard(&cfg.Card, &fileCfg.Card, yamlKey(&root, "card"))
	return nil
}

// Save writes the config YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders the config as YAML.
func (c AppConfig) Marshal() ([]byte, error) { return yaml.Marshal(c) }

// ErrConfigExists is returned by InitFile when a config file is already present.
var ErrConfigExists = errors.New("config file already exists")

// InitFile writes the defaults to ConfigPath unless a file is already there.
func InitFile() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, ErrConfigExists
	}
	return path, Save(Defaults())
}

// Validate rejects values the renderer or the store cannot work with.
func (c AppConfig) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unsupported %q", c.Store.Driver))
	}
	switch c.Card.WrapMode {
	case "heuristic", "measured":
	default:
		errs = append(errs, fmt.Errorf("card.wrap_mode: unsupported %q", c.Card.WrapMode))
	}
	if c.Card.MinSize <= 0 || c.Card.SizeStep <= 0 {
		errs = append(errs, errors.New("card.min_size and card.size_step must be positive"))
	}
	for name, s := range map[string]SlotConfig{"title": c.Card.Title, "caption": c.Card.Caption, "body": c.Card.Body} {
		if s.MaxWidth <= 0 || s.MaxHeight <= 0 || s.InitialSize <= 0 {
			errs = append(errs, fmt.Errorf("card.%s: region and initial_size must be positive", name))
		}
		if s.InitialSize <= c.Card.MinSize {
			errs = append(errs, fmt.Errorf("card.%s: initial_size %d must be above min_size %d", name, s.InitialSize, c.Card.MinSize))
		}
	}
	if c.Output.BatchSize <= 0 {
		errs = append(errs, errors.New("output.batch_size must be positive"))
	}
	return errors.Join(errs...)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	mergeCard(&dst.Card, &src.Card)
	if strings.TrimSpace(src.Output.Dir) != "" {
		dst.Output.Dir = strings.TrimSpace(src.Output.Dir)
	}
	if src.Output.BatchSize != 0 {
		dst.Output.BatchSize = src.Output.BatchSize
	}
	if strings.TrimSpace(src.Store.Driver) != "" {
		dst.Store.Driver = strings.ToLower(strings.TrimSpace(src.Store.Driver))
	}
	if strings.TrimSpace(src.Store.DSN) != "" {
		dst.Store.DSN = strings.TrimSpace(src.Store.DSN)
	}
	if strings.TrimSpace(src.Store.SeedCSV) != "" {
		dst.Store.SeedCSV = strings.TrimSpace(src.Store.SeedCSV)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups > 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
	if src.Logging.MaxAgeDays > 0 {
		dst.Logging.MaxAgeDays = src.Logging.MaxAgeDays
	}
}

func mergeCard(dst, src *CardConfig) {
	setStr(&dst.Background, src.Background)
	setStr(&dst.Fonts.Title, src.Fonts.Title)
	setStr(&dst.Fonts.Caption, src.Fonts.Caption)
	setStr(&dst.Fonts.Body, src.Fonts.Body)
	mergeSlot(&dst.Title, &src.Title)
	mergeSlot(&dst.Caption, &src.Caption)
	mergeSlot(&dst.Body, &src.Body)
	setNum(&dst.Box.PaddingX, src.Box.PaddingX)
	setNum(&dst.Box.PaddingY, src.Box.PaddingY)
	setNum(&dst.Box.Radius, src.Box.Radius)
	setColor(&dst.Box.Fill, src.Box.Fill)
	setNum(&dst.Label.Size, src.Label.Size)
	setNum(&dst.Label.X, src.Label.X)
	setNum(&dst.Label.Y, src.Label.Y)
	setColor(&dst.Label.Color, src.Label.Color)
	setStr(&dst.Label.Format, src.Label.Format)
	setNum(&dst.MinSize, src.MinSize)
	setNum(&dst.SizeStep, src.SizeStep)
	if v := strings.ToLower(strings.TrimSpace(src.WrapMode)); v != "" {
		dst.WrapMode = v
	}
}

func mergeSlot(dst, src *SlotConfig) {
	setNum(&dst.MaxWidth, src.MaxWidth)
	setNum(&dst.MaxHeight, src.MaxHeight)
	setNum(&dst.InitialSize, src.InitialSize)
	setNum(&dst.AnchorY, src.AnchorY)
	setColor(&dst.Color, src.Color)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setNum[T int | float64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

// setColor copies a configured color. Omitting alpha in YAML means opaque.
func setColor(dst *domain.Color, v domain.Color) {
	if v.IsZero() {
		return
	}
	if v.A == 0 {
		v.A = 255
	}
	*dst = v
}

// applyExplicitCard copies card values the file sets explicitly, including
// zero offsets, paddings and black or transparent colors that mergeCard
// treats as unset. card is the YAML mapping under "card", or nil.
func applyExplicitCard(dst, src *CardConfig, card *yaml.Node) {
	if card == nil {
		return
	}
	nums := []struct {
		path []string
		dst  *float64
		v    float64
	}{
		{[]string{"title", "anchor_y"}, &dst.Title.AnchorY, src.Title.AnchorY},
		{[]string{"caption", "anchor_y"}, &dst.Caption.AnchorY, src.Caption.AnchorY},
		{[]string{"body", "anchor_y"}, &dst.Body.AnchorY, src.Body.AnchorY},
		{[]string{"box", "padding_x"}, &dst.Box.PaddingX, src.Box.PaddingX},
		{[]string{"box", "padding_y"}, &dst.Box.PaddingY, src.Box.PaddingY},
		{[]string{"box", "radius"}, &dst.Box.Radius, src.Box.Radius},
		{[]string{"label", "x"}, &dst.Label.X, src.Label.X},
		{[]string{"label", "y"}, &dst.Label.Y, src.Label.Y},
	}
	for _, f := range nums {
		if n := yamlKey(card, f.path...); n != nil && n.ShortTag() != "!!null" {
			*f.dst = f.v
		}
	}
	colors := []struct {
		key string
		dst *domain.Color
		v   domain.Color
	}{
		{"title", &dst.Title.Color, src.Title.Color},
		{"caption", &dst.Caption.Color, src.Caption.Color},
		{"body", &dst.Body.Color, src.Body.Color},
		{"box", &dst.Box.Fill, src.Box.Fill},
		{"label", &dst.Label.Color, src.Label.Color},
	}
	for _, c := range colors {
		field := "color"
		if c.key == "box" {
			field = "fill"
		}
		n := yamlKey(card, c.key, field)
		if n == nil || n.Kind != yaml.MappingNode {
			continue
		}
		v := c.v
		if yamlKey(n, "a") == nil {
			v.A = 255
		}
		*c.dst = v
	}
}

// yamlKey walks mapping keys from n (a document or mapping node) and returns
// the value node at path, or nil when any key is missing.
func yamlKey(n *yaml.Node, path ...string) *yaml.Node {
	if n != nil && n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, k := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == k {
				next = n.Content[i+1]
			}
		}
		n = next
	}
	return n
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvBackground)); v != "" {
		cfg.Card.Background = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWrapMode)); v != "" {
		cfg.Card.WrapMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.Output.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBatchSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Output.BatchSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBDriver)); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDBDSN)); v != "" {
		cfg.Store.DSN = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range envKeys {
		if o.key == key && os.Getenv(o.env) != "" {
			return o.env, true
		}
	}
	return "", false
}

var envKeys = []struct{ key, env string }{
	{"card.background", EnvBackground},
	{"card.wrap_mode", EnvWrapMode},
	{"output.dir", EnvOutputDir},
	{"output.batch_size", EnvBatchSize},
	{"store.driver", EnvDBDriver},
	{"store.dsn", EnvDBDSN},
	{"logging.level", EnvLogLevel},
	{"logging.format", EnvLogFormat},
	{"logging.source", EnvLogSource},
	{"logging.file", EnvLogFile},
}

// ActiveOverrides lists "key <- ENV" for every setting currently taken from
// the environment, in a stable order.
func ActiveOverrides() []string {
	var out []string
	for _, o := range envKeys {
		if env, ok := EnvOverrideFor(o.key); ok {
			out = append(out, o.key+" <- "+env)
		}
	}
	return out
}

// DSNWithPassword injects password into a URL-style Postgres DSN that does
// not carry one already. Other DSNs are returned unchanged.
func DSNWithPassword(dsn, password string) string {
	if password == "" {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") || u.User == nil {
		return dsn
	}
	if _, set := u.User.Password(); set {
		return dsn
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String()
}
