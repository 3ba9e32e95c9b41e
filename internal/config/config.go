// Package config loads the logindex.yaml settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/logindex/internal/divergence"
	"github.com/pbaille/logindex/internal/index"
	"github.com/pbaille/logindex/internal/temporal"
)

// DefaultFile is the config file looked up in the root directory
const DefaultFile = "logindex.yaml"

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config holds source locations and scoring parameters.
// Relative paths are resolved against Root.
type Config struct {
	Root string `yaml:"-"`

	LogsDir           string   `yaml:"logs_dir"`
	LogGlob           string   `yaml:"log_glob"`
	Exclude           []string `yaml:"exclude"`
	ClaimsFile        string   `yaml:"claims_file"`
	SkipClaimSections []string `yaml:"skip_claim_sections"`
	DecisionsDir      string   `yaml:"decisions_dir"`
	DecisionsGlob     string   `yaml:"decisions_glob"`
	OutputFile        string   `yaml:"output_file"`

	HalfLifeDays   float64               `yaml:"half_life_days"`
	DisplayLimit   int                   `yaml:"display_limit"`
	SummaryBullets int                   `yaml:"summary_bullets"`
	Thresholds     divergence.Thresholds `yaml:"thresholds"`
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Root:              root,
		LogsDir:           "logs",
		LogGlob:           "*.md",
		ClaimsFile:        "will.md",
		SkipClaimSections: []string{"Learnings", "気づき・学び"},
		DecisionsDir:      "decisions",
		DecisionsGlob:     "????-??.md",
		OutputFile:        filepath.Join("logs", "INDEX.md"),
		HalfLifeDays:      temporal.DefaultHalfLifeDays,
		DisplayLimit:      index.DefaultDisplayLimit,
		SummaryBullets:    index.DefaultSummaryBullets,
		Thresholds:        divergence.DefaultThresholds(),
	}
}

// Load reads path over the defaults. An empty path means DefaultFile under
// root; a missing default file is not an error.
func Load(root, path string) (*Config, error) {
	cfg := Default(root)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, DefaultFile)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		return cfg, nil
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks limits and thresholds
func (c *Config) Validate() error {
	if c.LogGlob == "" {
		return fmt.Errorf("%w: log_glob is empty", ErrInvalid)
	}
	if c.DisplayLimit <= 0 {
		return fmt.Errorf("%w: display_limit must be positive, got %d", ErrInvalid, c.DisplayLimit)
	}
	if c.SummaryBullets <= 0 {
		return fmt.Errorf("%w: summary_bullets must be positive, got %d", ErrInvalid, c.SummaryBullets)
	}

	t := c.Thresholds
	for name, v := range map[string]float64{
		"permission_full_rate":       t.PermissionFullRate,
		"permission_structural_rate": t.PermissionStructuralRate,
		"gap_full":                   t.GapFull,
		"gap_structural":             t.GapStructural,
		"overstated_tolerance":       t.OverstatedTolerance,
		"imbalance_ratio":            t.ImbalanceRatio,
		"imbalance_span":             t.ImbalanceSpan,
		"imbalance_structural":       t.ImbalanceStructural,
		"calibration_structural":     t.CalibrationStructural,
	} {
		if v < 0 {
			return fmt.Errorf("%w: thresholds.%s must not be negative, got %g", ErrInvalid, name, v)
		}
	}
	return nil
}

// Path resolves p against Root
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// LogsPath is the resolved logs directory
func (c *Config) LogsPath() string { return c.Path(c.LogsDir) }

// ClaimsPath is the resolved claims file
func (c *Config) ClaimsPath() string { return c.Path(c.ClaimsFile) }

// DecisionsPath is the resolved decisions directory
func (c *Config) DecisionsPath() string { return c.Path(c.DecisionsDir) }

// OutputPath is the resolved index document
func (c *Config) OutputPath() string { return c.Path(c.OutputFile) }

// LogExcludes returns the exclude patterns plus the output file when it lives
// in the logs directory
func (c *Config) LogExcludes() []string {
	ex := append([]string(nil), c.Exclude...)
	out := c.OutputPath()
	if out != "" && filepath.Clean(filepath.Dir(out)) == filepath.Clean(c.LogsPath()) {
		ex = append(ex, filepath.Base(out))
	}
	return ex
}
