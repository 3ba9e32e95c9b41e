// Package engine runs one full batch build over the configured sources.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/logindex/internal/classifier"
	"github.com/pbaille/logindex/internal/config"
	"github.com/pbaille/logindex/internal/corpus"
	"github.com/pbaille/logindex/internal/divergence"
	"github.com/pbaille/logindex/internal/domain"
	"github.com/pbaille/logindex/internal/index"
	"github.com/pbaille/logindex/internal/logging"
)

// Report is everything one run produces. Optional sections are nil when
// their source corpus is missing.
type Report struct {
	RunID     string      `json:"run_id"`
	Generated time.Time   `json:"generated"`
	Index     index.Index `json:"index"`

	Claims     []domain.Claim    `json:"claims"`
	Behaviors  int               `json:"behaviors"`
	Divergence divergence.Result `json:"divergence"`

	Decisions   []domain.Decision            `json:"decisions"`
	Calibration *divergence.CalibrationStats `json:"calibration,omitempty"`
	Bands       *divergence.BandReport       `json:"bands,omitempty"`
	Categories  []divergence.CategoryStat    `json:"categories,omitempty"`
	Pending     []domain.Decision            `json:"pending,omitempty"`
}

// Run reads every source named by cfg and scores it against now.
// It returns corpus.ErrNoSources when the logs directory has no matching files.
func Run(cfg *config.Config, now time.Time, logger *zap.Logger) (*Report, error) {
	logger, runID := logging.WithRun(logger)
	c := classifier.New()

	logMatcher, err := corpus.NewMatcher(cfg.LogGlob, cfg.LogExcludes()...)
	if err != nil {
		return nil, fmt.Errorf("compile log patterns: %w", err)
	}
	logs, err := corpus.LoadLogs(cfg.LogsPath(), logMatcher)
	if err != nil {
		return nil, err
	}

	opts := index.DefaultOptions()
	opts.DisplayLimit = cfg.DisplayLimit
	opts.SummaryBullets = cfg.SummaryBullets
	ix := index.NewBuilder(c, opts, logger).Build(logs)
	if ix.Sessions == 0 {
		logger.Warn("sources present but contain no sessions", zap.Int("files", ix.Files))
	}

	rawClaims, err := corpus.LoadClaims(cfg.ClaimsPath(), cfg.SkipClaimSections)
	if err != nil {
		return nil, err
	}
	claims := make([]domain.Claim, 0, len(rawClaims))
	for _, rc := range rawClaims {
		claims = append(claims, domain.Claim{Section: rc.Section, Text: rc.Text, Concepts: c.Concepts(rc.Text)})
	}
	if len(claims) == 0 {
		logger.Info("no claims found, emphasis omitted", zap.String("file", cfg.ClaimsPath()))
	}

	decisions, err := loadDecisions(cfg, c)
	if err != nil {
		return nil, err
	}

	behaviors := divergence.Behaviors(ix.Entries)
	scorer := divergence.NewScorer(now, cfg.HalfLifeDays, cfg.Thresholds)
	res := scorer.Score(divergence.Input{
		Claims:    claims,
		Behaviors: behaviors,
		Decisions: decisions,
		Concepts:  classifier.ConceptCategories,
	})

	r := &Report{
		RunID:      runID,
		Generated:  now,
		Index:      ix,
		Claims:     claims,
		Behaviors:  len(behaviors),
		Divergence: res,
		Decisions:  decisions,
	}
	if len(decisions) > 0 {
		if st, ok := divergence.Calibrate(decisions); ok {
			r.Calibration = &st
		}
		bands := divergence.Bands(decisions)
		r.Bands = &bands
		r.Categories = divergence.Categories(decisions)
		r.Pending = divergence.Pending(decisions)
	}

	logger.Info("run complete",
		zap.Int("files", ix.Files),
		zap.Int("sessions", ix.Sessions),
		zap.Int("claims", len(claims)),
		zap.Int("behaviors", len(behaviors)),
		zap.Int("decisions", len(decisions)),
		zap.Int("divergences", len(res.Records)))

	return r, nil
}

func loadDecisions(cfg *config.Config, c *classifier.Classifier) ([]domain.Decision, error) {
	m, err := corpus.NewMatcher(cfg.DecisionsGlob)
	if err != nil {
		return nil, fmt.Errorf("compile decision patterns: %w", err)
	}
	raw, err := corpus.LoadDecisions(cfg.DecisionsPath(), m)
	if err != nil || len(raw) == 0 {
		return nil, err
	}

	out := make([]domain.Decision, 0, len(raw))
	for _, d := range raw {
		out = append(out, domain.Decision{
			ID:            d.ID,
			Date:          d.Date,
			Summary:       d.Summary,
			Confidence:    d.Confidence,
			HasConfidence: d.HasConfidence,
			Correctness:   d.Correctness,
			Outcome:       c.Outcome(d.Correctness),
			Category:      c.DecisionCategory(d.Summary),
		})
	}
	return out, nil
}

// WriteIndex renders the index document and overwrites the configured output file
func WriteIndex(cfg *config.Config, r *Report) error {
	path := cfg.OutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(index.Render(r.Index, r.Generated)), 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
