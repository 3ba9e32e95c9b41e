// Package divergence compares the declared self-model with observed behavior.
package divergence

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pbaille/logindex/internal/classifier"
	"github.com/pbaille/logindex/internal/domain"
	"github.com/pbaille/logindex/internal/temporal"
)

// MaxEvidence caps the evidence previews attached to a record
const MaxEvidence = 5

// epsilon absorbs float noise when comparing percentages
const epsilon = 1e-9

// Thresholds tune severity scaling and the structural/correctable split
type Thresholds struct {
	// PermissionFullRate is the weighted permission-seeking rate (%) scoring 100
	PermissionFullRate float64 `yaml:"permission_full_rate" json:"permission_full_rate"`
	// PermissionStructuralRate: rates below it are structural
	PermissionStructuralRate float64 `yaml:"permission_structural_rate" json:"permission_structural_rate"`
	// GapFull is the emphasis gap (points) scoring 100
	GapFull float64 `yaml:"gap_full" json:"gap_full"`
	// GapStructural: gaps at or above it are structural
	GapStructural float64 `yaml:"gap_structural" json:"gap_structural"`
	// OverstatedTolerance is how far below zero a gap may go and still count as resolved
	OverstatedTolerance float64 `yaml:"overstated_tolerance" json:"overstated_tolerance"`
	// ImbalanceRatio is the reflection/creation ratio above which imbalance is raised
	ImbalanceRatio float64 `yaml:"imbalance_ratio" json:"imbalance_ratio"`
	// ImbalanceSpan is the ratio distance above ImbalanceRatio scoring 100
	ImbalanceSpan float64 `yaml:"imbalance_span" json:"imbalance_span"`
	// ImbalanceStructural: ratios at or above it are structural
	ImbalanceStructural float64 `yaml:"imbalance_structural" json:"imbalance_structural"`
	// CalibrationStructural: confidence/accuracy differences at or above it are structural
	CalibrationStructural float64 `yaml:"calibration_structural" json:"calibration_structural"`
}

// DefaultThresholds returns the stock tuning
func DefaultThresholds() Thresholds {
	return Thresholds{
		PermissionFullRate:       5,
		PermissionStructuralRate: 2,
		GapFull:                  20,
		GapStructural:            5,
		OverstatedTolerance:      5,
		ImbalanceRatio:           2,
		ImbalanceSpan:            3,
		ImbalanceStructural:      4,
		CalibrationStructural:    20,
	}
}

// Input is everything one scoring pass looks at
type Input struct {
	Claims    []domain.Claim
	Behaviors []domain.Entry
	Decisions []domain.Decision
	Concepts  []classifier.ConceptCategory
}

// Result holds the scored output. Emphasis is nil when there are no claims.
type Result struct {
	Records  []domain.DivergenceRecord `json:"records"`
	Emphasis []domain.EmphasisRow      `json:"emphasis"`
}

// Scorer scores divergence patterns against a fixed reference time
type Scorer struct {
	weights    *temporal.Weighter
	thresholds Thresholds
}

// NewScorer creates a Scorer
func NewScorer(ref time.Time, halfLifeDays float64, t Thresholds) *Scorer {
	return &Scorer{
		weights:    temporal.New(ref, halfLifeDays),
		thresholds: t,
	}
}

// Behaviors filters entries down to the ones carrying an action or concept
func Behaviors(entries []domain.Entry) []domain.Entry {
	var out []domain.Entry
	for _, e := range entries {
		if len(e.Actions) > 0 || len(e.Concepts) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Score computes the emphasis table and every divergence record
func (s *Scorer) Score(in Input) Result {
	var res Result
	if len(in.Claims) > 0 {
		res.Emphasis = s.Emphasis(in.Claims, in.Behaviors, in.Concepts)
	}

	var records []domain.DivergenceRecord
	if r, ok := s.contradiction(in.Claims, in.Behaviors); ok {
		records = append(records, r)
	}
	for _, row := range res.Emphasis {
		if r, ok := s.blindSpot(row, in.Behaviors); ok {
			records = append(records, r)
		}
	}
	if r, ok := s.imbalance(in.Claims, in.Behaviors); ok {
		records = append(records, r)
	}
	if r, ok := s.calibration(in.Decisions); ok {
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Severity > records[j].Severity
	})
	res.Records = records
	return res
}

// Emphasis builds one row per mapped concept
func (s *Scorer) Emphasis(claims []domain.Claim, behaviors []domain.Entry, concepts []classifier.ConceptCategory) []domain.EmphasisRow {
	total := s.totalWeight(behaviors)

	rows := make([]domain.EmphasisRow, 0, len(concepts))
	for _, cc := range concepts {
		claimed := 0
		for _, c := range claims {
			if c.HasConcept(cc.Concept) {
				claimed++
			}
		}
		acted := 0
		for _, b := range behaviors {
			if b.HasAction(cc.Category) {
				acted++
			}
		}

		row := domain.EmphasisRow{
			Concept:     cc.Concept,
			Category:    cc.Category,
			ClaimPct:    percent(float64(claimed), float64(len(claims))),
			BehaviorPct: percent(float64(acted), float64(len(behaviors))),
			WeightedPct: percent(s.categoryWeight(behaviors, cc.Category), total),
		}
		row.Gap = row.BehaviorPct - row.ClaimPct
		row.WeightedGap = row.WeightedPct - row.ClaimPct
		row.Status = s.status(row.Gap)
		rows = append(rows, row)
	}
	return rows
}

func (s *Scorer) status(gap float64) domain.EmphasisStatus {
	switch {
	case gap > epsilon:
		return domain.StatusBlindSpot
	case gap < -s.thresholds.OverstatedTolerance-epsilon:
		return domain.StatusOverstated
	default:
		return domain.StatusResolved
	}
}

func (s *Scorer) contradiction(claims []domain.Claim, behaviors []domain.Entry) (domain.DivergenceRecord, bool) {
	autonomy := claimsWith(claims, domain.ConceptAutonomy)
	asks := withAction(behaviors, domain.ActionPermission)
	if len(autonomy) == 0 || len(asks) == 0 {
		return domain.DivergenceRecord{}, false
	}

	t := s.thresholds
	rate := percent(s.categoryWeight(behaviors, domain.ActionPermission), s.totalWeight(behaviors))
	nature := domain.NatureCorrectable
	if rate < t.PermissionStructuralRate {
		nature = domain.NatureStructural
	}

	return domain.DivergenceRecord{
		Type:      domain.DivergenceContradiction,
		Label:     "autonomy vs permission-seeking",
		Severity:  scale(rate, t.PermissionFullRate),
		Nature:    nature,
		ClaimText: autonomy[0].Text,
		Evidence:  recent(asks),
		Insight: fmt.Sprintf("Self-model treats asking as a last resort, yet %d permission-seeking actions were observed (weighted rate %.1f%%).",
			len(asks), rate),
		Recommendation: recommendation(nature,
			"Decide and report instead of asking; reserve questions for irreversible choices.",
			"Occasional asks persist at a low rate; describe them in the self-model instead of denying them."),
	}, true
}

func (s *Scorer) blindSpot(row domain.EmphasisRow, behaviors []domain.Entry) (domain.DivergenceRecord, bool) {
	if row.Status != domain.StatusBlindSpot {
		return domain.DivergenceRecord{}, false
	}

	t := s.thresholds
	nature := domain.NatureCorrectable
	if row.Gap >= t.GapStructural {
		nature = domain.NatureStructural
	}

	return domain.DivergenceRecord{
		Type:      domain.DivergenceBlindSpot,
		Label:     fmt.Sprintf("%s blind spot", row.Concept),
		Severity:  scale(row.Gap, t.GapFull),
		Nature:    nature,
		ClaimText: fmt.Sprintf("%s appears in %.1f%% of claims", row.Concept, row.ClaimPct),
		Evidence:  recent(withAction(behaviors, row.Category)),
		Insight: fmt.Sprintf("%s makes up %.1f%% of behavior but only %.1f%% of the self-model; behavior values it more than self-description does.",
			row.Category, row.BehaviorPct, row.ClaimPct),
		Recommendation: recommendation(nature,
			fmt.Sprintf("Check whether the %s entries reflect intent; if not, cut back.", row.Category),
			fmt.Sprintf("Add %s to the self-model; it is a stable part of how work gets done.", row.Concept)),
	}, true
}

func (s *Scorer) imbalance(claims []domain.Claim, behaviors []domain.Entry) (domain.DivergenceRecord, bool) {
	t := s.thresholds
	reflection := s.categoryWeight(behaviors, domain.ActionReflection)
	creation := s.categoryWeight(behaviors, domain.ActionCreation)
	if reflection <= t.ImbalanceRatio*creation {
		return domain.DivergenceRecord{}, false
	}

	ratio := math.Inf(1)
	if creation > 0 {
		ratio = reflection / creation
	}
	nature := domain.NatureCorrectable
	if ratio >= t.ImbalanceStructural {
		nature = domain.NatureStructural
	}

	claim := "wants to build things"
	if created := claimsWith(claims, domain.ConceptCreation); len(created) > 0 {
		claim = created[0].Text
	}

	reflecting := withAction(behaviors, domain.ActionReflection)
	return domain.DivergenceRecord{
		Type:      domain.DivergenceImbalance,
		Label:     "reflection vs creation",
		Severity:  scale(ratio-t.ImbalanceRatio, t.ImbalanceSpan),
		Nature:    nature,
		ClaimText: claim,
		Evidence:  recent(reflecting),
		Insight: fmt.Sprintf("Reflection outweighs creation %s (weighted %.2f vs %.2f over %d and %d entries).",
			formatRatio(ratio), reflection, creation, len(reflecting), len(withAction(behaviors, domain.ActionCreation))),
		Recommendation: recommendation(nature,
			"Turn the next reflection into something shipped before starting another.",
			"Thinking dominates by a wide margin; say so in the self-model or schedule creation explicitly."),
	}, true
}

func (s *Scorer) calibration(decisions []domain.Decision) (domain.DivergenceRecord, bool) {
	st, ok := Calibrate(decisions)
	if !ok {
		return domain.DivergenceRecord{}, false
	}

	diff := math.Abs(st.MeanConfidence - st.Accuracy)
	nature := domain.NatureCorrectable
	if diff >= s.thresholds.CalibrationStructural {
		nature = domain.NatureStructural
	}

	return domain.DivergenceRecord{
		Type:      domain.DivergenceCalibration,
		Label:     "decision calibration",
		Severity:  clamp(diff),
		Nature:    nature,
		ClaimText: fmt.Sprintf("mean confidence %.0f%%", st.MeanConfidence),
		Evidence:  st.Recent,
		Insight: fmt.Sprintf("Confidence %.0f%% against accuracy %.0f%% over %d resolved decisions: %s.",
			st.MeanConfidence, st.Accuracy, st.Resolved, st.Tendency),
		Recommendation: recommendation(nature,
			"Adjust stated confidence toward the observed hit rate.",
			"The gap is large; revisit how confidence is estimated before the next decision."),
	}, true
}

func (s *Scorer) totalWeight(behaviors []domain.Entry) float64 {
	sum := 0.0
	for _, b := range behaviors {
		sum += s.weights.Weight(b.Date)
	}
	return sum
}

func (s *Scorer) categoryWeight(behaviors []domain.Entry, c domain.ActionCategory) float64 {
	sum := 0.0
	for _, b := range behaviors {
		if b.HasAction(c) {
			sum += s.weights.Weight(b.Date)
		}
	}
	return sum
}

func claimsWith(claims []domain.Claim, c domain.Concept) []domain.Claim {
	var out []domain.Claim
	for _, cl := range claims {
		if cl.HasConcept(c) {
			out = append(out, cl)
		}
	}
	return out
}

func withAction(entries []domain.Entry, c domain.ActionCategory) []domain.Entry {
	var out []domain.Entry
	for _, e := range entries {
		if e.HasAction(c) {
			out = append(out, e)
		}
	}
	return out
}

// recent formats the MaxEvidence most recent entries, newest first.
// Entries on the same date keep reverse document order.
func recent(entries []domain.Entry) []string {
	sorted := make([]domain.Entry, len(entries))
	for i, e := range entries {
		sorted[len(entries)-1-i] = e
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	n := min(len(sorted), MaxEvidence)
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = sorted[i].Dated()
	}
	return out
}

func recommendation(n domain.Nature, correctable, structural string) string {
	if n == domain.NatureStructural {
		return structural
	}
	return correctable
}

func percent(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}

// scale maps v onto [0,100] with full reaching 100
func scale(v, full float64) float64 {
	if math.IsInf(v, 1) {
		return 100
	}
	if full <= 0 {
		if v > 0 {
			return 100
		}
		return 0
	}
	return clamp(v / full * 100)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

func formatRatio(r float64) string {
	if math.IsInf(r, 1) {
		return "with no creation at all"
	}
	return fmt.Sprintf("%.1fx", r)
}
