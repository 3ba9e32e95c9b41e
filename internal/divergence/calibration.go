package divergence

import (
	"fmt"
	"math"
	"sort"

	"github.com/pbaille/logindex/internal/domain"
)

// Tendency summarizes which way confidence misses
type Tendency string

const (
	Overconfident  Tendency = "overconfident"
	Underconfident Tendency = "underconfident"
	Balanced       Tendency = "balanced"
)

// tendencyMargin is how far mean confidence and accuracy may drift before a
// tendency is called
const tendencyMargin = 10

const (
	bandMin   = 50
	bandMax   = 90
	bandWidth = 10
)

// CalibrationStats is the overall confidence vs accuracy comparison
type CalibrationStats struct {
	Resolved       int      `json:"resolved"`
	MeanConfidence float64  `json:"mean_confidence"`
	Accuracy       float64  `json:"accuracy"`
	Tendency       Tendency `json:"tendency"`
	Recent         []string `json:"recent"`
}

// Scorable reports whether a decision has a confidence and a resolved outcome
func Scorable(d domain.Decision) bool {
	return d.HasConfidence && d.Outcome != domain.OutcomeUnresolved && d.Outcome != ""
}

func credit(o domain.Outcome) float64 {
	switch o {
	case domain.OutcomeCorrect:
		return 1
	case domain.OutcomePartial:
		return 0.5
	}
	return 0
}

// Calibrate compares mean confidence with accuracy, counting partial outcomes
// as half. It reports false when no decision is scorable.
func Calibrate(decisions []domain.Decision) (CalibrationStats, bool) {
	var (
		scored  []domain.Decision
		confSum float64
		hits    float64
	)
	for _, d := range decisions {
		if !Scorable(d) {
			continue
		}
		scored = append(scored, d)
		confSum += float64(d.Confidence)
		hits += credit(d.Outcome)
	}
	if len(scored) == 0 {
		return CalibrationStats{}, false
	}

	n := float64(len(scored))
	st := CalibrationStats{
		Resolved:       len(scored),
		MeanConfidence: confSum / n,
		Accuracy:       hits / n * 100,
	}
	switch {
	case st.MeanConfidence > st.Accuracy+tendencyMargin:
		st.Tendency = Overconfident
	case st.Accuracy > st.MeanConfidence+tendencyMargin:
		st.Tendency = Underconfident
	default:
		st.Tendency = Balanced
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Date > scored[j].Date })
	for _, d := range scored[:min(len(scored), MaxEvidence)] {
		st.Recent = append(st.Recent, fmt.Sprintf("[%s] %s: %s (%d%%, %s)", d.Date, d.ID, d.Summary, d.Confidence, d.Outcome))
	}
	return st, true
}

// BandFloor places a confidence in its 10-point band, clamped to 50..90
func BandFloor(confidence int) int {
	f := confidence / bandWidth * bandWidth
	return max(bandMin, min(f, bandMax))
}

// BandReport is the per-band breakdown of resolved decisions
type BandReport struct {
	Bands []domain.CalibrationBand `json:"bands"`
	// MeanAbsGap is the decision-weighted mean |accuracy - band center|
	MeanAbsGap float64  `json:"mean_abs_gap"`
	Tendency   Tendency `json:"tendency"`
}

// Bands groups scorable decisions into confidence bands, lowest first
func Bands(decisions []domain.Decision) BandReport {
	byFloor := map[int]*domain.CalibrationBand{}
	for _, d := range decisions {
		if !Scorable(d) {
			continue
		}
		f := BandFloor(d.Confidence)
		b, ok := byFloor[f]
		if !ok {
			b = &domain.CalibrationBand{Floor: f}
			byFloor[f] = b
		}
		b.Total++
		switch d.Outcome {
		case domain.OutcomeCorrect:
			b.Correct++
		case domain.OutcomePartial:
			b.Partial++
		case domain.OutcomeIncorrect:
			b.Incorrect++
		}
	}

	rep := BandReport{Tendency: Balanced}
	for _, b := range byFloor {
		b.Accuracy = (float64(b.Correct) + 0.5*float64(b.Partial)) / float64(b.Total) * 100
		rep.Bands = append(rep.Bands, *b)
	}
	sort.Slice(rep.Bands, func(i, j int) bool { return rep.Bands[i].Floor < rep.Bands[j].Floor })

	var gapSum float64
	var judged, over, under int
	for _, b := range rep.Bands {
		center := float64(b.Floor + bandWidth/2)
		gapSum += math.Abs(b.Accuracy-center) * float64(b.Total)
		judged += b.Total
		switch {
		case b.Accuracy < center:
			over++
		case b.Accuracy > center:
			under++
		}
	}
	if judged > 0 {
		rep.MeanAbsGap = gapSum / float64(judged)
	}
	switch {
	case over > under:
		rep.Tendency = Overconfident
	case under > over:
		rep.Tendency = Underconfident
	}
	return rep
}

// CategoryStat is the outcome breakdown of one decision category
type CategoryStat struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Partial    int     `json:"partial"`
	Incorrect  int     `json:"incorrect"`
	Unresolved int     `json:"unresolved"`
	Accuracy   float64 `json:"accuracy"`
}

// Categories breaks decisions down by category in order of first appearance.
// Accuracy covers resolved decisions only.
func Categories(decisions []domain.Decision) []CategoryStat {
	var out []CategoryStat
	index := map[string]int{}
	for _, d := range decisions {
		i, ok := index[d.Category]
		if !ok {
			i = len(out)
			index[d.Category] = i
			out = append(out, CategoryStat{Category: d.Category})
		}
		st := &out[i]
		st.Total++
		switch d.Outcome {
		case domain.OutcomeCorrect:
			st.Correct++
		case domain.OutcomePartial:
			st.Partial++
		case domain.OutcomeIncorrect:
			st.Incorrect++
		default:
			st.Unresolved++
		}
	}

	for i := range out {
		st := &out[i]
		if resolved := st.Correct + st.Partial + st.Incorrect; resolved > 0 {
			st.Accuracy = (float64(st.Correct) + 0.5*float64(st.Partial)) / float64(resolved) * 100
		}
	}
	return out
}

// Pending returns decisions whose outcome is not known yet
func Pending(decisions []domain.Decision) []domain.Decision {
	var out []domain.Decision
	for _, d := range decisions {
		if d.Outcome == domain.OutcomeUnresolved || d.Outcome == "" {
			out = append(out, d)
		}
	}
	return out
}
