package divergence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/logindex/internal/classifier"
	"github.com/pbaille/logindex/internal/domain"
)

var ref = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const today = "2026-03-01"

func newScorer() *Scorer {
	return NewScorer(ref, 21, DefaultThresholds())
}

func claims(n int, tagged int, c domain.Concept) []domain.Claim {
	out := make([]domain.Claim, n)
	for i := range out {
		out[i] = domain.Claim{Section: "values", Text: fmt.Sprintf("claim %d", i)}
		if i < tagged {
			out[i].Concepts = []domain.Concept{c}
		}
	}
	return out
}

func behaviors(date string, n int, tagged int, cat domain.ActionCategory) []domain.Entry {
	out := make([]domain.Entry, n)
	for i := range out {
		out[i] = domain.Entry{Date: date, Text: fmt.Sprintf("behavior %d", i), Actions: []domain.ActionCategory{domain.ActionBusiness}}
		if i < tagged {
			out[i].Actions = []domain.ActionCategory{cat}
		}
	}
	return out
}

var connectionOnly = []classifier.ConceptCategory{{Concept: domain.ConceptConnection, Category: domain.ActionSharing}}

func TestEmphasis_ResolvedWhenShareMatches(t *testing.T) {
	rows := newScorer().Emphasis(
		claims(10, 1, domain.ConceptConnection),
		behaviors(today, 30, 3, domain.ActionSharing),
		connectionOnly,
	)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.InDelta(t, 10, row.ClaimPct, 1e-9)
	assert.InDelta(t, 10, row.BehaviorPct, 1e-9)
	assert.InDelta(t, 0, row.Gap, 1e-9)
	assert.Equal(t, domain.StatusResolved, row.Status)
}

func TestEmphasis_Status(t *testing.T) {
	s := newScorer()

	tests := []struct {
		name    string
		claimed int
		acted   int
		want    domain.EmphasisStatus
	}{
		{"behavior ahead", 1, 6, domain.StatusBlindSpot},
		{"slightly behind", 2, 3, domain.StatusResolved},
		{"far behind", 5, 1, domain.StatusOverstated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := s.Emphasis(
				claims(10, tt.claimed, domain.ConceptConnection),
				behaviors(today, 20, tt.acted, domain.ActionSharing),
				connectionOnly,
			)
			assert.Equal(t, tt.want, rows[0].Status)
		})
	}
}

func TestEmphasis_Weighted(t *testing.T) {
	bs := []domain.Entry{
		{Date: today, Actions: []domain.ActionCategory{domain.ActionSharing}},
		{Date: "2026-02-08", Actions: []domain.ActionCategory{domain.ActionCreation}},
	}
	rows := newScorer().Emphasis(claims(4, 1, domain.ConceptConnection), bs, connectionOnly)

	assert.InDelta(t, 50, rows[0].BehaviorPct, 1e-9)
	assert.InDelta(t, 100.0/1.5, rows[0].WeightedPct, 1e-9)
	assert.InDelta(t, 100.0/1.5-25, rows[0].WeightedGap, 1e-9)
}

func TestScore_NoClaimsOmitsEmphasis(t *testing.T) {
	res := newScorer().Score(Input{
		Behaviors: behaviors(today, 10, 2, domain.ActionSharing),
		Concepts:  classifier.ConceptCategories,
	})
	assert.Nil(t, res.Emphasis)
	assert.Empty(t, res.Records)
}

func TestContradiction(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		asks     int
		severity float64
		nature   domain.Nature
	}{
		{"five percent saturates", 20, 1, 100, domain.NatureCorrectable},
		{"ten percent clamps", 10, 1, 100, domain.NatureCorrectable},
		{"one percent is structural", 100, 1, 20, domain.NatureStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newScorer().Score(Input{
				Claims:    claims(3, 1, domain.ConceptAutonomy),
				Behaviors: behaviors(today, tt.total, tt.asks, domain.ActionPermission),
			})

			require.Len(t, res.Records, 1)
			r := res.Records[0]
			assert.Equal(t, domain.DivergenceContradiction, r.Type)
			assert.InDelta(t, tt.severity, r.Severity, 1e-9)
			assert.Equal(t, tt.nature, r.Nature)
			assert.Equal(t, "claim 0", r.ClaimText)
			assert.Len(t, r.Evidence, tt.asks)
		})
	}
}

func TestContradiction_NeedsBothSides(t *testing.T) {
	s := newScorer()
	assert.Empty(t, s.Score(Input{
		Claims:    claims(3, 0, domain.ConceptAutonomy),
		Behaviors: behaviors(today, 10, 2, domain.ActionPermission),
	}).Records)
	assert.Empty(t, s.Score(Input{
		Claims:    claims(3, 3, domain.ConceptAutonomy),
		Behaviors: behaviors(today, 10, 0, domain.ActionPermission),
	}).Records)
}

func TestBlindSpot(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		acted    int
		severity float64
		nature   domain.Nature
	}{
		{"ten point gap", 10, 1, 50, domain.NatureStructural},
		{"two point gap", 50, 1, 10, domain.NatureCorrectable},
		{"large gap clamps", 2, 1, 100, domain.NatureStructural},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newScorer().Score(Input{
				Claims:    claims(10, 0, domain.ConceptConnection),
				Behaviors: behaviors(today, tt.total, tt.acted, domain.ActionSharing),
				Concepts:  connectionOnly,
			})

			require.Len(t, res.Records, 1)
			r := res.Records[0]
			assert.Equal(t, domain.DivergenceBlindSpot, r.Type)
			assert.Equal(t, "connection blind spot", r.Label)
			assert.InDelta(t, tt.severity, r.Severity, 1e-9)
			assert.Equal(t, tt.nature, r.Nature)
		})
	}
}

func TestImbalance(t *testing.T) {
	mixed := func(reflect, create int) []domain.Entry {
		var out []domain.Entry
		out = append(out, behaviors(today, reflect, reflect, domain.ActionReflection)...)
		out = append(out, behaviors(today, create, create, domain.ActionCreation)...)
		return out
	}

	tests := []struct {
		name     string
		reflect  int
		create   int
		raised   bool
		severity float64
		nature   domain.Nature
	}{
		{"ratio five", 5, 1, true, 100, domain.NatureStructural},
		{"ratio three", 3, 1, true, 100.0 / 3, domain.NatureCorrectable},
		{"ratio two is not raised", 2, 1, false, 0, ""},
		{"no creation", 1, 0, true, 100, domain.NatureStructural},
		{"nothing at all", 0, 0, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newScorer().Score(Input{Behaviors: mixed(tt.reflect, tt.create)})
			if !tt.raised {
				assert.Empty(t, res.Records)
				return
			}
			require.Len(t, res.Records, 1)
			r := res.Records[0]
			assert.Equal(t, domain.DivergenceImbalance, r.Type)
			assert.InDelta(t, tt.severity, r.Severity, 1e-9)
			assert.Equal(t, tt.nature, r.Nature)
		})
	}
}

func TestCalibrationRecord(t *testing.T) {
	decisions := []domain.Decision{
		{ID: "20260210-1", Date: "2026-02-10", Confidence: 80, HasConfidence: true, Outcome: domain.OutcomeCorrect},
		{ID: "20260211-1", Date: "2026-02-11", Confidence: 80, HasConfidence: true, Outcome: domain.OutcomeIncorrect},
		{ID: "20260212-1", Date: "2026-02-12", Confidence: 60, HasConfidence: true, Outcome: domain.OutcomePartial},
		{ID: "20260213-1", Date: "2026-02-13", Confidence: 90, HasConfidence: true, Outcome: domain.OutcomeUnresolved},
		{ID: "20260214-1", Date: "2026-02-14", Outcome: domain.OutcomeCorrect},
	}

	st, ok := Calibrate(decisions)
	require.True(t, ok)
	assert.Equal(t, 3, st.Resolved)
	assert.InDelta(t, 220.0/3, st.MeanConfidence, 1e-9)
	assert.InDelta(t, 50, st.Accuracy, 1e-9)
	assert.Equal(t, Overconfident, st.Tendency)
	require.Len(t, st.Recent, 3)
	assert.Contains(t, st.Recent[0], "20260212-1")

	res := newScorer().Score(Input{Decisions: decisions})
	require.Len(t, res.Records, 1)
	r := res.Records[0]
	assert.Equal(t, domain.DivergenceCalibration, r.Type)
	assert.InDelta(t, 220.0/3-50, r.Severity, 1e-9)
	assert.Equal(t, domain.NatureStructural, r.Nature)
}

func TestCalibrate_NothingScorable(t *testing.T) {
	_, ok := Calibrate([]domain.Decision{{ID: "x", Outcome: domain.OutcomeCorrect}})
	assert.False(t, ok)
	assert.Empty(t, newScorer().Score(Input{}).Records)
}

func TestScore_SortedAndBounded(t *testing.T) {
	in := Input{
		Claims:   append(claims(5, 1, domain.ConceptAutonomy), claims(5, 0, domain.ConceptConnection)...),
		Concepts: classifier.ConceptCategories,
		Decisions: []domain.Decision{
			{ID: "a", Date: "2026-02-01", Confidence: 90, HasConfidence: true, Outcome: domain.OutcomeIncorrect},
		},
	}
	in.Behaviors = append(in.Behaviors, behaviors("2026-01-01", 40, 1, domain.ActionPermission)...)
	in.Behaviors = append(in.Behaviors, behaviors("2026-02-15", 10, 3, domain.ActionSharing)...)
	in.Behaviors = append(in.Behaviors, behaviors(today, 9, 9, domain.ActionReflection)...)
	in.Behaviors = append(in.Behaviors, behaviors("bad-date", 2, 2, domain.ActionCreation)...)

	res := newScorer().Score(in)
	require.NotEmpty(t, res.Records)

	types := map[domain.DivergenceType]bool{}
	for i, r := range res.Records {
		types[r.Type] = true
		assert.GreaterOrEqual(t, r.Severity, 0.0)
		assert.LessOrEqual(t, r.Severity, 100.0)
		assert.LessOrEqual(t, len(r.Evidence), MaxEvidence)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Records[i-1].Severity, r.Severity)
		}
	}
	for _, want := range []domain.DivergenceType{
		domain.DivergenceContradiction, domain.DivergenceBlindSpot, domain.DivergenceImbalance, domain.DivergenceCalibration,
	} {
		assert.True(t, types[want], "missing %s", want)
	}
}

func TestEvidence_MostRecentFirst(t *testing.T) {
	var bs []domain.Entry
	for day := 1; day <= 7; day++ {
		bs = append(bs, domain.Entry{
			Date:    fmt.Sprintf("2026-02-%02d", day),
			Text:    fmt.Sprintf("asked %d", day),
			Actions: []domain.ActionCategory{domain.ActionPermission},
		})
	}

	res := newScorer().Score(Input{Claims: claims(1, 1, domain.ConceptAutonomy), Behaviors: bs})
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{
		"[2026-02-07] asked 7",
		"[2026-02-06] asked 6",
		"[2026-02-05] asked 5",
		"[2026-02-04] asked 4",
		"[2026-02-03] asked 3",
	}, res.Records[0].Evidence)
}

func TestBehaviors(t *testing.T) {
	entries := []domain.Entry{
		{Text: "a", Actions: []domain.ActionCategory{domain.ActionCreation}},
		{Text: "b"},
		{Text: "c", Concepts: []domain.Concept{domain.ConceptCuriosity}},
	}
	got := Behaviors(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "c", got[1].Text)
}

func TestBandFloor(t *testing.T) {
	for conf, want := range map[int]int{0: 50, 49: 50, 50: 50, 59: 50, 60: 60, 89: 80, 90: 90, 100: 90} {
		assert.Equal(t, want, BandFloor(conf), "confidence %d", conf)
	}
}

func TestBands(t *testing.T) {
	decisions := []domain.Decision{
		{Confidence: 45, HasConfidence: true, Outcome: domain.OutcomeCorrect},
		{Confidence: 55, HasConfidence: true, Outcome: domain.OutcomeCorrect},
		{Confidence: 72, HasConfidence: true, Outcome: domain.OutcomeIncorrect},
		{Confidence: 95, HasConfidence: true, Outcome: domain.OutcomePartial},
		{Confidence: 100, HasConfidence: true, Outcome: domain.OutcomeCorrect},
		{Confidence: 70, HasConfidence: true, Outcome: domain.OutcomeUnresolved},
	}

	rep := Bands(decisions)
	assert.Equal(t, []domain.CalibrationBand{
		{Floor: 50, Total: 2, Correct: 2, Accuracy: 100},
		{Floor: 70, Total: 1, Incorrect: 1, Accuracy: 0},
		{Floor: 90, Total: 2, Correct: 1, Partial: 1, Accuracy: 75},
	}, rep.Bands)
	assert.InDelta(t, 41, rep.MeanAbsGap, 1e-9)
	assert.Equal(t, Overconfident, rep.Tendency)

	empty := Bands(nil)
	assert.Empty(t, empty.Bands)
	assert.Equal(t, Balanced, empty.Tendency)
}

func TestCategoriesAndPending(t *testing.T) {
	decisions := []domain.Decision{
		{ID: "1", Category: "technical", Outcome: domain.OutcomeCorrect},
		{ID: "2", Category: "selection", Outcome: domain.OutcomeUnresolved},
		{ID: "3", Category: "technical", Outcome: domain.OutcomePartial},
		{ID: "4", Category: "technical", Outcome: domain.OutcomeUnresolved},
	}

	assert.Equal(t, []CategoryStat{
		{Category: "technical", Total: 3, Correct: 1, Partial: 1, Unresolved: 1, Accuracy: 75},
		{Category: "selection", Total: 1, Unresolved: 1},
	}, Categories(decisions))

	pending := Pending(decisions)
	require.Len(t, pending, 2)
	assert.Equal(t, "2", pending[0].ID)
	assert.Equal(t, "4", pending[1].ID)
}
