package domain

// Topic is a subject-matter bucket for a bullet
type Topic string

const (
	TopicProduct    Topic = "product"
	TopicBusiness   Topic = "business"
	TopicSite       Topic = "site-ops"
	TopicPhilosophy Topic = "philosophy"
	TopicInfra      Topic = "infrastructure"
	TopicPractical  Topic = "practical"
	TopicOther      Topic = "other"
)

// ActionCategory is the kind of behavior a bullet describes
type ActionCategory string

const (
	ActionAutonomous ActionCategory = "autonomous-decision"
	ActionPermission ActionCategory = "permission-seeking"
	ActionCreation   ActionCategory = "creation"
	ActionSharing    ActionCategory = "sharing"
	ActionFailure    ActionCategory = "failure-correction"
	ActionReflection ActionCategory = "reflection"
	ActionDelegation ActionCategory = "delegation"
	ActionBusiness   ActionCategory = "business"
)

// Concept is a self-model theme shared by claims and behaviors
type Concept string

const (
	ConceptCandor     Concept = "candor"
	ConceptBinary     Concept = "binary-thinking"
	ConceptSystems    Concept = "systems"
	ConceptAutonomy   Concept = "autonomy"
	ConceptSimplicity Concept = "simplicity"
	ConceptEquality   Concept = "equality"
	ConceptConnection Concept = "connection"
	ConceptSincerity  Concept = "sincerity"
	ConceptPhilosophy Concept = "philosophy"
	ConceptCuriosity  Concept = "curiosity"
	ConceptCreation   Concept = "creation"
)

// Session is one "## Session N" block of a diary file
type Session struct {
	Number      int      `json:"number"`
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	Subsections []string `json:"subsections,omitempty"`
}

// Log is one parsed diary file
type Log struct {
	Date      string    `json:"date"`
	Path      string    `json:"path,omitempty"`
	Sessions  []Session `json:"sessions"`
	Empty     bool      `json:"empty"`
	Anomalies int       `json:"anomalies,omitempty"`
}

// Entry is one top-level bullet with its classification
type Entry struct {
	Date     string           `json:"date"`
	Session  string           `json:"session"`
	Text     string           `json:"text"`
	Plain    string           `json:"plain"`
	Tags     []Topic          `json:"tags"`
	Actions  []ActionCategory `json:"actions,omitempty"`
	Concepts []Concept        `json:"concepts,omitempty"`
}

// Dated renders the entry the way every index bucket displays it
func (e Entry) Dated() string {
	return "[" + e.Date + "] " + e.Text
}

// HasAction reports whether the entry carries the given category
func (e Entry) HasAction(c ActionCategory) bool {
	for _, a := range e.Actions {
		if a == c {
			return true
		}
	}
	return false
}

// Claim is a declared self-model statement
type Claim struct {
	Section  string    `json:"section"`
	Text     string    `json:"text"`
	Concepts []Concept `json:"concepts,omitempty"`
}

// HasConcept reports whether the claim is tagged with c
func (c Claim) HasConcept(concept Concept) bool {
	for _, k := range c.Concepts {
		if k == concept {
			return true
		}
	}
	return false
}

// Outcome is the resolved correctness of a decision
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomePartial    Outcome = "partial"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeUnresolved Outcome = "unresolved"
)

// Decision is one confidence-annotated decision record
type Decision struct {
	ID            string  `json:"id"`
	Date          string  `json:"date,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	Confidence    int     `json:"confidence"`
	HasConfidence bool    `json:"has_confidence"`
	Correctness   string  `json:"correctness,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Category      string  `json:"category,omitempty"`
}

// DivergenceType names a divergence pattern
type DivergenceType string

const (
	DivergenceContradiction DivergenceType = "contradiction"
	DivergenceBlindSpot     DivergenceType = "blind_spot"
	DivergenceImbalance     DivergenceType = "imbalance"
	DivergenceCalibration   DivergenceType = "calibration"
)

// Nature says whether a divergence is fixed by behavior or by the self-description
type Nature string

const (
	NatureCorrectable Nature = "correctable"
	NatureStructural  Nature = "structural"
)

// DivergenceRecord is one measured mismatch between claims and behavior
type DivergenceRecord struct {
	Type           DivergenceType `json:"type"`
	Label          string         `json:"label"`
	Severity       float64        `json:"severity"`
	Nature         Nature         `json:"nature"`
	ClaimText      string         `json:"claim"`
	Evidence       []string       `json:"evidence"`
	Insight        string         `json:"insight"`
	Recommendation string         `json:"recommendation"`
}

// EmphasisStatus classifies an emphasis gap
type EmphasisStatus string

const (
	StatusBlindSpot  EmphasisStatus = "blind_spot"
	StatusResolved   EmphasisStatus = "resolved"
	StatusOverstated EmphasisStatus = "overstated"
)

// EmphasisRow compares how often a concept is claimed vs acted on
type EmphasisRow struct {
	Concept     Concept        `json:"concept"`
	Category    ActionCategory `json:"category"`
	ClaimPct    float64        `json:"claim_pct"`
	BehaviorPct float64        `json:"behavior_pct"`
	WeightedPct float64        `json:"weighted_pct"`
	Gap         float64        `json:"gap"`
	WeightedGap float64        `json:"weighted_gap"`
	Status      EmphasisStatus `json:"status"`
}

// CalibrationBand aggregates resolved decisions in one 10-point confidence band
type CalibrationBand struct {
	Floor     int     `json:"floor"`
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Partial   int     `json:"partial"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}
