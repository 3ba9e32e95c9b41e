// Package classifier assigns topics, action categories and concepts to bullets
// using the static rule tables in rules.go.
package classifier

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pbaille/logindex/internal/domain"
)

type foldedTopic struct {
	topic    domain.Topic
	keywords []string
}

type foldedConcept struct {
	concept domain.Concept
	terms   []string
}

type foldedDecision struct {
	category string
	keywords []string
}

// Classifier holds the rule tables with their keywords pre-folded.
// It is not safe for concurrent use.
type Classifier struct {
	fold      cases.Caser
	topics    []foldedTopic
	actions   []ActionRule
	concepts  []foldedConcept
	decisions []foldedDecision
}

// New creates a Classifier over the package rule tables
func New() *Classifier {
	c := &Classifier{
		fold:    cases.Fold(),
		actions: ActionRules,
	}

	for _, r := range TopicRules {
		c.topics = append(c.topics, foldedTopic{topic: r.Topic, keywords: c.foldAll(r.Keywords)})
	}
	for _, r := range ConceptRules {
		c.concepts = append(c.concepts, foldedConcept{concept: r.Concept, terms: c.foldAll(r.Terms)})
	}
	for _, r := range DecisionRules {
		c.decisions = append(c.decisions, foldedDecision{category: r.Category, keywords: c.foldAll(r.Keywords)})
	}

	return c
}

// Fold normalizes width (NFKC) and case so keyword lookups are insensitive to both
func (c *Classifier) Fold(s string) string {
	return c.fold.String(norm.NFKC.String(s))
}

func (c *Classifier) foldAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = c.Fold(w)
	}
	return out
}

// Classify returns the topics whose keywords occur in text, in rule order.
// It never returns an empty slice: unmatched text is tagged TopicOther.
func (c *Classifier) Classify(text string) []domain.Topic {
	folded := c.Fold(text)

	var tags []domain.Topic
	for _, r := range c.topics {
		if containsAny(folded, r.keywords) {
			tags = append(tags, r.topic)
		}
	}
	if len(tags) == 0 {
		return []domain.Topic{domain.TopicOther}
	}
	return tags
}

// ClassifyAction returns the action categories whose triggers match text and
// whose exclusions do not. The result may be empty.
func (c *Classifier) ClassifyAction(text string) []domain.ActionCategory {
	var cats []domain.ActionCategory
	for _, r := range c.actions {
		if MatchAction(r, text) {
			cats = append(cats, r.Category)
		}
	}
	return cats
}

// MatchAction evaluates a single action rule against text
func MatchAction(r ActionRule, text string) bool {
	for _, x := range r.Exclusions {
		if x.MatchString(text) {
			return false
		}
	}
	for _, t := range r.Triggers {
		if t.MatchString(text) {
			return true
		}
	}
	return false
}

// Concepts returns the self-model concepts mentioned in text, in rule order
func (c *Classifier) Concepts(text string) []domain.Concept {
	folded := c.Fold(text)

	var out []domain.Concept
	for _, r := range c.concepts {
		if containsAny(folded, r.terms) {
			out = append(out, r.concept)
		}
	}
	return out
}

// DecisionCategory returns the category of a decision summary
func (c *Classifier) DecisionCategory(summary string) string {
	folded := c.Fold(summary)
	for _, r := range c.decisions {
		if containsAny(folded, r.keywords) {
			return r.category
		}
	}
	return DecisionOther
}

// Outcome maps a correctness label to an outcome using a fixed lexicon.
// A question mark leaves the outcome unresolved and a negated "correct" is
// incorrect. Partial is checked before incorrect, and incorrect before correct,
// so "partially correct" and "incorrect" do not read as correct.
func (c *Classifier) Outcome(label string) domain.Outcome {
	folded := c.Fold(strings.TrimSpace(label))
	if folded == "" {
		return domain.OutcomeUnresolved
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	has := func(options ...string) bool {
		for _, w := range words {
			for _, o := range options {
				if w == o {
					return true
				}
			}
		}
		return false
	}

	if strings.ContainsAny(folded, "?？") {
		return domain.OutcomeUnresolved
	}
	if negatedCorrect(words) || strings.Contains(folded, "正しくなかった") {
		return domain.OutcomeIncorrect
	}

	switch {
	case has("partial", "partially") || strings.Contains(folded, "部分"):
		return domain.OutcomePartial
	case has("incorrect", "wrong") || strings.Contains(folded, "間違") || strings.Contains(folded, "外れ"):
		return domain.OutcomeIncorrect
	case has("correct") || strings.Contains(folded, "正しかった"):
		return domain.OutcomeCorrect
	}
	return domain.OutcomeUnresolved
}

var negations = map[string]bool{"not": true, "never": true, "hardly": true}

// negatedCorrect reports whether "correct" directly follows a negation
func negatedCorrect(words []string) bool {
	for i := 1; i < len(words); i++ {
		if words[i] == "correct" && negations[words[i-1]] {
			return true
		}
	}
	return false
}

// Entry classifies one dated bullet into an immutable entry
func (c *Classifier) Entry(date, session, text, plain string) domain.Entry {
	return domain.Entry{
		Date:     date,
		Session:  session,
		Text:     text,
		Plain:    plain,
		Tags:     c.Classify(text),
		Actions:  c.ClassifyAction(plain),
		Concepts: c.Concepts(plain),
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
