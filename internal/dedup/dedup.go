// Package dedup collapses repeated status updates about the same subject into
// the most recent one.
package dedup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/logindex/internal/markup"
)

const (
	// KeyPrefixLen is the number of runes kept in a fuzzy key
	KeyPrefixLen = 25
	// MinFuzzyKeyLen is the shortest key allowed to match by containment.
	// Shorter keys only match exactly.
	MinFuzzyKeyLen = 4
)

const separators = ":：—→。"

var (
	keyPunct  = regexp.MustCompile(`[\s*#\[\]()（）、。:：→\-/,.!?;'"]+`)
	keyNumber = regexp.MustCompile(`\d+[年月日件円%]?`)
)

// Key derives the fuzzy identity of a bullet: the topic text before the first
// separator, with punctuation and numbers removed, cut to KeyPrefixLen runes.
func Key(text string) string {
	t := markup.StripBold(text)
	if i := strings.IndexAny(t, separators); i >= 0 {
		t = t[:i]
	}
	t = keyPunct.ReplaceAllString(t, "")
	t = keyNumber.ReplaceAllString(t, "")

	if utf8.RuneCountInString(t) > KeyPrefixLen {
		t = string([]rune(t)[:KeyPrefixLen])
	}
	return t
}

// KeysCollide reports whether two fuzzy keys name the same subject
func KeysCollide(a, b string) bool {
	if a == b {
		return true
	}
	if utf8.RuneCountInString(a) < MinFuzzyKeyLen || utf8.RuneCountInString(b) < MinFuzzyKeyLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ClusterOf returns the name of the first cluster matching text
func ClusterOf(clusters []Cluster, text string) (string, bool) {
	for _, c := range clusters {
		if c.Pattern.MatchString(text) {
			return c.Name, true
		}
	}
	return "", false
}

// Deduper accumulates items in chronological order, keeping the latest item
// per cluster or fuzzy key at the position of its first occurrence.
type Deduper struct {
	clusters  []Cluster
	items     *OrderedMap
	fuzzyKeys []string
}

// New creates a Deduper over the given cluster table
func New(clusters []Cluster) *Deduper {
	return &Deduper{
		clusters: clusters,
		items:    NewOrderedMap(),
	}
}

// Add offers an item. Items must be added oldest first.
func (d *Deduper) Add(it Item) {
	if name, ok := ClusterOf(d.clusters, it.Text); ok {
		d.items.Upsert("cluster:"+name, it)
		return
	}

	key := Key(it.Text)
	if existing, ok := d.matchKey(key); ok {
		d.items.Upsert("key:"+existing, it)
		return
	}
	d.fuzzyKeys = append(d.fuzzyKeys, key)
	d.items.Upsert("key:"+key, it)
}

// matchKey finds a stored fuzzy key colliding with key. An exact match wins;
// among containment matches the most recently inserted key wins.
func (d *Deduper) matchKey(key string) (string, bool) {
	if _, ok := d.items.Lookup("key:" + key); ok {
		return key, true
	}
	for i := len(d.fuzzyKeys) - 1; i >= 0; i-- {
		if KeysCollide(key, d.fuzzyKeys[i]) {
			return d.fuzzyKeys[i], true
		}
	}
	return "", false
}

// Items returns the representatives in first-occurrence order
func (d *Deduper) Items() []Item {
	return d.items.Items()
}

// Dedup runs a fresh Deduper over items
func Dedup(clusters []Cluster, items []Item) []Item {
	d := New(clusters)
	for _, it := range items {
		d.Add(it)
	}
	return d.Items()
}

// IsResolved reports whether a bullet is marked as done or crossed out
func IsResolved(text string) bool {
	return markup.HasStrikethrough(text) || matchAny(ResolvedPatterns, text)
}

// IsObservation reports whether a bullet is retrospective commentary
func IsObservation(text string) bool {
	return matchAny(ObservationPatterns, text)
}

// IsOpenCandidate reports whether a bullet carries an open-item trigger
func IsOpenCandidate(text string) bool {
	return matchAny(OpenTriggers, text)
}

// IsOpen reports whether a bullet is an unresolved, non-retrospective open item
func IsOpen(text string) bool {
	return IsOpenCandidate(text) && !IsResolved(text) && !IsObservation(text)
}

// OpenItems filters items down to open ones and deduplicates them
func OpenItems(clusters []Cluster, items []Item) []Item {
	var open []Item
	for _, it := range items {
		if IsOpen(it.Text) {
			open = append(open, it)
		}
	}
	return Dedup(clusters, open)
}

// IsFact reports whether a bullet records a finding or conclusion
func IsFact(text string) bool {
	return matchAny(FactTriggers, text)
}

const factKeyLen = 40

var factNoise = regexp.MustCompile(`[\s*#\[\]()]+`)

// KeyFacts returns finding/conclusion bullets, keeping the first occurrence of
// each normalized text.
func KeyFacts(items []Item) []Item {
	seen := make(map[string]bool)
	var facts []Item
	for _, it := range items {
		if !IsFact(it.Text) {
			continue
		}
		norm := factNoise.ReplaceAllString(it.Text, "")
		if utf8.RuneCountInString(norm) > factKeyLen {
			norm = string([]rune(norm)[:factKeyLen])
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		facts = append(facts, it)
	}
	return facts
}
