// Package index builds the knowledge index from parsed diary logs.
package index

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/logindex/internal/classifier"
	"github.com/pbaille/logindex/internal/dedup"
	"github.com/pbaille/logindex/internal/domain"
	"github.com/pbaille/logindex/internal/markup"
	"github.com/pbaille/logindex/internal/parser"
)

// Defaults for Options
const (
	DefaultDisplayLimit   = 10
	DefaultSummaryBullets = 3
	DefaultSummaryWidth   = 60
)

// Options controls how much each section shows
type Options struct {
	// DisplayLimit caps the items shown per topic
	DisplayLimit int
	// SummaryBullets is how many bullets summarize a session in the timeline
	SummaryBullets int
	// SummaryWidth truncates each summary bullet, in runes
	SummaryWidth int
	Clusters     []dedup.Cluster
}

// DefaultOptions returns the stock options with the package cluster table
func DefaultOptions() Options {
	return Options{
		DisplayLimit:   DefaultDisplayLimit,
		SummaryBullets: DefaultSummaryBullets,
		SummaryWidth:   DefaultSummaryWidth,
		Clusters:       dedup.Clusters,
	}
}

// TimelineRow summarizes one session
type TimelineRow struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// TopicBucket holds the most recent entries of one topic
type TopicBucket struct {
	Topic domain.Topic `json:"topic"`
	// Items are most recent first, at most DisplayLimit
	Items      []string `json:"items"`
	Total      int      `json:"total"`
	Suppressed int      `json:"suppressed"`
}

// ActionCount is the number of behaviors in one action category
type ActionCount struct {
	Category domain.ActionCategory `json:"category"`
	Count    int                   `json:"count"`
}

// DayActions is the per-category behavior count of one day
type DayActions struct {
	Date   string        `json:"date"`
	Counts []ActionCount `json:"counts"`
}

// Index is the built knowledge index
type Index struct {
	Files     int           `json:"files"`
	Sessions  int           `json:"sessions"`
	Anomalies int           `json:"anomalies"`
	Timeline  []TimelineRow `json:"timeline"`
	Topics    []TopicBucket `json:"topics"`
	KeyFacts  []string      `json:"key_facts"`
	OpenItems []string      `json:"open_items"`
	Actions   []ActionCount `json:"actions"`
	Daily     []DayActions  `json:"daily"`

	// Entries holds every classified bullet in document order
	Entries []domain.Entry `json:"-"`
}

// Builder turns parsed logs into an Index
type Builder struct {
	classifier *classifier.Classifier
	opts       Options
	logger     *zap.Logger
}

// NewBuilder creates a Builder. Non-positive options fall back to the defaults.
func NewBuilder(c *classifier.Classifier, opts Options, logger *zap.Logger) *Builder {
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = DefaultDisplayLimit
	}
	if opts.SummaryBullets <= 0 {
		opts.SummaryBullets = DefaultSummaryBullets
	}
	if opts.SummaryWidth <= 0 {
		opts.SummaryWidth = DefaultSummaryWidth
	}
	return &Builder{classifier: c, opts: opts, logger: logger}
}

// Entries classifies every top-level bullet of logs
func (b *Builder) Entries(logs []domain.Log) []domain.Entry {
	bullets := parser.Entries(logs)
	entries := make([]domain.Entry, 0, len(bullets))
	for _, bl := range bullets {
		entries = append(entries, b.classifier.Entry(bl.Date, bl.Session, bl.Text, markup.StripEmphasis(bl.Text)))
	}
	return entries
}

// Build computes every index section. Logs must be in chronological order.
func (b *Builder) Build(logs []domain.Log) Index {
	ix := Index{
		Files:    len(logs),
		Sessions: parser.CountSessions(logs),
		Entries:  b.Entries(logs),
	}

	for _, l := range logs {
		if l.Anomalies > 0 {
			b.logger.Warn("malformed session headers",
				zap.String("file", l.Path),
				zap.Int("count", l.Anomalies))
			ix.Anomalies += l.Anomalies
		}
		if len(l.Sessions) == 0 {
			b.logger.Debug("no sessions in log", zap.String("file", l.Path), zap.Bool("empty", l.Empty))
		}
	}

	ix.Timeline = b.timeline(logs)
	ix.Topics = b.topics(ix.Entries)

	items := make([]dedup.Item, len(ix.Entries))
	for i, e := range ix.Entries {
		items[i] = dedup.Item{Date: e.Date, Text: e.Text}
	}
	ix.KeyFacts = render(dedup.KeyFacts(items))
	ix.OpenItems = render(dedup.OpenItems(b.opts.Clusters, items))

	ix.Actions, ix.Daily = actionStats(ix.Entries)

	b.logger.Debug("index built",
		zap.Int("files", ix.Files),
		zap.Int("sessions", ix.Sessions),
		zap.Int("entries", len(ix.Entries)),
		zap.Int("open_items", len(ix.OpenItems)))

	return ix
}

func (b *Builder) timeline(logs []domain.Log) []TimelineRow {
	var rows []TimelineRow
	for _, l := range logs {
		for _, s := range l.Sessions {
			n := min(len(s.Bullets), b.opts.SummaryBullets)
			parts := make([]string, n)
			for i, bl := range s.Bullets[:n] {
				parts[i] = markup.Truncate(bl, b.opts.SummaryWidth)
			}
			rows = append(rows, TimelineRow{Date: l.Date, Title: s.Title, Summary: strings.Join(parts, "; ")})
		}
	}
	return rows
}

// topics buckets entries by tag in rule order, newest first
func (b *Builder) topics(entries []domain.Entry) []TopicBucket {
	byTopic := map[domain.Topic][]string{}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		for _, t := range e.Tags {
			byTopic[t] = append(byTopic[t], e.Dated())
		}
	}

	var buckets []TopicBucket
	for _, r := range classifier.TopicRules {
		all, ok := byTopic[r.Topic]
		if !ok {
			continue
		}
		shown := all[:min(len(all), b.opts.DisplayLimit)]
		buckets = append(buckets, TopicBucket{
			Topic:      r.Topic,
			Items:      shown,
			Total:      len(all),
			Suppressed: len(all) - len(shown),
		})
	}
	return buckets
}

func actionStats(entries []domain.Entry) ([]ActionCount, []DayActions) {
	totals := map[domain.ActionCategory]int{}
	var days []string
	daily := map[string]map[domain.ActionCategory]int{}

	for _, e := range entries {
		if len(e.Actions) == 0 {
			continue
		}
		counts, ok := daily[e.Date]
		if !ok {
			counts = map[domain.ActionCategory]int{}
			daily[e.Date] = counts
			days = append(days, e.Date)
		}
		for _, a := range e.Actions {
			totals[a]++
			counts[a]++
		}
	}

	actions := inRuleOrder(totals)
	out := make([]DayActions, 0, len(days))
	for _, d := range days {
		out = append(out, DayActions{Date: d, Counts: inRuleOrder(daily[d])})
	}
	return actions, out
}

func inRuleOrder(counts map[domain.ActionCategory]int) []ActionCount {
	var out []ActionCount
	for _, r := range classifier.ActionRules {
		if n := counts[r.Category]; n > 0 {
			out = append(out, ActionCount{Category: r.Category, Count: n})
		}
	}
	return out
}

func render(items []dedup.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.String()
	}
	return out
}
