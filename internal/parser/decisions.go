package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	decisionSplit = regexp.MustCompile(`(?m)^###\s+D-`)
	decisionID    = regexp.MustCompile(`^(\d{8}-\d+)`)

	decisionFields = map[string]*regexp.Regexp{
		"date":        regexp.MustCompile(`\*\*(?:Date|日時)\*\*[:：][ \t]*(.+)`),
		"decision":    regexp.MustCompile(`\*\*(?:Decision|判断)\*\*[:：][ \t]*(.+)`),
		"confidence":  regexp.MustCompile(`\*\*(?:Confidence|確信度)\*\*[:：][ \t]*(\d+)[ \t]*%`),
		"correctness": regexp.MustCompile(`\*\*(?:Correctness|Outcome|正誤)\*\*[:：][ \t]*(.+)`),
	}
)

// RawDecision is one decision block before outcome classification
type RawDecision struct {
	ID            string
	Date          string
	Summary       string
	Confidence    int
	HasConfidence bool
	Correctness   string
}

// ParseDecisions reads "### D-YYYYMMDD-N" blocks and their bold-labelled fields.
// Blocks whose heading carries no well-formed identifier are skipped.
func ParseDecisions(text string) []RawDecision {
	locs := decisionSplit.FindAllStringIndex(text, -1)

	var out []RawDecision
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := text[loc[1]:end]

		m := decisionID.FindStringSubmatch(block)
		if m == nil {
			continue
		}
		d := RawDecision{ID: "D-" + m[1]}

		d.Date = field(block, "date")
		if d.Date == "" {
			// the identifier embeds the day
			d.Date = m[1][0:4] + "-" + m[1][4:6] + "-" + m[1][6:8]
		}
		d.Summary = field(block, "decision")
		d.Correctness = field(block, "correctness")
		if v := field(block, "confidence"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				d.Confidence = n
				d.HasConfidence = true
			}
		}
		out = append(out, d)
	}
	return out
}

func field(block, name string) string {
	m := decisionFields[name].FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
