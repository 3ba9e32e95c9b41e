package index

import (
	"fmt"
	"strings"
	"time"
)

// GeneratedPrefix starts the only line of the document that varies between
// runs over the same input
const GeneratedPrefix = "Generated: "

// Render writes the index as a markdown document
func Render(ix Index, generated time.Time) string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}
	rule := func(title string) {
		line("")
		line("---")
		line("")
		line("## %s", title)
		line("")
	}

	line("# Log Index")
	line("")
	line("%s%s  ", GeneratedPrefix, generated.Format("2006-01-02 15:04"))
	line("Sources: %d files, %d sessions", ix.Files, ix.Sessions)
	if ix.Sessions == 0 {
		line("")
		line("_No sessions found in the source files._")
	}

	rule("Timeline")
	for _, r := range ix.Timeline {
		if r.Summary == "" {
			line("- **%s** %s", r.Date, r.Title)
			continue
		}
		line("- **%s** %s: %s", r.Date, r.Title, r.Summary)
	}

	rule("Topics")
	for _, b := range ix.Topics {
		line("### %s", b.Topic)
		line("")
		for _, it := range b.Items {
			line("- %s", it)
		}
		if b.Suppressed > 0 {
			line("- ...and %d more", b.Suppressed)
		}
		line("")
	}

	rule("Key Facts")
	bulletList(line, ix.KeyFacts, "(none yet)")

	rule("Open Items")
	bulletList(line, ix.OpenItems, "(none)")

	rule("Activity")
	if len(ix.Actions) == 0 {
		line("- (no behaviors recorded)")
	} else {
		line("| Category | Count |")
		line("|---|---|")
		for _, a := range ix.Actions {
			line("| %s | %d |", a.Category, a.Count)
		}
	}

	return sb.String()
}

func bulletList(line func(string, ...any), items []string, empty string) {
	if len(items) == 0 {
		line("- %s", empty)
		return
	}
	for _, it := range items {
		line("- %s", it)
	}
}

// StripGenerated drops the Generated line so two renders can be compared
func StripGenerated(doc string) string {
	lines := strings.Split(doc, "\n")
	out := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, GeneratedPrefix) {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
