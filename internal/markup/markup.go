// Package markup strips the light markdown and inline HTML that diary bullets carry.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	boldStar   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnder  = regexp.MustCompile(`__(.+?)__`)
	inlineCode = regexp.MustCompile("`([^`]*)`")
	strike     = regexp.MustCompile(`~~.+?~~`)
)

// struckTags are the inline elements that mark text as crossed out
var struckTags = map[string]bool{"del": true, "s": true, "strike": true}

// StripEmphasis removes bold markers, inline code ticks and inline HTML tags,
// keeping the enclosed text.
func StripEmphasis(s string) string {
	s = boldStar.ReplaceAllString(s, "$1")
	s = boldUnder.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	if !strings.Contains(s, "<") {
		return s
	}
	return stripTags(s)
}

// StripBold removes only **bold** markers
func StripBold(s string) string {
	return boldStar.ReplaceAllString(s, "$1")
}

// HasStrikethrough reports whether any part of s is crossed out with ~~ or
// a <del>/<s>/<strike> element.
func HasStrikethrough(s string) bool {
	if strike.MatchString(s) {
		return true
	}
	if !strings.Contains(s, "<") {
		return false
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			name, _ := z.TagName()
			if struckTags[string(name)] {
				return true
			}
		}
	}
}

// stripTags drops element markup and keeps text nodes
func stripTags(s string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

// Truncate shortens s to max runes, appending "..." when cut
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
