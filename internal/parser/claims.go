package parser

import (
	"strings"
)

// RawClaim is a claim bullet with its section, before concept tagging
type RawClaim struct {
	Section string
	Text    string
}

// ParseClaims reads "- " bullets grouped under "## " sections.
// Bullets outside any section, and sections listed in skip, are ignored.
func ParseClaims(text string, skip []string) []RawClaim {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	var claims []RawClaim
	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "## "):
			section = strings.TrimSpace(line[3:])
		case strings.HasPrefix(line, "- ") && section != "":
			if skipped[section] {
				continue
			}
			if t := strings.TrimSpace(line[2:]); t != "" {
				claims = append(claims, RawClaim{Section: section, Text: t})
			}
		}
	}
	return claims
}
