// Package parser turns diary, claims and decision documents into domain records.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pbaille/logindex/internal/domain"
)

var (
	sessionHeader = regexp.MustCompile(`^## (?:Session|セッション) ?(\d+)(.*)$`)
	// a session header without its number
	malformedHeader = regexp.MustCompile(`^## (?:Session|セッション)(?:\s|[:：]|$)`)
	subsection      = regexp.MustCompile(`^### (.*)`)
	topBullet       = regexp.MustCompile(`^- (.+)`)
)

// ParseLog splits a diary document into its sessions.
// Lines before the first session header are ignored; a document with no
// session headers yields a log with no sessions.
func ParseLog(date, text string) domain.Log {
	log := domain.Log{
		Date:  date,
		Empty: strings.TrimSpace(text) == "",
	}

	var current *domain.Session
	flush := func() {
		if current != nil {
			log.Sessions = append(log.Sessions, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		if m := sessionHeader.FindStringSubmatch(line); m != nil {
			flush()
			n, _ := strconv.Atoi(m[1])
			current = &domain.Session{
				Number:  n,
				Title:   sessionTitle(n, strings.TrimLeft(strings.TrimSpace(m[2]), ":：—- ")),
				Bullets: []string{},
			}
			continue
		}
		if malformedHeader.MatchString(line) {
			log.Anomalies++
			continue
		}

		if current == nil {
			continue
		}

		if m := subsection.FindStringSubmatch(line); m != nil {
			current.Subsections = append(current.Subsections, strings.TrimSpace(m[1]))
			continue
		}
		if m := topBullet.FindStringSubmatch(line); m != nil {
			if b := strings.TrimSpace(m[1]); b != "" {
				current.Bullets = append(current.Bullets, b)
			}
		}
	}
	flush()

	return log
}

func sessionTitle(n int, title string) string {
	base := "Session " + strconv.Itoa(n)
	if title == "" {
		return base
	}
	return base + ": " + title
}

// SessionID is the short identity of a session within its day
func SessionID(s domain.Session) string {
	return "Session " + strconv.Itoa(s.Number)
}

// Bullet is one (date, session, bullet) record in document order
type Bullet struct {
	Date    string
	Session string
	Text    string
}

// Entries flattens logs into their top-level bullets, preserving order
func Entries(logs []domain.Log) []Bullet {
	var out []Bullet
	for _, l := range logs {
		for _, s := range l.Sessions {
			id := SessionID(s)
			for _, b := range s.Bullets {
				out = append(out, Bullet{Date: l.Date, Session: id, Text: b})
			}
		}
	}
	return out
}

// CountSessions sums sessions across logs
func CountSessions(logs []domain.Log) int {
	n := 0
	for _, l := range logs {
		n += len(l.Sessions)
	}
	return n
}
