// Package corpus reads the diary, claims and decision source files.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/pbaille/logindex/internal/domain"
	"github.com/pbaille/logindex/internal/parser"
)

// ErrNoSources is returned when a required source directory holds no matching files
var ErrNoSources = errors.New("no source files found")

// Matcher selects source files by base name
type Matcher struct {
	include glob.Glob
	exclude []glob.Glob
}

// NewMatcher compiles an include pattern and any number of exclude patterns
func NewMatcher(include string, exclude ...string) (*Matcher, error) {
	g, err := glob.Compile(include)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern '%s': %w", include, err)
	}
	m := &Matcher{include: g}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

// Match reports whether a base name is selected. Excludes take precedence.
func (m *Matcher) Match(name string) bool {
	for _, g := range m.exclude {
		if g.Match(name) {
			return false
		}
	}
	return m.include.Match(name)
}

// Files lists the matching regular files directly under dir, sorted by name.
// A missing dir yields no files.
func (m *Matcher) Files(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var files []string
	for _, de := range des {
		if !de.Type().IsRegular() || !m.Match(de.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, de.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Stem is the file name without its extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadLogs parses every matching diary file in dir, oldest first.
// It returns ErrNoSources when nothing matches.
func LoadLogs(dir string, m *Matcher) ([]domain.Log, error) {
	files, err := m.Files(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load logs from %s: %w", dir, ErrNoSources)
	}

	logs := make([]domain.Log, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		l := parser.ParseLog(Stem(f), string(data))
		l.Path = f
		logs = append(logs, l)
	}
	return logs, nil
}

// LoadClaims parses the claims file. A missing file yields no claims.
func LoadClaims(path string, skipSections []string) ([]parser.RawClaim, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return parser.ParseClaims(string(data), skipSections), nil
}

// LoadDecisions parses every matching decision file in dir, in file order.
// A missing dir yields no decisions.
func LoadDecisions(dir string, m *Matcher) ([]parser.RawDecision, error) {
	if dir == "" {
		return nil, nil
	}
	files, err := m.Files(dir)
	if err != nil {
		return nil, err
	}

	var out []parser.RawDecision
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read decisions: %w", err)
		}
		out = append(out, parser.ParseDecisions(string(data))...)
	}
	return out, nil
}
