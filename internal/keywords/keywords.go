// Package keywords holds the franchise and genre keyword tables that
// drive tag regeneration. Tables load from a YAML file and can be hot
// reloaded when the file changes; the matching algorithm is separate
// from the data it scans against.
package keywords

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tables maps tag names to the patterns that imply them. A document
// whose name or folder path contains a pattern (on word boundaries)
// receives the tag.
type Tables struct {
	Genres map[string][]string `yaml:"genres"`
	Series map[string][]string `yaml:"series"`
}

// LoadFile reads keyword tables from a YAML file.
func LoadFile(path string) (Tables, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Keyword file path comes from config
	if err != nil {
		return Tables{}, fmt.Errorf("read keyword file: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse keyword file: %w", err)
	}
	return t, nil
}

// DefaultTables returns the built-in tables used when no keyword file
// is configured. Deliberately small; deployments ship their own file.
func DefaultTables() Tables {
	return Tables{
		Genres: map[string][]string{
			"Fantasy":  {"fantasy", "magic", "dragon"},
			"Sci-Fi":   {"sci-fi", "science fiction", "space"},
			"Horror":   {"horror", "eldritch"},
			"Gauntlet": {"gauntlet"},
		},
		Series: map[string][]string{
			"Skyrim":    {"skyrim", "elder scrolls"},
			"Pokemon":   {"pokemon", "pokémon"},
			"Star Wars": {"star wars"},
			"Generic":   {"generic"},
		},
	}
}

type compiledEntry struct {
	tag      string
	patterns []*regexp.Regexp
}

// Matcher scans text against compiled keyword patterns. Patterns match
// case-insensitively on word boundaries, so "skyrim" matches
// "Skyrim Jump" but not "skyrimanon".
type Matcher struct {
	genres []compiledEntry
	series []compiledEntry
}

// NewMatcher compiles the tables into a matcher.
func NewMatcher(t Tables) (*Matcher, error) {
	genres, err := compileTable(t.Genres)
	if err != nil {
		return nil, fmt.Errorf("compile genre patterns: %w", err)
	}
	series, err := compileTable(t.Series)
	if err != nil {
		return nil, fmt.Errorf("compile series patterns: %w", err)
	}
	return &Matcher{genres: genres, series: series}, nil
}

func compileTable(table map[string][]string) ([]compiledEntry, error) {
	// Sort tags for deterministic match order.
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	entries := make([]compiledEntry, 0, len(tags))
	for _, tag := range tags {
		entry := compiledEntry{tag: tag}
		for _, pattern := range table[tag] {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(pattern) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("pattern %q for %q: %w", pattern, tag, err)
			}
			entry.patterns = append(entry.patterns, re)
		}
		if len(entry.patterns) > 0 {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// MatchGenres returns genre tags implied by the text, sorted.
func (m *Matcher) MatchGenres(text string) []string {
	return match(m.genres, text)
}

// MatchSeries returns series tags implied by the text, sorted.
func (m *Matcher) MatchSeries(text string) []string {
	return match(m.series, text)
}

func match(entries []compiledEntry, text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, e := range entries {
		for _, re := range e.patterns {
			if re.MatchString(text) {
				out = append(out, e.tag)
				break
			}
		}
	}
	return out
}
