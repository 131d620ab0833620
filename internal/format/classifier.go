// Package format sniffs the layout of extracted document text and
// parses purchasable entries with a strategy chosen by the detected
// layout.
package format

import (
	"regexp"
	"strings"
)

// Type is the detected document layout.
type Type string

const (
	Unknown           Type = "Unknown"
	JumpChainStandard Type = "JumpChainStandard" // "Name (+100 CP)" lines
	ColonDelimited    Type = "ColonDelimited"    // "Item Name: Description" lines
	Mixed             Type = "Mixed"             // both patterns present
)

// Analysis is the classifier's verdict with supporting counts.
type Analysis struct {
	Type              Type    `json:"type"`
	Confidence        float64 `json:"confidence"`
	CPPatternCount    int     `json:"cp_pattern_count"`
	ColonPatternCount int     `json:"colon_pattern_count"`
	AnalyzedLines     int     `json:"analyzed_lines"`
}

// analyzeLineLimit caps how many lines the classifier inspects.
const analyzeLineLimit = 100

var (
	cpLineRe    = regexp.MustCompile(`(?i)^.+\s*\([+\-]?\d+\s*CP\)`)
	colonLineRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9\s\-']{2,50}):\s*(.{10,})`)
)

// Analyze classifies the document text by counting layout patterns over
// the first hundred non-trivial lines. A format wins outright with at
// least three hits and a higher hit ratio than the other; one hit of
// each makes the document Mixed; anything else is Unknown.
func Analyze(text string) Analysis {
	a := Analysis{Type: Unknown, Confidence: 0.3}
	if strings.TrimSpace(text) == "" {
		return a
	}

	examined := 0
	for _, line := range strings.Split(text, "\n") {
		if examined >= analyzeLineLimit {
			break
		}
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 10 {
			continue
		}
		examined++
		a.AnalyzedLines++

		if cpLineRe.MatchString(trimmed) {
			a.CPPatternCount++
		}
		if m := colonLineRe.FindStringSubmatch(trimmed); m != nil && validItemName(strings.TrimSpace(m[1])) {
			a.ColonPatternCount++
		}
	}

	var cpRatio, colonRatio float64
	if a.AnalyzedLines > 0 {
		cpRatio = float64(a.CPPatternCount) / float64(a.AnalyzedLines)
		colonRatio = float64(a.ColonPatternCount) / float64(a.AnalyzedLines)
	}

	switch {
	case a.CPPatternCount >= 3 && cpRatio > colonRatio:
		a.Type = JumpChainStandard
		a.Confidence = min(0.95, 0.5+cpRatio)
	case a.ColonPatternCount >= 3 && colonRatio > cpRatio:
		a.Type = ColonDelimited
		a.Confidence = min(0.95, 0.5+colonRatio)
	case a.CPPatternCount >= 1 && a.ColonPatternCount >= 1:
		a.Type = Mixed
		a.Confidence = 0.7
	}
	return a
}

var sentenceWords = []string{
	"will be", "you'll", "let's", "more", "even", "also", "this", "that", "so",
}

var sentenceStarters = []string{
	"in ", "by ", "with ", "from ", "as ", "through ", "during ", "after ", "before ",
}

// validItemName filters out sentence fragments that happen to end in a
// colon. Item names start with a capital, are short, and read like
// labels rather than prose.
func validItemName(name string) bool {
	if len(name) < 3 || len(name) > 50 {
		return false
	}
	if name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	if strings.Contains(name, "  ") {
		return false
	}
	lower := strings.ToLower(name)
	for _, w := range sentenceWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, s := range sentenceStarters {
		if strings.HasPrefix(lower, s) {
			return false
		}
	}
	return true
}
