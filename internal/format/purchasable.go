package format

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Purchasable is one priced entry parsed out of a document.
type Purchasable struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	CostCP      int    `json:"cost_cp"`
	LineNumber  int    `json:"line_number"`
}

var cpEntryRe = regexp.MustCompile(`(?i)^(.+?)\s*\(([+\-]?\d+)\s*CP\)`)

var colonEntryRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9\s\-']{2,50}):\s*(.+)`)

// categoryHeaders maps canonical category names to the header words
// that introduce a section.
var categoryHeaders = map[string][]string{
	"Drawbacks":  {"drawbacks", "disadvantages", "flaws"},
	"Perks":      {"perks", "abilities", "powers"},
	"Items":      {"items", "equipment", "gear"},
	"Companions": {"companions", "followers"},
	"Scenarios":  {"scenarios", "challenges"},
	"Resources":  {"resources", "wealth"},
}

// ParsePurchasables classifies the text and dispatches to the parser
// matching the detected layout. Mixed and Unknown layouts run both
// parsers and deduplicate on (name, line).
func ParsePurchasables(text string) (Analysis, []Purchasable) {
	analysis := Analyze(text)
	switch analysis.Type {
	case JumpChainStandard:
		return analysis, parseCPFormat(text)
	case ColonDelimited:
		return analysis, parseColonFormat(text)
	default:
		return analysis, mergeParses(parseCPFormat(text), parseColonFormat(text))
	}
}

// parseCPFormat extracts "Name (+100 CP)" entries, tracking the
// current section header for category assignment.
func parseCPFormat(text string) []Purchasable {
	var out []Purchasable
	lines := strings.Split(text, "\n")
	category := "Items"

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if c := detectCategory(line); c != "" {
			category = c
			continue
		}

		m := cpEntryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) < 2 || len(name) > 100 {
			continue
		}
		cost, err := strconv.Atoi(strings.TrimLeft(m[2], "+-"))
		if err != nil {
			continue
		}
		out = append(out, Purchasable{
			Name:        name,
			Category:    category,
			Description: nextLineDescription(lines, i),
			CostCP:      cost,
			LineNumber:  i + 1,
		})
	}
	return out
}

// parseColonFormat extracts "Item Name: Description" entries. Colon
// entries carry no price, so cost is zero.
func parseColonFormat(text string) []Purchasable {
	var out []Purchasable
	lines := strings.Split(text, "\n")
	category := "Items"

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if c := detectCategory(line); c != "" {
			category = c
			continue
		}

		m := colonEntryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if !validItemName(name) {
			continue
		}
		desc := strings.TrimSpace(m[2])
		if next := nextLineDescription(lines, i); next != "" {
			desc = strings.TrimSpace(desc + " " + next)
		}
		out = append(out, Purchasable{
			Name:        name,
			Category:    category,
			Description: desc,
			LineNumber:  i + 1,
		})
	}
	return out
}

// mergeParses combines results from both parsers, dropping duplicates
// keyed on (name, line number) and restoring document order.
func mergeParses(a, b []Purchasable) []Purchasable {
	type key struct {
		name string
		line int
	}
	seen := make(map[key]bool)
	var out []Purchasable
	for _, p := range append(a, b...) {
		k := key{p.Name, p.LineNumber}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LineNumber < out[j].LineNumber
	})
	return out
}

// detectCategory recognizes short section-header lines.
func detectCategory(line string) string {
	if len(line) > 50 {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	for category, headers := range categoryHeaders {
		for _, h := range headers {
			if lower == h || strings.HasPrefix(lower, h+" ") {
				return category
			}
		}
	}
	return ""
}

// nextLineDescription pulls the following line as a description when
// it does not look like another entry or header.
func nextLineDescription(lines []string, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	next := strings.TrimSpace(lines[i+1])
	if next == "" || len(next) >= 200 {
		return ""
	}
	if cpLineRe.MatchString(next) || strings.Contains(next, ":") {
		return ""
	}
	return next
}
