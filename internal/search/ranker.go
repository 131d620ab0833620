package search

import (
	"sort"
	"strings"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

// Scoring weights for the in-process ranker. Title hits dominate, body
// hits act as a tiebreaker.
const (
	weightTitle       = 1000
	weightTag         = 500
	weightDescription = 100
	weightBody        = 1
	bonusExactTitle   = 10000
	bonusTitlePrefix  = 5000
)

// ScoredDocument pairs a document with its relevance score.
type ScoredDocument struct {
	Document *domain.Document
	Score    int
}

// countOccurrences counts non-overlapping case-insensitive occurrences
// of needle in haystack.
func countOccurrences(haystack, needle string) int {
	if needle == "" || haystack == "" {
		return 0
	}
	haystack = strings.ToLower(haystack)
	needle = strings.ToLower(needle)

	count := 0
	for {
		i := strings.Index(haystack, needle)
		if i < 0 {
			return count
		}
		count++
		haystack = haystack[i+len(needle):]
	}
}

// Score computes the relevance score of a document against a list of
// search terms. Scores are always non-negative and grow with the
// number of term occurrences.
func Score(doc *domain.Document, terms []string) int {
	score := 0
	titleLower := strings.ToLower(doc.Name)

	for _, term := range terms {
		if term == "" {
			continue
		}
		termLower := strings.ToLower(term)

		score += countOccurrences(doc.Name, term) * weightTitle
		for _, tag := range doc.Tags {
			score += countOccurrences(tag.Name, term) * weightTag
		}
		score += countOccurrences(doc.Description, term) * weightDescription
		score += countOccurrences(doc.ExtractedText, term) * weightBody

		if titleLower == termLower {
			score += bonusExactTitle
		} else if strings.HasPrefix(titleLower, termLower) {
			score += bonusTitlePrefix
		}
	}
	return score
}

// matchesAll reports whether every term occurs somewhere in the
// document (title, tags, description, or body).
func matchesAll(doc *domain.Document, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if countOccurrences(doc.Name, term) > 0 ||
			countOccurrences(doc.Description, term) > 0 ||
			countOccurrences(doc.ExtractedText, term) > 0 {
			continue
		}
		found := false
		for _, tag := range doc.Tags {
			if countOccurrences(tag.Name, term) > 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchesAny reports whether any of the terms occurs in the document.
func matchesAny(doc *domain.Document, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if countOccurrences(doc.Name, term) > 0 ||
			countOccurrences(doc.Description, term) > 0 ||
			countOccurrences(doc.ExtractedText, term) > 0 {
			return true
		}
		for _, tag := range doc.Tags {
			if countOccurrences(tag.Name, term) > 0 {
				return true
			}
		}
	}
	return false
}

// Rank filters and scores candidate documents against a parsed query.
// A document must contain every positive term and phrase and none of
// the excluded terms. Results are sorted by descending score; equal
// scores keep their input order.
func Rank(docs []*domain.Document, q ParsedQuery) []ScoredDocument {
	positive := q.AllPositive()

	var scored []ScoredDocument
	for _, doc := range docs {
		if len(positive) > 0 && !matchesAll(doc, positive) {
			continue
		}
		if len(q.Excluded) > 0 && matchesAny(doc, q.Excluded) {
			continue
		}
		scored = append(scored, ScoredDocument{Document: doc, Score: Score(doc, positive)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
