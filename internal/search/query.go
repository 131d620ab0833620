// Package search implements the query parsing, FTS5 query building,
// and in-process relevance ranking used by the search service.
package search

import "strings"

// ParsedQuery is the result of scanning a raw search string.
type ParsedQuery struct {
	Terms    []string // bare positive terms, in input order
	Phrases  []string // quoted phrases, in input order
	Excluded []string // terms prefixed with '-'
}

// Empty reports whether the query carries nothing to match on.
func (q ParsedQuery) Empty() bool {
	return len(q.Terms) == 0 && len(q.Phrases) == 0 && len(q.Excluded) == 0
}

// AllPositive returns terms and phrases together, for scorers that do
// not distinguish them.
func (q ParsedQuery) AllPositive() []string {
	out := make([]string, 0, len(q.Terms)+len(q.Phrases))
	out = append(out, q.Terms...)
	out = append(out, q.Phrases...)
	return out
}

// Parse splits a raw query into terms, quoted phrases, and exclusions.
//
// The scanner has two states: inside or outside quotes. A double quote
// toggles the state and flushes the accumulator; whitespace outside
// quotes flushes; everything else accumulates. A leading '-' on a bare
// term marks it as excluded. No nested quotes or escape sequences.
func Parse(raw string) ParsedQuery {
	var q ParsedQuery
	var buf strings.Builder
	inQuotes := false

	flush := func(asPhrase bool) {
		token := buf.String()
		buf.Reset()
		if token == "" {
			return
		}
		switch {
		case asPhrase:
			q.Phrases = append(q.Phrases, token)
		case strings.HasPrefix(token, "-") && len(token) > 1:
			q.Excluded = append(q.Excluded, token[1:])
		case token == "-":
			// A bare dash matches nothing; drop it.
		default:
			q.Terms = append(q.Terms, token)
		}
	}

	for _, r := range raw {
		switch {
		case r == '"':
			flush(inQuotes)
			inQuotes = !inQuotes
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush(false)
		default:
			buf.WriteRune(r)
		}
	}
	// An unterminated quote still yields its accumulated phrase.
	flush(inQuotes)

	return q
}

// escapeTerm doubles embedded double quotes so a term cannot break out
// of FTS5 string syntax, and wraps the term in quotes.
func escapeTerm(term string) string {
	return strings.ReplaceAll(term, `"`, `""`)
}

// BuildFTSQuery translates a parsed query into FTS5 boolean syntax.
//
// Positive terms are ANDed, each quoted with a prefix wildcard when
// long enough to make prefix matching useful. Phrases stay quoted
// without the wildcard. Exclusions become NOT clauses; when both
// positive and negative parts exist the positive part is parenthesized
// first so the query never starts with a bare NOT.
//
// The result is only valid FTS5 when the query has at least one
// positive term or phrase. NOT is a binary operator, so exclusion-only
// and empty queries have no index form; callers route those to the
// scan path.
func BuildFTSQuery(q ParsedQuery) string {
	var positive []string
	for _, term := range q.Terms {
		escaped := escapeTerm(term)
		if len(escaped) >= 3 {
			positive = append(positive, `"`+escaped+`"*`)
		} else {
			positive = append(positive, `"`+escaped+`"`)
		}
	}
	for _, phrase := range q.Phrases {
		positive = append(positive, `"`+escapeTerm(phrase)+`"`)
	}

	var negative []string
	for _, term := range q.Excluded {
		negative = append(negative, `NOT "`+escapeTerm(term)+`"`)
	}

	switch {
	case len(positive) == 0:
		return ""
	case len(negative) == 0:
		return strings.Join(positive, " AND ")
	default:
		return "(" + strings.Join(positive, " AND ") + ") " + strings.Join(negative, " ")
	}
}
