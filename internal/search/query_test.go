package search

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ParsedQuery
	}{
		{
			name: "plain terms",
			in:   "red dragon",
			want: ParsedQuery{Terms: []string{"red", "dragon"}},
		},
		{
			name: "quoted phrase",
			in:   `"red dragon" jump`,
			want: ParsedQuery{Terms: []string{"jump"}, Phrases: []string{"red dragon"}},
		},
		{
			name: "exclusion",
			in:   `"red dragon" -skyrim`,
			want: ParsedQuery{Phrases: []string{"red dragon"}, Excluded: []string{"skyrim"}},
		},
		{
			name: "extra whitespace dropped",
			in:   "  fantasy \t  magic  ",
			want: ParsedQuery{Terms: []string{"fantasy", "magic"}},
		},
		{
			name: "unterminated quote keeps phrase",
			in:   `generic "isekai adventure`,
			want: ParsedQuery{Terms: []string{"generic"}, Phrases: []string{"isekai adventure"}},
		},
		{
			name: "bare dash dropped",
			in:   "dragon - lair",
			want: ParsedQuery{Terms: []string{"dragon", "lair"}},
		},
		{
			name: "empty input",
			in:   "",
			want: ParsedQuery{},
		},
		{
			name: "adjacent quotes produce nothing",
			in:   `""`,
			want: ParsedQuery{},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Parse(c.in)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
			}
		})
	}
}

func TestBuildFTSQuery(t *testing.T) {
	cases := []struct {
		name string
		in   ParsedQuery
		want string
	}{
		{
			name: "empty has no index form",
			in:   ParsedQuery{},
			want: "",
		},
		{
			name: "single long term gets prefix wildcard",
			in:   ParsedQuery{Terms: []string{"dragon"}},
			want: `"dragon"*`,
		},
		{
			name: "short term no wildcard",
			in:   ParsedQuery{Terms: []string{"of"}},
			want: `"of"`,
		},
		{
			name: "terms are ANDed",
			in:   ParsedQuery{Terms: []string{"red", "dragon"}},
			want: `"red"* AND "dragon"*`,
		},
		{
			name: "phrase stays quoted without wildcard",
			in:   ParsedQuery{Phrases: []string{"red dragon"}},
			want: `"red dragon"`,
		},
		{
			name: "positive part parenthesized before exclusions",
			in:   ParsedQuery{Phrases: []string{"red dragon"}, Excluded: []string{"skyrim"}},
			want: `("red dragon") NOT "skyrim"`,
		},
		{
			name: "embedded quote doubled",
			in:   ParsedQuery{Terms: []string{`he"llo`}},
			want: `"he""llo"*`,
		},
		{
			name: "exclusions alone have no index form",
			in:   ParsedQuery{Excluded: []string{"skyrim"}},
			want: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := BuildFTSQuery(c.in); got != c.want {
				t.Errorf("BuildFTSQuery(%+v) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestBuildFTSQueryNeverStartsWithNOT(t *testing.T) {
	inputs := []ParsedQuery{
		{Terms: []string{"a"}, Excluded: []string{"b"}},
		{Terms: []string{"dragon", "red"}, Excluded: []string{"skyrim", "elder"}},
		{Phrases: []string{"x y"}, Excluded: []string{"z"}},
		{Excluded: []string{"only", "negatives"}},
	}
	for _, q := range inputs {
		got := BuildFTSQuery(q)
		if strings.HasPrefix(got, "NOT") {
			t.Errorf("BuildFTSQuery(%+v) = %q starts with NOT", q, got)
		}
	}
}
