package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate(PrefixDocument)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(got, "doc-") {
		t.Errorf("Generate() = %q, want doc- prefix", got)
	}
	// prefix + "-" + 21 char nanoid
	if len(got) != len(PrefixDocument)+1+21 {
		t.Errorf("Generate() length = %d, want %d", len(got), len(PrefixDocument)+1+21)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := MustGenerate(PrefixTag)
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestHasPrefix(t *testing.T) {
	id := MustGenerate(PrefixSuggestion)
	if !HasPrefix(id, PrefixSuggestion) {
		t.Errorf("HasPrefix(%q, %q) = false, want true", id, PrefixSuggestion)
	}
	if HasPrefix(id, PrefixDocument) {
		t.Errorf("HasPrefix(%q, %q) = true, want false", id, PrefixDocument)
	}
}
