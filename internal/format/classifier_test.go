package format

import (
	"strings"
	"testing"
)

const cpText = `Perks

Fire Breath (+100 CP)
Breathe fire like a dragon.
Dragon Scales (+200 CP)
Your skin hardens into scales.
Wings of the Storm (+400 CP)
Take to the skies.
`

const colonText = `Items

Enchanted Blade: A sword humming with old magic, never dulls.
Traveler's Cloak: Keeps you warm and dry in any weather conditions.
Bottomless Satchel: Holds far beyond what its size suggests inside.
`

func TestAnalyzeJumpChainStandard(t *testing.T) {
	a := Analyze(cpText)
	if a.Type != JumpChainStandard {
		t.Fatalf("Analyze type = %s, want JumpChainStandard (analysis: %+v)", a.Type, a)
	}
	if a.CPPatternCount < 3 {
		t.Errorf("CP pattern count = %d, want >= 3", a.CPPatternCount)
	}
	if a.Confidence <= 0.5 || a.Confidence > 0.95 {
		t.Errorf("confidence = %v, want in (0.5, 0.95]", a.Confidence)
	}
}

func TestAnalyzeColonDelimited(t *testing.T) {
	a := Analyze(colonText)
	if a.Type != ColonDelimited {
		t.Fatalf("Analyze type = %s, want ColonDelimited (analysis: %+v)", a.Type, a)
	}
}

func TestAnalyzeMixed(t *testing.T) {
	text := `Fire Breath grants power (+100 CP)
Enchanted Blade: A sword humming with old magic, never dulls.
filler line of prose long enough to count here
`
	a := Analyze(text)
	if a.Type != Mixed {
		t.Fatalf("Analyze type = %s, want Mixed (analysis: %+v)", a.Type, a)
	}
	if a.Confidence != 0.7 {
		t.Errorf("mixed confidence = %v, want 0.7", a.Confidence)
	}
}

func TestAnalyzeUnknown(t *testing.T) {
	a := Analyze("just some prose without any structure to speak of\nand another line of it\n")
	if a.Type != Unknown {
		t.Fatalf("Analyze type = %s, want Unknown", a.Type)
	}
	if a.Confidence != 0.3 {
		t.Errorf("unknown confidence = %v, want 0.3", a.Confidence)
	}

	if got := Analyze(""); got.Type != Unknown {
		t.Errorf("empty text type = %s, want Unknown", got.Type)
	}
}

func TestParseCPFormat(t *testing.T) {
	_, got := ParsePurchasables(cpText)
	if len(got) != 3 {
		t.Fatalf("parsed %d purchasables, want 3", len(got))
	}
	first := got[0]
	if first.Name != "Fire Breath" || first.CostCP != 100 {
		t.Errorf("first entry = %+v, want Fire Breath at 100 CP", first)
	}
	if first.Category != "Perks" {
		t.Errorf("category = %q, want Perks from section header", first.Category)
	}
	if first.Description != "Breathe fire like a dragon." {
		t.Errorf("description = %q, want next line", first.Description)
	}
}

func TestParseNegativeCost(t *testing.T) {
	text := `Drawbacks

Chronic Bad Luck (-200 CP)
Everything that can go wrong does.
Cursed Appetite (-100 CP)
You are always hungry no matter what.
Haunted Shadow (-300 CP)
Something follows you everywhere you go.
`
	a, got := ParsePurchasables(text)
	if a.Type != JumpChainStandard {
		t.Fatalf("type = %s, want JumpChainStandard", a.Type)
	}
	if len(got) != 3 {
		t.Fatalf("parsed %d, want 3", len(got))
	}
	if got[0].CostCP != 200 || got[0].Category != "Drawbacks" {
		t.Errorf("drawback entry = %+v", got[0])
	}
}

func TestParseColonFormat(t *testing.T) {
	_, got := ParsePurchasables(colonText)
	if len(got) != 3 {
		t.Fatalf("parsed %d purchasables, want 3", len(got))
	}
	if got[0].Name != "Enchanted Blade" {
		t.Errorf("first entry name = %q", got[0].Name)
	}
	if got[0].CostCP != 0 {
		t.Errorf("colon entries carry no cost, got %d", got[0].CostCP)
	}
	if !strings.Contains(got[0].Description, "old magic") {
		t.Errorf("description = %q", got[0].Description)
	}
}

func TestMergeDeduplicates(t *testing.T) {
	a := []Purchasable{{Name: "Blade", LineNumber: 3}, {Name: "Cloak", LineNumber: 5}}
	b := []Purchasable{{Name: "Blade", LineNumber: 3}, {Name: "Ring", LineNumber: 1}}
	got := mergeParses(a, b)
	if len(got) != 3 {
		t.Fatalf("merged %d entries, want 3", len(got))
	}
	if got[0].Name != "Ring" {
		t.Errorf("merge should restore line order, got %q first", got[0].Name)
	}
}

func TestValidItemName(t *testing.T) {
	good := []string{"Enchanted Blade", "Fire-Breath", "Dragon's Hoard"}
	for _, n := range good {
		if !validItemName(n) {
			t.Errorf("validItemName(%q) = false, want true", n)
		}
	}
	bad := []string{
		"ab",                   // too short
		"in the beginning",     // sentence starter, lowercase
		"This will be granted", // sentence words
		"With great power",     // starter
		"Double  Space",        // double space
	}
	for _, n := range bad {
		if validItemName(n) {
			t.Errorf("validItemName(%q) = true, want false", n)
		}
	}
}
