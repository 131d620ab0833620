package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/errors"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
)

func makeTestSuggestion(sid, docID, tagName string) *domain.TagSuggestion {
	return &domain.TagSuggestion{
		ID:          sid,
		DocumentID:  docID,
		TagName:     tagName,
		TagCategory: domain.CategoryUserFacing,
		SuggestedBy: "user-1",
		Reason:      "fits the document",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}
}

func TestCreateAndGetSuggestion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v1", "gdrive-v1", "Voted")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	sug := makeTestSuggestion("sug-1", "doc-v1", "slow-burn")
	if err := s.CreateSuggestion(ctx, sug); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	got, err := s.GetSuggestion(ctx, "sug-1")
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.TagName != "slow-burn" {
		t.Errorf("TagName: got %q, want %q", got.TagName, "slow-burn")
	}
	if got.Status != domain.StatusPending {
		t.Errorf("Status: got %q, want Pending", got.Status)
	}
	if got.ResolvedAt != nil {
		t.Errorf("ResolvedAt: expected nil, got %v", got.ResolvedAt)
	}
	if len(got.Votes) != 0 {
		t.Errorf("Votes: expected none, got %d", len(got.Votes))
	}

	if _, err := s.GetSuggestion(ctx, "sug-missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v2", "gdrive-v2", "Voted")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-2", "doc-v2", "angst")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	v := &domain.TagVote{
		TargetKind: domain.TargetSuggestion,
		TargetID:   "sug-2",
		UserID:     "user-a",
		InFavor:    true,
		Weight:     1.0,
		CastAt:     time.Now(),
	}
	created, err := s.UpsertVote(ctx, v)
	if err != nil {
		t.Fatalf("UpsertVote: %v", err)
	}
	if !created {
		t.Error("expected created=true on first vote")
	}
	firstID := v.ID

	// Re-voting flips the vote in place and keeps the original row.
	revote := &domain.TagVote{
		ID:         id.MustGenerate(id.PrefixVote),
		TargetKind: domain.TargetSuggestion,
		TargetID:   "sug-2",
		UserID:     "user-a",
		InFavor:    false,
		Weight:     1.0,
		CastAt:     time.Now().Add(time.Minute),
	}
	created, err = s.UpsertVote(ctx, revote)
	if err != nil {
		t.Fatalf("UpsertVote re-vote: %v", err)
	}
	if created {
		t.Error("expected created=false on re-vote")
	}
	if revote.ID != firstID {
		t.Errorf("expected re-vote to adopt existing ID %q, got %q", firstID, revote.ID)
	}

	votes, err := s.ListVotes(ctx, domain.TargetSuggestion, "sug-2")
	if err != nil {
		t.Fatalf("ListVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected 1 vote, got %d", len(votes))
	}
	if votes[0].InFavor {
		t.Error("expected the re-vote's against position to stick")
	}

	// A different user gets their own row.
	other := &domain.TagVote{
		TargetKind: domain.TargetSuggestion,
		TargetID:   "sug-2",
		UserID:     "user-b",
		InFavor:    true,
		Weight:     1.0,
		CastAt:     time.Now(),
	}
	if created, err = s.UpsertVote(ctx, other); err != nil || !created {
		t.Fatalf("UpsertVote other user: created=%v err=%v", created, err)
	}
	if votes, err = s.ListVotes(ctx, domain.TargetSuggestion, "sug-2"); err != nil || len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d (err %v)", len(votes), err)
	}
}

func TestResolveSuggestion_ApproveAppliesTagAndRule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v3", "gdrive-v3", "Voted")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-3", "doc-v3", "canon")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	rule := &domain.ApprovedTagRule{
		ID:           id.MustGenerate(id.PrefixRule),
		DriveFileID:  "gdrive-v3",
		TagName:      "canon",
		TagCategory:  domain.CategoryUserFacing,
		RuleType:     domain.RuleAdd,
		Active:       true,
		Source:       "consensus",
		VotesInFavor: 60,
		VotesAgainst: 5,
		CreatedAt:    time.Now(),
	}
	won, err := s.ResolveSuggestion(ctx, "sug-3", true, rule)
	if err != nil {
		t.Fatalf("ResolveSuggestion: %v", err)
	}
	if !won {
		t.Fatal("expected first resolution to win")
	}

	got, err := s.GetSuggestion(ctx, "sug-3")
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.Status != domain.StatusApplied {
		t.Errorf("Status: got %q, want Applied", got.Status)
	}
	if got.ResolvedAt == nil {
		t.Error("ResolvedAt: expected a timestamp")
	}

	// The tag landed on the document.
	doc, err := s.GetDocument(ctx, "doc-v3")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !doc.HasTag("canon") {
		t.Errorf("expected applied tag, got %+v", doc.Tags)
	}

	// The rule was persisted.
	rules, err := s.ListRules(ctx, true, nil)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(rules) != 1 || rules[0].TagName != "canon" || rules[0].RuleType != domain.RuleAdd {
		t.Errorf("rules: got %+v", rules)
	}

	// A second resolution finds nothing pending.
	won, err = s.ResolveSuggestion(ctx, "sug-3", true, rule)
	if err != nil {
		t.Fatalf("ResolveSuggestion second: %v", err)
	}
	if won {
		t.Error("expected second resolution to lose the guard")
	}
}

func TestResolveSuggestion_Reject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v4", "gdrive-v4", "Voted")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-4", "doc-v4", "spam")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}

	won, err := s.ResolveSuggestion(ctx, "sug-4", false, nil)
	if err != nil {
		t.Fatalf("ResolveSuggestion: %v", err)
	}
	if !won {
		t.Fatal("expected resolution to win")
	}

	got, err := s.GetSuggestion(ctx, "sug-4")
	if err != nil {
		t.Fatalf("GetSuggestion: %v", err)
	}
	if got.Status != domain.StatusRejected {
		t.Errorf("Status: got %q, want Rejected", got.Status)
	}

	// No tag, no rule.
	doc, err := s.GetDocument(ctx, "doc-v4")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.HasTag("spam") {
		t.Error("rejected suggestion must not apply the tag")
	}
}

func TestResolveRemoval_ApproveDeletesTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v5", "gdrive-v5", "Voted")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := s.AddTagIfAbsent(ctx, "doc-v5", "wrong-tag", domain.CategoryGenre); err != nil {
		t.Fatalf("AddTagIfAbsent: %v", err)
	}

	req := &domain.TagRemovalRequest{
		ID:          "rem-1",
		DocumentID:  "doc-v5",
		TagName:     "wrong-tag",
		TagCategory: domain.CategoryGenre,
		RequestedBy: "user-1",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.CreateRemovalRequest(ctx, req); err != nil {
		t.Fatalf("CreateRemovalRequest: %v", err)
	}

	rule := &domain.ApprovedTagRule{
		ID:          id.MustGenerate(id.PrefixRule),
		DriveFileID: "gdrive-v5",
		TagName:     "wrong-tag",
		TagCategory: domain.CategoryGenre,
		RuleType:    domain.RuleRemove,
		Active:      true,
		Source:      "consensus",
		CreatedAt:   time.Now(),
	}
	won, err := s.ResolveRemoval(ctx, "rem-1", true, rule)
	if err != nil {
		t.Fatalf("ResolveRemoval: %v", err)
	}
	if !won {
		t.Fatal("expected resolution to win")
	}

	got, err := s.GetRemovalRequest(ctx, "rem-1")
	if err != nil {
		t.Fatalf("GetRemovalRequest: %v", err)
	}
	if got.Status != domain.StatusRemoved {
		t.Errorf("Status: got %q, want Removed", got.Status)
	}

	doc, err := s.GetDocument(ctx, "doc-v5")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.HasTag("wrong-tag") {
		t.Error("expected tag to be removed")
	}

	// Idempotence under the pending guard.
	won, err = s.ResolveRemoval(ctx, "rem-1", true, rule)
	if err != nil {
		t.Fatalf("ResolveRemoval second: %v", err)
	}
	if won {
		t.Error("expected second resolution to lose the guard")
	}
}

func TestListPendingSuggestions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v6", "gdrive-v6", "A")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := s.CreateDocument(ctx, makeTestDocument("doc-v7", "gdrive-v7", "B")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-p1", "doc-v6", "one")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-p2", "doc-v7", "two")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	if err := s.CreateSuggestion(ctx, makeTestSuggestion("sug-p3", "doc-v6", "three")); err != nil {
		t.Fatalf("CreateSuggestion: %v", err)
	}
	// Resolve one so it drops out of the pending set.
	if _, err := s.ResolveSuggestion(ctx, "sug-p3", false, nil); err != nil {
		t.Fatalf("ResolveSuggestion: %v", err)
	}

	all, err := s.ListPendingSuggestions(ctx, "")
	if err != nil {
		t.Fatalf("ListPendingSuggestions(all): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(all))
	}

	forDoc, err := s.ListPendingSuggestions(ctx, "doc-v6")
	if err != nil {
		t.Fatalf("ListPendingSuggestions(doc): %v", err)
	}
	if len(forDoc) != 1 || forDoc[0].ID != "sug-p1" {
		t.Errorf("for doc-v6: got %+v", forDoc)
	}
}

func TestVotingConfig_SeedsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetVotingConfig(ctx)
	if err != nil {
		t.Fatalf("GetVotingConfig: %v", err)
	}
	want := domain.DefaultVotingConfiguration()
	if cfg.MinimumVotesRequired != want.MinimumVotesRequired {
		t.Errorf("MinimumVotesRequired: got %d, want %d", cfg.MinimumVotesRequired, want.MinimumVotesRequired)
	}
	if cfg.RequiredAgreementPercentage != want.RequiredAgreementPercentage {
		t.Errorf("RequiredAgreementPercentage: got %v, want %v", cfg.RequiredAgreementPercentage, want.RequiredAgreementPercentage)
	}
	if !cfg.AutoApplyEnabled {
		t.Error("AutoApplyEnabled: expected true by default")
	}

	// An update sticks across reads.
	cfg.MinimumVotesRequired = 10
	cfg.ScaleByPopularity = false
	if err := s.UpdateVotingConfig(ctx, cfg); err != nil {
		t.Fatalf("UpdateVotingConfig: %v", err)
	}
	again, err := s.GetVotingConfig(ctx)
	if err != nil {
		t.Fatalf("GetVotingConfig again: %v", err)
	}
	if again.MinimumVotesRequired != 10 || again.ScaleByPopularity {
		t.Errorf("updated config did not persist: %+v", again)
	}
}

func TestUserOverrides(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateDocument(ctx, makeTestDocument("doc-v8", "gdrive-v8", "Mine")); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	o := &domain.UserTagOverride{
		ID:          id.MustGenerate(id.PrefixOverride),
		UserID:      "user-1",
		DocumentID:  "doc-v8",
		TagName:     "favorite",
		TagCategory: domain.CategoryUserFacing,
		Added:       true,
		CreatedAt:   time.Now(),
	}
	if err := s.UpsertUserOverride(ctx, o); err != nil {
		t.Fatalf("UpsertUserOverride: %v", err)
	}

	// Flipping the same override replaces it rather than duplicating.
	o2 := *o
	o2.ID = id.MustGenerate(id.PrefixOverride)
	o2.Added = false
	if err := s.UpsertUserOverride(ctx, &o2); err != nil {
		t.Fatalf("UpsertUserOverride flip: %v", err)
	}

	got, err := s.ListUserOverrides(ctx, "user-1", "doc-v8")
	if err != nil {
		t.Fatalf("ListUserOverrides: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 override, got %d", len(got))
	}
	if got[0].Added {
		t.Error("expected the flipped (hidden) state to win")
	}

	// Other users see nothing.
	other, err := s.ListUserOverrides(ctx, "user-2", "")
	if err != nil {
		t.Fatalf("ListUserOverrides other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no overrides for user-2, got %d", len(other))
	}
}
