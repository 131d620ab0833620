package api

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/jumpchainsearch/jumpchain-server/internal/config"
	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
	"github.com/jumpchainsearch/jumpchain-server/internal/keywords"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
	"github.com/jumpchainsearch/jumpchain-server/internal/store/sqlite"
	"github.com/jumpchainsearch/jumpchain-server/internal/validation"
)

const testAdminToken = "test-admin-token"

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

// setupTestServer creates a test server backed by a temporary database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:       "Test Server",
			Port:       "8080",
			AdminToken: testAdminToken,
		},
		Search: config.SearchConfig{
			MaxQueryLength:  200,
			DefaultPageSize: 50,
			MaxPageSize:     200,
		},
	}

	kw, err := keywords.NewStore("", logger.NewNop())
	require.NoError(t, err)

	validator := validation.New()

	ruleService := service.NewTagRuleService(st, log)
	services := &Services{
		Search:   service.NewSearchService(st, cfg.Search, log),
		Document: service.NewDocumentService(st, log),
		Count:    service.NewDocumentCountService(st, log),
		Tag:      service.NewTagService(st, kw, ruleService, log),
		Rule:     ruleService,
		Voting:   service.NewVotingService(st, validator, log),
	}

	server := NewServer(st, services, cfg, log)
	t.Cleanup(server.Shutdown)

	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.api),
		store:  st,
	}
}

// seedDocument inserts a document directly through the store.
func (ts *testServer) seedDocument(t *testing.T, name, folder, body string) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		ID:            id.MustGenerate(id.PrefixDocument),
		DriveFileID:   "gdrive-" + name,
		Name:          name,
		FolderPath:    folder,
		ExtractedText: body,
		SourceDrive:   "Drive A",
		SizeBytes:     2048,
		FileFormat:    "pdf",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	require.NoError(t, ts.store.CreateDocument(context.Background(), doc))
	return doc
}

// seedTag attaches a tag to a document directly through the store.
func (ts *testServer) seedTag(t *testing.T, documentID, name string, category domain.TagCategory) {
	t.Helper()

	_, err := ts.store.AddTagIfAbsent(context.Background(), documentID, name, category)
	require.NoError(t, err)
}

// adminAuth builds the Authorization header for admin requests.
func adminAuth() string {
	return "Authorization: Bearer " + testAdminToken
}

// userHeader builds the identity header for voting requests.
func userHeader(userID string) string {
	return "X-User-ID: " + userID
}
