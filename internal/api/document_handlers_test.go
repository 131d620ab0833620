package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

func TestGetDocument(t *testing.T) {
	ts := setupTestServer(t)

	doc := ts.seedDocument(t, "Skyrim Adventure", "/Jumps/Fantasy", "body text")
	ts.seedTag(t, doc.ID, "Fantasy", domain.CategoryGenre)

	resp := ts.api.Get("/api/v1/documents/" + doc.ID)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got DocumentResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "Skyrim Adventure", got.Name)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Fantasy", got.Tags[0].Name)

	// The extracted body must never leak into responses.
	assert.NotContains(t, resp.Body.String(), "body text")
}

func TestGetDocument_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/documents/doc_missing")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestTrackView(t *testing.T) {
	ts := setupTestServer(t)

	doc := ts.seedDocument(t, "Viewed", "/Jumps", "")

	for i := 0; i < 3; i++ {
		resp := ts.api.Post("/api/v1/documents/" + doc.ID + "/view")
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Post("/api/v1/documents/" + doc.ID + "/view")
	require.Equal(t, http.StatusOK, resp.Code)

	var vc ViewCountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &vc))

	assert.Equal(t, doc.ID, vc.DocumentID)
	assert.Equal(t, 4, vc.ViewCount)
	assert.False(t, vc.LastViewedAt.IsZero())
}

func TestTrackView_MissingDocument(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/documents/doc_missing/view")

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetPurchasables(t *testing.T) {
	ts := setupTestServer(t)

	body := "Perks\nIron Will (100 CP)\nDragon Shout (400 CP)\n"
	doc := ts.seedDocument(t, "Skyrim", "/Jumps", body)

	resp := ts.api.Get("/api/v1/documents/" + doc.ID + "/purchasables")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got PurchasablesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

	require.Len(t, got.Purchasables, 2)
	assert.Equal(t, "Iron Will", got.Purchasables[0].Name)
	assert.Equal(t, 100, got.Purchasables[0].CostCP)
}

func TestListDrives(t *testing.T) {
	ts := setupTestServer(t)

	ts.seedDocument(t, "One", "/Jumps", "")

	resp := ts.api.Get("/api/v1/drives")

	require.Equal(t, http.StatusOK, resp.Code)

	var got DrivesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

	assert.Equal(t, []string{"Drive A"}, got.Drives)
}

func TestListTags_CategoryFilter(t *testing.T) {
	ts := setupTestServer(t)

	doc := ts.seedDocument(t, "Tagged", "/Jumps", "")
	ts.seedTag(t, doc.ID, "Fantasy", domain.CategoryGenre)
	ts.seedTag(t, doc.ID, "PDF", domain.CategoryFormat)

	resp := ts.api.Get("/api/v1/tags?category=Genre")

	require.Equal(t, http.StatusOK, resp.Code)

	var got TagNamesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))

	assert.Equal(t, []string{"Fantasy"}, got.Tags)
}

func TestListTags_UnknownCategory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/tags?category=Bogus")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
