package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
)

func TestSearch_ReturnsMatches(t *testing.T) {
	ts := setupTestServer(t)

	ts.seedDocument(t, "Skyrim Adventure", "/Jumps/Fantasy", "dragons and shouts")
	ts.seedDocument(t, "Pokemon Journey", "/Jumps/Anime", "gotta catch them all")

	resp := ts.api.Get("/api/v1/search?q=skyrim")

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Skyrim Adventure", result.Items[0].Name)
	assert.Equal(t, 1, result.TotalItems)
}

func TestSearch_NoQueryListsAll(t *testing.T) {
	ts := setupTestServer(t)

	ts.seedDocument(t, "Alpha", "/Jumps", "")
	ts.seedDocument(t, "Beta", "/Jumps", "")

	resp := ts.api.Get("/api/v1/search")

	require.Equal(t, http.StatusOK, resp.Code)

	var result SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))

	assert.Equal(t, 2, result.TotalItems)
	assert.Len(t, result.Items, 2)
}

func TestSearch_TagFilter(t *testing.T) {
	ts := setupTestServer(t)

	tagged := ts.seedDocument(t, "Dragon Quest", "/Jumps", "")
	ts.seedDocument(t, "Dragon Age", "/Jumps", "")
	ts.seedTag(t, tagged.ID, "Fantasy", domain.CategoryGenre)

	resp := ts.api.Get("/api/v1/search?q=dragon&tag=Fantasy")

	require.Equal(t, http.StatusOK, resp.Code)

	var result SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))

	require.Len(t, result.Items, 1)
	assert.Equal(t, "Dragon Quest", result.Items[0].Name)
	require.Len(t, result.Items[0].Tags, 1)
	assert.Equal(t, "Fantasy", result.Items[0].Tags[0].Name)
}

func TestSearch_Pagination(t *testing.T) {
	ts := setupTestServer(t)

	for _, name := range []string{"One", "Two", "Three"} {
		ts.seedDocument(t, name, "/Jumps", "")
	}

	resp := ts.api.Get("/api/v1/search?page=2&page_size=1")

	require.Equal(t, http.StatusOK, resp.Code)

	var result SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))

	assert.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, 3, result.TotalItems)
	assert.Equal(t, 3, result.TotalPages)
}

func TestSearch_EmptyCatalog(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=anything")

	require.Equal(t, http.StatusOK, resp.Code)

	var result SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalItems)
}
