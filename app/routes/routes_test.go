package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scribe/app/config"
	"scribe/app/models"
	"scribe/app/repositories"
	"scribe/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	id, name string
}

var (
	ada   = user{"u1", "Ada"}
	brian = user{"u2", "Brian"}
	anon  = user{}
)

func setupTestServer(t *testing.T) (*httptest.Server, *repositories.Store) {
	store, err := repositories.Open(repositories.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	router, err := SetupRoutes(store, cfg)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, store
}

func call(t *testing.T, server *httptest.Server, as user, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if as.id != "" {
		req.Header.Set("X-User-ID", as.id)
		req.Header.Set("X-User-Name", as.name)
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestEndToEndScenario(t *testing.T) {
	server, _ := setupTestServer(t)

	// Create category
	status, body := call(t, server, ada, "POST", "/api/categories", `{"name":"Tech"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	var category models.Category
	require.NoError(t, json.Unmarshal(body, &category))

	// Create published post as U1
	status, body = call(t, server, ada, "POST", "/api/posts",
		fmt.Sprintf(`{"title":"Hello","content":"<p>First words</p>","category_id":%d,"published":true}`, category.ID))
	require.Equal(t, http.StatusCreated, status, string(body))
	var post models.Post
	require.NoError(t, json.Unmarshal(body, &post))
	assert.True(t, post.Published)
	assert.Equal(t, "Tech", post.Category.Name)
	assert.Equal(t, "Ada", post.Author.Name)

	// Listing includes it first
	status, body = call(t, server, anon, "GET", "/api/posts", "")
	require.Equal(t, http.StatusOK, status)
	var page services.Page
	require.NoError(t, json.Unmarshal(body, &page))
	require.NotEmpty(t, page.Posts)
	assert.Equal(t, post.ID, page.Posts[0].ID)

	path := fmt.Sprintf("/api/posts/%d", post.ID)

	// Update by U2 is forbidden
	status, _ = call(t, server, brian, "PUT", path, `{"title":"Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, status)

	// Update by U1 succeeds and moves updated_at
	status, body = call(t, server, ada, "PUT", path, `{"title":"Hello v2"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var updated models.Post
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Hello v2", updated.Title)
	assert.True(t, updated.UpdatedAt.After(post.UpdatedAt))

	// Comment as U2
	status, body = call(t, server, brian, "POST", path+"/comments", `{"content":"Nice one"}`)
	require.Equal(t, http.StatusCreated, status, string(body))

	// The post shows one comment with U2's name
	status, body = call(t, server, anon, "GET", path, "")
	require.Equal(t, http.StatusOK, status)
	var shown models.Post
	require.NoError(t, json.Unmarshal(body, &shown))
	require.Len(t, shown.Comments, 1)
	assert.Equal(t, "Brian", shown.Comments[0].Author.Name)

	// Delete by U1, then it is gone
	status, body = call(t, server, ada, "DELETE", path, "")
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)

	status, _ = call(t, server, anon, "GET", path, "")
	assert.Equal(t, http.StatusNotFound, status)

	// Its comments went with it
	status, body = call(t, server, anon, "GET", "/api/comments", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestRoutes(t *testing.T) {
	server, store := setupTestServer(t)

	t.Run("healthz", func(t *testing.T) {
		status, body := call(t, server, anon, "GET", "/api/healthz", "")
		assert.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
	})

	t.Run("unknown route", func(t *testing.T) {
		status, body := call(t, server, anon, "GET", "/api/nope", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Contains(t, string(body), "error")
	})

	t.Run("wrong method", func(t *testing.T) {
		for _, tc := range []struct{ method, path string }{
			{"PATCH", "/api/posts/1"},
			{"POST", "/api/posts/1/comments/2"},
			{"PUT", "/api/categories"},
			{"POST", "/api/healthz"},
		} {
			status, body := call(t, server, user{"u1", "One"}, tc.method, tc.path, "")
			assert.Equal(t, http.StatusMethodNotAllowed, status, tc.method+" "+tc.path)
			assert.JSONEq(t, `{"error":"method not allowed"}`, string(body))
		}
	})

	t.Run("non numeric id", func(t *testing.T) {
		status, _ := call(t, server, anon, "GET", "/api/posts/abc", "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("identity headers record users", func(t *testing.T) {
		status, _ := call(t, server, user{"u9", "Nine"}, "GET", "/api/posts", "")
		assert.Equal(t, http.StatusOK, status)

		stored, err := store.Users.GetByID("u9")
		require.NoError(t, err)
		assert.Equal(t, "Nine", stored.Name)
	})

	t.Run("json content type", func(t *testing.T) {
		resp, err := server.Client().Get(server.URL + "/api/categories")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	})

	t.Run("mutations need identity", func(t *testing.T) {
		status, _ := call(t, server, anon, "POST", "/api/categories", `{"name":"Anon"}`)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
