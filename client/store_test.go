package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"scribe/app/config"
	"scribe/app/errs"
	"scribe/app/repositories"
	"scribe/app/routes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestAPI(t *testing.T) (ada, brian *API) {
	store, err := repositories.Open(repositories.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	router, err := routes.SetupRoutes(store, cfg)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	base := server.URL + cfg.Server.APIPrefix
	ada = NewAPI(base, WithHTTPClient(server.Client()), WithIdentity(Identity{ID: "u1", Name: "Ada"}))
	brian = NewAPI(base, WithHTTPClient(server.Client()), WithIdentity(Identity{ID: "u2", Name: "Brian"}))
	return ada, brian
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	api, other := setupTestAPI(t)

	category, err := api.CreateCategory(ctx, "Tech", "")
	require.NoError(t, err)

	store := NewStore(api)
	defer store.Close()

	t.Run("fetch", func(t *testing.T) {
		_, err := api.CreatePost(ctx, NewPost{Title: "Existing", CategoryID: category.ID, Published: true})
		require.NoError(t, err)

		require.NoError(t, store.FetchPosts(ctx, PostQuery{}))
		require.NoError(t, store.FetchCategories(ctx))
		assert.False(t, store.Loading())
		require.Len(t, store.Posts(), 1)
		assert.Equal(t, "Existing", store.Posts()[0].Title)
		require.Len(t, store.Categories(), 1)
		assert.Equal(t, "Tech", store.Categories()[0].Name)
	})

	t.Run("create prepends", func(t *testing.T) {
		post, err := store.CreatePost(ctx, NewPost{Title: "Fresh", Content: "<p>hi</p>", CategoryID: category.ID, Published: true})
		require.NoError(t, err)
		posts := store.Posts()
		require.Len(t, posts, 2)
		assert.Equal(t, post.ID, posts[0].ID)
		assert.Equal(t, "Ada", posts[0].Author.Name)
	})

	t.Run("update replaces in place", func(t *testing.T) {
		before := store.Posts()
		target := before[1]
		title := "Existing v2"

		updated, err := store.UpdatePost(ctx, target.ID, PostChanges{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)

		after := store.Posts()
		require.Len(t, after, 2)
		assert.Equal(t, title, after[1].Title)
		assert.Equal(t, before[0].ID, after[0].ID, "order is kept")
		assert.Equal(t, "Existing", before[1].Title, "earlier snapshots are not mutated")
	})

	t.Run("create comment appends", func(t *testing.T) {
		target := store.Posts()[0]
		comment, err := store.CreateComment(ctx, target.ID, "first!")
		require.NoError(t, err)
		assert.Equal(t, "Ada", comment.Author.Name)

		cached := store.Posts()[0]
		require.Len(t, cached.Comments, 1)
		assert.Equal(t, comment.ID, cached.Comments[0].ID)
		assert.Empty(t, target.Comments)
	})

	t.Run("failed mutations leave state untouched", func(t *testing.T) {
		snapshot := store.Posts()

		foreign := NewStore(other)
		title := "Hijacked"
		_, err := foreign.UpdatePost(ctx, snapshot[0].ID, PostChanges{Title: &title})
		assert.True(t, errs.IsForbidden(err))

		_, err = store.CreatePost(ctx, NewPost{Title: "", CategoryID: category.ID})
		assert.True(t, errs.IsValidation(err))
		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "title", apiErr.Field)

		_, err = store.CreateComment(ctx, snapshot[0].ID, "   ")
		assert.True(t, errs.IsValidation(err))

		err = store.DeletePost(ctx, 9999)
		assert.True(t, errs.IsNotFound(err))

		assert.Equal(t, snapshot, store.Posts())
	})

	t.Run("delete removes", func(t *testing.T) {
		target := store.Posts()[0]
		require.NoError(t, store.DeletePost(ctx, target.ID))
		posts := store.Posts()
		require.Len(t, posts, 1)
		assert.NotEqual(t, target.ID, posts[0].ID)

		_, err := api.GetPost(ctx, target.ID)
		assert.True(t, errs.IsNotFound(err))
	})
}

type failingRemote struct {
	Remote
	err error
}

func (f failingRemote) ListPosts(context.Context, PostQuery) (*PostPage, error) {
	return nil, f.err
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch failure keeps state", func(t *testing.T) {
		boom := errors.New("boom")
		store := NewStore(failingRemote{err: boom})
		assert.ErrorIs(t, store.FetchPosts(ctx, PostQuery{}), boom)
		assert.False(t, store.Loading())
		assert.Empty(t, store.Posts())
	})

	t.Run("closed", func(t *testing.T) {
		store := NewStore(failingRemote{})
		require.NoError(t, store.Close())
		assert.ErrorIs(t, store.Close(), ErrClosed)

		assert.ErrorIs(t, store.FetchPosts(ctx, PostQuery{}), ErrClosed)
		assert.ErrorIs(t, store.FetchCategories(ctx), ErrClosed)
		_, err := store.CreatePost(ctx, NewPost{})
		assert.ErrorIs(t, err, ErrClosed)
		_, err = store.UpdatePost(ctx, 1, PostChanges{})
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, store.DeletePost(ctx, 1), ErrClosed)
		_, err = store.CreateComment(ctx, 1, "x")
		assert.ErrorIs(t, err, ErrClosed)
		assert.Empty(t, store.Posts())
	})
}

func TestPostQueryValues(t *testing.T) {
	assert.Empty(t, PostQuery{}.values().Encode())
	assert.Equal(t, "author=u1&category=3&page=2&per_page=5&search=go",
		PostQuery{Search: "go", CategoryID: 3, AuthorID: "u1", Page: 2, PerPage: 5}.values().Encode())
}

func TestErrorUnwrap(t *testing.T) {
	err := &Error{Status: 409, Message: "conflict"}
	assert.True(t, errs.IsConflict(err))
	assert.Equal(t, "409: conflict", err.Error())
	assert.Nil(t, (&Error{Status: 500}).Unwrap())
	assert.Equal(t, "400: bad (title)", (&Error{Status: 400, Message: "bad", Field: "title"}).Error())
}
