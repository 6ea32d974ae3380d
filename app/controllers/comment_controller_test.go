package controllers

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"scribe/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentController(t *testing.T) {
	t.Run("create and list nested", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.createPost(t, "u1", "Post", true)
		base := "/posts/" + strconv.Itoa(post.ID) + "/comments"

		w := env.do(http.MethodPost, base, "u2", `{"content": "Great post!"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
		var comment models.Comment
		decode(t, w, &comment)
		assert.Equal(t, "Great post!", comment.Content)
		assert.Equal(t, post.ID, comment.PostID)
		require.NotNil(t, comment.Author)
		assert.Equal(t, "Brian", comment.Author.Name)

		w = env.do(http.MethodGet, base, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var comments []models.Comment
		decode(t, w, &comments)
		assert.Len(t, comments, 1)

		w = env.do(http.MethodGet, base+"/"+strconv.Itoa(comment.ID), "", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(http.MethodGet, "/posts/999/comments", "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create errors", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.createPost(t, "u1", "Post", true)
		base := "/posts/" + strconv.Itoa(post.ID) + "/comments"

		w := env.do(http.MethodPost, base, "u2", `{"content": "   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var response map[string]string
		decode(t, w, &response)
		assert.Equal(t, "content", response["field"])

		w = env.do(http.MethodPost, base, "u2", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(http.MethodPost, "/posts/999/comments", "u2", `{"content": "hi"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodPost, base, "", `{"content": "hi"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = env.do(http.MethodPost, "/comments", "u2", `{"content": "hi"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		decode(t, w, &response)
		assert.Equal(t, "post_id", response["field"])
	})

	t.Run("flat routes", func(t *testing.T) {
		env := setupTestEnv(t)
		post := env.createPost(t, "u1", "Post", true)

		w := env.do(http.MethodPost, "/comments", "u2", `{"content": "flat", "post_id": `+strconv.Itoa(post.ID)+`}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var comment models.Comment
		decode(t, w, &comment)

		w = env.do(http.MethodGet, "/comments", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		var comments []models.Comment
		decode(t, w, &comments)
		assert.Len(t, comments, 1)

		path := "/comments/" + strconv.Itoa(comment.ID)
		w = env.do(http.MethodPut, path, "u1", `{"content": "edited by post author"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(http.MethodPut, path, "u2", `{"content": "edited"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		decode(t, w, &comment)
		assert.Equal(t, "edited", comment.Content)

		w = env.do(http.MethodDelete, path, "u1", "")
		assert.Equal(t, http.StatusNoContent, w.Code, "post author may moderate")

		w = env.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("nested id must match post", func(t *testing.T) {
		env := setupTestEnv(t)
		first := env.createPost(t, "u1", "First", true)
		second := env.createPost(t, "u1", "Second", true)
		comment, err := env.comments.CreateComment(context.Background(), "u2", first.ID, "hello")
		require.NoError(t, err)

		w := env.do(http.MethodDelete, "/posts/"+strconv.Itoa(second.ID)+"/comments/"+strconv.Itoa(comment.ID), "u2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(http.MethodDelete, "/posts/"+strconv.Itoa(first.ID)+"/comments/"+strconv.Itoa(comment.ID), "u2", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCategoryController(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/categories", "u1", `{"name": "Life", "description": "misc"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var category models.Category
	decode(t, w, &category)
	assert.Equal(t, "Life", category.Name)

	w = env.do(http.MethodPost, "/categories", "u1", `{"description": "nameless"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/categories", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var categories []models.Category
	decode(t, w, &categories)
	assert.Len(t, categories, 2)

	w = env.do(http.MethodGet, "/categories/"+strconv.Itoa(category.ID), "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.createPost(t, "u1", "Uses Tech", false)
	w = env.do(http.MethodDelete, "/categories/"+strconv.Itoa(env.category.ID), "u1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodDelete, "/categories/"+strconv.Itoa(category.ID), "u1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/categories/"+strconv.Itoa(category.ID), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
