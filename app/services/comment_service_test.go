package services

import (
	"context"
	"testing"

	"scribe/app/errs"
	"scribe/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *models.Post) {
		f := setupServices(t)
		post, err := f.Posts.CreatePost(ctx, "u1", &models.Post{Title: "Post", CategoryID: f.category.ID, Published: true})
		require.NoError(t, err)
		return f, post
	}

	t.Run("create comment", func(t *testing.T) {
		f, post := setup(t)

		comment, err := f.Comments.CreateComment(ctx, "u2", post.ID, "  Nice post  ")
		require.NoError(t, err)
		assert.Greater(t, comment.ID, 0)
		assert.Equal(t, "Nice post", comment.Content)
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, &models.Summary{Name: "Brian"}, comment.Author)
		assert.False(t, comment.CreatedAt.IsZero())
	})

	t.Run("create comment errors", func(t *testing.T) {
		f, post := setup(t)

		_, err := f.Comments.CreateComment(ctx, "u2", post.ID, "   ")
		assert.True(t, errs.IsValidation(err))
		assert.Equal(t, "content", errs.FieldOf(err))

		_, err = f.Comments.CreateComment(ctx, "u2", 999, "hi")
		assert.True(t, errs.IsNotFound(err))

		_, err = f.Comments.CreateComment(ctx, "", post.ID, "hi")
		assert.ErrorIs(t, err, errs.ErrUnauthorized)

		all, err := f.Comments.ListAllComments(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, all, "failed creates leave nothing behind")
	})

	t.Run("comments on drafts", func(t *testing.T) {
		f := setupServices(t)
		draft, err := f.Posts.CreatePost(ctx, "u1", &models.Post{Title: "Draft", CategoryID: f.category.ID})
		require.NoError(t, err)

		_, err = f.Comments.CreateComment(ctx, "u2", draft.ID, "sneaky")
		assert.True(t, errs.IsNotFound(err))

		own, err := f.Comments.CreateComment(ctx, "u1", draft.ID, "note to self")
		require.NoError(t, err)

		_, err = f.Comments.GetComment(ctx, "u2", 0, own.ID)
		assert.True(t, errs.IsNotFound(err))

		all, err := f.Comments.ListAllComments(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, all)

		all, err = f.Comments.ListAllComments(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list and get", func(t *testing.T) {
		f, post := setup(t)
		first, err := f.Comments.CreateComment(ctx, "u2", post.ID, "one")
		require.NoError(t, err)
		_, err = f.Comments.CreateComment(ctx, "u1", post.ID, "two")
		require.NoError(t, err)

		comments, err := f.Comments.ListComments(ctx, "", post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "one", comments[0].Content)
		assert.Equal(t, "Ada", comments[1].Author.Name)

		_, err = f.Comments.ListComments(ctx, "", 999)
		assert.True(t, errs.IsNotFound(err))

		got, err := f.Comments.GetComment(ctx, "", post.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "one", got.Content)

		_, err = f.Comments.GetComment(ctx, "", post.ID+1, first.ID)
		assert.True(t, errs.IsNotFound(err), "comment must belong to the addressed post")
	})

	t.Run("update is author only", func(t *testing.T) {
		f, post := setup(t)
		comment, err := f.Comments.CreateComment(ctx, "u2", post.ID, "orig")
		require.NoError(t, err)

		_, err = f.Comments.UpdateComment(ctx, "u1", 0, comment.ID, "hijack")
		assert.True(t, errs.IsForbidden(err), "post author cannot rewrite someone else's comment")

		_, err = f.Comments.UpdateComment(ctx, "u2", 0, comment.ID, " ")
		assert.True(t, errs.IsValidation(err))

		updated, err := f.Comments.UpdateComment(ctx, "u2", post.ID, comment.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
		assert.True(t, updated.CreatedAt.Equal(comment.CreatedAt))

		_, err = f.Comments.UpdateComment(ctx, "u2", 0, 999, "x")
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("delete by comment or post author", func(t *testing.T) {
		f, post := setup(t)
		byBrian, err := f.Comments.CreateComment(ctx, "u2", post.ID, "a")
		require.NoError(t, err)
		another, err := f.Comments.CreateComment(ctx, "u2", post.ID, "b")
		require.NoError(t, err)
		_, err = f.Users.EnsureUser(ctx, models.User{ID: "u3", Name: "Cleo"})
		require.NoError(t, err)

		assert.True(t, errs.IsForbidden(f.Comments.DeleteComment(ctx, "u3", 0, byBrian.ID)))
		assert.ErrorIs(t, f.Comments.DeleteComment(ctx, "", 0, byBrian.ID), errs.ErrUnauthorized)

		require.NoError(t, f.Comments.DeleteComment(ctx, "u2", 0, byBrian.ID))
		require.NoError(t, f.Comments.DeleteComment(ctx, "u1", post.ID, another.ID))

		comments, err := f.Comments.ListComments(ctx, "", post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		assert.True(t, errs.IsNotFound(f.Comments.DeleteComment(ctx, "u2", 0, byBrian.ID)))
	})
}
