package repositories

import (
	"sync"
	"testing"
	"time"

	"scribe/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	store, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIDSequence(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(tmpDir).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	t.Run("sequential IDs", func(t *testing.T) {
		seq := newIDSequence(db, PostSeqKey)
		for want := 1; want <= 5; want++ {
			id, err := seq.next()
			require.NoError(t, err)
			assert.Equal(t, want, id)
		}
		require.NoError(t, seq.release())
	})

	t.Run("different sequence keys", func(t *testing.T) {
		seq := newIDSequence(db, CommentSeqKey)
		id, err := seq.next()
		require.NoError(t, err)
		assert.Equal(t, 1, id, "comment sequence should start from 1")
		require.NoError(t, seq.release())
	})

	t.Run("released lease continues without a gap", func(t *testing.T) {
		seq := newIDSequence(db, PostSeqKey)
		id, err := seq.next()
		require.NoError(t, err)
		assert.Equal(t, 6, id)
		require.NoError(t, seq.release())
		require.NoError(t, seq.release(), "releasing twice is harmless")
	})

	t.Run("concurrent callers get distinct IDs", func(t *testing.T) {
		seq := newIDSequence(db, "test:seq")
		defer seq.release()

		const n = 64
		ids := make(chan int, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := seq.next()
				assert.NoError(t, err)
				ids <- id
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[int]bool{}
		for id := range ids {
			assert.False(t, seen[id], "id %d handed out twice", id)
			seen[id] = true
		}
		assert.Len(t, seen, n)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "post:0000000042", string(postKey(42)))
	assert.Equal(t, "comment:0000000003:0000000011", string(commentKey(3, 11)))
	assert.Less(t, string(postKey(9)), string(postKey(10)), "padded keys must sort numerically")

	id, ok := commentIDFromKey(commentKey(3, 11))
	assert.True(t, ok)
	assert.Equal(t, 11, id)

	_, ok = commentIDFromKey([]byte("garbage"))
	assert.False(t, ok)
}

func TestMarshalEntity(t *testing.T) {
	post := &models.Post{
		ID:         1,
		Title:      "Test Post",
		Content:    "Test Content",
		CategoryID: 2,
		AuthorID:   "u1",
		CreatedAt:  time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
	}

	data, err := marshalEntity(post)
	require.NoError(t, err)

	var decoded models.Post
	require.NoError(t, unmarshalEntity(data, &decoded))
	assert.Equal(t, post.Title, decoded.Title)
	assert.True(t, post.CreatedAt.Equal(decoded.CreatedAt))

	assert.Error(t, unmarshalEntity([]byte("{not json"), &decoded))
}

func TestPaginate(t *testing.T) {
	posts := make([]*models.Post, 5)
	for i := range posts {
		posts[i] = &models.Post{ID: i + 1}
	}

	assert.Len(t, Paginate(posts, 1, 2), 2)
	assert.Len(t, Paginate(posts, 3, 2), 1)
	assert.Empty(t, Paginate(posts, 4, 2))
	assert.Len(t, Paginate(posts, 0, 0), 5, "no page size returns everything")
	assert.Equal(t, 1, Paginate(posts, -1, 2)[0].ID)
}
