package repositories

import (
	"errors"
	"fmt"
	"time"

	"scribe/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	seq *idSequence
	now func() time.Time
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db, seq: newIDSequence(db, PostSeqKey), now: time.Now}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate(r.now())
	if err := post.Validate(); err != nil {
		return err
	}

	id, err := r.seq.next()
	if err != nil {
		return err
	}
	post.ID = id
	return update(r.db, func(txn *badger.Txn) error {
		return setEntity(txn, postKey(id), post.Stored())
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), fmt.Sprintf("post %d", id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves a page of posts matching filter, newest first
func (r *BadgerPostRepository) List(filter PostFilter) ([]*models.Post, int, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if filter.Match(&post) {
				posts = append(posts, &post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	SortNewestFirst(posts)
	total := len(posts)
	page := Paginate(posts, filter.Page, filter.PerPage)
	if page == nil {
		page = []*models.Post{}
	}
	return page, total, nil
}

// CountByCategory counts posts, drafts included, that reference categoryID
func (r *BadgerPostRepository) CountByCategory(categoryID int) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if post.CategoryID == categoryID {
				count++
			}
			return nil
		})
	})
	return count, err
}

// Update replaces the stored fields of an existing post and stamps updated_at
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := postKey(post.ID)

		var existing models.Post
		if err := getEntity(txn, key, fmt.Sprintf("post %d", post.ID), &existing); err != nil {
			return err
		}
		post.CreatedAt = existing.CreatedAt
		// updated_at never moves backwards, even on a coarse clock.
		stamp := r.now()
		if !stamp.After(existing.UpdatedAt) {
			stamp = existing.UpdatedAt.Add(time.Microsecond)
		}
		post.UpdatedAt = stamp

		if err := post.Validate(); err != nil {
			return err
		}
		return setEntity(txn, key, post.Stored())
	})
}

// Delete deletes a post by ID. Comments are left untouched.
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := postKey(id)
		if err := exists(txn, key, fmt.Sprintf("post %d", id)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// DeleteWithComments deletes a post and every comment filed under it in one
// transaction and reports how many comments went with it.
func (r *BadgerPostRepository) DeleteWithComments(id int) (int, error) {
	removed := 0
	err := update(r.db, func(txn *badger.Txn) error {
		key := postKey(id)
		if err := exists(txn, key, fmt.Sprintf("post %d", id)); err != nil {
			return err
		}
		// Reading the marker makes a comment committed meanwhile abort this
		// transaction, so the retry sees it.
		if _, err := txn.Get(threadKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		comments := keysWithPrefix(txn, commentPostPrefix(id))
		for _, k := range comments {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		if err := txn.Delete(threadKey(id)); err != nil {
			return err
		}
		removed = len(comments)
		return txn.Delete(key)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
