package repositories

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"scribe/app/errs"
	"scribe/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db  *badger.DB
	seq *idSequence
	now func() time.Time
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db, seq: newIDSequence(db, CommentSeqKey), now: time.Now}
}

// Create creates a new comment under an existing post
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate(r.now())
	if err := comment.Validate(); err != nil {
		return err
	}

	id, err := r.seq.next()
	if err != nil {
		return err
	}
	stored := comment.Stored()
	stored.ID = id

	err = update(r.db, func(txn *badger.Txn) error {
		if err := exists(txn, postKey(stored.PostID), fmt.Sprintf("post %d", stored.PostID)); err != nil {
			return err
		}
		// Touch the thread marker so a concurrent cascade delete conflicts.
		if err := txn.Set(threadKey(stored.PostID), []byte(strconv.Itoa(id))); err != nil {
			return err
		}
		// Save comment with post ID in key for efficient listing
		return setEntity(txn, commentKey(stored.PostID, id), stored)
	})
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// findKey locates the key of comment id. Keys are scanned without fetching
// values since the id is the key suffix.
func findKey(txn *badger.Txn, id int) ([]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(CommentKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		if got, ok := commentIDFromKey(key); ok && got == id {
			return key, nil
		}
	}
	return nil, errs.NotFound("comment %d not found", id)
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := findKey(txn, id)
		if err != nil {
			return err
		}
		return getEntity(txn, key, fmt.Sprintf("comment %d", id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// List retrieves every comment ordered by creation
func (r *BadgerCommentRepository) List() ([]*models.Comment, error) {
	comments, err := r.listPrefix([]byte(CommentKeyPrefix))
	if err != nil {
		return nil, err
	}
	// Keys group by post; callers of the flat list expect creation order.
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// ListByPost retrieves all comments for a post in creation order
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.listPrefix(commentPostPrefix(postID))
}

func (r *BadgerCommentRepository) listPrefix(prefix []byte) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, func(val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return err
			}
			comments = append(comments, &comment)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates an existing comment. The post and creation time are fixed
// at creation and cannot be moved.
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := findKey(txn, comment.ID)
		if err != nil {
			return err
		}
		var existing models.Comment
		if err := getEntity(txn, key, fmt.Sprintf("comment %d", comment.ID), &existing); err != nil {
			return err
		}
		comment.PostID = existing.PostID
		comment.CreatedAt = existing.CreatedAt

		if err := comment.Validate(); err != nil {
			return err
		}
		return setEntity(txn, key, comment.Stored())
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key, err := findKey(txn, id)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
