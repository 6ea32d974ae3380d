package repositories

import (
	"fmt"
	"time"

	"scribe/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCategoryRepository implements CategoryRepository using BadgerDB
type BadgerCategoryRepository struct {
	db  *badger.DB
	seq *idSequence
	now func() time.Time
}

func NewBadgerCategoryRepository(db *badger.DB) *BadgerCategoryRepository {
	return &BadgerCategoryRepository{db: db, seq: newIDSequence(db, CategorySeqKey), now: time.Now}
}

func (r *BadgerCategoryRepository) Create(category *models.Category) error {
	category.BeforeCreate(r.now())
	if err := category.Validate(); err != nil {
		return err
	}

	id, err := r.seq.next()
	if err != nil {
		return err
	}
	category.ID = id
	return update(r.db, func(txn *badger.Txn) error {
		return setEntity(txn, categoryKey(id), category)
	})
}

func (r *BadgerCategoryRepository) GetByID(id int) (*models.Category, error) {
	var category models.Category
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, categoryKey(id), fmt.Sprintf("category %d", id), &category)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns every category in id order
func (r *BadgerCategoryRepository) List() ([]*models.Category, error) {
	categories := []*models.Category{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, []byte(CategoryKeyPrefix), func(val []byte) error {
			var category models.Category
			if err := unmarshalEntity(val, &category); err != nil {
				return err
			}
			categories = append(categories, &category)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Delete removes a category. Posts referencing it are not touched.
func (r *BadgerCategoryRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := categoryKey(id)
		if err := exists(txn, key, fmt.Sprintf("category %d", id)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
