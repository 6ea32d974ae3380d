package repositories

import (
	"errors"
	"fmt"
	"time"

	"scribe/app/errs"
	"scribe/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db, now: time.Now}
}

func (r *BadgerUserRepository) Ensure(user *models.User) (*models.User, error) {
	user.BeforeCreate(r.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}

	var stored models.User
	err := update(r.db, func(txn *badger.Txn) error {
		key := userKey(user.ID)
		err := getEntity(txn, key, "user", &stored)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		stored = *user
		return setEntity(txn, key, &stored)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *BadgerUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, userKey(id), fmt.Sprintf("user %q", id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
