package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"scribe/app/errs"

	"github.com/dgraph-io/badger/v4"
	"github.com/jpillora/backoff"
	jsoniter "github.com/json-iterator/go"
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix     = "user:"
	CategoryKeyPrefix = "category:"
	PostKeyPrefix     = "post:"
	CommentKeyPrefix  = "comment:"

	// Sequence keys for auto-incrementing IDs
	CategorySeqKey = "seq:category"
	PostSeqKey     = "seq:post"
	CommentSeqKey  = "seq:comment"

	// ThreadKeyPrefix marks posts that have had comments written under them.
	ThreadKeyPrefix = "thread:"

	seqBandwidth   = 100
	retryBaseDelay = time.Millisecond
	retryMaxDelay  = 50 * time.Millisecond
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errs.ErrNotFound

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Numeric ids are zero padded so keys iterate in id order.
func categoryKey(id int) []byte { return []byte(fmt.Sprintf("%s%010d", CategoryKeyPrefix, id)) }
func postKey(id int) []byte     { return []byte(fmt.Sprintf("%s%010d", PostKeyPrefix, id)) }
func userKey(id string) []byte  { return []byte(UserKeyPrefix + id) }

func commentKey(postID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", CommentKeyPrefix, postID, id))
}

func commentPostPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

func threadKey(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d", ThreadKeyPrefix, postID))
}

// commentIDFromKey extracts the comment id from "comment:<post>:<id>".
func commentIDFromKey(key []byte) (int, bool) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(s[i+1:])
	return id, err == nil
}

// idSequence hands out ids from a badger.Sequence. The lease is taken on
// first use so maintenance commands that never create records leave the
// stored counter alone.
type idSequence struct {
	db  *badger.DB
	key []byte

	mu  sync.Mutex
	seq *badger.Sequence
}

func newIDSequence(db *badger.DB, key string) *idSequence {
	return &idSequence{db: db, key: []byte(key)}
}

// next returns the next id. Ids start at 1.
func (s *idSequence) next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		seq, err := s.db.GetSequence(s.key, seqBandwidth)
		if err != nil {
			return 0, fmt.Errorf("failed to lease sequence %s: %w", s.key, err)
		}
		s.seq = seq
	}
	n, err := s.seq.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	}
	return int(n) + 1, nil
}

// release writes the unused part of the lease back so the next lease
// continues without a gap.
func (s *idSequence) release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq == nil {
		return nil
	}
	err := s.seq.Release()
	s.seq = nil
	return err
}

// update runs fn in a read-write transaction until it commits. Badger only
// reports a conflict after another writer committed, so every retry follows
// progress and the last writer wins.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	retry := &backoff.Backoff{Min: retryBaseDelay, Max: retryMaxDelay, Factor: 2, Jitter: true}
	for {
		err := db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(retry.Duration())
	}
}

// exists reports ErrNotFound when key is absent.
func exists(txn *badger.Txn, key []byte, what string) error {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errs.NotFound("%s not found", what)
	}
	return err
}

// getEntity loads and decodes the value stored at key.
func getEntity(txn *badger.Txn, key []byte, what string, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errs.NotFound("%s not found", what)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// setEntity encodes entity and stores it at key.
func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// scan decodes every value under prefix, handing each raw value to fn.
func scan(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// keysWithPrefix copies every key under prefix without fetching values.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
