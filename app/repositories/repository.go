package repositories

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Options configures how the store opens its Badger database.
type Options struct {
	Path     string
	InMemory bool
	Logger   *zerolog.Logger // nil silences badger
}

// Store owns the Badger database and the repositories built on it.
type Store struct {
	db *badger.DB

	Users      *BadgerUserRepository
	Categories *BadgerCategoryRepository
	Posts      *BadgerPostRepository
	Comments   *BadgerCommentRepository
}

// Open opens (or creates) the database described by opts.
func Open(opts Options) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("database path is required")
		}
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	if opts.Logger != nil {
		bopts = bopts.WithLogger(badgerLogger{opts.Logger.With().Str("component", "badger").Logger()})
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already open database.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewBadgerUserRepository(db),
		Categories: NewBadgerCategoryRepository(db),
		Posts:      NewBadgerPostRepository(db),
		Comments:   NewBadgerCommentRepository(db),
	}
}

// DB exposes the underlying database for maintenance commands.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Close hands unused ids back to the database, then closes it.
func (s *Store) Close() error {
	return errors.Join(s.releaseSequences(), s.db.Close())
}

// Clear drops every key, sequences included.
func (s *Store) Clear() error {
	if err := s.releaseSequences(); err != nil {
		return err
	}
	return s.db.DropAll()
}

func (s *Store) releaseSequences() error {
	return errors.Join(
		s.Categories.seq.release(),
		s.Posts.seq.release(),
		s.Comments.seq.release(),
	)
}

// CollectGarbage rewrites value log files until badger reports nothing left
// to reclaim. In-memory databases have no value log and are skipped.
func (s *Store) CollectGarbage(discardRatio float64) error {
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// badgerLogger routes badger's printf-style logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
