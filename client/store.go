package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"scribe/app/models"

	"github.com/samber/lo"
)

// ErrClosed is returned by every operation on a closed Store.
var ErrClosed = errors.New("client store is closed")

// Remote is the part of the API the Store drives.
type Remote interface {
	ListPosts(ctx context.Context, q PostQuery) (*PostPage, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	CreatePost(ctx context.Context, input NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, changes PostChanges) (*models.Post, error)
	DeletePost(ctx context.Context, id int) error
	CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error)
}

// Store holds the last fetched posts and categories and keeps them in step
// with the mutations made through it. Every mutation waits for the server
// and only touches local state once the server accepted it.
//
// Cached posts are never modified in place; a change swaps in a new value,
// so slices returned by Posts stay valid.
type Store struct {
	remote Remote

	mu         sync.RWMutex
	posts      []*models.Post
	categories []*models.Category
	loading    int
	closed     bool
}

func NewStore(remote Remote) *Store {
	return &Store{
		remote:     remote,
		posts:      []*models.Post{},
		categories: []*models.Category{},
	}
}

// Close drops the cached state. Later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.posts = nil
	s.categories = nil
	return nil
}

func (s *Store) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts)
}

func (s *Store) Categories() []*models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Loading reports whether a post fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *Store) open() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// apply runs fn under the write lock unless the store was closed while the
// remote call was in flight.
func (s *Store) apply(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	fn()
	return nil
}

// FetchPosts replaces the cached posts with the page matching q.
func (s *Store) FetchPosts(ctx context.Context, q PostQuery) error {
	if err := s.apply(func() { s.loading++ }); err != nil {
		return err
	}
	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	page, err := s.remote.ListPosts(ctx, q)
	if err != nil {
		return err
	}
	return s.apply(func() {
		s.posts = lo.Ternary(page.Posts == nil, []*models.Post{}, page.Posts)
	})
}

func (s *Store) FetchCategories(ctx context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	categories, err := s.remote.ListCategories(ctx)
	if err != nil {
		return err
	}
	return s.apply(func() {
		s.categories = lo.Ternary(categories == nil, []*models.Category{}, categories)
	})
}

// CreatePost creates a post and puts it at the front of the cache.
func (s *Store) CreatePost(ctx context.Context, input NewPost) (*models.Post, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	post, err := s.remote.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}
	err = s.apply(func() {
		s.posts = append([]*models.Post{post}, s.posts...)
	})
	return post, err
}

// UpdatePost updates a post and swaps the cached copy in place.
func (s *Store) UpdatePost(ctx context.Context, id int, changes PostChanges) (*models.Post, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	post, err := s.remote.UpdatePost(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	err = s.apply(func() {
		s.posts = lo.Map(s.posts, func(cached *models.Post, _ int) *models.Post {
			return lo.Ternary(cached.ID == id, post, cached)
		})
	})
	return post, err
}

// DeletePost deletes a post and drops it from the cache.
func (s *Store) DeletePost(ctx context.Context, id int) error {
	if err := s.open(); err != nil {
		return err
	}
	if err := s.remote.DeletePost(ctx, id); err != nil {
		return err
	}
	return s.apply(func() {
		s.posts = lo.Filter(s.posts, func(cached *models.Post, _ int) bool {
			return cached.ID != id
		})
	})
}

// CreateComment adds a comment and appends it to the cached post, if any.
func (s *Store) CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	comment, err := s.remote.CreateComment(ctx, postID, content)
	if err != nil {
		return nil, err
	}
	err = s.apply(func() {
		_, i, ok := lo.FindIndexOf(s.posts, func(cached *models.Post) bool {
			return cached.ID == postID
		})
		if !ok {
			return
		}
		updated := *s.posts[i]
		updated.Comments = slices.Clip(updated.Comments)
		if updated.AddComment(comment) != nil {
			return
		}
		s.posts = slices.Clone(s.posts)
		s.posts[i] = &updated
	})
	return comment, err
}
