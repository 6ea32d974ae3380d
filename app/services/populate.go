package services

import (
	"context"
	"fmt"
	"time"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/repositories"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

// SummaryCache keeps resolved author and category summaries for a short
// while so list pages don't reload the same records for every post.
type SummaryCache struct {
	marshal *marshaler.Marshaler
	ttl     time.Duration
}

func NewSummaryCache(ttl time.Duration) (*SummaryCache, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 14,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summary cache: %w", err)
	}
	manager := cache.New[any](ristretto_store.NewRistretto(client))
	return &SummaryCache{marshal: marshaler.New(manager), ttl: ttl}, nil
}

func (c *SummaryCache) get(ctx context.Context, key string) (*models.Summary, bool) {
	value, err := c.marshal.Get(ctx, key, new(models.Summary))
	if err != nil {
		return nil, false
	}
	summary, ok := value.(*models.Summary)
	return summary, ok
}

func (c *SummaryCache) set(ctx context.Context, key string, summary *models.Summary) {
	if err := c.marshal.Set(ctx, key, summary, store.WithExpiration(c.ttl), store.WithCost(1)); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Unable to cache summary")
	}
}

func (c *SummaryCache) invalidate(ctx context.Context, key string) {
	_ = c.marshal.Delete(ctx, key)
}

func userCacheKey(id string) string  { return "summary#user#" + id }
func categoryCacheKey(id int) string { return fmt.Sprintf("summary#category#%d", id) }

// Populator resolves the references a post or comment holds by id into the
// summaries rendered on read. A reference that cannot be resolved becomes
// nil and is logged; it never fails the read.
type Populator struct {
	users      repositories.UserRepository
	categories repositories.CategoryRepository
	cache      *SummaryCache // optional
}

func NewPopulator(users repositories.UserRepository, categories repositories.CategoryRepository, cache *SummaryCache) *Populator {
	return &Populator{users: users, categories: categories, cache: cache}
}

func (p *Populator) Author(ctx context.Context, userID string) *models.Summary {
	return p.resolve(ctx, userCacheKey(userID), func() (*models.Summary, error) {
		user, err := p.users.GetByID(userID)
		if err != nil {
			return nil, err
		}
		return user.Summary(), nil
	})
}

func (p *Populator) Category(ctx context.Context, categoryID int) *models.Summary {
	return p.resolve(ctx, categoryCacheKey(categoryID), func() (*models.Summary, error) {
		category, err := p.categories.GetByID(categoryID)
		if err != nil {
			return nil, err
		}
		return category.Summary(), nil
	})
}

func (p *Populator) resolve(ctx context.Context, key string, load func() (*models.Summary, error)) *models.Summary {
	if p.cache != nil {
		if summary, ok := p.cache.get(ctx, key); ok {
			return summary
		}
	}
	summary, err := load()
	if err != nil {
		event := log.Warn()
		if !errs.IsNotFound(err) {
			event = log.Error()
		}
		event.Err(err).Str("reference", key).Msg("Unable to populate reference")
		return nil
	}
	if p.cache != nil {
		p.cache.set(ctx, key, summary)
	}
	return summary
}

// ForgetCategory drops the cached summary of a removed category.
func (p *Populator) ForgetCategory(ctx context.Context, categoryID int) {
	if p.cache != nil {
		p.cache.invalidate(ctx, categoryCacheKey(categoryID))
	}
}

// Post fills the read-time fields of post and of each comment attached to it.
func (p *Populator) Post(ctx context.Context, post *models.Post) *models.Post {
	post.Author = p.Author(ctx, post.AuthorID)
	post.Category = p.Category(ctx, post.CategoryID)
	post.Preview = Preview(post)
	post.ReadMinutes = ReadMinutes(post.Content)
	for _, comment := range post.Comments {
		p.Comment(ctx, comment)
	}
	return post
}

func (p *Populator) Comment(ctx context.Context, comment *models.Comment) *models.Comment {
	comment.Author = p.Author(ctx, comment.AuthorID)
	return comment
}
