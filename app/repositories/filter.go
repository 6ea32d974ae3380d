package repositories

import (
	"sort"
	"strings"

	"scribe/app/models"
)

// PostFilter selects posts for listing. Zero-valued fields do not filter.
type PostFilter struct {
	Search     string // case-insensitive substring of title or content
	CategoryID int
	AuthorID   string
	ViewerID   string // drafts are only returned to their author
	Page       int    // 1-based
	PerPage    int    // <= 0 returns every match
}

// Match reports whether post satisfies every set criterion.
func (f PostFilter) Match(post *models.Post) bool {
	if !post.VisibleTo(f.ViewerID) {
		return false
	}
	if f.CategoryID != 0 && post.CategoryID != f.CategoryID {
		return false
	}
	if f.AuthorID != "" && post.AuthorID != f.AuthorID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(post.Title), q) &&
			!strings.Contains(strings.ToLower(post.Content), q) {
			return false
		}
	}
	return true
}

// SortNewestFirst orders posts by creation time descending, breaking ties
// by id so the order is stable.
func SortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

// Paginate slices out the requested page.
func Paginate(posts []*models.Post, page, perPage int) []*models.Post {
	if perPage <= 0 {
		return posts
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage
	if offset >= len(posts) {
		return []*models.Post{}
	}
	end := offset + perPage
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}
