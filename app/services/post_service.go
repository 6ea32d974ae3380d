package services

import (
	"context"
	"fmt"
	"strings"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/repositories"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo     repositories.PostRepository
	commentRepo  repositories.CommentRepository
	categoryRepo repositories.CategoryRepository
	populate     *Populator

	perPage    int
	maxPerPage int
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	categoryRepo repositories.CategoryRepository,
	populate *Populator,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		populate:     populate,
		perPage:      DefaultPerPage,
		maxPerPage:   MaxPerPage,
	}
}

// WithPaging overrides the default and maximum page sizes.
func (s *PostService) WithPaging(perPage, maxPerPage int) *PostService {
	if maxPerPage > 0 {
		s.maxPerPage = maxPerPage
	}
	if perPage > 0 {
		s.perPage = min(perPage, s.maxPerPage)
	}
	return s
}

// PostPatch carries the fields an update supplies. Nil fields are left
// unchanged.
type PostPatch struct {
	Title         *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	Published     *bool
	CategoryID    *int
}

// ListOptions are the query parameters of a post listing.
type ListOptions struct {
	Search     string
	CategoryID int
	AuthorID   string
	Page       int
	PerPage    int
}

// Page is one page of a post listing.
type Page struct {
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

// CreatePost stores a new post written by authorID. Drafts stay drafts
// unless Published is set.
func (s *PostService) CreatePost(ctx context.Context, authorID string, draft *models.Post) (*models.Post, error) {
	if authorID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	post := &models.Post{
		Title:         strings.TrimSpace(draft.Title),
		Content:       draft.Content,
		Excerpt:       strings.TrimSpace(draft.Excerpt),
		FeaturedImage: strings.TrimSpace(draft.FeaturedImage),
		Published:     draft.Published,
		CategoryID:    draft.CategoryID,
		AuthorID:      authorID,
	}
	if post.Title == "" {
		return nil, errs.Validation("title", "title is required")
	}
	if err := s.checkCategory(post.CategoryID); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	log.Info().Int("post", post.ID).Str("author", authorID).Bool("published", post.Published).Msg("Post created")
	return s.populate.Post(ctx, post), nil
}

func (s *PostService) checkCategory(categoryID int) error {
	if categoryID <= 0 {
		return errs.Validation("category_id", "category_id is required")
	}
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		if errs.IsNotFound(err) {
			return errs.Validation("category_id", "category %d does not exist", categoryID)
		}
		return fmt.Errorf("failed to load category: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID with its comments. Another author's draft
// is reported as missing.
func (s *PostService) GetPost(ctx context.Context, viewerID string, id int) (*models.Post, error) {
	post, err := s.visiblePost(viewerID, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	for _, comment := range comments {
		if err := post.AddComment(comment); err != nil {
			return nil, err
		}
	}

	return s.populate.Post(ctx, post), nil
}

func (s *PostService) visiblePost(viewerID string, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, errs.NotFound("post %d not found", id)
	}
	return post, nil
}

// ListPosts retrieves a page of posts visible to viewerID, newest first
func (s *PostService) ListPosts(ctx context.Context, viewerID string, opts ListOptions) (*Page, error) {
	page := max(opts.Page, 1)
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = s.perPage
	}
	perPage = min(perPage, s.maxPerPage)

	posts, total, err := s.postRepo.List(repositories.PostFilter{
		Search:     opts.Search,
		CategoryID: opts.CategoryID,
		AuthorID:   opts.AuthorID,
		ViewerID:   viewerID,
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for _, post := range posts {
		s.populate.Post(ctx, post)
	}
	return &Page{Posts: posts, Page: page, PerPage: perPage, Total: total}, nil
}

// authorize loads post id and checks that requesterID wrote it.
func (s *PostService) authorize(requesterID string, id int) (*models.Post, error) {
	if requesterID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	post, err := s.visiblePost(requesterID, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != requesterID {
		return nil, errs.Forbidden("only the author can modify post %d", id)
	}
	return post, nil
}

// UpdatePost applies patch to post id on behalf of requesterID
func (s *PostService) UpdatePost(ctx context.Context, requesterID string, id int, patch PostPatch) (*models.Post, error) {
	post, err := s.authorize(requesterID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, errs.Validation("title", "title cannot be blank")
		}
		post.Title = title
	}
	if patch.Content != nil {
		post.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*patch.FeaturedImage)
	}
	if patch.Published != nil {
		post.Published = *patch.Published
	}
	if patch.CategoryID != nil && *patch.CategoryID != post.CategoryID {
		if err := s.checkCategory(*patch.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = *patch.CategoryID
	}

	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, requesterID, id)
}

// DeletePost deletes a post and all its comments in one step
func (s *PostService) DeletePost(ctx context.Context, requesterID string, id int) error {
	if _, err := s.authorize(requesterID, id); err != nil {
		return err
	}

	removed, err := s.postRepo.DeleteWithComments(id)
	if err != nil {
		return err
	}
	log.Info().Int("post", id).Int("comments", removed).Msg("Post deleted")
	return nil
}
