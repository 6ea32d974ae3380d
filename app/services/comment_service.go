package services

import (
	"context"
	"fmt"
	"strings"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/repositories"

	"github.com/samber/lo"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	populate    *Populator
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, populate *Populator) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		populate:    populate,
	}
}

// post loads the parent post, hiding drafts from everyone but their author.
func (s *CommentService) post(viewerID string, postID int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, errs.NotFound("post %d not found", postID)
	}
	return post, nil
}

// CreateComment adds a comment by authorID to post postID
func (s *CommentService) CreateComment(ctx context.Context, authorID string, postID int, content string) (*models.Comment, error) {
	if authorID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Validation("content", "content must not be blank")
	}
	if _, err := s.post(authorID, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return s.populate.Comment(ctx, comment), nil
}

// GetComment retrieves a comment by ID. A non-zero postID must match the
// comment's post.
func (s *CommentService) GetComment(ctx context.Context, viewerID string, postID, id int) (*models.Comment, error) {
	comment, err := s.lookup(viewerID, postID, id)
	if err != nil {
		return nil, err
	}
	return s.populate.Comment(ctx, comment), nil
}

func (s *CommentService) lookup(viewerID string, postID, id int) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if postID != 0 && comment.PostID != postID {
		return nil, errs.NotFound("comment %d not found on post %d", id, postID)
	}
	if _, err := s.post(viewerID, comment.PostID); err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NotFound("comment %d not found", id)
		}
		return nil, err
	}
	return comment, nil
}

// ListComments retrieves all comments for a post in creation order
func (s *CommentService) ListComments(ctx context.Context, viewerID string, postID int) ([]*models.Comment, error) {
	if _, err := s.post(viewerID, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	for _, comment := range comments {
		s.populate.Comment(ctx, comment)
	}
	return comments, nil
}

// ListAllComments retrieves every comment whose post viewerID can see
func (s *CommentService) ListAllComments(ctx context.Context, viewerID string) ([]*models.Comment, error) {
	comments, err := s.commentRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	visible := map[int]bool{}
	comments = lo.Filter(comments, func(comment *models.Comment, _ int) bool {
		ok, seen := visible[comment.PostID]
		if !seen {
			_, err := s.post(viewerID, comment.PostID)
			ok = err == nil
			visible[comment.PostID] = ok
		}
		return ok
	})
	for _, comment := range comments {
		s.populate.Comment(ctx, comment)
	}
	return comments, nil
}

// UpdateComment replaces the content of a comment. Only its author may.
func (s *CommentService) UpdateComment(ctx context.Context, requesterID string, postID, id int, content string) (*models.Comment, error) {
	if requesterID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	comment, err := s.lookup(requesterID, postID, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != requesterID {
		return nil, errs.Forbidden("only the author can edit comment %d", id)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Validation("content", "content must not be blank")
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return s.populate.Comment(ctx, comment), nil
}

// DeleteComment deletes a comment. The comment's author and the author of
// the post it sits on may both delete it.
func (s *CommentService) DeleteComment(ctx context.Context, requesterID string, postID, id int) error {
	if requesterID == "" {
		return errs.Unauthorized("authentication required")
	}
	comment, err := s.lookup(requesterID, postID, id)
	if err != nil {
		return err
	}
	if comment.AuthorID != requesterID {
		post, err := s.postRepo.GetByID(comment.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != requesterID {
			return errs.Forbidden("not allowed to delete comment %d", id)
		}
	}
	return s.commentRepo.Delete(id)
}
