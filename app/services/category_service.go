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

type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	postRepo     repositories.PostRepository
	populate     *Populator
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, postRepo repositories.PostRepository, populate *Populator) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, postRepo: postRepo, populate: populate}
}

func (s *CategoryService) CreateCategory(ctx context.Context, requesterID string, category *models.Category) (*models.Category, error) {
	if requesterID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	created := &models.Category{
		Name:        strings.TrimSpace(category.Name),
		Description: strings.TrimSpace(category.Description),
	}
	if err := s.categoryRepo.Create(created); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id int) (*models.Category, error) {
	return s.categoryRepo.GetByID(id)
}

// DeleteCategory removes a category nobody references. Posts, drafts
// included, keep a category alive.
func (s *CategoryService) DeleteCategory(ctx context.Context, requesterID string, id int) error {
	if requesterID == "" {
		return errs.Unauthorized("authentication required")
	}
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return err
	}
	count, err := s.postRepo.CountByCategory(id)
	if err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		return errs.Conflict("category %d is used by %d posts", id, count)
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return err
	}
	s.populate.ForgetCategory(ctx, id)
	log.Info().Int("category", id).Msg("Category deleted")
	return nil
}
