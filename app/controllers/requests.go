package controllers

import (
	"scribe/app/models"
	"scribe/app/services"
)

type CreatePostRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt" validate:"max=500"`
	FeaturedImage string `json:"featured_image" validate:"omitempty,url"`
	Published     *bool  `json:"published"`
	CategoryID    int    `json:"category_id" validate:"required,gt=0"`
}

func (req *CreatePostRequest) Post() *models.Post {
	return &models.Post{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Published:     req.Published != nil && *req.Published,
		CategoryID:    req.CategoryID,
	}
}

// UpdatePostRequest carries only the fields the client sent.
type UpdatePostRequest struct {
	Title         *string `json:"title" validate:"omitnil,min=1,max=200"`
	Content       *string `json:"content"`
	Excerpt       *string `json:"excerpt" validate:"omitnil,max=500"`
	// An empty featured_image clears it; other values are checked as URLs
	// when the post is stored.
	FeaturedImage *string `json:"featured_image"`
	Published     *bool   `json:"published"`
	CategoryID    *int    `json:"category_id" validate:"omitnil,gt=0"`
}

func (req *UpdatePostRequest) Patch() services.PostPatch {
	return services.PostPatch{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Published:     req.Published,
		CategoryID:    req.CategoryID,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
	// PostID is read from the flat /comments route; nested routes take it
	// from the path.
	PostID int `json:"post_id" validate:"gte=0"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (req *CreateCategoryRequest) Category() *models.Category {
	return &models.Category{Name: req.Name, Description: req.Description}
}

func validateRequest(req interface{}) error {
	return models.Check(req)
}
