package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"scribe/app/errs"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// User is an identity supplied by the authentication collaborator.
type User struct {
	ID        string    `json:"id" validate:"required,max=128"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time `json:"created_at"`
}

// Category groups posts. Posts reference exactly one category.
type Category struct {
	ID          int       `json:"id" validate:"gte=0"`
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description,omitempty" validate:"max=1000"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is the populated form of a reference: just enough to render it.
type Summary struct {
	Name string `json:"name"`
}

// Post is a unit of published or draft content.
type Post struct {
	ID            int       `json:"id" validate:"gte=0"`
	Title         string    `json:"title" validate:"required,max=200"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt,omitempty" validate:"max=500"`
	FeaturedImage string    `json:"featured_image,omitempty" validate:"omitempty,url"`
	Published     bool      `json:"published"`
	CategoryID    int       `json:"category_id" validate:"required,gt=0"`
	AuthorID      string    `json:"author_id" validate:"required"`
	CreatedAt     time.Time `json:"created_at" validate:"required"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Read-time fields, never persisted.
	Category    *Summary   `json:"category" validate:"-"`
	Author      *Summary   `json:"author" validate:"-"`
	Preview     string     `json:"preview,omitempty" validate:"-"`
	ReadMinutes int        `json:"read_minutes,omitempty" validate:"-"`
	Comments    []*Comment `json:"comments,omitempty" validate:"-"`
}

// Comment is a plain-text reply attached to a post.
type Comment struct {
	ID        int       `json:"id" validate:"gte=0"`
	PostID    int       `json:"post_id" validate:"required,gt=0"`
	AuthorID  string    `json:"author_id" validate:"required"`
	Content   string    `json:"content" validate:"required,max=5000"`
	CreatedAt time.Time `json:"created_at" validate:"required"`

	Author *Summary `json:"author" validate:"-"`
}

// Check validates v against its struct tags and converts the first failure
// into a validation error naming the offending JSON field.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Validation("", "invalid input: %v", err)
	}
	fe := verrs[0]
	return errs.Validation(fe.Field(), "%s", describe(fe))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be a positive id", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
