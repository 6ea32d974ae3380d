package repositories

import "scribe/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Ensure stores the user if its id is unseen and returns the stored
	// record. Existing users are never renamed.
	Ensure(user *models.User) (*models.User, error)
	GetByID(id string) (*models.User, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByID(id int) (*models.Category, error)
	List() ([]*models.Category, error)
	Delete(id int) error
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	// List returns one page of matching posts, newest first, and the total
	// number of matches.
	List(filter PostFilter) ([]*models.Post, int, error)
	CountByCategory(categoryID int) (int, error)
	Update(post *models.Post) error
	// Delete removes only the post. DeleteWithComments also removes its
	// comments, atomically, and returns how many there were.
	Delete(id int) error
	DeleteWithComments(id int) (int, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create fails with NotFound when the comment's post does not exist.
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	List() ([]*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
}
