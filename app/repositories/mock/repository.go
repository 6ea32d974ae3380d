package mock

import (
	"sort"
	"sync"
	"time"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/repositories"
)

// Now stamps records created through the mocks. Tests may replace it.
var Now = time.Now

type UserRepository struct {
	users map[string]*models.User
	mutex sync.RWMutex
}

type CategoryRepository struct {
	categories map[int]*models.Category
	nextID     int
	mutex      sync.RWMutex
}

type PostRepository struct {
	posts    map[int]*models.Post
	nextID   int
	mutex    sync.RWMutex
	comments *CommentRepository
}

type CommentRepository struct {
	comments map[int]*models.Comment
	nextID   int
	mutex    sync.RWMutex
	posts    *PostRepository
}

var (
	_ repositories.UserRepository     = (*UserRepository)(nil)
	_ repositories.CategoryRepository = (*CategoryRepository)(nil)
	_ repositories.PostRepository     = (*PostRepository)(nil)
	_ repositories.CommentRepository  = (*CommentRepository)(nil)
)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[int]*models.Category), nextID: 1}
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[int]*models.Post), nextID: 1}
}

// WithComments links the two mocks the way a shared database does:
// DeleteWithComments reaches the comments and comment creation checks that
// the post exists.
func (m *PostRepository) WithComments(comments *CommentRepository) *PostRepository {
	m.comments = comments
	comments.posts = m
	return m
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[int]*models.Comment), nextID: 1}
}

func (m *UserRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.users = make(map[string]*models.User)
}

func (m *CategoryRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.categories = make(map[int]*models.Category)
	m.nextID = 1
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

func (m *CommentRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments = make(map[int]*models.Comment)
	m.nextID = 1
}

// UserRepository implementation
func (m *UserRepository) Ensure(user *models.User) (*models.User, error) {
	user.BeforeCreate(Now())
	if err := user.Validate(); err != nil {
		return nil, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, ok := m.users[user.ID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *user
	m.users[user.ID] = &cp
	out := cp
	return &out, nil
}

func (m *UserRepository) GetByID(id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, errs.NotFound("user %q not found", id)
	}
	cp := *user
	return &cp, nil
}

// CategoryRepository implementation
func (m *CategoryRepository) Create(category *models.Category) error {
	category.BeforeCreate(Now())
	if err := category.Validate(); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	category.ID = m.nextID
	m.nextID++
	cp := *category
	m.categories[category.ID] = &cp
	return nil
}

func (m *CategoryRepository) GetByID(id int) (*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	category, ok := m.categories[id]
	if !ok {
		return nil, errs.NotFound("category %d not found", id)
	}
	cp := *category
	return &cp, nil
}

func (m *CategoryRepository) List() ([]*models.Category, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	categories := make([]*models.Category, 0, len(m.categories))
	for _, category := range m.categories {
		cp := *category
		categories = append(categories, &cp)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (m *CategoryRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.categories[id]; !ok {
		return errs.NotFound("category %d not found", id)
	}
	delete(m.categories, id)
	return nil
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	post.BeforeCreate(Now())
	if err := post.Validate(); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	post.ID = m.nextID
	m.nextID++
	m.posts[post.ID] = post.Stored()
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, ok := m.posts[id]
	if !ok {
		return nil, errs.NotFound("post %d not found", id)
	}
	return post.Stored(), nil
}

func (m *PostRepository) List(filter repositories.PostFilter) ([]*models.Post, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	for _, post := range m.posts {
		if filter.Match(post) {
			posts = append(posts, post.Stored())
		}
	}
	repositories.SortNewestFirst(posts)
	return repositories.Paginate(posts, filter.Page, filter.PerPage), len(posts), nil
}

func (m *PostRepository) CountByCategory(categoryID int) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	count := 0
	for _, post := range m.posts {
		if post.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, ok := m.posts[post.ID]
	if !ok {
		return errs.NotFound("post %d not found", post.ID)
	}
	post.CreatedAt = existing.CreatedAt
	stamp := Now()
	if !stamp.After(existing.UpdatedAt) {
		stamp = existing.UpdatedAt.Add(time.Microsecond)
	}
	post.UpdatedAt = stamp
	if err := post.Validate(); err != nil {
		return err
	}
	m.posts[post.ID] = post.Stored()
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.posts[id]; !ok {
		return errs.NotFound("post %d not found", id)
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) DeleteWithComments(id int) (int, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.posts[id]; !ok {
		return 0, errs.NotFound("post %d not found", id)
	}
	delete(m.posts, id)

	removed := 0
	if m.comments != nil {
		m.comments.mutex.Lock()
		defer m.comments.mutex.Unlock()
		for commentID, comment := range m.comments.comments {
			if comment.PostID == id {
				delete(m.comments.comments, commentID)
				removed++
			}
		}
	}
	return removed, nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate(Now())
	if err := comment.Validate(); err != nil {
		return err
	}
	if m.posts != nil {
		if _, err := m.posts.GetByID(comment.PostID); err != nil {
			return err
		}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment.ID = m.nextID
	m.nextID++
	m.comments[comment.ID] = comment.Stored()
	return nil
}

func (m *CommentRepository) GetByID(id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, errs.NotFound("comment %d not found", id)
	}
	return comment.Stored(), nil
}

func (m *CommentRepository) List() ([]*models.Comment, error) {
	return m.collect(func(*models.Comment) bool { return true }), nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return m.collect(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (m *CommentRepository) collect(keep func(*models.Comment) bool) []*models.Comment {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if keep(comment) {
			comments = append(comments, comment.Stored())
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments
}

func (m *CommentRepository) Update(comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, ok := m.comments[comment.ID]
	if !ok {
		return errs.NotFound("comment %d not found", comment.ID)
	}
	comment.PostID = existing.PostID
	comment.CreatedAt = existing.CreatedAt
	if err := comment.Validate(); err != nil {
		return err
	}
	m.comments[comment.ID] = comment.Stored()
	return nil
}

func (m *CommentRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.comments[id]; !ok {
		return errs.NotFound("comment %d not found", id)
	}
	delete(m.comments, id)
	return nil
}
