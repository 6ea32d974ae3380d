package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scribe/app/errs"
	"scribe/app/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Identity is forwarded in the trusted headers the server reads.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// API is a thin HTTP client for the content API.
type API struct {
	baseURL  string
	http     *http.Client
	identity Identity
	headers  [3]string // id, name, email header names
}

type Option func(*API)

func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.http = c }
}

func WithIdentity(identity Identity) Option {
	return func(a *API) { a.identity = identity }
}

// WithIdentityHeaders overrides the header names, for servers configured
// with non-default auth.*_header settings.
func WithIdentityHeaders(id, name, email string) Option {
	return func(a *API) { a.headers = [3]string{id, name, email} }
}

// NewAPI targets baseURL, which includes the API prefix
// (e.g. "http://localhost:8080/api").
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		headers: [3]string{"X-User-ID", "X-User-Name", "X-User-Email"},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Error is a non-2xx answer from the server. It unwraps to the matching
// errs kind so callers can use errs.IsNotFound and friends.
type Error struct {
	Status  int
	Message string
	Field   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return errs.ErrValidation
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusConflict:
		return errs.ErrConflict
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	}
	return nil
}

// PostQuery mirrors the listing query parameters. Zero values are omitted.
type PostQuery struct {
	Search     string
	CategoryID int
	AuthorID   string
	Page       int
	PerPage    int
}

func (q PostQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.CategoryID != 0 {
		v.Set("category", strconv.Itoa(q.CategoryID))
	}
	if q.AuthorID != "" {
		v.Set("author", q.AuthorID)
	}
	if q.Page != 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage != 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

type PostPage struct {
	Posts   []*models.Post `json:"posts"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}

type NewPost struct {
	Title         string `json:"title"`
	Content       string `json:"content,omitempty"`
	Excerpt       string `json:"excerpt,omitempty"`
	FeaturedImage string `json:"featured_image,omitempty"`
	Published     bool   `json:"published"`
	CategoryID    int    `json:"category_id"`
}

// PostChanges lists the fields to overwrite; nil fields are not sent.
type PostChanges struct {
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	Excerpt       *string `json:"excerpt,omitempty"`
	FeaturedImage *string `json:"featured_image,omitempty"`
	Published     *bool   `json:"published,omitempty"`
	CategoryID    *int    `json:"category_id,omitempty"`
}

func (a *API) ListPosts(ctx context.Context, q PostQuery) (*PostPage, error) {
	path := "/posts"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var page PostPage
	if err := a.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *API) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := a.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *API) CreatePost(ctx context.Context, input NewPost) (*models.Post, error) {
	var post models.Post
	if err := a.do(ctx, http.MethodPost, "/posts", input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *API) UpdatePost(ctx context.Context, id int, changes PostChanges) (*models.Post, error) {
	var post models.Post
	if err := a.do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), changes, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (a *API) DeletePost(ctx context.Context, id int) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func (a *API) ListCategories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if err := a.do(ctx, http.MethodGet, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (a *API) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	input := map[string]string{"name": name, "description": description}
	var category models.Category
	if err := a.do(ctx, http.MethodPost, "/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (a *API) CreateComment(ctx context.Context, postID int, content string) (*models.Comment, error) {
	input := map[string]string{"content": content}
	var comment models.Comment
	if err := a.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postID), input, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (a *API) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i, value := range []string{a.identity.ID, a.identity.Name, a.identity.Email} {
		if value != "" {
			req.Header.Set(a.headers[i], value)
		}
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
			Field string `json:"field"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Field = payload.Field
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
