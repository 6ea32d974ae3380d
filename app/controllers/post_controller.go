package controllers

import (
	"net/http"
	"strings"

	"scribe/app/middleware"
	"scribe/app/services"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index lists posts. Query: search, category, author, page, per_page.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	opts := services.ListOptions{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		AuthorID: strings.TrimSpace(r.URL.Query().Get("author")),
	}
	var err error
	if opts.CategoryID, err = queryInt(r, "category"); err != nil {
		sendError(w, r, err)
		return
	}
	if opts.Page, err = queryInt(r, "page"); err != nil {
		sendError(w, r, err)
		return
	}
	if opts.PerPage, err = queryInt(r, "per_page"); err != nil {
		sendError(w, r, err)
		return
	}

	page, err := pc.postService.ListPosts(r.Context(), middleware.UserID(r.Context()), opts)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendTagged(w, r, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), middleware.UserID(r.Context()), req.Post())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update applies the supplied fields to a post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}
	var req UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), middleware.UserID(r.Context()), id, req.Patch())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
