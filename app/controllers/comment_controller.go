package controllers

import (
	"net/http"

	"scribe/app/errs"
	"scribe/app/middleware"
	"scribe/app/services"

	"github.com/gorilla/mux"
)

// CommentController serves comments both nested under a post
// (/posts/{postId}/comments) and flat (/comments).
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// postID returns the post addressed by a nested route, or 0 on flat routes.
func postID(r *http.Request) (int, error) {
	if _, ok := mux.Vars(r)["postId"]; !ok {
		return 0, nil
	}
	return pathID(r, "postId")
}

// Index lists the comments of one post, or every visible comment on the
// flat route.
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	pid, err := postID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	viewer := middleware.UserID(r.Context())

	if pid == 0 {
		comments, err := cc.commentService.ListAllComments(r.Context(), viewer)
		if err != nil {
			sendError(w, r, err)
			return
		}
		sendJSON(w, http.StatusOK, comments)
		return
	}

	comments, err := cc.commentService.ListComments(r.Context(), viewer, pid)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	pid, err := postID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.GetComment(r.Context(), middleware.UserID(r.Context()), pid, id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	pid, err := postID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	var req CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}
	if pid == 0 {
		pid = req.PostID
	}
	if pid == 0 {
		sendError(w, r, errs.Validation("post_id", "post_id is required"))
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), middleware.UserID(r.Context()), pid, req.Content)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, comment)
}

// Update replaces the content of a comment
func (cc *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	pid, err := postID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}
	var req UpdateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	comment, err := cc.commentService.UpdateComment(r.Context(), middleware.UserID(r.Context()), pid, id, req.Content)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comment)
}

// Delete handles deleting a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	pid, err := postID(r)
	if err != nil {
		sendError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	if err := cc.commentService.DeleteComment(r.Context(), middleware.UserID(r.Context()), pid, id); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
