package models

import (
	"errors"
	"time"

	"scribe/app/errs"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := Check(p); err != nil {
		return err
	}
	if blank(p.Title) {
		return errs.Validation("title", "title is required")
	}
	if p.CreatedAt.IsZero() {
		return errs.Validation("created_at", "created_at cannot be zero")
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}

// Stored returns a copy holding only the persisted fields.
func (p *Post) Stored() *Post {
	cp := *p
	cp.Category = nil
	cp.Author = nil
	cp.Preview = ""
	cp.ReadMinutes = 0
	cp.Comments = nil
	return &cp
}

// VisibleTo reports whether viewerID may see the post. Drafts are only
// visible to their author.
func (p *Post) VisibleTo(viewerID string) bool {
	return p.Published || (viewerID != "" && p.AuthorID == viewerID)
}

// AddComment attaches comment to the post and points it back at the post.
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}
