package models

import (
	"time"

	"scribe/app/errs"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := Check(c); err != nil {
		return err
	}
	if blank(c.Content) {
		return errs.Validation("content", "content must not be blank")
	}
	if c.CreatedAt.IsZero() {
		return errs.Validation("created_at", "created_at cannot be zero")
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// Stored returns a copy holding only the persisted fields.
func (c *Comment) Stored() *Comment {
	cp := *c
	cp.Author = nil
	return &cp
}
