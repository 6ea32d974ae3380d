package models

import (
	"time"

	"scribe/app/errs"
)

func (c *Category) Validate() error {
	if err := Check(c); err != nil {
		return err
	}
	if blank(c.Name) {
		return errs.Validation("name", "name is required")
	}
	return nil
}

func (c *Category) BeforeCreate(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// Summary is how a post embeds its category on read.
func (c *Category) Summary() *Summary {
	return &Summary{Name: c.Name}
}
