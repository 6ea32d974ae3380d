package models

import (
	"time"

	"scribe/app/errs"
)

func (u *User) Validate() error {
	if err := Check(u); err != nil {
		return err
	}
	if blank(u.Name) {
		return errs.Validation("name", "name is required")
	}
	return nil
}

func (u *User) BeforeCreate(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}

func (u *User) Summary() *Summary {
	return &Summary{Name: u.Name}
}
