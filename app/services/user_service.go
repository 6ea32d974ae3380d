package services

import (
	"context"
	"strings"
	"time"

	"scribe/app/errs"
	"scribe/app/models"
	"scribe/app/repositories"
)

// UserService records the identities the authentication collaborator hands
// us. It never issues or checks credentials.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// EnsureUser returns the stored user for identity, creating it on first
// sight. A missing display name falls back to the id.
func (s *UserService) EnsureUser(ctx context.Context, identity models.User) (*models.User, error) {
	identity.ID = strings.TrimSpace(identity.ID)
	if identity.ID == "" {
		return nil, errs.Unauthorized("authentication required")
	}
	identity.Name = strings.TrimSpace(identity.Name)
	if identity.Name == "" {
		identity.Name = identity.ID
	}
	identity.Email = strings.TrimSpace(identity.Email)
	identity.CreatedAt = time.Time{}
	return s.userRepo.Ensure(&identity)
}
