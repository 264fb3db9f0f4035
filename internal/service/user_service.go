package service

import (
	"context"
	"fmt"
	"time"

	"armory/internal/cache"
	apperrors "armory/internal/errors"
	"armory/internal/model"
	"armory/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ErrUserNotFound is returned when a token refers to a user that no longer exists.
var ErrUserNotFound = apperrors.NotFound("User not found")

// UserService exposes profile lookups.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// GetProfile returns the user, served from cache when possible.
func (s *userService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user")
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}
