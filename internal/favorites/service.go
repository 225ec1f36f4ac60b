package favorites

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyTitle   = errors.New("empty title")
	ErrInvalidTitle = errors.New("invalid title")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, email string) (map[string]bool, error) {
	return s.repo.Get(ctx, email)
}

// Toggle flips the favorite state of a title and reports the new state.
func (s *Service) Toggle(ctx context.Context, email, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, ErrEmptyTitle
	}
	// Titles become document field names, where dots form nested paths and a
	// leading dollar is a query operator.
	if strings.ContainsRune(title, '.') || strings.HasPrefix(title, "$") {
		return false, ErrInvalidTitle
	}

	current, err := s.repo.Get(ctx, email)
	if err != nil {
		return false, err
	}

	if current[title] {
		if err := s.repo.Remove(ctx, email, title); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.repo.Add(ctx, email, title); err != nil {
		return false, err
	}
	return true, nil
}
