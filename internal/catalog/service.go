package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"islebook-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("activity not found")
	ErrInvalidPrice = errors.New("invalid price")
)

// PasswordVerifier re-checks a caller's password; deletion is gated on it.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) error
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

// List fetches every activity and applies the catalog filter. The filter
// runs over the full snapshot, as the search screen did.
func (s *Service) List(ctx context.Context, query string) ([]models.Activity, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(query, items), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (models.Activity, error) {
	activity, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Activity{}, ErrNotFound
		}
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *Service) Create(ctx context.Context, req CreateActivityRequest) (models.Activity, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return models.Activity{}, err
	}

	activity := models.Activity{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Duration:        req.Duration,
		Price:           price,
		Location:        strings.TrimSpace(req.Location),
		ManagerName:     strings.TrimSpace(req.ManagerName),
		ManagerEmail:    strings.ToLower(strings.TrimSpace(req.ManagerEmail)),
		Rating:          0,
		NumberOfReviews: 0,
		CreatedAt:       time.Now().In(s.location),
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return models.Activity{}, err
	}
	return activity, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateActivityRequest) (models.Activity, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return models.Activity{}, err
	}

	// Rating fields are never written here; only the feedback flow moves
	// them.
	fields := bson.M{
		"title":        strings.TrimSpace(req.Title),
		"description":  strings.TrimSpace(req.Description),
		"duration":     req.Duration,
		"price":        price,
		"location":     strings.TrimSpace(req.Location),
		"managerName":  strings.TrimSpace(req.ManagerName),
		"managerEmail": strings.ToLower(strings.TrimSpace(req.ManagerEmail)),
	}

	updated, err := s.repo.Update(ctx, strings.TrimSpace(id), fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Activity{}, ErrNotFound
		}
		return models.Activity{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price < 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}
