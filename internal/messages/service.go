package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"islebook-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrEmptyBody        = errors.New("empty message body")
	ErrActivityNotFound = errors.New("activity not found")
)

// ActivityChecker confirms a thread's activity exists before writing to it.
type ActivityChecker interface {
	GetByID(ctx context.Context, id string) (models.Activity, error)
}

type Service struct {
	repo       Repository
	activities ActivityChecker
	now        func() time.Time
}

func NewService(repo Repository, activities ActivityChecker) *Service {
	return &Service{repo: repo, activities: activities, now: time.Now}
}

func (s *Service) Post(ctx context.Context, activityID, email, name, body string) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, ErrEmptyBody
	}

	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Message{}, ErrActivityNotFound
		}
		return models.Message{}, err
	}

	message := models.Message{
		ID:          uuid.NewString(),
		ActivityID:  activityID,
		SenderEmail: email,
		SenderName:  name,
		Body:        body,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (s *Service) List(ctx context.Context, activityID string, limit int64) ([]models.Message, error) {
	if _, err := s.activities.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return s.repo.ListByActivity(ctx, activityID, limit)
}

func (s *Service) Watch(ctx context.Context, activityID string) (ChangeStream, error) {
	return s.repo.Watch(ctx, activityID)
}
