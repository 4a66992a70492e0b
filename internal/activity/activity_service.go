package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-workforce/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LogResponse struct {
	ID          string `json:"id"`
	ActorID     string `json:"actor_id"`
	Action      string `json:"action"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurred_at"`
}

type Service interface {
	Ingest(ctx context.Context, payload []byte) (bool, error)
	ListByEntity(ctx context.Context, companyID, entityType, entityID string) ([]LogResponse, error)
}

// ErrMalformedEvent marks payloads that can never be stored.
var ErrMalformedEvent = errors.New("malformed activity event")

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("activity.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity.service")
	}
	return &service{repo: repo, logger: l}
}

// Ingest stores one published event. It returns false for duplicates.
func (s *service) Ingest(ctx context.Context, payload []byte) (bool, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	ids := make([]uuid.UUID, 4)
	for i, raw := range []string{event.EventID, event.CompanyID, event.ActorID, event.EntityID} {
		id, err := uuid.Parse(raw)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		ids[i] = id
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	inserted, err := s.repo.Create(ctx, &Log{
		ID:          ids[0],
		CompanyID:   ids[1],
		ActorID:     ids[2],
		EntityID:    ids[3],
		Action:      event.Action,
		EntityType:  event.EntityType,
		Description: event.Description,
		RequestID:   event.RequestID,
		OccurredAt:  event.OccurredAt,
	})
	if err != nil {
		s.logger.Error("store activity failed", zap.String("event_id", event.EventID), zap.Error(err))
		return false, err
	}
	return inserted, nil
}

func (s *service) ListByEntity(ctx context.Context, companyID, entityType, entityID string) ([]LogResponse, error) {
	if _, err := uuid.Parse(entityID); err != nil {
		return nil, apperror.InvalidField("entity_id")
	}
	logs, err := s.repo.ListByEntity(ctx, companyID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	resp := make([]LogResponse, len(logs))
	for i, l := range logs {
		resp[i] = LogResponse{
			ID:          l.ID.String(),
			ActorID:     l.ActorID.String(),
			Action:      l.Action,
			EntityType:  l.EntityType,
			EntityID:    l.EntityID.String(),
			Description: l.Description,
			OccurredAt:  l.OccurredAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}
